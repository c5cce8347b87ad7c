package process

import (
	"context"
	"fmt"
	"time"

	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/common"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/ident"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/model"
)

type pipelineOutcome struct {
	processed int
	failed    int
	conflicts int
}

// runPipeline matches every pending file against the face collaborator and
// routes the outcome: register new faces, record duplicates, open
// conflicts, or park ambiguous results as exceptions. One file failing the
// face API marks that file Failed and moves on; only infrastructure
// failures abort the run.
func (s *Service) runPipeline(ctx context.Context, proc *model.DeduplicationProcess) (pipelineOutcome, error) {
	outcome := pipelineOutcome{}

	session := s.store.OpenSession(ident.Collection(ident.KindFile))
	defer session.Close(ctx)

	docs, err := session.LoadMany(ctx, proc.FileIds)
	if err != nil {
		return outcome, fmt.Errorf("failed to load process files: %w", err)
	}

	for _, fid := range proc.FileIds {
		doc, ok := docs[fid]
		if !ok {
			s.log.Warn("process %s references missing file %s", proc.ID, fid)
			continue
		}
		file, err := common.DecodeDocument[model.FileRecord](doc)
		if err != nil {
			s.log.Warn("skipping undecodable file %s: %v", fid, err)
			continue
		}
		if file.CurrentProcessStatus() != model.FileProcessPending {
			continue
		}

		now := time.Now().UTC()
		file.ProcessStatus = model.FileProcessProcessing.String()
		file.ProcessStartDate = &now

		if err := s.matchFile(ctx, proc, file, &outcome); err != nil {
			s.log.Warn("matching failed for %s (%s): %v", file.FileName, fid, err)
			file.ProcessStatus = model.FileProcessFailed.String()
			outcome.failed++
		} else {
			outcome.processed++
		}

		data, err := common.EncodeDocument(file)
		if err != nil {
			return outcome, err
		}
		session.Store(fid, data)
	}

	if err := session.SaveChanges(ctx); err != nil {
		return outcome, fmt.Errorf("failed to commit pipeline results: %w", err)
	}
	return outcome, nil
}

// matchFile runs one file through identification and applies the decision.
func (s *Service) matchFile(ctx context.Context, proc *model.DeduplicationProcess, file *model.FileRecord, outcome *pipelineOutcome) error {
	identified, err := s.matcher.Identify(ctx, file.Base64)
	if err != nil {
		return err
	}

	candidates := make([]model.MatchCandidate, 0, len(identified.Matches))
	for _, m := range identified.Matches {
		candidates = append(candidates, model.MatchCandidate{
			FileName:   m.Name,
			PersonID:   m.PersonID,
			Confidence: m.Confidence,
		})
	}

	result := s.dedupe.Decide(candidates)
	switch result.Decision {
	case model.DecisionUnique:
		registered, err := s.matcher.Register(ctx, file.FileName, file.Base64)
		if err != nil {
			return err
		}
		if !registered.Success {
			return fmt.Errorf("face registration rejected for %s", file.FileName)
		}
		file.FaceID = registered.AssignedID
		file.Status = model.FileInserted.String()
		file.ProcessStatus = model.FileProcessCompleted.String()
		file.Deduplicated = true

	case model.DecisionDuplicate:
		matches := make([]model.DuplicateMatch, 0, len(result.Candidates))
		for _, c := range result.Candidates {
			matches = append(matches, model.DuplicateMatch{
				FileID:     c.FileID,
				FileName:   c.FileName,
				Confidence: c.Confidence,
				PersonID:   c.PersonID,
			})
		}
		if _, err := s.duplicates.Create(ctx, proc.ID, file.ID, file.FileName, matches); err != nil {
			return err
		}
		file.FaceID = result.Candidates[0].PersonID
		file.Status = model.FileInserted.String()
		file.ProcessStatus = model.FileProcessCompleted.String()
		file.Deduplicated = true

	case model.DecisionConflict:
		if _, err := s.conflicts.Create(ctx, proc.ID, file.FileName, result.Candidates[0].FileName, result.TopScore); err != nil {
			return err
		}
		file.Status = model.FileConflict.String()
		file.ProcessStatus = model.FileProcessCompleted.String()
		outcome.conflicts++

	case model.DecisionException:
		names := make([]string, 0, len(result.Candidates))
		for _, c := range result.Candidates {
			names = append(names, c.FileName)
		}
		meta := map[string]any{"source": "matching-pipeline"}
		if _, err := s.exceptions.Create(ctx, proc.ID, file.FileName, names, result.TopScore, meta); err != nil {
			return err
		}
		file.ProcessStatus = model.FileProcessCompleted.String()
	}

	return nil
}

// finishRun lands the process in its terminal-for-this-run status, stamps
// completion bookkeeping and reconciles file statuses.
func (s *Service) finishRun(ctx context.Context, proc *model.DeduplicationProcess, next model.ProcessStatus, outcome pipelineOutcome) (*model.DeduplicationProcess, error) {
	now := time.Now().UTC()
	proc.Status = next.String()
	proc.CurrentStage = next.String()
	proc.ProcessedFiles = outcome.processed
	proc.CompletionNotes = fmt.Sprintf("Processed %d files", outcome.processed)
	if outcome.failed > 0 {
		proc.CompletionNotes += fmt.Sprintf(" (%d failed)", outcome.failed)
	}
	if next == model.ProcessCompleted {
		proc.ProcessEndDate = &now
		proc.CompletedAt = &now
	}
	if err := s.save(ctx, proc); err != nil {
		return nil, err
	}
	if err := s.recon.SyncFileStatuses(ctx, proc.ID); err != nil {
		s.log.Warn("post-run sync failed for %s: %v", proc.ID, err)
	}
	return proc, nil
}
