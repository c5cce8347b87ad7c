// Package process drives the deduplication-process lifecycle: creation,
// file ingestion, the matching pipeline, and the validated status
// transitions around it.
package process

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/common"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/conflicts"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/dedupe"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/duplicates"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/exceptions"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/ident"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/lifecycle"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/model"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/recon"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/driver"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/facematch"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/logging"
)

type Service struct {
	store      driver.DocumentStore
	matcher    facematch.Client
	dedupe     *dedupe.Deduplicator
	recon      *recon.Service
	conflicts  *conflicts.Service
	exceptions *exceptions.Service
	duplicates *duplicates.Service
	log        *logging.Logger
}

func NewService(
	store driver.DocumentStore,
	matcher facematch.Client,
	deduplicator *dedupe.Deduplicator,
	reconSvc *recon.Service,
	conflictSvc *conflicts.Service,
	exceptionSvc *exceptions.Service,
	duplicateSvc *duplicates.Service,
	log *logging.Logger,
) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{
		store:      store,
		matcher:    matcher,
		dedupe:     deduplicator,
		recon:      reconSvc,
		conflicts:  conflictSvc,
		exceptions: exceptionSvc,
		duplicates: duplicateSvc,
		log:        log.Named("process"),
	}
}

// FileUpload is one inbound file reference. Base64 is a reference to the
// encoded payload; raw upload I/O happens upstream of this service.
type FileUpload struct {
	FileName string `json:"file_name"`
	Base64   string `json:"base64"`
}

// Create starts a new deduplication run in ReadyToStart.
func (s *Service) Create(ctx context.Context, name, username string) (*model.DeduplicationProcess, error) {
	if name == "" {
		return nil, model.NewValidation("name", "must not be empty")
	}

	proc := &model.DeduplicationProcess{
		ID:           ident.Normalize(uuid.NewString(), ident.KindProcess),
		Name:         name,
		Username:     username,
		CreatedBy:    username,
		Status:       model.ProcessReadyToStart.String(),
		CurrentStage: model.ProcessReadyToStart.String(),
		CreatedAt:    time.Now().UTC(),
		FileIds:      []string{},
	}
	if err := s.save(ctx, proc); err != nil {
		return nil, err
	}
	s.log.Info("created process %s (%s)", proc.ID, name)
	return proc, nil
}

// Get loads a process, trying both ID forms.
func (s *Service) Get(ctx context.Context, processID string) (*model.DeduplicationProcess, error) {
	session := s.store.OpenSession(ident.Collection(ident.KindProcess))
	defer session.Close(ctx)

	for _, candidate := range ident.Variations(processID, ident.KindProcess) {
		doc, err := session.Load(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("failed to load process %s: %w", candidate, err)
		}
		if doc != nil {
			return common.DecodeDocument[model.DeduplicationProcess](doc)
		}
	}
	return nil, model.NewNotFound("process", processID)
}

func (s *Service) List(ctx context.Context) ([]*model.DeduplicationProcess, error) {
	session := s.store.OpenSession(ident.Collection(ident.KindProcess))
	defer session.Close(ctx)

	docs, err := session.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	result := make([]*model.DeduplicationProcess, 0, len(docs))
	for _, doc := range docs {
		proc, err := common.DecodeDocument[model.DeduplicationProcess](doc)
		if err != nil {
			s.log.Warn("skipping undecodable process: %v", err)
			continue
		}
		result = append(result, proc)
	}
	return result, nil
}

// Files loads every file record the process references.
func (s *Service) Files(ctx context.Context, processID string) ([]*model.FileRecord, error) {
	proc, err := s.Get(ctx, processID)
	if err != nil {
		return nil, err
	}

	session := s.store.OpenSession(ident.Collection(ident.KindFile))
	defer session.Close(ctx)

	docs, err := session.LoadMany(ctx, proc.FileIds)
	if err != nil {
		return nil, fmt.Errorf("failed to load files for %s: %w", proc.ID, err)
	}

	result := make([]*model.FileRecord, 0, len(docs))
	for _, fid := range proc.FileIds {
		doc, ok := docs[fid]
		if !ok {
			continue
		}
		file, err := common.DecodeDocument[model.FileRecord](doc)
		if err != nil {
			s.log.Warn("skipping undecodable file %s: %v", fid, err)
			continue
		}
		result = append(result, file)
	}
	return result, nil
}

// AttachFiles registers uploaded files with the process. Refused once the
// process has reached a terminal state.
func (s *Service) AttachFiles(ctx context.Context, processID string, uploads []FileUpload) ([]*model.FileRecord, error) {
	if len(uploads) == 0 {
		return nil, model.NewValidation("files", "at least one file is required")
	}

	proc, err := s.Get(ctx, processID)
	if err != nil {
		return nil, err
	}
	switch proc.CurrentStatus() {
	case model.ProcessError, model.ProcessCleaned, model.ProcessCleaning:
		return nil, &lifecycle.TransitionError{Current: proc.CurrentStatus(), Next: proc.CurrentStatus()}
	}

	fileSession := s.store.OpenSession(ident.Collection(ident.KindFile))
	defer fileSession.Close(ctx)

	now := time.Now().UTC()
	records := make([]*model.FileRecord, 0, len(uploads))
	for _, up := range uploads {
		if up.FileName == "" {
			return nil, model.NewValidation("file_name", "must not be empty")
		}
		file := &model.FileRecord{
			ID:            ident.Normalize(uuid.NewString(), ident.KindFile),
			FileName:      up.FileName,
			Base64:        up.Base64,
			Status:        model.FileUploaded.String(),
			ProcessStatus: model.FileProcessPending.String(),
			ProcessID:     proc.ID,
			CreatedAt:     now,
		}
		data, err := common.EncodeDocument(file)
		if err != nil {
			return nil, err
		}
		fileSession.Store(file.ID, data)
		records = append(records, file)
		proc.FileIds = append(proc.FileIds, file.ID)
	}
	if err := fileSession.SaveChanges(ctx); err != nil {
		return nil, fmt.Errorf("failed to save files: %w", err)
	}

	proc.FileCount = len(proc.FileIds)
	if err := s.save(ctx, proc); err != nil {
		return nil, err
	}
	s.log.Info("attached %d files to process %s", len(records), proc.ID)
	return records, nil
}

// Start transitions the process into InProcessing and runs the matching
// pipeline over its pending files. Depending on the outcomes the process
// lands in Completed, ConflictDetected or Error, and file statuses are
// reconciled afterwards.
func (s *Service) Start(ctx context.Context, processID string) (*model.DeduplicationProcess, error) {
	proc, err := s.Get(ctx, processID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.ValidateTransition(proc.CurrentStatus(), model.ProcessInProcessing); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	proc.Status = model.ProcessInProcessing.String()
	proc.CurrentStage = model.ProcessInProcessing.String()
	if proc.ProcessStartDate == nil {
		proc.ProcessStartDate = &now
	}
	if err := s.save(ctx, proc); err != nil {
		return nil, err
	}

	outcome, err := s.runPipeline(ctx, proc)
	if err != nil {
		// Pipeline-level failure (not per-file): park the process in Error.
		s.log.Error("pipeline failed for %s: %v", proc.ID, err)
		return s.finishRun(ctx, proc, model.ProcessError, outcome)
	}

	next := model.ProcessCompleted
	switch {
	case outcome.conflicts > 0:
		next = model.ProcessConflictDetected
	case outcome.processed == 0 && outcome.failed > 0:
		next = model.ProcessError
	}
	return s.finishRun(ctx, proc, next, outcome)
}

// Pause suspends an in-flight run.
func (s *Service) Pause(ctx context.Context, processID string) (*model.DeduplicationProcess, error) {
	return s.transition(ctx, processID, model.ProcessPaused)
}

// Resume puts a paused or conflict-blocked run back into processing
// without re-running the pipeline; files keep their current state.
func (s *Service) Resume(ctx context.Context, processID string) (*model.DeduplicationProcess, error) {
	return s.transition(ctx, processID, model.ProcessInProcessing)
}

// Complete finalizes an in-processing run.
func (s *Service) Complete(ctx context.Context, processID string) (*model.DeduplicationProcess, error) {
	proc, err := s.Get(ctx, processID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.ValidateTransition(proc.CurrentStatus(), model.ProcessCompleted); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	proc.Status = model.ProcessCompleted.String()
	proc.CurrentStage = model.ProcessCompleted.String()
	proc.ProcessEndDate = &now
	proc.CompletedAt = &now
	if err := s.save(ctx, proc); err != nil {
		return nil, err
	}
	if err := s.recon.SyncFileStatuses(ctx, proc.ID); err != nil {
		s.log.Warn("post-completion sync failed for %s: %v", proc.ID, err)
	}
	return proc, nil
}

// MarkError force-fails a run from any non-terminal state.
func (s *Service) MarkError(ctx context.Context, processID string) (*model.DeduplicationProcess, error) {
	return s.transition(ctx, processID, model.ProcessError)
}

// StartCleanup begins retiring a completed run's files.
func (s *Service) StartCleanup(ctx context.Context, processID string) (*model.DeduplicationProcess, error) {
	return s.transition(ctx, processID, model.ProcessCleaning)
}

// FinishCleanup marks the run cleaned and stamps who did it. The process
// record itself is never deleted.
func (s *Service) FinishCleanup(ctx context.Context, processID, username string) (*model.DeduplicationProcess, error) {
	proc, err := s.Get(ctx, processID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.ValidateTransition(proc.CurrentStatus(), model.ProcessCleaned); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	proc.Status = model.ProcessCleaned.String()
	proc.CurrentStage = model.ProcessCleaned.String()
	proc.CleanupDate = &now
	if username == "" {
		username = "system"
	}
	proc.CleanupUsername = username
	if err := s.save(ctx, proc); err != nil {
		return nil, err
	}
	if err := s.recon.SyncFileStatuses(ctx, proc.ID); err != nil {
		s.log.Warn("post-cleanup sync failed for %s: %v", proc.ID, err)
	}
	return proc, nil
}

// transition applies one validated status change and reconciles files.
func (s *Service) transition(ctx context.Context, processID string, next model.ProcessStatus) (*model.DeduplicationProcess, error) {
	proc, err := s.Get(ctx, processID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.ValidateTransition(proc.CurrentStatus(), next); err != nil {
		return nil, err
	}

	proc.Status = next.String()
	proc.CurrentStage = next.String()
	if err := s.save(ctx, proc); err != nil {
		return nil, err
	}
	if err := s.recon.SyncFileStatuses(ctx, proc.ID); err != nil {
		s.log.Warn("post-transition sync failed for %s: %v", proc.ID, err)
	}
	return proc, nil
}

func (s *Service) save(ctx context.Context, proc *model.DeduplicationProcess) error {
	session := s.store.OpenSession(ident.Collection(ident.KindProcess))
	defer session.Close(ctx)

	data, err := common.EncodeDocument(proc)
	if err != nil {
		return err
	}
	session.Store(proc.ID, data)
	if err := session.SaveChanges(ctx); err != nil {
		return fmt.Errorf("failed to save process %s: %w", proc.ID, err)
	}
	return nil
}
