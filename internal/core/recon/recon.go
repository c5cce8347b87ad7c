// Package recon is the status-synchronization and repair engine. It derives
// file-level status from process-level status and heals the data gaps that
// partial or interrupted writes leave behind. Every pass is idempotent and
// safe to re-run as background maintenance.
package recon

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/common"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/ident"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/model"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/driver"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/logging"
)

// fileBatchSize bounds memory while draining a process's file list.
const fileBatchSize = 100

// placeholderBackdate is how far a missing ProcessStartDate is backdated.
const placeholderBackdate = 5 * time.Minute

var processedNotesRe = regexp.MustCompile(`Processed (\d+) files`)

type Service struct {
	store driver.DocumentStore
	log   *logging.Logger
}

func NewService(store driver.DocumentStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{store: store, log: log.Named("recon")}
}

// SyncFileStatuses pushes the process's canonical status down onto every
// file it references. A file is only written when its derived target
// differs from its current value, so re-running the pass is free. All file
// updates commit in one batched save.
//
// An absent process is a logged no-op, not an error: callers invoke
// synchronization speculatively after pause/resume/cleanup/error paths.
func (s *Service) SyncFileStatuses(ctx context.Context, processID string) error {
	id := ident.Normalize(processID, ident.KindProcess)

	proc, err := s.loadProcess(ctx, id)
	if err != nil {
		return err
	}
	if proc == nil {
		s.log.Info("sync skipped: process %s not found", id)
		return nil
	}

	status := proc.CurrentStatus()

	session := s.store.OpenSession(ident.Collection(ident.KindFile))
	defer session.Close(ctx)

	updated := 0
	for start := 0; start < len(proc.FileIds); start += fileBatchSize {
		end := start + fileBatchSize
		if end > len(proc.FileIds) {
			end = len(proc.FileIds)
		}
		batch := make([]string, 0, end-start)
		for _, fid := range proc.FileIds[start:end] {
			batch = append(batch, ident.Normalize(fid, ident.KindFile))
		}

		docs, err := session.LoadMany(ctx, batch)
		if err != nil {
			return fmt.Errorf("failed to load file batch for %s: %w", id, err)
		}

		for fid, doc := range docs {
			file, err := common.DecodeDocument[model.FileRecord](doc)
			if err != nil {
				s.log.Warn("skipping undecodable file %s: %v", fid, err)
				continue
			}
			if applyStatusRule(status, file) {
				data, err := common.EncodeDocument(file)
				if err != nil {
					return err
				}
				session.Store(fid, data)
				updated++
			}
		}
	}

	if err := session.SaveChanges(ctx); err != nil {
		return fmt.Errorf("failed to commit file updates for %s: %w", id, err)
	}
	if updated > 0 {
		s.log.Info("synchronized %d files for process %s (status=%s)", updated, id, status)
	}
	return nil
}

// applyStatusRule maps process status to the file update it implies.
// Returns true when the file changed. Paused, ReadyToStart,
// ConflictDetected and Cleaning have no file-level consequence.
func applyStatusRule(status model.ProcessStatus, file *model.FileRecord) bool {
	switch status {
	case model.ProcessCompleted:
		if file.CurrentStatus() == model.FileUploaded || file.CurrentProcessStatus() == model.FileProcessProcessing {
			file.Status = model.FileInserted.String()
			file.ProcessStatus = model.FileProcessCompleted.String()
			return true
		}

	case model.ProcessCleaned:
		if file.CurrentStatus() != model.FileDeleted {
			file.Status = model.FileDeleted.String()
			file.ProcessStatus = model.FileProcessCompleted.String()
			return true
		}

	case model.ProcessError:
		if file.CurrentProcessStatus() != model.FileProcessFailed {
			file.ProcessStatus = model.FileProcessFailed.String()
			return true
		}

	case model.ProcessInProcessing:
		if file.CurrentProcessStatus() != model.FileProcessProcessing {
			file.ProcessStatus = model.FileProcessProcessing.String()
			return true
		}
	}
	return false
}

// FixProcessData is the idempotent repair entry point. It patches missing
// or drifted process fields, then unconditionally runs file-status
// synchronization and the per-file repair pass. It runs for every process
// status, not just Completed, so convergence does not depend on the entry
// state. Failures are logged and surface only as a false return; the pass
// is meant to be safely retriable maintenance.
func (s *Service) FixProcessData(ctx context.Context, processID string) bool {
	id := ident.Normalize(processID, ident.KindProcess)

	proc, err := s.loadProcess(ctx, id)
	if err != nil {
		s.log.Error("fix pass failed to load process %s: %v", id, err)
		return false
	}
	if proc == nil {
		s.log.Info("fix pass skipped: process %s not found", id)
		return true
	}

	if changed := repairProcessFields(proc, time.Now().UTC()); changed {
		if err := s.saveProcess(ctx, proc); err != nil {
			s.log.Error("fix pass failed to save process %s: %v", id, err)
			return false
		}
		s.log.Info("repaired process fields on %s", id)
	}

	if err := s.SyncFileStatuses(ctx, id); err != nil {
		s.log.Error("fix pass failed to sync files for %s: %v", id, err)
		return false
	}
	if err := s.fixFileData(ctx, proc); err != nil {
		s.log.Error("fix pass failed to repair files for %s: %v", id, err)
		return false
	}
	return true
}

// repairProcessFields applies the field-level repair rules in place and
// reports whether anything changed.
func repairProcessFields(proc *model.DeduplicationProcess, now time.Time) bool {
	changed := false
	status := proc.CurrentStatus()

	if proc.CompletedAt == nil && (status == model.ProcessCompleted || proc.ProcessEndDate != nil) {
		completed := now
		if proc.ProcessEndDate != nil {
			completed = *proc.ProcessEndDate
		}
		proc.CompletedAt = &completed
		changed = true
	}

	if proc.FileCount == 0 && len(proc.FileIds) > 0 {
		proc.FileCount = len(proc.FileIds)
		changed = true
	}

	if proc.CreatedBy == "" && proc.Username != "" {
		proc.CreatedBy = proc.Username
		changed = true
	}

	if proc.CleanupUsername == "" && (status == model.ProcessCleaned || proc.CleanupDate != nil) {
		if proc.Username != "" {
			proc.CleanupUsername = proc.Username
		} else {
			proc.CleanupUsername = "system"
		}
		changed = true
	}

	if proc.CurrentStage == "" {
		proc.CurrentStage = proc.Status
		changed = true
	}

	if proc.ProcessedFiles == 0 && len(proc.FileIds) > 0 {
		if n, ok := parseProcessedCount(proc.CompletionNotes); ok {
			proc.ProcessedFiles = n
			changed = true
		} else if status == model.ProcessCompleted {
			proc.ProcessedFiles = len(proc.FileIds)
			changed = true
		}
	}

	if status == model.ProcessCompleted && proc.CurrentStage != model.ProcessCompleted.String() {
		proc.CurrentStage = model.ProcessCompleted.String()
		changed = true
	}

	return changed
}

func parseProcessedCount(notes string) (int, bool) {
	m := processedNotesRe.FindStringSubmatch(notes)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// fixFileData repairs structurally inconsistent file records. The rules are
// evaluated independently, not as an if/else chain: a file can need several
// repairs at once. Changed files commit in one batch.
//
// Synthesizing a placeholder FaceID and backdating the start time papers
// over upstream pipeline failures; candidates for a NeedsReprocessing
// marker instead, but the self-healing behavior is load-bearing for
// downstream consumers today.
func (s *Service) fixFileData(ctx context.Context, proc *model.DeduplicationProcess) error {
	session := s.store.OpenSession(ident.Collection(ident.KindFile))
	defer session.Close(ctx)

	repaired := 0
	for start := 0; start < len(proc.FileIds); start += fileBatchSize {
		end := start + fileBatchSize
		if end > len(proc.FileIds) {
			end = len(proc.FileIds)
		}
		batch := make([]string, 0, end-start)
		for _, fid := range proc.FileIds[start:end] {
			batch = append(batch, ident.Normalize(fid, ident.KindFile))
		}

		docs, err := session.LoadMany(ctx, batch)
		if err != nil {
			return fmt.Errorf("failed to load file batch: %w", err)
		}

		for fid, doc := range docs {
			file, err := common.DecodeDocument[model.FileRecord](doc)
			if err != nil {
				s.log.Warn("skipping undecodable file %s: %v", fid, err)
				continue
			}
			if repairFileFields(file, time.Now().UTC()) {
				data, err := common.EncodeDocument(file)
				if err != nil {
					return err
				}
				session.Store(fid, data)
				repaired++
			}
		}
	}

	if err := session.SaveChanges(ctx); err != nil {
		return fmt.Errorf("failed to commit file repairs: %w", err)
	}
	if repaired > 0 {
		s.log.Info("repaired %d files for process %s", repaired, proc.ID)
	}
	return nil
}

func repairFileFields(file *model.FileRecord, now time.Time) bool {
	changed := false
	inserted := file.CurrentStatus() == model.FileInserted
	completed := file.CurrentProcessStatus() == model.FileProcessCompleted

	if file.FaceID == "" && (inserted || completed) {
		file.FaceID = "recovered-" + uuid.NewString()
		changed = true
	}

	if (file.ProcessStartDate == nil || file.ProcessStartDate.IsZero()) && (inserted || completed) {
		backdated := now.Add(-placeholderBackdate)
		file.ProcessStartDate = &backdated
		changed = true
	}

	if inserted && !completed {
		file.ProcessStatus = model.FileProcessCompleted.String()
		changed = true
	}

	if (inserted || file.CurrentProcessStatus() == model.FileProcessCompleted) && !file.Deduplicated {
		file.Deduplicated = true
		changed = true
	}

	return changed
}

func (s *Service) loadProcess(ctx context.Context, id string) (*model.DeduplicationProcess, error) {
	session := s.store.OpenSession(ident.Collection(ident.KindProcess))
	defer session.Close(ctx)

	doc, err := session.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load process %s: %w", id, err)
	}
	if doc == nil {
		return nil, nil
	}
	return common.DecodeDocument[model.DeduplicationProcess](doc)
}

func (s *Service) saveProcess(ctx context.Context, proc *model.DeduplicationProcess) error {
	session := s.store.OpenSession(ident.Collection(ident.KindProcess))
	defer session.Close(ctx)

	data, err := common.EncodeDocument(proc)
	if err != nil {
		return err
	}
	session.Store(proc.ID, data)
	return session.SaveChanges(ctx)
}
