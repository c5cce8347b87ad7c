// Package duplicates manages duplicate-match findings and their
// confirm/reject review workflow.
package duplicates

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/common"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/ident"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/model"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/driver"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/logging"
)

type Service struct {
	store driver.DocumentStore
	log   *logging.Logger
}

func NewService(store driver.DocumentStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{store: store, log: log.Named("duplicates")}
}

// Create records a detected duplicate finding for one original file.
func (s *Service) Create(ctx context.Context, processID, originalFileID, originalFileName string, matches []model.DuplicateMatch) (*model.DuplicatedRecord, error) {
	if processID == "" {
		return nil, model.NewValidation("process_id", "must not be empty")
	}
	if len(matches) == 0 {
		return nil, model.NewValidation("duplicates", "at least one match is required")
	}

	record := &model.DuplicatedRecord{
		ID:               ident.Normalize(uuid.NewString(), ident.KindDuplicate),
		ProcessID:        ident.Normalize(processID, ident.KindProcess),
		OriginalFileID:   ident.Normalize(originalFileID, ident.KindFile),
		OriginalFileName: originalFileName,
		Duplicates:       matches,
		Status:           model.DuplicateDetected.String(),
		DetectedAt:       time.Now().UTC(),
	}

	session := s.store.OpenSession(ident.Collection(ident.KindDuplicate))
	defer session.Close(ctx)

	data, err := common.EncodeDocument(record)
	if err != nil {
		return nil, err
	}
	session.Store(record.ID, data)
	if err := session.SaveChanges(ctx); err != nil {
		return nil, fmt.Errorf("failed to save duplicate record: %w", err)
	}
	return record, nil
}

// Get loads one record, falling back to the raw ID when the normalized
// lookup misses.
func (s *Service) Get(ctx context.Context, recordID string) (*model.DuplicatedRecord, error) {
	session := s.store.OpenSession(ident.Collection(ident.KindDuplicate))
	defer session.Close(ctx)

	record, _, err := s.loadWithFallback(ctx, session, recordID)
	return record, err
}

func (s *Service) ListByProcess(ctx context.Context, processID string) ([]*model.DuplicatedRecord, error) {
	wanted := map[string]bool{}
	for _, v := range ident.Variations(processID, ident.KindProcess) {
		wanted[v] = true
	}
	return s.list(ctx, func(r *model.DuplicatedRecord) bool { return wanted[r.ProcessID] })
}

func (s *Service) ListByStatus(ctx context.Context, status string) ([]*model.DuplicatedRecord, error) {
	want := model.ParseDuplicateRecordStatus(status)
	return s.list(ctx, func(r *model.DuplicatedRecord) bool { return r.CurrentStatus() == want })
}

// Confirm marks a finding as a verified duplicate.
func (s *Service) Confirm(ctx context.Context, recordID, confirmedBy, notes string) (*model.DuplicatedRecord, error) {
	return s.review(ctx, recordID, model.DuplicateConfirmed, confirmedBy, notes)
}

// Reject dismisses a finding as a false positive.
func (s *Service) Reject(ctx context.Context, recordID, rejectedBy, notes string) (*model.DuplicatedRecord, error) {
	return s.review(ctx, recordID, model.DuplicateRejected, rejectedBy, notes)
}

func (s *Service) review(ctx context.Context, recordID string, status model.DuplicateRecordStatus, actor, notes string) (*model.DuplicatedRecord, error) {
	session := s.store.OpenSession(ident.Collection(ident.KindDuplicate))
	defer session.Close(ctx)

	record, foundID, err := s.loadWithFallback(ctx, session, recordID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record.Status = status.String()
	record.ConfirmedBy = actor
	record.ConfirmedAt = &now
	record.Notes = notes

	data, err := common.EncodeDocument(record)
	if err != nil {
		return nil, err
	}
	session.Store(foundID, data)
	if err := session.SaveChanges(ctx); err != nil {
		return nil, fmt.Errorf("failed to save duplicate record %s: %w", foundID, err)
	}
	return record, nil
}

// loadWithFallback tries the normalized ID first, then the raw input.
func (s *Service) loadWithFallback(ctx context.Context, session driver.Session, recordID string) (*model.DuplicatedRecord, string, error) {
	for _, candidate := range ident.Variations(recordID, ident.KindDuplicate) {
		doc, err := session.Load(ctx, candidate)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load duplicate record %s: %w", candidate, err)
		}
		if doc == nil {
			continue
		}
		record, err := common.DecodeDocument[model.DuplicatedRecord](doc)
		if err != nil {
			return nil, "", err
		}
		return record, candidate, nil
	}
	return nil, "", model.NewNotFound("duplicate record", recordID)
}

func (s *Service) list(ctx context.Context, keep func(*model.DuplicatedRecord) bool) ([]*model.DuplicatedRecord, error) {
	session := s.store.OpenSession(ident.Collection(ident.KindDuplicate))
	defer session.Close(ctx)

	docs, err := session.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list duplicate records: %w", err)
	}

	var result []*model.DuplicatedRecord
	for _, doc := range docs {
		record, err := common.DecodeDocument[model.DuplicatedRecord](doc)
		if err != nil {
			s.log.Warn("skipping undecodable duplicate record: %v", err)
			continue
		}
		if keep(record) {
			result = append(result, record)
		}
	}
	return result, nil
}
