// Package exceptions manages unresolved ambiguous-comparison records and
// their review workflow.
package exceptions

import (
	"context"
	"fmt"
	"sort"
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
	return &Service{store: store, log: log.Named("exceptions")}
}

// Create records a new pending exception. The process ID is normalized on
// the way in so later lookups hit the canonical form.
func (s *Service) Create(ctx context.Context, processID, fileName string, candidates []string, score float64, metadata map[string]any) (*model.DeduplicationException, error) {
	if processID == "" {
		return nil, model.NewValidation("process_id", "must not be empty")
	}
	if fileName == "" {
		return nil, model.NewValidation("file_name", "must not be empty")
	}

	now := time.Now().UTC()
	exc := &model.DeduplicationException{
		ID:                 ident.Normalize(uuid.NewString(), ident.KindException),
		ProcessID:          ident.Normalize(processID, ident.KindProcess),
		FileName:           fileName,
		CandidateFileNames: candidates,
		ComparisonScore:    score,
		Metadata:           metadata,
		Status:             model.ExceptionPending.String(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	session := s.store.OpenSession(ident.Collection(ident.KindException))
	defer session.Close(ctx)

	data, err := common.EncodeDocument(exc)
	if err != nil {
		return nil, err
	}
	session.Store(exc.ID, data)
	if err := session.SaveChanges(ctx); err != nil {
		return nil, fmt.Errorf("failed to save exception: %w", err)
	}
	return exc, nil
}

// ListByProcess returns the process's exceptions, matching either ID form.
func (s *Service) ListByProcess(ctx context.Context, processID string) ([]*model.DeduplicationException, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	wanted := map[string]bool{}
	for _, v := range ident.Variations(processID, ident.KindProcess) {
		wanted[v] = true
	}

	var result []*model.DeduplicationException
	for _, exc := range all {
		if wanted[exc.ProcessID] {
			result = append(result, exc)
		}
	}
	return result, nil
}

func (s *Service) ListAll(ctx context.Context) ([]*model.DeduplicationException, error) {
	session := s.store.OpenSession(ident.Collection(ident.KindException))
	defer session.Close(ctx)

	docs, err := session.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list exceptions: %w", err)
	}

	result := make([]*model.DeduplicationException, 0, len(docs))
	for _, doc := range docs {
		exc, err := common.DecodeDocument[model.DeduplicationException](doc)
		if err != nil {
			s.log.Warn("skipping undecodable exception: %v", err)
			continue
		}
		result = append(result, exc)
	}
	return result, nil
}

// UpdateStatus moves an exception to a new status, trying both ID forms
// before giving up. Extra metadata merges key-by-key; existing keys not
// present in extra survive.
func (s *Service) UpdateStatus(ctx context.Context, exceptionID, status string, extra map[string]any) (*model.DeduplicationException, error) {
	session := s.store.OpenSession(ident.Collection(ident.KindException))
	defer session.Close(ctx)

	var doc []byte
	var foundID string
	for _, candidate := range ident.Variations(exceptionID, ident.KindException) {
		d, err := session.Load(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("failed to load exception %s: %w", candidate, err)
		}
		if d != nil {
			doc = d
			foundID = candidate
			break
		}
	}
	if doc == nil {
		return nil, model.NewNotFound("exception", exceptionID)
	}

	exc, err := common.DecodeDocument[model.DeduplicationException](doc)
	if err != nil {
		return nil, err
	}

	exc.Status = model.ParseExceptionStatus(status).String()
	exc.MergeMetadata(extra)
	exc.UpdatedAt = time.Now().UTC()

	data, err := common.EncodeDocument(exc)
	if err != nil {
		return nil, err
	}
	session.Store(foundID, data)
	if err := session.SaveChanges(ctx); err != nil {
		return nil, fmt.Errorf("failed to save exception %s: %w", foundID, err)
	}
	return exc, nil
}

// AboveScore returns exceptions with ComparisonScore >= minScore, highest
// first.
func (s *Service) AboveScore(ctx context.Context, minScore float64) ([]*model.DeduplicationException, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var result []*model.DeduplicationException
	for _, exc := range all {
		if exc.ComparisonScore >= minScore {
			result = append(result, exc)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ComparisonScore > result[j].ComparisonScore
	})
	return result, nil
}

// Stats buckets all exceptions by status and by confidence band.
func (s *Service) Stats(ctx context.Context) (*model.ExceptionStats, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.ExceptionStats{
		Total:    len(all),
		ByStatus: map[string]int{},
	}
	for _, exc := range all {
		stats.ByStatus[exc.CurrentStatus().String()]++
		switch {
		case exc.ComparisonScore >= 0.9:
			stats.HighConfidence++
		case exc.ComparisonScore >= 0.8:
			stats.MediumConfidence++
		default:
			stats.LowConfidence++
		}
	}
	return stats, nil
}
