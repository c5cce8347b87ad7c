// Package conflicts manages file-vs-file ambiguous-match records and their
// manual or threshold-driven resolution.
package conflicts

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

// DefaultAutoResolveThreshold is the confidence at or above which a
// conflict is considered safe to resolve without a human.
const DefaultAutoResolveThreshold = 0.95

type Service struct {
	store driver.DocumentStore
	log   *logging.Logger
}

func NewService(store driver.DocumentStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{store: store, log: log.Named("conflicts")}
}

// Create records a new unresolved conflict for a process.
func (s *Service) Create(ctx context.Context, processID, fileName, matchedFileName string, confidence float64) (*model.Conflict, error) {
	if processID == "" {
		return nil, model.NewValidation("process_id", "must not be empty")
	}
	if fileName == "" || matchedFileName == "" {
		return nil, model.NewValidation("file_name", "both file names are required")
	}

	conflict := &model.Conflict{
		ID:              ident.Normalize(uuid.NewString(), ident.KindConflict),
		ProcessID:       ident.Normalize(processID, ident.KindProcess),
		FileName:        fileName,
		MatchedFileName: matchedFileName,
		Confidence:      confidence,
		Status:          model.ConflictUnresolved.String(),
		CreatedAt:       time.Now().UTC(),
	}

	session := s.store.OpenSession(ident.Collection(ident.KindConflict))
	defer session.Close(ctx)

	data, err := common.EncodeDocument(conflict)
	if err != nil {
		return nil, err
	}
	session.Store(conflict.ID, data)
	if err := session.SaveChanges(ctx); err != nil {
		return nil, fmt.Errorf("failed to save conflict: %w", err)
	}
	return conflict, nil
}

// ListByProcess returns every conflict belonging to the process, trying
// both ID forms.
func (s *Service) ListByProcess(ctx context.Context, processID string) ([]*model.Conflict, error) {
	session := s.store.OpenSession(ident.Collection(ident.KindConflict))
	defer session.Close(ctx)

	docs, err := session.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicts: %w", err)
	}

	wanted := map[string]bool{}
	for _, v := range ident.Variations(processID, ident.KindProcess) {
		wanted[v] = true
	}

	var result []*model.Conflict
	for _, doc := range docs {
		c, err := common.DecodeDocument[model.Conflict](doc)
		if err != nil {
			s.log.Warn("skipping undecodable conflict: %v", err)
			continue
		}
		if wanted[c.ProcessID] {
			result = append(result, c)
		}
	}
	return result, nil
}

// Resolve marks one conflict resolved. Lookup is by exact ID only; the
// handler layer owns the prefixed/unprefixed retry.
func (s *Service) Resolve(ctx context.Context, conflictID, resolution, resolvedBy string) (*model.Conflict, error) {
	if resolution == "" {
		return nil, model.NewValidation("resolution", "must not be empty")
	}

	session := s.store.OpenSession(ident.Collection(ident.KindConflict))
	defer session.Close(ctx)

	doc, err := session.Load(ctx, conflictID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conflict %s: %w", conflictID, err)
	}
	if doc == nil {
		return nil, model.NewNotFound("conflict", conflictID)
	}

	conflict, err := common.DecodeDocument[model.Conflict](doc)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	conflict.Status = model.ConflictResolved.String()
	conflict.Resolution = resolution
	conflict.ResolvedBy = resolvedBy
	conflict.ResolvedAt = &now

	data, err := common.EncodeDocument(conflict)
	if err != nil {
		return nil, err
	}
	session.Store(conflict.ID, data)
	if err := session.SaveChanges(ctx); err != nil {
		return nil, fmt.Errorf("failed to save conflict %s: %w", conflictID, err)
	}
	return conflict, nil
}

// AutoResolve resolves every unresolved conflict of the process whose
// confidence is at or above threshold. A single conflict failing to save
// must not block the rest, so failures are logged and counted as
// remaining. Threshold <= 0 means the default.
func (s *Service) AutoResolve(ctx context.Context, processID string, threshold float64) (*model.AutoResolveResult, error) {
	if threshold <= 0 {
		threshold = DefaultAutoResolveThreshold
	}

	all, err := s.ListByProcess(ctx, processID)
	if err != nil {
		return nil, err
	}

	result := &model.AutoResolveResult{}
	session := s.store.OpenSession(ident.Collection(ident.KindConflict))
	defer session.Close(ctx)

	for _, conflict := range all {
		if conflict.CurrentStatus() != model.ConflictUnresolved {
			continue
		}
		result.Total++

		if conflict.Confidence < threshold {
			result.RemainingConflicts++
			continue
		}

		now := time.Now().UTC()
		conflict.Status = model.ConflictResolved.String()
		conflict.Resolution = fmt.Sprintf("Auto-resolved: confidence %.2f meets threshold %.2f", conflict.Confidence, threshold)
		conflict.ResolvedBy = "System"
		conflict.ResolvedAt = &now

		data, err := common.EncodeDocument(conflict)
		if err != nil {
			s.log.Warn("auto-resolve skipped conflict %s: %v", conflict.ID, err)
			result.RemainingConflicts++
			continue
		}
		session.Store(conflict.ID, data)
		result.AutoResolvedCount++
	}

	if err := session.SaveChanges(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit auto-resolution: %w", err)
	}

	s.log.Info("auto-resolved %d/%d conflicts for process %s (threshold %.2f)",
		result.AutoResolvedCount, result.Total, processID, threshold)
	return result, nil
}
