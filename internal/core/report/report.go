// Package report aggregates one process's files and records into a
// review-ready summary.
package report

import (
	"context"

	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/conflicts"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/duplicates"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/exceptions"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/grouping"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/model"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/process"
)

type Service struct {
	processes  *process.Service
	conflicts  *conflicts.Service
	exceptions *exceptions.Service
	duplicates *duplicates.Service
}

func NewService(p *process.Service, c *conflicts.Service, e *exceptions.Service, d *duplicates.Service) *Service {
	return &Service{processes: p, conflicts: c, exceptions: e, duplicates: d}
}

// Build assembles the aggregate view of one process.
func (s *Service) Build(ctx context.Context, processID string) (*model.ProcessReport, error) {
	proc, err := s.processes.Get(ctx, processID)
	if err != nil {
		return nil, err
	}

	files, err := s.processes.Files(ctx, proc.ID)
	if err != nil {
		return nil, err
	}
	byStatus := map[string]int{}
	for _, f := range files {
		byStatus[f.CurrentStatus().String()]++
	}

	report := &model.ProcessReport{
		ProcessID:      proc.ID,
		Status:         proc.CurrentStatus().String(),
		FileCount:      proc.FileCount,
		ProcessedFiles: proc.ProcessedFiles,
		FilesByStatus:  byStatus,
	}

	dups, err := s.duplicates.ListByProcess(ctx, proc.ID)
	if err != nil {
		return nil, err
	}
	report.DuplicateRecords = len(dups)
	for _, d := range dups {
		if d.CurrentStatus() == model.DuplicateConfirmed {
			report.ConfirmedDuplicates++
		}
	}

	confs, err := s.conflicts.ListByProcess(ctx, proc.ID)
	if err != nil {
		return nil, err
	}
	for _, c := range confs {
		if c.CurrentStatus() == model.ConflictUnresolved {
			report.OpenConflicts++
		}
	}

	excs, err := s.exceptions.ListByProcess(ctx, proc.ID)
	if err != nil {
		return nil, err
	}
	for _, e := range excs {
		if e.CurrentStatus() == model.ExceptionPending {
			report.PendingExceptions++
		}
	}

	return report, nil
}

// DuplicateGroups clusters the process's duplicate findings into identity
// groups.
func (s *Service) DuplicateGroups(ctx context.Context, processID string) ([]grouping.Group, error) {
	dups, err := s.duplicates.ListByProcess(ctx, processID)
	if err != nil {
		return nil, err
	}
	return grouping.Groups(dups), nil
}
