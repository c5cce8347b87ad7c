package core

import (
	"context"

	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/conflicts"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/dedupe"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/duplicates"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/exceptions"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/ident"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/process"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/recon"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/report"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/driver"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/facematch"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/logging"
)

// Backend wires the deduplication services over one document store and one
// face-match collaborator.
type Backend struct {
	Store      driver.DocumentStore
	Matcher    facematch.Client
	Recon      *recon.Service
	Conflicts  *conflicts.Service
	Exceptions *exceptions.Service
	Duplicates *duplicates.Service
	Processes  *process.Service
	Reports    *report.Service
}

func NewBackend(store driver.DocumentStore, matcher facematch.Client, thresholds dedupe.Thresholds, log *logging.Logger) *Backend {
	if log == nil {
		log = logging.Nop()
	}
	ident.SetLogger(log)

	reconSvc := recon.NewService(store, log)
	conflictSvc := conflicts.NewService(store, log)
	exceptionSvc := exceptions.NewService(store, log)
	duplicateSvc := duplicates.NewService(store, log)
	processSvc := process.NewService(
		store,
		matcher,
		dedupe.NewDeduplicator(thresholds),
		reconSvc,
		conflictSvc,
		exceptionSvc,
		duplicateSvc,
		log,
	)

	return &Backend{
		Store:      store,
		Matcher:    matcher,
		Recon:      reconSvc,
		Conflicts:  conflictSvc,
		Exceptions: exceptionSvc,
		Duplicates: duplicateSvc,
		Processes:  processSvc,
		Reports:    report.NewService(processSvc, conflictSvc, exceptionSvc, duplicateSvc),
	}
}

// EnsureIndexes prepares the backing store's per-collection indexes.
func (b *Backend) EnsureIndexes(ctx context.Context) error {
	return b.Store.EnsureIndexes(ctx)
}
