package recon

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/common"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/model"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/driver"
)

func seedProcess(t *testing.T, store *driver.MemoryStore, proc *model.DeduplicationProcess) {
	t.Helper()
	ctx := context.Background()
	session := store.OpenSession("processes")
	data, err := common.EncodeDocument(proc)
	require.NoError(t, err)
	session.Store(proc.ID, data)
	require.NoError(t, session.SaveChanges(ctx))
	require.NoError(t, session.Close(ctx))
}

func seedFile(t *testing.T, store *driver.MemoryStore, file *model.FileRecord) {
	t.Helper()
	ctx := context.Background()
	session := store.OpenSession("Files")
	data, err := common.EncodeDocument(file)
	require.NoError(t, err)
	session.Store(file.ID, data)
	require.NoError(t, session.SaveChanges(ctx))
	require.NoError(t, session.Close(ctx))
}

func loadFile(t *testing.T, store *driver.MemoryStore, id string) *model.FileRecord {
	t.Helper()
	ctx := context.Background()
	session := store.OpenSession("Files")
	doc, err := session.Load(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, doc, "file %s should exist", id)
	file, err := common.DecodeDocument[model.FileRecord](doc)
	require.NoError(t, err)
	require.NoError(t, session.Close(ctx))
	return file
}

func loadProcess(t *testing.T, store *driver.MemoryStore, id string) *model.DeduplicationProcess {
	t.Helper()
	ctx := context.Background()
	session := store.OpenSession("processes")
	doc, err := session.Load(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, doc)
	proc, err := common.DecodeDocument[model.DeduplicationProcess](doc)
	require.NoError(t, err)
	require.NoError(t, session.Close(ctx))
	return proc
}

func TestSyncFileStatusesCompleted(t *testing.T) {
	store := driver.NewMemoryStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	seedProcess(t, store, &model.DeduplicationProcess{
		ID:      "processes/p1",
		Status:  string(model.ProcessCompleted),
		FileIds: []string{"f1", "f2", "f3"},
	})
	seedFile(t, store, &model.FileRecord{ID: "Files/f1", Status: "Uploaded", ProcessStatus: "Pending"})
	seedFile(t, store, &model.FileRecord{ID: "Files/f2", Status: "Inserted", ProcessStatus: "Processing"})
	seedFile(t, store, &model.FileRecord{ID: "Files/f3", Status: "Conflict", ProcessStatus: "Pending"})

	require.NoError(t, svc.SyncFileStatuses(ctx, "p1"))

	// Uploaded files and files stuck in Processing converge on
	// Inserted/Completed; Conflict stays untouched.
	f1 := loadFile(t, store, "Files/f1")
	assert.Equal(t, "Inserted", f1.Status)
	assert.Equal(t, "Completed", f1.ProcessStatus)

	f2 := loadFile(t, store, "Files/f2")
	assert.Equal(t, "Inserted", f2.Status)
	assert.Equal(t, "Completed", f2.ProcessStatus)

	f3 := loadFile(t, store, "Files/f3")
	assert.Equal(t, "Conflict", f3.Status)
	assert.Equal(t, "Pending", f3.ProcessStatus)
}

func TestSyncFileStatusesCleaned(t *testing.T) {
	store := driver.NewMemoryStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	seedProcess(t, store, &model.DeduplicationProcess{
		ID:      "processes/p1",
		Status:  string(model.ProcessCleaned),
		FileIds: []string{"f1", "f2"},
	})
	seedFile(t, store, &model.FileRecord{ID: "Files/f1", Status: "Inserted", ProcessStatus: "Completed"})
	seedFile(t, store, &model.FileRecord{ID: "Files/f2", Status: "Deleted", ProcessStatus: "Completed"})

	require.NoError(t, svc.SyncFileStatuses(ctx, "p1"))

	assert.Equal(t, "Deleted", loadFile(t, store, "Files/f1").Status)
	assert.Equal(t, "Deleted", loadFile(t, store, "Files/f2").Status)
}

func TestSyncFileStatusesErrorAndProcessing(t *testing.T) {
	store := driver.NewMemoryStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	seedProcess(t, store, &model.DeduplicationProcess{
		ID:      "processes/p1",
		Status:  string(model.ProcessError),
		FileIds: []string{"f1"},
	})
	seedFile(t, store, &model.FileRecord{ID: "Files/f1", Status: "Uploaded", ProcessStatus: "Pending"})

	require.NoError(t, svc.SyncFileStatuses(ctx, "p1"))
	f1 := loadFile(t, store, "Files/f1")
	assert.Equal(t, "Failed", f1.ProcessStatus)
	// File-level status is left alone on error.
	assert.Equal(t, "Uploaded", f1.Status)

	seedProcess(t, store, &model.DeduplicationProcess{
		ID:      "processes/p2",
		Status:  string(model.ProcessInProcessing),
		FileIds: []string{"f2"},
	})
	seedFile(t, store, &model.FileRecord{ID: "Files/f2", Status: "Uploaded", ProcessStatus: "Pending"})

	require.NoError(t, svc.SyncFileStatuses(ctx, "p2"))
	assert.Equal(t, "Processing", loadFile(t, store, "Files/f2").ProcessStatus)
}

func TestSyncFileStatusesNeutralStatusesAreNoOps(t *testing.T) {
	store := driver.NewMemoryStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	for _, status := range []model.ProcessStatus{
		model.ProcessReadyToStart, model.ProcessPaused,
		model.ProcessConflictDetected, model.ProcessCleaning,
	} {
		seedProcess(t, store, &model.DeduplicationProcess{
			ID:      "processes/p1",
			Status:  string(status),
			FileIds: []string{"f1"},
		})
		seedFile(t, store, &model.FileRecord{ID: "Files/f1", Status: "Uploaded", ProcessStatus: "Pending"})

		before := store.Writes()
		require.NoError(t, svc.SyncFileStatuses(ctx, "p1"))
		assert.Equal(t, before, store.Writes(), "status %s should not touch files", status)
	}
}

func TestSyncFileStatusesIdempotent(t *testing.T) {
	store := driver.NewMemoryStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	seedProcess(t, store, &model.DeduplicationProcess{
		ID:      "processes/p1",
		Status:  string(model.ProcessCompleted),
		FileIds: []string{"f1", "f2"},
	})
	seedFile(t, store, &model.FileRecord{ID: "Files/f1", Status: "Uploaded", ProcessStatus: "Pending"})
	seedFile(t, store, &model.FileRecord{ID: "Files/f2", Status: "Uploaded", ProcessStatus: "Pending"})

	require.NoError(t, svc.SyncFileStatuses(ctx, "p1"))
	after := store.Writes()

	// A second pass finds nothing to change and writes nothing.
	require.NoError(t, svc.SyncFileStatuses(ctx, "p1"))
	assert.Equal(t, after, store.Writes())
}

func TestSyncFileStatusesAbsentProcessIsNoOp(t *testing.T) {
	store := driver.NewMemoryStore()
	svc := NewService(store, nil)

	assert.NoError(t, svc.SyncFileStatuses(context.Background(), "does-not-exist"))
	assert.Zero(t, store.Writes())
}

func TestSyncFileStatusesSkipsMissingFiles(t *testing.T) {
	store := driver.NewMemoryStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	// f2 is referenced but was never stored.
	seedProcess(t, store, &model.DeduplicationProcess{
		ID:      "processes/p1",
		Status:  string(model.ProcessCompleted),
		FileIds: []string{"f1", "f2"},
	})
	seedFile(t, store, &model.FileRecord{ID: "Files/f1", Status: "Uploaded", ProcessStatus: "Pending"})

	require.NoError(t, svc.SyncFileStatuses(ctx, "p1"))
	assert.Equal(t, "Inserted", loadFile(t, store, "Files/f1").Status)
}

func TestRepairProcessFields(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	end := now.Add(-time.Hour)

	proc := &model.DeduplicationProcess{
		ID:             "processes/p1",
		Status:         string(model.ProcessCompleted),
		Username:       "alice",
		FileIds:        []string{"f1", "f2"},
		ProcessEndDate: &end,
	}

	assert.True(t, repairProcessFields(proc, now))

	// CompletedAt copies the end date when one exists.
	require.NotNil(t, proc.CompletedAt)
	assert.Equal(t, end, *proc.CompletedAt)
	assert.Equal(t, 2, proc.FileCount)
	assert.Equal(t, "alice", proc.CreatedBy)
	assert.Equal(t, "Completed", proc.CurrentStage)
	assert.Equal(t, 2, proc.ProcessedFiles)

	// A second pass over the repaired struct changes nothing.
	assert.False(t, repairProcessFields(proc, now))
}

func TestRepairProcessFieldsCompletedAtFallsBackToNow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	proc := &model.DeduplicationProcess{
		ID:     "processes/p1",
		Status: string(model.ProcessCompleted),
	}

	assert.True(t, repairProcessFields(proc, now))
	require.NotNil(t, proc.CompletedAt)
	assert.Equal(t, now, *proc.CompletedAt)
}

func TestRepairProcessFieldsCleanupUsername(t *testing.T) {
	now := time.Now().UTC()

	proc := &model.DeduplicationProcess{
		ID:          "processes/p1",
		Status:      string(model.ProcessCleaned),
		CleanupDate: &now,
	}
	assert.True(t, repairProcessFields(proc, now))
	assert.Equal(t, "system", proc.CleanupUsername)

	proc = &model.DeduplicationProcess{
		ID:       "processes/p2",
		Status:   string(model.ProcessCleaned),
		Username: "bob",
	}
	assert.True(t, repairProcessFields(proc, now))
	assert.Equal(t, "bob", proc.CleanupUsername)
}

func TestRepairProcessFieldsProcessedFilesFromNotes(t *testing.T) {
	now := time.Now().UTC()
	proc := &model.DeduplicationProcess{
		ID:              "processes/p1",
		Status:          string(model.ProcessPaused),
		FileIds:         []string{"f1", "f2", "f3"},
		FileCount:       3,
		CreatedBy:       "x",
		Username:        "x",
		CurrentStage:    "Paused",
		CompletionNotes: "Processed 2 files (1 failed)",
	}

	assert.True(t, repairProcessFields(proc, now))
	assert.Equal(t, 2, proc.ProcessedFiles)
}

func TestParseProcessedCount(t *testing.T) {
	n, ok := parseProcessedCount("Processed 17 files")
	assert.True(t, ok)
	assert.Equal(t, 17, n)

	n, ok = parseProcessedCount("Processed 5 files (2 failed)")
	assert.True(t, ok)
	assert.Equal(t, 5, n)

	_, ok = parseProcessedCount("all done")
	assert.False(t, ok)

	_, ok = parseProcessedCount("")
	assert.False(t, ok)
}

func TestRepairFileFields(t *testing.T) {
	now := time.Now().UTC()

	file := &model.FileRecord{
		ID:     "Files/f1",
		Status: "Inserted",
	}

	assert.True(t, repairFileFields(file, now))

	// Inserted without a FaceID gets a synthesized placeholder.
	assert.True(t, strings.HasPrefix(file.FaceID, "recovered-"))
	require.NotNil(t, file.ProcessStartDate)
	assert.Equal(t, now.Add(-5*time.Minute), *file.ProcessStartDate)
	assert.Equal(t, "Completed", file.ProcessStatus)
	assert.True(t, file.Deduplicated)

	// Converged; nothing left to repair.
	assert.False(t, repairFileFields(file, now))
}

func TestRepairFileFieldsLeavesPendingFilesAlone(t *testing.T) {
	now := time.Now().UTC()
	file := &model.FileRecord{
		ID:            "Files/f1",
		Status:        "Uploaded",
		ProcessStatus: "Pending",
	}

	assert.False(t, repairFileFields(file, now))
	assert.Empty(t, file.FaceID)
	assert.Nil(t, file.ProcessStartDate)
	assert.False(t, file.Deduplicated)
}

func TestFixProcessDataEndToEnd(t *testing.T) {
	store := driver.NewMemoryStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	seedProcess(t, store, &model.DeduplicationProcess{
		ID:       "processes/p1",
		Status:   string(model.ProcessCompleted),
		Username: "alice",
		FileIds:  []string{"f1", "f2"},
	})
	seedFile(t, store, &model.FileRecord{ID: "Files/f1", Status: "Uploaded", ProcessStatus: "Pending"})
	seedFile(t, store, &model.FileRecord{ID: "Files/f2", Status: "Inserted", ProcessStatus: "Processing"})

	assert.True(t, svc.FixProcessData(ctx, "p1"))

	proc := loadProcess(t, store, "processes/p1")
	assert.NotNil(t, proc.CompletedAt)
	assert.Equal(t, 2, proc.FileCount)
	assert.Equal(t, 2, proc.ProcessedFiles)
	assert.Equal(t, "alice", proc.CreatedBy)

	// Files passed through both sync and repair: statuses converged, every
	// inserted file carries a FaceID and the deduplicated flag.
	for _, id := range []string{"Files/f1", "Files/f2"} {
		file := loadFile(t, store, id)
		assert.Equal(t, "Inserted", file.Status)
		assert.Equal(t, "Completed", file.ProcessStatus)
		assert.NotEmpty(t, file.FaceID)
		assert.True(t, file.Deduplicated)
	}

	// The whole pass is idempotent.
	writes := store.Writes()
	assert.True(t, svc.FixProcessData(ctx, "p1"))
	assert.Equal(t, writes, store.Writes())
}

func TestFixProcessDataAbsentProcess(t *testing.T) {
	store := driver.NewMemoryStore()
	svc := NewService(store, nil)

	// Absence is not a failure; the pass simply has nothing to do.
	assert.True(t, svc.FixProcessData(context.Background(), "ghost"))
	assert.Zero(t, store.Writes())
}

func TestFixProcessDataAcceptsUnprefixedID(t *testing.T) {
	store := driver.NewMemoryStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	seedProcess(t, store, &model.DeduplicationProcess{
		ID:      "processes/p9",
		Status:  string(model.ProcessCompleted),
		FileIds: []string{"f1"},
	})
	seedFile(t, store, &model.FileRecord{ID: "Files/f1", Status: "Uploaded", ProcessStatus: "Pending"})

	assert.True(t, svc.FixProcessData(ctx, "p9"))
	assert.Equal(t, "Inserted", loadFile(t, store, "Files/f1").Status)
}
