package conflicts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/model"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/driver"
)

func TestCreateConflict(t *testing.T) {
	svc := NewService(driver.NewMemoryStore(), nil)
	ctx := context.Background()

	conflict, err := svc.Create(ctx, "p1", "a.png", "b.png", 0.93)
	require.NoError(t, err)

	assert.Equal(t, "processes/p1", conflict.ProcessID)
	assert.Contains(t, conflict.ID, "Conflicts/")
	assert.Equal(t, "Unresolved", conflict.Status)
	assert.Equal(t, 0.93, conflict.Confidence)
	assert.False(t, conflict.CreatedAt.IsZero())
}

func TestCreateConflictValidation(t *testing.T) {
	svc := NewService(driver.NewMemoryStore(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "", "a.png", "b.png", 0.9)
	var ve *model.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.Create(ctx, "p1", "", "b.png", 0.9)
	assert.ErrorAs(t, err, &ve)
}

func TestListByProcessMatchesBothIDForms(t *testing.T) {
	svc := NewService(driver.NewMemoryStore(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "p1", "a.png", "b.png", 0.91)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "processes/p1", "c.png", "d.png", 0.92)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "p2", "e.png", "f.png", 0.93)
	require.NoError(t, err)

	list, err := svc.ListByProcess(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// Prefixed query sees the same records.
	list, err = svc.ListByProcess(ctx, "processes/p1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestResolveConflict(t *testing.T) {
	svc := NewService(driver.NewMemoryStore(), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "p1", "a.png", "b.png", 0.91)
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, created.ID, "kept a.png", "reviewer")
	require.NoError(t, err)
	assert.Equal(t, "Resolved", resolved.Status)
	assert.Equal(t, "kept a.png", resolved.Resolution)
	assert.Equal(t, "reviewer", resolved.ResolvedBy)
	assert.NotNil(t, resolved.ResolvedAt)
}

func TestResolveConflictExactIDOnly(t *testing.T) {
	svc := NewService(driver.NewMemoryStore(), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "p1", "a.png", "b.png", 0.91)
	require.NoError(t, err)

	// The service does not retry ID variations; that lives at the handler.
	short := created.ID[len("Conflicts/"):]
	_, err = svc.Resolve(ctx, short, "resolution", "reviewer")
	var nf *model.NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.Equal(t, short, nf.ID)
}

func TestResolveConflictValidation(t *testing.T) {
	svc := NewService(driver.NewMemoryStore(), nil)

	_, err := svc.Resolve(context.Background(), "Conflicts/x", "", "reviewer")
	var ve *model.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestAutoResolve(t *testing.T) {
	svc := NewService(driver.NewMemoryStore(), nil)
	ctx := context.Background()

	for _, confidence := range []float64{0.80, 0.95, 0.96, 1.0} {
		_, err := svc.Create(ctx, "p1", "a.png", "b.png", confidence)
		require.NoError(t, err)
	}

	result, err := svc.AutoResolve(ctx, "p1", 0.95)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 3, result.AutoResolvedCount)
	assert.Equal(t, 1, result.RemainingConflicts)

	// Re-running only sees the leftover unresolved conflict.
	result, err = svc.AutoResolve(ctx, "p1", 0.95)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 0, result.AutoResolvedCount)
	assert.Equal(t, 1, result.RemainingConflicts)
}

func TestAutoResolveDefaultThreshold(t *testing.T) {
	svc := NewService(driver.NewMemoryStore(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "p1", "a.png", "b.png", 0.94)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "p1", "c.png", "d.png", 0.97)
	require.NoError(t, err)

	// Threshold 0 falls back to 0.95.
	result, err := svc.AutoResolve(ctx, "p1", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.AutoResolvedCount)
	assert.Equal(t, 1, result.RemainingConflicts)
}

func TestAutoResolveResolutionText(t *testing.T) {
	svc := NewService(driver.NewMemoryStore(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "p1", "a.png", "b.png", 0.98)
	require.NoError(t, err)

	_, err = svc.AutoResolve(ctx, "p1", 0.95)
	require.NoError(t, err)

	list, err := svc.ListByProcess(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "System", list[0].ResolvedBy)
	assert.Equal(t, "Auto-resolved: confidence 0.98 meets threshold 0.95", list[0].Resolution)
}
