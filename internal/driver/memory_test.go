package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionBuffersUntilSaveChanges(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	session := store.OpenSession("processes")
	session.Store("processes/p1", []byte(`{"id":"processes/p1"}`))

	// Nothing hits the store before SaveChanges: a second session sees no
	// document.
	other := store.OpenSession("processes")
	doc, err := other.Load(ctx, "processes/p1")
	require.NoError(t, err)
	assert.Nil(t, doc)
	require.NoError(t, other.Close(ctx))

	require.NoError(t, session.SaveChanges(ctx))
	require.NoError(t, session.Close(ctx))

	other = store.OpenSession("processes")
	doc, err = other.Load(ctx, "processes/p1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"processes/p1"}`, string(doc))
	require.NoError(t, other.Close(ctx))
}

func TestLoadAbsentDocument(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	session := store.OpenSession("Files")
	defer session.Close(ctx)

	// Absence is nil/nil, not an error.
	doc, err := session.Load(ctx, "Files/ghost")
	assert.NoError(t, err)
	assert.Nil(t, doc)
}

func TestLoadMany(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	session := store.OpenSession("Files")
	session.Store("Files/f1", []byte(`{"id":"Files/f1"}`))
	session.Store("Files/f2", []byte(`{"id":"Files/f2"}`))
	require.NoError(t, session.SaveChanges(ctx))
	require.NoError(t, session.Close(ctx))

	session = store.OpenSession("Files")
	defer session.Close(ctx)

	docs, err := session.LoadMany(ctx, []string{"Files/f1", "Files/f2", "Files/missing"})
	require.NoError(t, err)
	// Absent IDs are simply missing from the map.
	assert.Len(t, docs, 2)
	assert.Contains(t, docs, "Files/f1")
	assert.Contains(t, docs, "Files/f2")
	assert.NotContains(t, docs, "Files/missing")
}

func TestDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	session := store.OpenSession("Conflicts")
	session.Store("Conflicts/c1", []byte(`{}`))
	require.NoError(t, session.SaveChanges(ctx))

	session.Delete("Conflicts/c1")
	require.NoError(t, session.SaveChanges(ctx))
	require.NoError(t, session.Close(ctx))

	session = store.OpenSession("Conflicts")
	defer session.Close(ctx)
	doc, err := session.Load(ctx, "Conflicts/c1")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestCollectionsAreIsolated(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	session := store.OpenSession("processes")
	session.Store("shared-id", []byte(`{"collection":"processes"}`))
	require.NoError(t, session.SaveChanges(ctx))
	require.NoError(t, session.Close(ctx))

	other := store.OpenSession("Files")
	defer other.Close(ctx)
	doc, err := other.Load(ctx, "shared-id")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestList(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	session := store.OpenSession("Exceptions")
	session.Store("Exceptions/e1", []byte(`{"n":1}`))
	session.Store("Exceptions/e2", []byte(`{"n":2}`))
	require.NoError(t, session.SaveChanges(ctx))
	require.NoError(t, session.Close(ctx))

	session = store.OpenSession("Exceptions")
	defer session.Close(ctx)
	docs, err := session.List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestCloseDiscardsPendingOps(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	session := store.OpenSession("processes")
	session.Store("processes/p1", []byte(`{}`))
	require.NoError(t, session.Close(ctx))

	assert.Zero(t, store.Writes())
}

func TestWritesCounter(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	session := store.OpenSession("processes")
	session.Store("a", []byte(`{}`))
	session.Store("b", []byte(`{}`))
	require.NoError(t, session.SaveChanges(ctx))
	assert.Equal(t, 2, store.Writes())

	// An empty commit is free.
	require.NoError(t, session.SaveChanges(ctx))
	assert.Equal(t, 2, store.Writes())
	require.NoError(t, session.Close(ctx))
}

func TestSanitizeLabel(t *testing.T) {
	assert.Equal(t, "processes", sanitizeLabel("processes"))
	assert.Equal(t, "DuplicatedRecords", sanitizeLabel("DuplicatedRecords"))
	// Illegal characters are stripped; nothing legal left means a safe default.
	assert.Equal(t, "badlabel", sanitizeLabel("bad label;"))
	assert.Equal(t, "Documents", sanitizeLabel(""))
	assert.Equal(t, "Documents", sanitizeLabel("`(){}"))
}
