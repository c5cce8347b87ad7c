package driver

import (
	"context"
)

// DocumentStore hands out collection-scoped sessions over the backing
// document database. Each logical collection (processes, Files, Conflicts,
// Exceptions, DuplicatedRecords) is an independent namespace.
type DocumentStore interface {
	OpenSession(collection string) Session
	EnsureIndexes(ctx context.Context) error
	Close(ctx context.Context) error
}

// Session is a unit of work over one collection. Store and Delete are
// buffered in-memory; SaveChanges commits every pending operation in a
// single write transaction. Sessions must be closed on every exit path.
type Session interface {
	// Load returns the raw document for id, or (nil, nil) when absent.
	Load(ctx context.Context, id string) ([]byte, error)
	// LoadMany returns the documents found for ids; absent ids are simply
	// missing from the result map.
	LoadMany(ctx context.Context, ids []string) (map[string][]byte, error)
	// List returns every document in the collection.
	List(ctx context.Context) ([][]byte, error)
	Store(id string, data []byte)
	Delete(id string)
	SaveChanges(ctx context.Context) error
	Close(ctx context.Context) error
}
