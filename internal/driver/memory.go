package driver

import (
	"context"
	"sync"
)

// MemoryStore is an in-process DocumentStore used for development mode and
// tests. It keeps the same session/commit semantics as the Memgraph store:
// writes are invisible until SaveChanges.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
	writes      int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string][]byte)}
}

func (s *MemoryStore) EnsureIndexes(ctx context.Context) error { return nil }
func (s *MemoryStore) Close(ctx context.Context) error         { return nil }

func (s *MemoryStore) OpenSession(collection string) Session {
	return &memorySession{store: s, collection: collection}
}

// Writes counts committed Store operations across all sessions. Tests use
// it to assert idempotence (a second reconciliation pass writes nothing).
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

type memorySession struct {
	store      *MemoryStore
	collection string
	pending    []pendingOp
}

func (s *memorySession) Load(ctx context.Context, id string) ([]byte, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	data, ok := s.store.collections[s.collection][id]
	if !ok {
		return nil, nil
	}
	return cloneBytes(data), nil
}

func (s *memorySession) LoadMany(ctx context.Context, ids []string) (map[string][]byte, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	docs := make(map[string][]byte, len(ids))
	for _, id := range ids {
		if data, ok := s.store.collections[s.collection][id]; ok {
			docs[id] = cloneBytes(data)
		}
	}
	return docs, nil
}

func (s *memorySession) List(ctx context.Context) ([][]byte, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	docs := make([][]byte, 0, len(s.store.collections[s.collection]))
	for _, data := range s.store.collections[s.collection] {
		docs = append(docs, cloneBytes(data))
	}
	return docs, nil
}

func (s *memorySession) Store(id string, data []byte) {
	s.pending = append(s.pending, pendingOp{id: id, data: cloneBytes(data)})
}

func (s *memorySession) Delete(id string) {
	s.pending = append(s.pending, pendingOp{id: id, delete: true})
}

func (s *memorySession) SaveChanges(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	col := s.store.collections[s.collection]
	if col == nil {
		col = make(map[string][]byte)
		s.store.collections[s.collection] = col
	}
	for _, op := range s.pending {
		if op.delete {
			delete(col, op.id)
			continue
		}
		col[op.id] = op.data
		s.store.writes++
	}
	s.pending = nil
	return nil
}

func (s *memorySession) Close(ctx context.Context) error {
	s.pending = nil
	return nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
