package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/logging"
)

// MemgraphStore implements DocumentStore on top of a Memgraph/Neo4j
// instance reached through the bolt driver. Documents are nodes
// `(:<Collection> {id, data})` with the entity JSON in the data property.
type MemgraphStore struct {
	Driver neo4j.DriverWithContext
	log    *logging.Logger
}

func NewMemgraphStore(uri, username, password string, log *logging.Logger) (*MemgraphStore, error) {
	d, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := d.VerifyConnectivity(context.Background()); err != nil {
		return nil, err
	}

	if log == nil {
		log = logging.Nop()
	}
	log.Info("connected to document store at %s", uri)
	return &MemgraphStore{Driver: d, log: log}, nil
}

func (s *MemgraphStore) Close(ctx context.Context) error {
	return s.Driver.Close(ctx)
}

// EnsureIndexes creates the per-collection id index. Failures are logged
// and skipped since the index usually already exists.
func (s *MemgraphStore) EnsureIndexes(ctx context.Context) error {
	for _, collection := range Collections {
		q := fmt.Sprintf("CREATE INDEX ON :%s(id);", sanitizeLabel(collection))
		if _, err := neo4j.ExecuteQuery(ctx, s.Driver, q, nil, neo4j.EagerResultTransformer); err != nil {
			s.log.Warn("failed to create index for %s: %v", collection, err)
		}
	}
	return nil
}

func (s *MemgraphStore) OpenSession(collection string) Session {
	return &memgraphSession{
		store:      s,
		label:      sanitizeLabel(collection),
		collection: collection,
	}
}

// sanitizeLabel keeps only characters legal in an unquoted Cypher label.
// Collection names are a fixed internal set, so this is a backstop, not
// input validation.
func sanitizeLabel(collection string) string {
	out := make([]rune, 0, len(collection))
	for _, r := range collection {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return "Documents"
	}
	return string(out)
}

type pendingOp struct {
	id     string
	data   []byte
	delete bool
}

type memgraphSession struct {
	store      *MemgraphStore
	label      string
	collection string
	pending    []pendingOp
}

func (s *memgraphSession) Load(ctx context.Context, id string) ([]byte, error) {
	q := fmt.Sprintf(LoadDocumentQuery, s.label)
	result, err := neo4j.ExecuteQuery(ctx, s.store.Driver, q,
		map[string]any{"id": id}, neo4j.EagerResultTransformer)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s/%s: %w", s.collection, id, err)
	}
	if len(result.Records) == 0 {
		return nil, nil
	}
	return recordData(result.Records[0], "data")
}

func (s *memgraphSession) LoadMany(ctx context.Context, ids []string) (map[string][]byte, error) {
	if len(ids) == 0 {
		return map[string][]byte{}, nil
	}
	q := fmt.Sprintf(LoadManyDocumentsQuery, s.label)
	result, err := neo4j.ExecuteQuery(ctx, s.store.Driver, q,
		map[string]any{"ids": ids}, neo4j.EagerResultTransformer)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch from %s: %w", s.collection, err)
	}

	docs := make(map[string][]byte, len(result.Records))
	for _, rec := range result.Records {
		idVal, ok := rec.Get("id")
		if !ok {
			continue
		}
		id, ok := idVal.(string)
		if !ok {
			continue
		}
		data, err := recordData(rec, "data")
		if err != nil {
			return nil, err
		}
		docs[id] = data
	}
	return docs, nil
}

func (s *memgraphSession) List(ctx context.Context) ([][]byte, error) {
	q := fmt.Sprintf(ListDocumentsQuery, s.label)
	result, err := neo4j.ExecuteQuery(ctx, s.store.Driver, q, nil, neo4j.EagerResultTransformer)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.collection, err)
	}

	docs := make([][]byte, 0, len(result.Records))
	for _, rec := range result.Records {
		data, err := recordData(rec, "data")
		if err != nil {
			return nil, err
		}
		docs = append(docs, data)
	}
	return docs, nil
}

func (s *memgraphSession) Store(id string, data []byte) {
	s.pending = append(s.pending, pendingOp{id: id, data: data})
}

func (s *memgraphSession) Delete(id string) {
	s.pending = append(s.pending, pendingOp{id: id, delete: true})
}

// SaveChanges commits every pending Store/Delete in one write transaction.
func (s *memgraphSession) SaveChanges(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}

	sess := s.store.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer sess.Close(ctx)

	_, err := sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, op := range s.pending {
			var q string
			params := map[string]any{"id": op.id}
			if op.delete {
				q = fmt.Sprintf(DeleteDocumentQuery, s.label)
			} else {
				q = fmt.Sprintf(UpsertDocumentQuery, s.label)
				params["data"] = string(op.data)
			}
			if _, err := tx.Run(ctx, q, params); err != nil {
				return nil, fmt.Errorf("failed to write %s/%s: %w", s.collection, op.id, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	s.pending = nil
	return nil
}

func (s *memgraphSession) Close(ctx context.Context) error {
	// Reads and commits go through short-lived driver sessions, so there is
	// nothing to release beyond dropping uncommitted operations.
	s.pending = nil
	return nil
}

func recordData(rec *neo4j.Record, key string) ([]byte, error) {
	val, ok := rec.Get(key)
	if !ok || val == nil {
		return nil, nil
	}
	str, ok := val.(string)
	if !ok {
		return nil, fmt.Errorf("document data has unexpected type %T", val)
	}
	return []byte(str), nil
}
