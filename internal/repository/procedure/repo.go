// Package procedure persists procedure records as Redis hashes.
package procedure

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Dayende-ib/guichet/internal/db"
	"github.com/Dayende-ib/guichet/internal/domain"
	domproc "github.com/Dayende-ib/guichet/internal/domain/procedure"
	"github.com/Dayende-ib/guichet/internal/repository/collection"
)

// upsertBatchSize caps how many HSETs go into a single pipeline round trip.
const upsertBatchSize = 100

// store is the consumer interface for procedure records (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	DelMulti(ctx context.Context, keys []string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements usecase procedure storage.
type Repo struct {
	store store
}

// New creates a procedure repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Item pairs a procedure with its passage embedding for bulk indexing.
type Item struct {
	Procedure domproc.Procedure
	Vector    []float32
}

// BulkUpsert writes procedures with their vectors in pipelined batches.
// Records without an ID get a fresh UUID. Returns the stored procedures
// with IDs assigned, in input order.
func (r *Repo) BulkUpsert(ctx context.Context, collectionName string, items []Item) ([]domproc.Procedure, error) {
	if len(items) == 0 {
		return nil, nil
	}

	stored := make([]domproc.Procedure, 0, len(items))
	batch := make([]db.HashSetItem, 0, upsertBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := r.store.HSetMulti(ctx, batch); err != nil {
			return fmt.Errorf("hset multi %s: %w: %w", collectionName, domain.ErrStoreUnavailable, err)
		}
		batch = batch[:0]
		return nil
	}

	for _, item := range items {
		p := item.Procedure
		if p.ID() == "" {
			p = p.WithID(uuid.NewString())
		}

		batch = append(batch, db.HashSetItem{
			Key:    recordKey(collectionName, p.ID()),
			Fields: procedureToHash(p, item.Vector),
		})
		stored = append(stored, p)

		if len(batch) >= upsertBatchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return stored, nil
}

// Get returns a procedure by ID.
func (r *Repo) Get(ctx context.Context, collectionName, id string) (domproc.Procedure, error) {
	key := recordKey(collectionName, id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domproc.Procedure{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domproc.Procedure{}, domain.ErrNotFound
	}
	return procedureFromHash(id, m), nil
}

// DeleteAll wipes every record of a collection. Used before a full reindex.
// Returns the number of removed records.
func (r *Repo) DeleteAll(ctx context.Context, collectionName string) (int, error) {
	keys, err := r.store.Scan(ctx, collection.RecordPrefix(collectionName)+"*")
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", collectionName, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	if err := r.store.DelMulti(ctx, keys); err != nil {
		return 0, fmt.Errorf("del records %s: %w", collectionName, err)
	}
	return len(keys), nil
}

// Count returns the number of indexed procedures.
func (r *Repo) Count(ctx context.Context, collectionName string) (int, error) {
	n, err := r.store.SearchCount(ctx, collection.IndexName(collectionName), "*")
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("search count %s: %w", collectionName, err)
	}
	return n, nil
}

func recordKey(collectionName, id string) string {
	return collection.RecordPrefix(collectionName) + id
}
