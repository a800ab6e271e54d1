// Package collection persists collection metadata and manages the FT index.
package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dayende-ib/guichet/internal/db"
	"github.com/Dayende-ib/guichet/internal/domain"
	domcol "github.com/Dayende-ib/guichet/internal/domain/collection"
)

// store is the consumer interface for collections (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements usecase collection storage.
type Repo struct {
	store            store
	defaultVectorDim int
	hnsw             HNSWConfig
}

// New creates a collection repository.
func New(s store, defaultVectorDim int) *Repo {
	return &Repo{store: s, defaultVectorDim: defaultVectorDim, hnsw: HNSWConfig{M: 16, EFConstruct: 200}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// Ensure creates the collection if absent, or verifies compatibility of the
// existing one. Dimension mismatch is a hard error: the index must be dropped
// and recreated before records with a different dimension can be loaded.
func (r *Repo) Ensure(ctx context.Context, col domcol.Collection) (domcol.Collection, error) {
	existing, err := r.Get(ctx, col.Name())
	if err == nil {
		if existing.VectorDim() != col.VectorDim() {
			return domcol.Collection{}, fmt.Errorf(
				"collection %s has dimension %d, want %d: %w",
				col.Name(), existing.VectorDim(), col.VectorDim(), domain.ErrVectorDimMismatch,
			)
		}
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domcol.Collection{}, err
	}

	if err := r.create(ctx, col); err != nil {
		return domcol.Collection{}, err
	}
	return col, nil
}

// create stores a collection: HSET metadata then FT.CREATE index.
// On FT.CREATE failure, rolls back the HSET via DEL.
func (r *Repo) create(ctx context.Context, col domcol.Collection) error {
	name := col.Name()

	metaKey := metaKey(name)
	exists, err := r.store.Exists(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}

	// Prepare index definition and hash data before writes
	indexDef, err := buildIndex(name, col.FilterFields(), col.VectorDim(), r.hnsw)
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}
	hashData := collectionToHash(col)

	// Step 1: HSET metadata
	if err := r.store.HSet(ctx, metaKey, hashData); err != nil {
		return fmt.Errorf("hset collection %s: %w", name, err)
	}

	// FT.CREATE — rollback HSET on error
	if err := r.store.CreateIndex(ctx, indexDef); err != nil {
		cleanupErr := r.store.Del(ctx, metaKey)
		return errors.Join(err, cleanupErr)
	}

	return nil
}

// Get retrieves a collection by name.
func (r *Repo) Get(ctx context.Context, name string) (domcol.Collection, error) {
	m, err := r.store.HGetAll(ctx, metaKey(name))
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("hgetall collection %s: %w", name, err)
	}
	if len(m) == 0 {
		return domcol.Collection{}, domain.ErrNotFound
	}

	return collectionFromHash(m, r.defaultVectorDim)
}

// Delete removes a collection: backup metadata, DEL hash, FT.DROPINDEX (rollback HSET on error).
func (r *Repo) Delete(ctx context.Context, name string) error {
	metaKey := metaKey(name)

	// Backup metadata
	metaBackup, err := r.store.HGetAll(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("hgetall collection %s: %w", name, err)
	}
	if len(metaBackup) == 0 {
		return domain.ErrNotFound
	}

	idxName := IndexName(name)
	idxExists, err := r.store.IndexExists(ctx, idxName)
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	if !idxExists {
		return domain.ErrNotFound
	}

	// Step 1: DEL metadata
	if err := r.store.Del(ctx, metaKey); err != nil {
		return fmt.Errorf("del collection %s: %w", name, err)
	}

	// FT.DROPINDEX — rollback HSET on error
	if err := r.store.DropIndex(ctx, idxName); err != nil {
		cleanupErr := r.store.HSet(ctx, metaKey, metaBackup)
		return errors.Join(err, cleanupErr)
	}

	return nil
}

// Redis key patterns: guichet:collection:{name}, guichet:{name}:idx, guichet:{name}:

func metaKey(name string) string {
	return fmt.Sprintf("%scollection:%s", domain.KeyPrefix, name)
}

// IndexName returns the FT index name for a collection.
func IndexName(name string) string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, name)
}

// RecordPrefix returns the key prefix under which records of a collection live.
func RecordPrefix(name string) string {
	return fmt.Sprintf("%s%s:", domain.KeyPrefix, name)
}
