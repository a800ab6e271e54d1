// Package search runs KNN queries and hydrates ranked procedure results.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dayende-ib/guichet/internal/db"
	"github.com/Dayende-ib/guichet/internal/domain"
	"github.com/Dayende-ib/guichet/internal/domain/procedure"
	"github.com/Dayende-ib/guichet/internal/domain/search/filter"
	"github.com/Dayende-ib/guichet/internal/domain/search/result"
	"github.com/Dayende-ib/guichet/internal/repository/collection"
)

// returnFields are the hash fields hydrated into results. The raw vector is
// deliberately excluded: re-ranking re-embeds descriptions instead.
var returnFields = []string{
	"titre", "description", "url", "source",
	"espace", "theme", "cout", "conditions", "infos",
	"__vector_score",
}

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase search storage.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchKNN performs a vector similarity search on a collection with
// equality pre-filtering, ordered by descending similarity.
func (r *Repo) SearchKNN(
	ctx context.Context, collectionName string,
	vector []float32, f filter.Filter, topK int,
) ([]result.Result, error) {
	q := &db.KNNQuery{
		IndexName:    collection.IndexName(collectionName),
		Filter:       f,
		Vector:       vector,
		K:            topK,
		ReturnFields: returnFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w: %w", collectionName, domain.ErrStoreUnavailable, err)
	}

	return parseKNNResults(sr, collectionName), nil
}

// parseKNNResults converts db.SearchResult into []result.Result.
func parseKNNResults(sr *db.SearchResult, collectionName string) []result.Result {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	prefix := collection.RecordPrefix(collectionName)
	results := make([]result.Result, 0, len(sr.Entries))

	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, prefix)
		p := procedure.Reconstruct(
			id,
			entry.Fields["titre"],
			entry.Fields["description"],
			entry.Fields["url"],
			entry.Fields["source"],
			entry.Fields["espace"],
			entry.Fields["theme"],
			entry.Fields["cout"],
			entry.Fields["conditions"],
			entry.Fields["infos"],
		)
		results = append(results, result.New(p, entry.Score))
	}

	return results
}
