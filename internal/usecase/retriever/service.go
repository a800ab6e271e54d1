// Package retriever implements two-phase retrieval: a filtered KNN prefetch
// followed by a capped re-ranking pass over fresh passage embeddings.
package retriever

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dayende-ib/guichet/internal/domain"
	domcol "github.com/Dayende-ib/guichet/internal/domain/collection"
	"github.com/Dayende-ib/guichet/internal/domain/search/filter"
	"github.com/Dayende-ib/guichet/internal/domain/search/result"
)

// Options tune the two-phase retrieval policy.
type Options struct {
	// Rerank enables the second-phase re-scoring pass.
	Rerank bool
	// OverfetchFactor multiplies topK for the prefetch when re-ranking.
	OverfetchFactor int
	// PrefetchFloor is the minimum prefetch size when re-ranking.
	PrefetchFloor int
	// RerankCap bounds how many prefetch hits are re-embedded.
	RerankCap int
}

// DefaultOptions are the production retrieval parameters.
func DefaultOptions() Options {
	return Options{
		Rerank:          true,
		OverfetchFactor: 3,
		PrefetchFloor:   10,
		RerankCap:       20,
	}
}

// Service retrieves the procedures most relevant to a question.
type Service struct {
	repo       Repository
	colls      CollectionReader
	queryEmb   QueryEmbedder
	passageEmb PassageEmbedder
	opts       Options
}

// New creates a retriever service.
func New(repo Repository, colls CollectionReader, queryEmb QueryEmbedder, passageEmb PassageEmbedder, opts Options) *Service {
	if opts.OverfetchFactor <= 0 {
		opts.OverfetchFactor = 3
	}
	if opts.PrefetchFloor <= 0 {
		opts.PrefetchFloor = 10
	}
	if opts.RerankCap <= 0 {
		opts.RerankCap = 20
	}
	return &Service{repo: repo, colls: colls, queryEmb: queryEmb, passageEmb: passageEmb, opts: opts}
}

// Retrieve returns at most topK procedures ranked by relevance to question,
// restricted to records matching the filter. topK <= 0 short-circuits to an
// empty result without touching the model or the store.
func (s *Service) Retrieve(
	ctx context.Context, collectionName, question string, f filter.Filter, topK int,
) ([]result.Result, error) {
	if topK <= 0 {
		return nil, nil
	}

	col, err := s.colls.Get(ctx, collectionName)
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}

	if err := validateFilter(f, col); err != nil {
		return nil, err
	}

	embResult, err := s.queryEmb.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("vectorize question: %w", err)
	}

	prefetch, err := s.repo.SearchKNN(ctx, collectionName, embResult.Embedding, f, s.prefetchK(topK))
	if err != nil {
		return nil, fmt.Errorf("prefetch knn: %w", err)
	}
	if len(prefetch) == 0 {
		return nil, nil
	}

	if !s.opts.Rerank {
		return truncate(prefetch, topK), nil
	}

	reranked, err := s.rerank(ctx, embResult.Embedding, prefetch)
	if err != nil {
		return nil, err
	}
	return truncate(reranked, topK), nil
}

// prefetchK sizes the first-phase KNN. Re-ranking needs headroom so that a
// candidate ranked low by the index can still win after re-scoring.
func (s *Service) prefetchK(topK int) int {
	if !s.opts.Rerank {
		return topK
	}
	k := topK * s.opts.OverfetchFactor
	if k < s.opts.PrefetchFloor {
		k = s.opts.PrefetchFloor
	}
	return k
}

// rerank re-embeds candidate descriptions with passage intent and re-scores
// them against the question vector by dot product. Only the first RerankCap
// prefetch hits enter the pool; results never come from outside it.
func (s *Service) rerank(ctx context.Context, queryVec []float32, prefetch []result.Result) ([]result.Result, error) {
	pool := prefetch
	if len(pool) > s.opts.RerankCap {
		pool = pool[:s.opts.RerankCap]
	}

	texts := make([]string, len(pool))
	for i, r := range pool {
		texts[i] = r.Procedure().Description()
	}

	batch, err := s.passageEmb.BatchEmbed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("rerank embed: %w", err)
	}
	if len(batch.Embeddings) != len(pool) {
		return nil, fmt.Errorf("rerank embed: got %d embeddings for %d candidates", len(batch.Embeddings), len(pool))
	}

	rescored := make([]result.Result, len(pool))
	for i, r := range pool {
		if len(batch.Embeddings[i]) != len(queryVec) {
			return nil, fmt.Errorf(
				"rerank embed [%d]: dimension %d, want %d: %w",
				i, len(batch.Embeddings[i]), len(queryVec), domain.ErrVectorDimMismatch,
			)
		}
		rescored[i] = r.WithScore(dot(queryVec, batch.Embeddings[i]))
	}

	// Stable: ties keep prefetch order, so repeated queries rank identically.
	sort.SliceStable(rescored, func(i, j int) bool {
		return rescored[i].Score() > rescored[j].Score()
	})

	return rescored, nil
}

func validateFilter(f filter.Filter, col domcol.Collection) error {
	for _, c := range f.Conditions() {
		if !col.HasFilterField(c.Field()) {
			return fmt.Errorf("filter field %q: %w", c.Field(), domain.ErrUnknownFilterField)
		}
	}
	return nil
}

func truncate(results []result.Result, topK int) []result.Result {
	if len(results) > topK {
		return results[:topK]
	}
	return results
}

// dot is the similarity between unit vectors (equals cosine for e5 output).
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
