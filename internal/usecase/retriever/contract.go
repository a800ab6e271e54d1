package retriever

import (
	"context"

	"github.com/Dayende-ib/guichet/internal/domain"
	domcol "github.com/Dayende-ib/guichet/internal/domain/collection"
	"github.com/Dayende-ib/guichet/internal/domain/search/filter"
	"github.com/Dayende-ib/guichet/internal/domain/search/result"
)

// Repository defines the storage contract for similarity search.
type Repository interface {
	SearchKNN(
		ctx context.Context, collectionName string,
		vector []float32, f filter.Filter, topK int,
	) ([]result.Result, error)
}

// CollectionReader reads collections for filter-schema checks.
type CollectionReader interface {
	Get(ctx context.Context, name string) (domcol.Collection, error)
}

// QueryEmbedder vectorizes questions with query intent.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// PassageEmbedder vectorizes candidate texts with passage intent for re-ranking.
type PassageEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
