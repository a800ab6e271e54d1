package indexer

import (
	"context"

	"github.com/Dayende-ib/guichet/internal/domain"
	domcol "github.com/Dayende-ib/guichet/internal/domain/collection"
	domproc "github.com/Dayende-ib/guichet/internal/domain/procedure"
	procrepo "github.com/Dayende-ib/guichet/internal/repository/procedure"
)

// CollectionEnsurer creates or verifies the target collection.
type CollectionEnsurer interface {
	Ensure(ctx context.Context, col domcol.Collection) (domcol.Collection, error)
}

// ProcedureWriter persists procedure records.
type ProcedureWriter interface {
	BulkUpsert(ctx context.Context, collectionName string, items []procrepo.Item) ([]domproc.Procedure, error)
	DeleteAll(ctx context.Context, collectionName string) (int, error)
	Count(ctx context.Context, collectionName string) (int, error)
}

// PassageEmbedder vectorizes passage texts for indexing.
type PassageEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
