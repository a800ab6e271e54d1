package answer

import (
	"context"

	"github.com/Dayende-ib/guichet/internal/domain/search/filter"
	"github.com/Dayende-ib/guichet/internal/domain/search/result"
)

// Retriever returns the procedures most relevant to a question.
type Retriever interface {
	Retrieve(
		ctx context.Context, collectionName, question string, f filter.Filter, topK int,
	) ([]result.Result, error)
}

// Generator produces a grounded French answer from context documents.
type Generator interface {
	Generate(ctx context.Context, question string, docs []result.Result) (string, error)
}
