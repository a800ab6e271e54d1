package chi

import (
	"context"

	domans "github.com/Dayende-ib/guichet/internal/domain/answer"
	"github.com/Dayende-ib/guichet/internal/domain/search/filter"
	"github.com/Dayende-ib/guichet/internal/domain/search/result"
	healthuc "github.com/Dayende-ib/guichet/internal/usecase/health"
)

// Answerer composes a cited answer for a question.
type Answerer interface {
	Ask(ctx context.Context, question string, f filter.Filter, topK int) (domans.Answer, error)
}

// Retriever returns ranked procedures for a question.
type Retriever interface {
	Retrieve(
		ctx context.Context, collectionName, question string, f filter.Filter, topK int,
	) ([]result.Result, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
