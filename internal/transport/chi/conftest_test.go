package chi

import (
	"context"

	domans "github.com/Dayende-ib/guichet/internal/domain/answer"
	"github.com/Dayende-ib/guichet/internal/domain/search/filter"
	"github.com/Dayende-ib/guichet/internal/domain/search/result"
	healthuc "github.com/Dayende-ib/guichet/internal/usecase/health"
)

// --- Mocks (function-field style) ---

type mockAnswerer struct {
	askFn    func(ctx context.Context, question string, f filter.Filter, topK int) (domans.Answer, error)
	askCalls int
}

func (m *mockAnswerer) Ask(
	ctx context.Context, question string, f filter.Filter, topK int,
) (domans.Answer, error) {
	m.askCalls++
	return m.askFn(ctx, question, f, topK)
}

type mockRetriever struct {
	retrieveFn    func(ctx context.Context, collection, question string, f filter.Filter, topK int) ([]result.Result, error)
	retrieveCalls int
}

func (m *mockRetriever) Retrieve(
	ctx context.Context, collection, question string, f filter.Filter, topK int,
) ([]result.Result, error) {
	m.retrieveCalls++
	return m.retrieveFn(ctx, collection, question, f, topK)
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report {
	return m.report
}
