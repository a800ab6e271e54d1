package indexer

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/Dayende-ib/guichet/internal/domain"
	domcol "github.com/Dayende-ib/guichet/internal/domain/collection"
	domproc "github.com/Dayende-ib/guichet/internal/domain/procedure"
	procrepo "github.com/Dayende-ib/guichet/internal/repository/procedure"
)

const testVectorDim = 4

type mockColls struct {
	ensureFn func(ctx context.Context, col domcol.Collection) (domcol.Collection, error)
	calls    int
}

func (m *mockColls) Ensure(ctx context.Context, col domcol.Collection) (domcol.Collection, error) {
	m.calls++
	if m.ensureFn != nil {
		return m.ensureFn(ctx, col)
	}
	return col, nil
}

type mockProcs struct {
	bulkUpsertFn func(ctx context.Context, collectionName string, items []procrepo.Item) ([]domproc.Procedure, error)
	deleteAllFn  func(ctx context.Context, collectionName string) (int, error)
	countFn      func(ctx context.Context, collectionName string) (int, error)
	wiped        bool
}

func (m *mockProcs) BulkUpsert(ctx context.Context, collectionName string, items []procrepo.Item) ([]domproc.Procedure, error) {
	if m.bulkUpsertFn != nil {
		return m.bulkUpsertFn(ctx, collectionName, items)
	}
	stored := make([]domproc.Procedure, len(items))
	for i, item := range items {
		stored[i] = item.Procedure.WithID("generated")
	}
	return stored, nil
}

func (m *mockProcs) DeleteAll(ctx context.Context, collectionName string) (int, error) {
	m.wiped = true
	if m.deleteAllFn != nil {
		return m.deleteAllFn(ctx, collectionName)
	}
	return 0, nil
}

func (m *mockProcs) Count(ctx context.Context, collectionName string) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, collectionName)
	}
	return 0, nil
}

type mockEmbedder struct {
	dim        int
	tokens     int
	err        error
	batchSizes []int
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	dim := m.dim
	if dim == 0 {
		dim = testVectorDim
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = make([]float32, dim)
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: m.tokens * len(texts)}, nil
}

func newTestService(t *testing.T) (*Service, *mockColls, *mockProcs, *mockEmbedder) {
	t.Helper()
	mc := &mockColls{}
	mp := &mockProcs{}
	me := &mockEmbedder{}
	return New(mc, mp, me, testVectorDim, zap.NewNop()), mc, mp, me
}

func testCorpus(t *testing.T, n int) []domproc.Procedure {
	t.Helper()
	procs := make([]domproc.Procedure, n)
	for i := range procs {
		p, err := domproc.New(
			"Titre "+string(rune('A'+i%26)),
			"Description de la procédure.",
			"https://example.bf/p",
		)
		if err != nil {
			t.Fatalf("build procedure: %v", err)
		}
		procs[i] = p
	}
	return procs
}
