package retriever

import (
	"context"
	"testing"

	"github.com/Dayende-ib/guichet/internal/domain"
	domcol "github.com/Dayende-ib/guichet/internal/domain/collection"
	"github.com/Dayende-ib/guichet/internal/domain/procedure"
	"github.com/Dayende-ib/guichet/internal/domain/search/filter"
	"github.com/Dayende-ib/guichet/internal/domain/search/result"
)

type mockRepo struct {
	searchKNNFn func(ctx context.Context, collectionName string, vector []float32, f filter.Filter, topK int) ([]result.Result, error)
	knnCalls    int
}

func (m *mockRepo) SearchKNN(
	ctx context.Context, collectionName string, vector []float32, f filter.Filter, topK int,
) ([]result.Result, error) {
	m.knnCalls++
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, collectionName, vector, f, topK)
	}
	return nil, nil
}

type mockColls struct {
	col domcol.Collection
	err error
}

func (m *mockColls) Get(_ context.Context, _ string) (domcol.Collection, error) {
	return m.col, m.err
}

type mockQueryEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockQueryEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type mockPassageEmbedder struct {
	// vecsByText returns a deterministic vector per text.
	vecsByText map[string][]float32
	err        error
	calls      int
	batchSizes []int
}

func (m *mockPassageEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.calls++
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := m.vecsByText[text]; ok {
			embeddings[i] = v
		} else {
			embeddings[i] = []float32{0, 0}
		}
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings}, nil
}

func newTestService(t *testing.T, opts Options) (*Service, *mockRepo, *mockQueryEmbedder, *mockPassageEmbedder) {
	t.Helper()
	repo := &mockRepo{}
	colls := &mockColls{col: domcol.Reconstruct("procedures_bf", nil, 2, 1700000000000)}
	qe := &mockQueryEmbedder{vec: []float32{1, 0}}
	pe := &mockPassageEmbedder{vecsByText: map[string][]float32{}}
	return New(repo, colls, qe, pe, opts), repo, qe, pe
}

func hit(t *testing.T, id, titre, description string, score float64) result.Result {
	t.Helper()
	p := procedure.Reconstruct(id, titre, description, "", "", "Particuliers", "", "", "", "")
	return result.New(p, score)
}
