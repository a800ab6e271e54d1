package answer

import (
	"context"
	"testing"

	"github.com/Dayende-ib/guichet/internal/domain/procedure"
	"github.com/Dayende-ib/guichet/internal/domain/search/filter"
	"github.com/Dayende-ib/guichet/internal/domain/search/result"
)

type mockRetriever struct {
	results []result.Result
	err     error
	calls   int
	gotTopK int
}

func (m *mockRetriever) Retrieve(
	_ context.Context, _, _ string, _ filter.Filter, topK int,
) ([]result.Result, error) {
	m.calls++
	m.gotTopK = topK
	return m.results, m.err
}

type mockGenerator struct {
	text  string
	err   error
	calls int
}

func (m *mockGenerator) Generate(_ context.Context, _ string, _ []result.Result) (string, error) {
	m.calls++
	return m.text, m.err
}

func newTestService(t *testing.T) (*Service, *mockRetriever, *mockGenerator) {
	t.Helper()
	mr := &mockRetriever{}
	mg := &mockGenerator{text: "Réponse générée."}
	return New(mr, mg, "procedures_bf"), mr, mg
}

func testDoc(t *testing.T, titre, url string) result.Result {
	t.Helper()
	p := procedure.Reconstruct("id-1", titre, "description", url, "", "", "", "", "", "")
	return result.New(p, 0.9)
}
