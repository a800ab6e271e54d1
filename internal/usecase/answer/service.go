// Package answer composes grounded answers from retrieved procedures.
package answer

import (
	"context"
	"fmt"
	"strings"

	domans "github.com/Dayende-ib/guichet/internal/domain/answer"
	"github.com/Dayende-ib/guichet/internal/domain/search/filter"
	"github.com/Dayende-ib/guichet/internal/domain/search/result"
)

// DefaultTopK documents retrieved per question when the caller does not ask
// for a specific count.
const DefaultTopK = 5

// User-facing French fallbacks, kept aligned with the public API contract.
const (
	msgEmptyQuestion        = "Veuillez poser une question."
	msgNoMatch              = "Aucune information pertinente trouvée dans la base des procédures."
	msgGeneratorUnavailable = "Modèle de génération indisponible. Les sources les plus pertinentes sont listées ci-dessous."
)

// Service answers questions about administrative procedures.
// The generator is optional: without one the service degrades to
// citations-only answers instead of failing.
type Service struct {
	retriever      Retriever
	generator      Generator
	collectionName string
}

// New creates an answer service. generator may be nil.
func New(retriever Retriever, generator Generator, collectionName string) *Service {
	return &Service{retriever: retriever, generator: generator, collectionName: collectionName}
}

// Ask retrieves context for the question and composes an answer with sources.
func (s *Service) Ask(
	ctx context.Context, question string, f filter.Filter, topK int,
) (domans.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return domans.New(msgEmptyQuestion, nil), nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	docs, err := s.retriever.Retrieve(ctx, s.collectionName, question, f, topK)
	if err != nil {
		return domans.Answer{}, fmt.Errorf("retrieve context: %w", err)
	}
	if len(docs) == 0 {
		return domans.New(msgNoMatch, nil), nil
	}

	sources := collectSources(docs)

	if s.generator == nil {
		return domans.New(msgGeneratorUnavailable, sources), nil
	}

	text, err := s.generator.Generate(ctx, question, docs)
	if err != nil {
		return domans.Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	return domans.New(text, sources), nil
}

func collectSources(docs []result.Result) []domans.Source {
	sources := make([]domans.Source, 0, len(docs))
	for _, d := range docs {
		sources = append(sources, domans.Source{
			Titre: d.Procedure().Titre(),
			URL:   d.Procedure().URL(),
		})
	}
	return sources
}
