// Package indexer rebuilds the procedure collection from a corpus.
package indexer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Dayende-ib/guichet/internal/domain"
	domcol "github.com/Dayende-ib/guichet/internal/domain/collection"
	domproc "github.com/Dayende-ib/guichet/internal/domain/procedure"
	procrepo "github.com/Dayende-ib/guichet/internal/repository/procedure"
)

// embedBatchSize caps how many passages go into one embedding API call.
const embedBatchSize = 32

// Report summarizes a completed reindex run.
type Report struct {
	Indexed     int
	Removed     int
	TotalTokens int
}

// Service performs full corpus reindexing. A reindex wholesale-replaces the
// collection's records; it never merges with the previous state.
type Service struct {
	colls     CollectionEnsurer
	procs     ProcedureWriter
	embed     PassageEmbedder
	vectorDim int
	logger    *zap.Logger
}

// New creates an indexer service.
func New(colls CollectionEnsurer, procs ProcedureWriter, embed PassageEmbedder, vectorDim int, logger *zap.Logger) *Service {
	return &Service{colls: colls, procs: procs, embed: embed, vectorDim: vectorDim, logger: logger}
}

// Reindex ensures the collection exists, wipes its records, embeds every
// corpus document with passage intent, and bulk-loads the result. Any
// failure aborts before the store is left partially rebuilt where possible;
// embedding errors surface before the wipe.
func (s *Service) Reindex(ctx context.Context, procs []domproc.Procedure) (Report, error) {
	col, err := domcol.New(domain.CollectionName, s.vectorDim)
	if err != nil {
		return Report{}, fmt.Errorf("build collection: %w", err)
	}
	if _, err := s.colls.Ensure(ctx, col); err != nil {
		return Report{}, fmt.Errorf("ensure collection: %w", err)
	}

	items, tokens, err := s.embedAll(ctx, procs)
	if err != nil {
		return Report{}, err
	}

	removed, err := s.procs.DeleteAll(ctx, domain.CollectionName)
	if err != nil {
		return Report{}, fmt.Errorf("wipe collection: %w", err)
	}
	s.logger.Info("Cleared previous records", zap.Int("removed", removed))

	stored, err := s.procs.BulkUpsert(ctx, domain.CollectionName, items)
	if err != nil {
		return Report{}, fmt.Errorf("bulk upsert: %w", err)
	}

	s.logger.Info("Reindex complete",
		zap.Int("indexed", len(stored)),
		zap.Int("removed", removed),
		zap.Int("total_tokens", tokens),
	)

	return Report{Indexed: len(stored), Removed: removed, TotalTokens: tokens}, nil
}

// Count reports how many procedures the collection currently holds.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.procs.Count(ctx, domain.CollectionName)
}

// embedAll vectorizes every procedure's passage text in bounded batches and
// verifies each vector against the configured dimension.
func (s *Service) embedAll(ctx context.Context, procs []domproc.Procedure) ([]procrepo.Item, int, error) {
	items := make([]procrepo.Item, 0, len(procs))
	var tokens int

	for start := 0; start < len(procs); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(procs) {
			end = len(procs)
		}
		chunk := procs[start:end]

		texts := make([]string, len(chunk))
		for i, p := range chunk {
			texts[i] = p.EmbeddingText()
		}

		batch, err := s.embed.BatchEmbed(ctx, texts)
		if err != nil {
			return nil, 0, fmt.Errorf("embed corpus [%d:%d]: %w", start, end, err)
		}
		if len(batch.Embeddings) != len(chunk) {
			return nil, 0, fmt.Errorf("embed corpus [%d:%d]: got %d embeddings for %d texts",
				start, end, len(batch.Embeddings), len(chunk))
		}
		tokens += batch.TotalTokens

		for i, p := range chunk {
			vec := batch.Embeddings[i]
			if len(vec) != s.vectorDim {
				return nil, 0, fmt.Errorf(
					"%q: embedding dimension %d, want %d: %w",
					p.Titre(), len(vec), s.vectorDim, domain.ErrVectorDimMismatch,
				)
			}
			items = append(items, procrepo.Item{Procedure: p, Vector: vec})
		}
	}

	return items, tokens, nil
}
