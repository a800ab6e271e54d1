package indexer

import (
	"context"
	"errors"
	"testing"

	"github.com/Dayende-ib/guichet/internal/domain"
	domcol "github.com/Dayende-ib/guichet/internal/domain/collection"
	domproc "github.com/Dayende-ib/guichet/internal/domain/procedure"
	procrepo "github.com/Dayende-ib/guichet/internal/repository/procedure"
)

func TestReindex_HappyPath(t *testing.T) {
	svc, mc, mp, me := newTestService(t)
	me.tokens = 3

	mp.deleteAllFn = func(_ context.Context, name string) (int, error) {
		if name != "procedures_bf" {
			t.Errorf("unexpected collection: %s", name)
		}
		return 7, nil
	}

	var upserted []procrepo.Item
	mp.bulkUpsertFn = func(_ context.Context, _ string, items []procrepo.Item) ([]domproc.Procedure, error) {
		upserted = items
		stored := make([]domproc.Procedure, len(items))
		for i, item := range items {
			stored[i] = item.Procedure.WithID("id")
		}
		return stored, nil
	}

	report, err := svc.Reindex(context.Background(), testCorpus(t, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mc.calls != 1 {
		t.Errorf("expected 1 ensure call, got %d", mc.calls)
	}
	if report.Indexed != 5 || report.Removed != 7 {
		t.Errorf("unexpected report: %+v", report)
	}
	if report.TotalTokens != 15 {
		t.Errorf("expected 15 tokens, got %d", report.TotalTokens)
	}
	if len(upserted) != 5 {
		t.Fatalf("expected 5 items, got %d", len(upserted))
	}
	for _, item := range upserted {
		if len(item.Vector) != testVectorDim {
			t.Errorf("unexpected vector dim: %d", len(item.Vector))
		}
	}
}

func TestReindex_EmbedsInBatches(t *testing.T) {
	svc, _, _, me := newTestService(t)

	if _, err := svc.Reindex(context.Background(), testCorpus(t, 70)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(me.batchSizes) != 3 {
		t.Fatalf("expected 3 embedding batches, got %v", me.batchSizes)
	}
	if me.batchSizes[0] != 32 || me.batchSizes[1] != 32 || me.batchSizes[2] != 6 {
		t.Errorf("unexpected batch sizes: %v", me.batchSizes)
	}
}

func TestReindex_EmptyCorpus(t *testing.T) {
	svc, _, mp, me := newTestService(t)

	report, err := svc.Reindex(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Indexed != 0 {
		t.Errorf("expected 0 indexed, got %d", report.Indexed)
	}
	if len(me.batchSizes) != 0 {
		t.Error("no embedding expected for empty corpus")
	}
	if !mp.wiped {
		t.Error("expected wipe even for empty corpus")
	}
}

func TestReindex_DimMismatch(t *testing.T) {
	svc, _, mp, me := newTestService(t)
	me.dim = 3 // configured dim is 4

	_, err := svc.Reindex(context.Background(), testCorpus(t, 2))
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
	if mp.wiped {
		t.Error("store must not be wiped when embeddings are unusable")
	}
}

func TestReindex_EmbedErrorBeforeWipe(t *testing.T) {
	svc, _, mp, me := newTestService(t)
	me.err = errors.New("model down")

	_, err := svc.Reindex(context.Background(), testCorpus(t, 2))
	if err == nil {
		t.Fatal("expected error")
	}
	if mp.wiped {
		t.Error("store must not be wiped when embedding fails")
	}
}

func TestReindex_EnsureError(t *testing.T) {
	svc, mc, _, me := newTestService(t)
	mc.ensureFn = func(_ context.Context, _ domcol.Collection) (domcol.Collection, error) {
		return domcol.Collection{}, domain.ErrVectorDimMismatch
	}

	_, err := svc.Reindex(context.Background(), testCorpus(t, 1))
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
	if len(me.batchSizes) != 0 {
		t.Error("no embedding expected when the collection is unusable")
	}
}

func TestCount(t *testing.T) {
	svc, _, mp, _ := newTestService(t)
	mp.countFn = func(_ context.Context, name string) (int, error) {
		if name != "procedures_bf" {
			t.Errorf("unexpected collection: %s", name)
		}
		return 1203, nil
	}

	n, err := svc.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1203 {
		t.Errorf("expected 1203, got %d", n)
	}
}
