package search

import (
	"errors"
	"testing"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := NewLedger(Batch{
		BatchNo:      1,
		ArtifactName: "res_a_V1",
		ArtifactPath: "batch_1_artifacts",
		OutputPath:   "batch_1_outputs",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return l
}

func TestNewLedgerRequiresBatchOne(t *testing.T) {
	if _, err := NewLedger(Batch{BatchNo: 2}); err == nil {
		t.Fatalf("expected error for ledger starting past batch 1")
	}
}

func TestLedgerAddRejectsGaps(t *testing.T) {
	l := newTestLedger(t)

	if err := l.Add(Batch{BatchNo: 3}); err == nil {
		t.Fatalf("expected error for gap insertion")
	}
	if err := l.Add(Batch{BatchNo: 1}); err == nil {
		t.Fatalf("expected error for duplicate insertion")
	}
	if err := l.Add(Batch{BatchNo: 2, ArtifactName: "res_a_b2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Len() != 2 {
		t.Errorf("expected 2 batches, got %d", l.Len())
	}
}

func TestLedgerGet(t *testing.T) {
	l := newTestLedger(t)

	b, err := l.Get(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.ArtifactName != "res_a_V1" {
		t.Errorf("expected res_a_V1, got %s", b.ArtifactName)
	}

	if _, err := l.Get(2); !errors.Is(err, ErrBatchMissing) {
		t.Fatalf("expected ErrBatchMissing, got %v", err)
	}
	if _, err := l.Get(0); !errors.Is(err, ErrBatchMissing) {
		t.Fatalf("expected ErrBatchMissing, got %v", err)
	}
}

func TestLedgerDirs(t *testing.T) {
	l := newTestLedger(t)

	if got := l.ArtifactDir(1); got != "batch_1_artifacts" {
		t.Errorf("expected recorded dir, got %s", got)
	}
	if got := l.ArtifactDir(2); got != "batch_2_artifacts" {
		t.Errorf("expected default dir, got %s", got)
	}
	if got := l.OutputDir(2); got != "batch_2_outputs" {
		t.Errorf("expected default dir, got %s", got)
	}
}

func TestRestoreLedger(t *testing.T) {
	batches := []Batch{
		{BatchNo: 1, ArtifactName: "a"},
		{BatchNo: 2, ArtifactName: "b"},
	}
	l, err := RestoreLedger(batches)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Len() != 2 {
		t.Errorf("expected 2 batches, got %d", l.Len())
	}

	if _, err := RestoreLedger(nil); err == nil {
		t.Errorf("expected error for empty snapshot")
	}
	if _, err := RestoreLedger([]Batch{{BatchNo: 2}}); err == nil {
		t.Errorf("expected error for snapshot with gap")
	}
}

func TestLedgerSnapshotIsCopy(t *testing.T) {
	l := newTestLedger(t)
	snap := l.Snapshot()
	snap[0].ArtifactName = "mutated"

	b, err := l.Get(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.ArtifactName != "res_a_V1" {
		t.Errorf("snapshot mutation leaked into ledger")
	}
}
