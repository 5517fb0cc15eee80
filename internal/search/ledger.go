package search

import "fmt"

// Batch records the artifact identity produced for one
// generate-simulate-analyze cycle. Batch 1 is supplied by the caller;
// every later batch is derived from its predecessor.
type Batch struct {
	BatchNo      int    `yaml:"batch_no"`
	ArtifactName string `yaml:"artifact_name"`
	ArtifactPath string `yaml:"artifact_path"`
	OutputPath   string `yaml:"output_path"`
}

// Ledger maps batch numbers to batches. Numbers are dense and start at
// 1: batch N+1 may only be added once batch N exists.
type Ledger struct {
	batches []Batch
}

// NewLedger creates a ledger seeded with batch 1.
func NewLedger(first Batch) (*Ledger, error) {
	if first.BatchNo != 1 {
		return nil, fmt.Errorf("ledger must start at batch 1, got batch %d", first.BatchNo)
	}
	return &Ledger{batches: []Batch{first}}, nil
}

// RestoreLedger rebuilds a ledger from a persisted snapshot, checking
// the no-gaps invariant.
func RestoreLedger(batches []Batch) (*Ledger, error) {
	if len(batches) == 0 {
		return nil, fmt.Errorf("cannot restore an empty ledger")
	}
	for i, b := range batches {
		if b.BatchNo != i+1 {
			return nil, fmt.Errorf("ledger snapshot has gap: position %d holds batch %d", i+1, b.BatchNo)
		}
	}
	restored := make([]Batch, len(batches))
	copy(restored, batches)
	return &Ledger{batches: restored}, nil
}

// Add appends the next batch. Inserting anything other than batch
// len+1 violates the density invariant and is rejected.
func (l *Ledger) Add(b Batch) error {
	if b.BatchNo != len(l.batches)+1 {
		return fmt.Errorf("ledger holds batches 1..%d, cannot add batch %d", len(l.batches), b.BatchNo)
	}
	l.batches = append(l.batches, b)
	return nil
}

// Get looks up a batch by number.
func (l *Ledger) Get(batchNo int) (Batch, error) {
	if batchNo < 1 || batchNo > len(l.batches) {
		return Batch{}, fmt.Errorf("batch %d: %w", batchNo, ErrBatchMissing)
	}
	return l.batches[batchNo-1], nil
}

// Len returns the number of recorded batches.
func (l *Ledger) Len() int { return len(l.batches) }

// Snapshot returns a copy of all batches in numeric order.
func (l *Ledger) Snapshot() []Batch {
	out := make([]Batch, len(l.batches))
	copy(out, l.batches)
	return out
}

// ArtifactDir returns the directory artifacts for a batch live in: the
// recorded directory for known batches, the default per-batch
// directory for a batch about to be generated.
func (l *Ledger) ArtifactDir(batchNo int) string {
	if b, err := l.Get(batchNo); err == nil {
		return b.ArtifactPath
	}
	return fmt.Sprintf("batch_%d_artifacts", batchNo)
}

// OutputDir is the analogue of ArtifactDir for solver output files.
func (l *Ledger) OutputDir(batchNo int) string {
	if b, err := l.Get(batchNo); err == nil {
		return b.OutputPath
	}
	return fmt.Sprintf("batch_%d_outputs", batchNo)
}
