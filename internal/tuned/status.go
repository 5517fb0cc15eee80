package tuned

import (
	"sync"
	"time"

	"github.com/emtune/tuner-core/internal/search"
)

// OptimizerStatus is a point-in-time snapshot of one optimizer,
// decoupled from the live set so HTTP handlers never race the round
// loop.
type OptimizerStatus struct {
	Name           string             `json:"name"`
	Variable       string             `json:"variable"`
	Strategy       string             `json:"strategy"`
	State          string             `json:"state"`
	Round          search.RoundStatus `json:"round"`
	BatchesDone    int                `json:"batches_done"`
	NextValue      float64            `json:"next_value"`
	TargetQuantity string             `json:"target_quantity"`
	TargetValue    float64            `json:"target_value"`
	VariableValues []float64          `json:"variable_values"`
	OutputValues   []float64          `json:"output_values"`
	BestBatchNo    int                `json:"best_batch_no,omitempty"`
	BestValue      float64            `json:"best_value,omitempty"`
	UpdatedAtMs    int64              `json:"updated_at_unix_ms"`
}

// StatusStore holds the latest snapshot per optimizer.
type StatusStore struct {
	mu       sync.RWMutex
	statuses map[string]*OptimizerStatus
	order    []string
}

func NewStatusStore() *StatusStore {
	return &StatusStore{statuses: make(map[string]*OptimizerStatus)}
}

// Update refreshes the snapshot for one optimizer. round may be empty
// before the first scheduler round.
func (s *StatusStore) Update(o *search.Optimizer, round search.RoundStatus) {
	variables, outputs := o.History()
	state := "searching"
	switch {
	case o.Done():
		state = "stopped"
	case round == search.RoundWaiting:
		state = "waiting"
	}

	status := &OptimizerStatus{
		Name:           o.Name(),
		Variable:       o.VariableName(),
		Strategy:       o.StrategyName(),
		State:          state,
		Round:          round,
		BatchesDone:    o.PreviousBatchNo(),
		NextValue:      o.NextValue(),
		TargetQuantity: o.Settings().TargetQuantity,
		TargetValue:    o.Settings().TargetValue,
		VariableValues: variables,
		OutputValues:   outputs,
		UpdatedAtMs:    time.Now().UTC().UnixMilli(),
	}
	if batch, best, err := o.Closest(); err == nil {
		status.BestBatchNo = batch.BatchNo
		status.BestValue = best
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.statuses[status.Name]; !exists {
		s.order = append(s.order, status.Name)
	}
	s.statuses[status.Name] = status
}

// Get returns the snapshot for one optimizer.
func (s *StatusStore) Get(name string) (*OptimizerStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.statuses[name]
	return status, ok
}

// List returns all snapshots in insertion order.
func (s *StatusStore) List() []*OptimizerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*OptimizerStatus, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.statuses[name])
	}
	return out
}
