package search

import (
	"errors"
	"fmt"
)

// Overrides adjusts optimizers in a set per round, keyed by optimizer
// name and then by the batch number the override applies from
// (inclusive). Referencing an unknown optimizer name is a
// configuration error raised before any round executes.
type Overrides struct {
	Values     map[string]map[int]float64
	IgnoreStop map[string]map[int]bool
	Strategies map[string]map[int]Strategy
}

// Validate checks that every override references an optimizer in the
// set.
func (ov *Overrides) Validate(s *Set) error {
	if ov == nil {
		return nil
	}
	check := func(kind string, names []string) error {
		for _, name := range names {
			if _, ok := s.optimizers[name]; !ok {
				return fmt.Errorf("%s override references unknown optimizer %q", kind, name)
			}
		}
		return nil
	}
	if err := check("value", mapKeys(ov.Values)); err != nil {
		return err
	}
	if err := check("ignore-stop", mapKeys(ov.IgnoreStop)); err != nil {
		return err
	}
	return check("strategy", mapKeys(ov.Strategies))
}

func mapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// forOptimizer narrows the set-level overrides to one optimizer.
func (ov *Overrides) forOptimizer(name string) *BatchOverrides {
	if ov == nil {
		return nil
	}
	b := &BatchOverrides{
		Values:     ov.Values[name],
		IgnoreStop: ov.IgnoreStop[name],
		Strategies: ov.Strategies[name],
	}
	if b.Values == nil && b.IgnoreStop == nil && b.Strategies == nil {
		return nil
	}
	return b
}

// RoundStatus classifies one optimizer's outcome in one round.
type RoundStatus string

const (
	// RoundAdvanced means the optimizer analyzed its batch and
	// generated (or decided not to generate) the next one.
	RoundAdvanced RoundStatus = "advanced"
	// RoundWaiting means the solver output is not present yet; the
	// optimizer is paused, not failed.
	RoundWaiting RoundStatus = "waiting"
	// RoundFinished means the search converged and stopped.
	RoundFinished RoundStatus = "finished"
)

// Set runs a collection of independent optimizers through synchronized
// batch rounds.
type Set struct {
	order      []string
	optimizers map[string]*Optimizer
}

func NewSet() *Set {
	return &Set{optimizers: make(map[string]*Optimizer)}
}

// Add registers optimizers. Names must be unique across the set; batch
// collisions across optimizers are prevented by per-optimizer naming.
func (s *Set) Add(opts ...*Optimizer) error {
	for _, o := range opts {
		if _, exists := s.optimizers[o.Name()]; exists {
			return fmt.Errorf("optimizer %q: %w", o.Name(), ErrDuplicateName)
		}
		s.optimizers[o.Name()] = o
		s.order = append(s.order, o.Name())
	}
	return nil
}

// Get returns an optimizer by name.
func (s *Set) Get(name string) (*Optimizer, bool) {
	o, ok := s.optimizers[name]
	return o, ok
}

// Names returns the optimizer names in insertion order.
func (s *Set) Names() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of optimizers in the set.
func (s *Set) Len() int { return len(s.order) }

// Done reports whether every optimizer in the set has stopped.
func (s *Set) Done() bool {
	for _, o := range s.optimizers {
		if !o.Done() {
			return false
		}
	}
	return len(s.optimizers) > 0
}

// RunRound drives every not-yet-finished optimizer through one
// analyze+propose cycle. Outcomes are classified per optimizer:
// missing output pauses that optimizer for the round, a finished
// search stops it, and any other failure aborts the whole round.
func (s *Set) RunRound(ov *Overrides) (map[string]RoundStatus, error) {
	if err := ov.Validate(s); err != nil {
		return nil, err
	}

	statuses := make(map[string]RoundStatus, len(s.order))
	for _, name := range s.order {
		o := s.optimizers[name]
		err := o.Step(ov.forOptimizer(name))
		switch {
		case err == nil:
			if o.Done() {
				statuses[name] = RoundFinished
			} else {
				statuses[name] = RoundAdvanced
			}
		case errors.Is(err, ErrOutputNotReady):
			statuses[name] = RoundWaiting
		case errors.Is(err, ErrFinished):
			statuses[name] = RoundFinished
		default:
			return nil, fmt.Errorf("round failed at optimizer %q: %w", name, err)
		}
	}
	return statuses, nil
}

// Run repeats rounds until every optimizer is either finished or
// waiting on solver output. An optimizer that reports waiting is not
// driven again within this invocation; callers re-invoke Run once the
// external solver has produced results.
func (s *Set) Run(ov *Overrides) error {
	if err := ov.Validate(s); err != nil {
		return err
	}

	stopped := make(map[string]bool, len(s.order))
	for !allStopped(stopped, s.order) {
		for _, name := range s.order {
			if stopped[name] {
				continue
			}
			o := s.optimizers[name]
			err := o.Step(ov.forOptimizer(name))
			switch {
			case err == nil:
				if o.Done() {
					stopped[name] = true
				}
			case errors.Is(err, ErrOutputNotReady):
				stopped[name] = true
			case errors.Is(err, ErrFinished):
				stopped[name] = true
			default:
				return fmt.Errorf("optimizer %q: %w", name, err)
			}
		}
	}
	return nil
}

func allStopped(stopped map[string]bool, names []string) bool {
	for _, name := range names {
		if !stopped[name] {
			return false
		}
	}
	return true
}
