package tuned

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/emtune/tuner-core/internal/report"
	"github.com/emtune/tuner-core/internal/search"
	"github.com/emtune/tuner-core/pkg/logger"
)

// Runner drives the optimizer set through scheduler rounds on a
// polling interval. The external solver produces output artifacts at
// unpredictable times, so a round whose optimizers are all waiting
// simply sleeps until the next poll.
type Runner struct {
	mu        sync.Mutex
	set       *search.Set
	overrides *search.Overrides
	interval  time.Duration
	status    *StatusStore
}

func NewRunner(set *search.Set, overrides *search.Overrides, interval time.Duration, status *StatusStore) *Runner {
	r := &Runner{
		set:       set,
		overrides: overrides,
		interval:  interval,
		status:    status,
	}
	r.refreshStatuses(nil)
	return r
}

func (r *Runner) refreshStatuses(rounds map[string]search.RoundStatus) {
	for _, name := range r.set.Names() {
		o, ok := r.set.Get(name)
		if !ok {
			continue
		}
		r.status.Update(o, rounds[name])
	}
}

// RunOnce executes a single synchronized round.
func (r *Runner) RunOnce() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rounds, err := r.set.RunRound(r.overrides)
	if err != nil {
		return err
	}
	r.refreshStatuses(rounds)
	return nil
}

// Run loops rounds until every search has stopped or ctx is cancelled.
// A search that never receives solver output stays waiting
// indefinitely; there is no internal timeout.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.overrides.Validate(r.set); err != nil {
		return err
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if err := r.RunOnce(); err != nil {
			return err
		}
		if r.set.Done() {
			logger.Info("all optimizers finished")
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// WriteReport streams the current xlsx report, serialized against the
// round loop.
func (r *Runner) WriteReport(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return report.Write(w, r.set)
}

// WriteOptimizerReport streams a single optimizer's xlsx export,
// serialized against the round loop.
func (r *Runner) WriteOptimizerReport(w io.Writer, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.set.Get(name)
	if !ok {
		return fmt.Errorf("optimizer %q not in set", name)
	}
	return report.WriteOptimizer(w, o)
}

// SaveReport writes the xlsx report to path, serialized against the
// round loop.
func (r *Runner) SaveReport(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return report.WriteWorkbook(path, r.set)
}
