package search

import "errors"

var (
	// ErrOutputNotReady signals that the solver output for the current
	// batch does not exist yet. Callers should retry the round later.
	ErrOutputNotReady = errors.New("solver output not ready")

	// ErrFinished signals that an optimizer has converged and stopped.
	ErrFinished = errors.New("search finished")

	// ErrNoBracket is returned by CrossingPointSplit when the history
	// has no points on one side of the target.
	ErrNoBracket = errors.New("target not bracketed by history")

	// ErrValueExhausted is returned when every strategy in a fallback
	// chain proposes an already-simulated value.
	ErrValueExhausted = errors.New("unable to find appropriate next value")

	// ErrBatchMissing is returned on a ledger lookup for a batch that
	// was never generated.
	ErrBatchMissing = errors.New("batch not in ledger")

	// ErrDuplicateName is returned when adding an optimizer whose name
	// already exists in a set.
	ErrDuplicateName = errors.New("duplicate optimizer name")

	// ErrStateNotFound is returned by a StateStore when no snapshot
	// exists for an optimizer name.
	ErrStateNotFound = errors.New("optimizer state not found")

	// ErrNotOptimized is returned by the optimized-result accessors
	// before the search has converged.
	ErrNotOptimized = errors.New("optimizer has not reached target")
)
