package search

import (
	"errors"
	"fmt"
	"math"

	"github.com/emtune/tuner-core/pkg/utils"
)

// ArtifactGenerator materializes a new simulation-input artifact from a
// base artifact plus parameter substitutions. Overwriting an existing
// output artifact is permitted.
type ArtifactGenerator interface {
	Generate(baseName, baseDir, outputName, outputDir string, params map[string]float64) error
}

// Analyzer converts a batch's solver output into the scalar value of
// one named quantity. It returns an error wrapping ErrOutputNotReady
// while the output artifact does not exist yet.
type Analyzer interface {
	Analyze(artifactName, outputDir, quantity string) (float64, error)
}

// QuantityValidator is implemented by analyzers that can reject
// unknown quantity names at configuration time.
type QuantityValidator interface {
	ValidateQuantity(quantity string) error
}

// State is the durable snapshot of an optimizer: enough to rebuild
// history and ledger at process restart.
type State struct {
	Name           string    `yaml:"name"`
	VariableValues []float64 `yaml:"variable_values"`
	OutputValues   []float64 `yaml:"output_values"`
	NextValue      float64   `yaml:"next_value"`
	Done           bool      `yaml:"done"`
	Batches        []Batch   `yaml:"batches"`
}

// StateStore persists optimizer snapshots, one record per optimizer
// name. Load returns an error wrapping ErrStateNotFound when no
// snapshot exists.
type StateStore interface {
	Save(state State) error
	Load(name string) (State, error)
}

// BatchOverrides adjusts a single optimizer's behavior per batch
// number. Every map keys on the batch number that is current when
// GenerateNextBatch runs; an override registered for batch N applies
// from batch N inclusive.
type BatchOverrides struct {
	// Values forces the next variable value for a batch, bypassing the
	// strategy.
	Values map[int]float64
	// IgnoreStop keeps generating batches past convergence.
	IgnoreStop map[int]bool
	// Strategies swaps the active strategy, governing all subsequent
	// proposals until swapped again.
	Strategies map[int]Strategy
}

// Options tunes optimizer construction.
type Options struct {
	// IgnoreCache skips restoring a persisted snapshot.
	IgnoreCache bool
	// Events receives diagnostic events; nil drops them.
	Events EventFunc
}

// Optimizer is the single-parameter search state machine. It owns its
// history and ledger exclusively; no locking is needed because the
// round model never preempts mid-round.
type Optimizer struct {
	name         string
	variableName string
	settings     Settings
	strategy     Strategy

	variableValues []float64
	outputValues   []float64
	nextValue      float64
	done           bool

	ledger    *Ledger
	generator ArtifactGenerator
	analyzer  Analyzer
	store     StateStore
	events    EventFunc
}

// New constructs an optimizer around an already-materialized batch 1
// and immediately runs one analyze+propose cycle, unless a persisted
// snapshot restores the search past that point. A batch-1 output that
// is not ready yet surfaces as ErrOutputNotReady, like any later
// round.
func New(
	name string,
	variableName string,
	first Batch,
	initialValue float64,
	settings Settings,
	generator ArtifactGenerator,
	analyzer Analyzer,
	store StateStore,
	opts *Options,
) (*Optimizer, error) {
	if name == "" {
		return nil, fmt.Errorf("optimizer name must be set")
	}
	if variableName == "" {
		return nil, fmt.Errorf("optimizer %s: variable name must be set", name)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("optimizer %s: invalid settings: %w", name, err)
	}
	if generator == nil || analyzer == nil || store == nil {
		return nil, fmt.Errorf("optimizer %s: generator, analyzer and store are required", name)
	}
	if qv, ok := analyzer.(QuantityValidator); ok {
		if err := qv.ValidateQuantity(settings.TargetQuantity); err != nil {
			return nil, fmt.Errorf("optimizer %s: %w", name, err)
		}
	}

	if first.BatchNo == 0 {
		first.BatchNo = 1
	}
	ledger, err := NewLedger(first)
	if err != nil {
		return nil, fmt.Errorf("optimizer %s: %w", name, err)
	}

	o := &Optimizer{
		name:         name,
		variableName: variableName,
		settings:     settings,
		strategy:     settings.Strategy,
		nextValue:    initialValue,
		ledger:       ledger,
		generator:    generator,
		analyzer:     analyzer,
		store:        store,
	}
	if opts != nil {
		o.events = opts.Events
	}

	if opts == nil || !opts.IgnoreCache {
		restored, err := o.restore()
		if err != nil {
			return nil, fmt.Errorf("optimizer %s: restoring state: %w", name, err)
		}
		if restored {
			return o, nil
		}
	}

	// Bootstrap cycle: analyze batch 1 and propose batch 2.
	if err := o.AnalyzeBatch(); err != nil {
		return nil, fmt.Errorf("optimizer %s: %w", name, err)
	}
	if err := o.GenerateNextBatch(nil); err != nil {
		return nil, fmt.Errorf("optimizer %s: %w", name, err)
	}
	return o, nil
}

// restore loads a persisted snapshot. It reports false when no
// snapshot exists or the snapshot predates the first analysis.
func (o *Optimizer) restore() (bool, error) {
	state, err := o.store.Load(o.name)
	if errors.Is(err, ErrStateNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(state.VariableValues) != len(state.OutputValues) {
		return false, fmt.Errorf("snapshot history misaligned: %d variable values vs %d output values",
			len(state.VariableValues), len(state.OutputValues))
	}
	if len(state.VariableValues) == 0 {
		return false, nil
	}
	ledger, err := RestoreLedger(state.Batches)
	if err != nil {
		return false, err
	}
	o.variableValues = append([]float64(nil), state.VariableValues...)
	o.outputValues = append([]float64(nil), state.OutputValues...)
	o.nextValue = state.NextValue
	o.done = state.Done
	o.ledger = ledger
	o.events.emit(EventInfo, o.name, o.CurrentBatchNo(),
		fmt.Sprintf("restored state with %d analyzed batches", len(o.outputValues)))

	// A snapshot written between analysis and generation (the process
	// died with the next batch not yet materialized) restores with no
	// ledger entry for the current batch. Catch up by generating it now
	// so the next round analyzes instead of failing the lookup.
	if !o.done && o.ledger.Len() < o.CurrentBatchNo() {
		o.events.emit(EventWarn, o.name, o.CurrentBatchNo(),
			"restored snapshot predates batch generation, regenerating")
		if err := o.GenerateNextBatch(nil); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Name returns the optimizer's unique name.
func (o *Optimizer) Name() string { return o.name }

// VariableName returns the name of the design variable under search.
func (o *Optimizer) VariableName() string { return o.variableName }

// StrategyName returns the name of the active strategy.
func (o *Optimizer) StrategyName() string { return o.strategy.Name() }

// Settings returns the optimizer's immutable settings.
func (o *Optimizer) Settings() Settings { return o.settings }

// Done reports whether the search has converged and stopped.
func (o *Optimizer) Done() bool { return o.done }

// PreviousBatchNo is the number of the last fully analyzed batch.
func (o *Optimizer) PreviousBatchNo() int { return len(o.variableValues) }

// CurrentBatchNo is the batch awaiting analysis.
func (o *Optimizer) CurrentBatchNo() int { return len(o.variableValues) + 1 }

// NextValue is the variable value of the batch awaiting analysis.
func (o *Optimizer) NextValue() float64 { return o.nextValue }

// History returns copies of the aligned variable and output sequences.
func (o *Optimizer) History() (variableValues, outputValues []float64) {
	return append([]float64(nil), o.variableValues...),
		append([]float64(nil), o.outputValues...)
}

// Ledger returns a snapshot of the batch ledger.
func (o *Optimizer) Ledger() []Batch { return o.ledger.Snapshot() }

// CurrentOutput returns the output value of the last analyzed batch.
func (o *Optimizer) CurrentOutput() (float64, error) {
	if len(o.outputValues) == 0 {
		return 0, fmt.Errorf("optimizer %s: no batches analyzed yet", o.name)
	}
	return o.outputValues[len(o.outputValues)-1], nil
}

// CurrentVariable returns the variable value of the last analyzed batch.
func (o *Optimizer) CurrentVariable() (float64, error) {
	if len(o.variableValues) == 0 {
		return 0, fmt.Errorf("optimizer %s: no batches analyzed yet", o.name)
	}
	return o.variableValues[len(o.variableValues)-1], nil
}

// HasReachedTarget reports whether the last analyzed output lies
// within the inclusive tolerance band
// target*(1-tol) <= output <= target*(1+tol).
func (o *Optimizer) HasReachedTarget() bool {
	if len(o.outputValues) == 0 {
		return false
	}
	last := o.outputValues[len(o.outputValues)-1]
	lo := o.settings.TargetValue * (1 - o.settings.Tolerance)
	hi := o.settings.TargetValue * (1 + o.settings.Tolerance)
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo <= last && last <= hi
}

// AnalyzeBatch asks the analysis collaborator to measure the current
// batch and appends the result to the history. A missing output
// artifact surfaces as ErrOutputNotReady and can be retried; a ledger
// miss means the batch was never generated and is fatal.
func (o *Optimizer) AnalyzeBatch() error {
	batch, err := o.ledger.Get(o.CurrentBatchNo())
	if err != nil {
		return err
	}

	value, err := o.analyzer.Analyze(batch.ArtifactName, batch.OutputPath, o.settings.TargetQuantity)
	if err != nil {
		return err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("optimizer %s: analysis of batch %d for %q produced non-finite value %v",
			o.name, batch.BatchNo, o.settings.TargetQuantity, value)
	}

	o.outputValues = append(o.outputValues, value)
	o.variableValues = append(o.variableValues, o.nextValue)
	o.events.emit(EventInfo, o.name, batch.BatchNo,
		fmt.Sprintf("analyzed batch: %s=%g at %s=%g", o.settings.TargetQuantity, value, o.variableName, o.nextValue))
	return o.persist()
}

// proposeValue computes the next variable value from the active
// strategy and clamps it into any configured bounds. Clamping is a
// warning-level event, not an error.
func (o *Optimizer) proposeValue() (float64, error) {
	current, err := o.CurrentOutput()
	if err != nil {
		return 0, err
	}
	next, err := o.strategy.NextValue(Inputs{
		CurrentOutput:  current,
		TargetOutput:   o.settings.TargetValue,
		VariableValues: o.variableValues,
		OutputValues:   o.outputValues,
		Correlation:    o.settings.Correlation,
		MeshSize:       o.settings.MeshSize,
	})
	if err != nil {
		return 0, err
	}

	lo, hi := math.Inf(-1), math.Inf(1)
	if o.settings.MinValue != nil {
		lo = *o.settings.MinValue
	}
	if o.settings.MaxValue != nil {
		hi = *o.settings.MaxValue
	}
	clamped := utils.ClampFloat64(next, lo, hi)
	if clamped != next {
		side := "below min"
		if next > hi {
			side = "above max"
		}
		o.events.emit(EventWarn, o.name, o.CurrentBatchNo(),
			fmt.Sprintf("%s proposed %g, %s bound; clamped to %g", o.strategy.Name(), next, side, clamped))
	}
	return clamped, nil
}

// GenerateNextBatch decides the next variable value, materializes the
// next simulation-input artifact and records it in the ledger. When
// the search has converged and no ignore-stop override applies, the
// optimizer stops instead and no batch is generated.
func (o *Optimizer) GenerateNextBatch(ov *BatchOverrides) error {
	batchNo := o.CurrentBatchNo()

	if o.HasReachedTarget() {
		current, _ := o.CurrentOutput()
		variable, _ := o.CurrentVariable()
		o.events.emit(EventInfo, o.name, o.PreviousBatchNo(),
			fmt.Sprintf("reached target %s=%g at %s=%g", o.settings.TargetQuantity, current, o.variableName, variable))
		if ov == nil || !ov.IgnoreStop[batchNo] {
			o.done = true
			return o.persist()
		}
		o.events.emit(EventWarn, o.name, batchNo, "ignore-stop override set, continuing past target")
	}

	if ov != nil {
		if strat, ok := ov.Strategies[batchNo]; ok && strat != nil {
			o.strategy = strat
			o.events.emit(EventWarn, o.name, batchNo,
				fmt.Sprintf("strategy override: %s from batch %d", strat.Name(), batchNo))
		}
	}

	var value float64
	overridden := false
	if ov != nil {
		if v, ok := ov.Values[batchNo]; ok {
			value = v
			overridden = true
			o.events.emit(EventWarn, o.name, batchNo, fmt.Sprintf("value override: %s=%g", o.variableName, v))
		}
	}
	if !overridden {
		v, err := o.proposeValue()
		if err != nil {
			return err
		}
		value = v
	}
	o.nextValue = value

	prev, err := o.ledger.Get(o.PreviousBatchNo())
	if err != nil {
		return err
	}

	next := Batch{
		BatchNo:      batchNo,
		ArtifactName: o.artifactName(batchNo, value),
		ArtifactPath: o.ledger.ArtifactDir(batchNo),
		OutputPath:   o.ledger.OutputDir(batchNo),
	}
	params := map[string]float64{o.variableName: value}
	if err := o.generator.Generate(prev.ArtifactName, prev.ArtifactPath, next.ArtifactName, next.ArtifactPath, params); err != nil {
		return fmt.Errorf("optimizer %s: generating batch %d: %w", o.name, batchNo, err)
	}
	if err := o.ledger.Add(next); err != nil {
		return err
	}
	o.events.emit(EventInfo, o.name, batchNo,
		fmt.Sprintf("generated batch with %s=%g", o.variableName, value))
	return o.persist()
}

// artifactName builds the artifact name for a batch, keeping the
// variable value visible in the filename.
func (o *Optimizer) artifactName(batchNo int, value float64) string {
	return fmt.Sprintf("batch_%d__%s_%s_%g", batchNo, o.name, o.variableName, value)
}

// Step runs one analyze+propose cycle. It returns ErrFinished once the
// search has stopped and ErrOutputNotReady while the current batch's
// output has not appeared yet.
func (o *Optimizer) Step(ov *BatchOverrides) error {
	if o.done {
		return ErrFinished
	}
	if err := o.AnalyzeBatch(); err != nil {
		return err
	}
	return o.GenerateNextBatch(ov)
}

// Trace renders the active strategy's fit over the current history for
// external presentation.
func (o *Optimizer) Trace() ([]TracePoint, error) {
	current, err := o.CurrentOutput()
	if err != nil {
		return nil, err
	}
	return o.strategy.Trace(Inputs{
		CurrentOutput:  current,
		TargetOutput:   o.settings.TargetValue,
		VariableValues: o.variableValues,
		OutputValues:   o.outputValues,
		Correlation:    o.settings.Correlation,
		MeshSize:       o.settings.MeshSize,
	})
}

// Optimized returns the batch and variable value that reached the
// target. It fails with ErrNotOptimized before convergence.
func (o *Optimizer) Optimized() (Batch, float64, error) {
	if !o.HasReachedTarget() {
		return Batch{}, 0, fmt.Errorf("optimizer %s: %w", o.name, ErrNotOptimized)
	}
	batch, err := o.ledger.Get(o.PreviousBatchNo())
	if err != nil {
		return Batch{}, 0, err
	}
	return batch, o.variableValues[len(o.variableValues)-1], nil
}

// Closest returns the batch and variable value whose output is closest
// to the target so far. Unlike Optimized it never fails on an
// unconverged search, so callers can always retrieve a best-effort
// result.
func (o *Optimizer) Closest() (Batch, float64, error) {
	if batch, value, err := o.Optimized(); err == nil {
		return batch, value, nil
	}
	idx := utils.ArgminAbsDiff(o.outputValues, o.settings.TargetValue)
	if idx < 0 {
		return Batch{}, 0, fmt.Errorf("optimizer %s: no batches analyzed yet", o.name)
	}
	batch, err := o.ledger.Get(idx + 1)
	if err != nil {
		return Batch{}, 0, err
	}
	return batch, o.variableValues[idx], nil
}

// persist writes the current snapshot through the state store.
// Persistence failures surface to the caller, never swallowed.
func (o *Optimizer) persist() error {
	state := State{
		Name:           o.name,
		VariableValues: append([]float64(nil), o.variableValues...),
		OutputValues:   append([]float64(nil), o.outputValues...),
		NextValue:      o.nextValue,
		Done:           o.done,
		Batches:        o.ledger.Snapshot(),
	}
	if err := o.store.Save(state); err != nil {
		return fmt.Errorf("optimizer %s: persisting state: %w", o.name, err)
	}
	return nil
}
