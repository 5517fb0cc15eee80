package search

import (
	"fmt"

	"github.com/emtune/tuner-core/pkg/utils"
)

// LinFit fits the variable as a linear function of the output over the
// whole history and evaluates the fit at the target output. When the
// fit proposes an already-simulated value it falls back to
// PercentScale, then MeshStep; exhausting all three is fatal for the
// search.
type LinFit struct {
	chain fitChain
}

func NewLinFit() *LinFit {
	return &LinFit{chain: newFitChain(1)}
}

func (s *LinFit) Name() string { return "LinFit" }

func (s *LinFit) NextValue(in Inputs) (float64, error) {
	return s.chain.nextValue(s.Name(), in)
}

func (s *LinFit) Trace(in Inputs) ([]TracePoint, error) {
	return s.chain.trace(s.Name(), in)
}

// PolyFit generalizes LinFit to a degree-n polynomial fit, with the
// same fallback chain and the same failure condition.
type PolyFit struct {
	degree int
	chain  fitChain
}

func NewPolyFit(degree int) (*PolyFit, error) {
	if degree < 1 {
		return nil, fmt.Errorf("poly fit degree must be >= 1, got %d", degree)
	}
	return &PolyFit{degree: degree, chain: newFitChain(degree)}, nil
}

func (s *PolyFit) Name() string { return fmt.Sprintf("PolyFit(%d)", s.degree) }

func (s *PolyFit) Degree() int { return s.degree }

func (s *PolyFit) NextValue(in Inputs) (float64, error) {
	return s.chain.nextValue(s.Name(), in)
}

func (s *PolyFit) Trace(in Inputs) ([]TracePoint, error) {
	return s.chain.trace(s.Name(), in)
}

// fitChain holds the fit degree and the explicit fallback strategies
// shared by LinFit and PolyFit.
type fitChain struct {
	degree   int
	percent  *PercentScale
	meshStep *MeshStep
}

func newFitChain(degree int) fitChain {
	return fitChain{
		degree:   degree,
		percent:  NewPercentScale(),
		meshStep: NewMeshStep(),
	}
}

func (c fitChain) nextValue(name string, in Inputs) (float64, error) {
	if len(in.VariableValues) < minFitPoints {
		return c.percent.NextValue(in)
	}

	coeffs, err := utils.PolyFit(in.OutputValues, in.VariableValues, c.degree)
	if err == nil {
		next := utils.RoundToMesh(utils.PolyEval(coeffs, in.TargetOutput), in.MeshSize)
		if !alreadyTried(next, in.VariableValues) {
			return next, nil
		}
	}

	// Degenerate or stuck fit, walk the fallback chain.
	next, err := c.percent.NextValue(in)
	if err != nil {
		return 0, err
	}
	if !alreadyTried(next, in.VariableValues) {
		return next, nil
	}

	next, err = c.meshStep.NextValue(in)
	if err != nil {
		return 0, err
	}
	if !alreadyTried(next, in.VariableValues) {
		return next, nil
	}

	return 0, fmt.Errorf("%s: %w", name, ErrValueExhausted)
}

func (c fitChain) trace(name string, in Inputs) ([]TracePoint, error) {
	if len(in.VariableValues) < minFitPoints {
		return nil, nil
	}

	coeffs, err := utils.PolyFit(in.OutputValues, in.VariableValues, c.degree)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	yMin, yMax := in.OutputValues[0], in.OutputValues[0]
	for _, y := range in.OutputValues {
		if y < yMin {
			yMin = y
		}
		if y > yMax {
			yMax = y
		}
	}

	const tracePoints = 50
	points := make([]TracePoint, 0, tracePoints)
	for _, y := range utils.Linspace(yMin, yMax, tracePoints) {
		points = append(points, TracePoint{
			Variable: utils.PolyEval(coeffs, y),
			Output:   y,
		})
	}
	return points, nil
}
