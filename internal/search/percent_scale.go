package search

import (
	"fmt"

	"github.com/emtune/tuner-core/pkg/utils"
)

// adjustStrength scales the output error into a variable step for
// PercentScale. Small on purpose: robust but slow.
const adjustStrength = 0.002

// PercentScale moves the last variable value toward the target by a
// fixed fraction of the current output error. It is the bootstrap
// strategy while the history is too short for fitting, and the first
// fallback when a fit degenerates.
type PercentScale struct{}

func NewPercentScale() *PercentScale {
	return &PercentScale{}
}

func (s *PercentScale) Name() string { return "PercentScale" }

func (s *PercentScale) NextValue(in Inputs) (float64, error) {
	if len(in.VariableValues) == 0 {
		return 0, fmt.Errorf("%s: empty history", s.Name())
	}

	delta := in.CurrentOutput - in.TargetOutput
	if delta < 0 {
		delta = -delta
	}
	step := adjustStrength * delta * float64(in.Correlation)

	last := in.VariableValues[len(in.VariableValues)-1]
	var next float64
	if in.CurrentOutput > in.TargetOutput {
		next = last - step
	} else {
		next = last + step
	}
	return utils.RoundToMesh(next, in.MeshSize), nil
}

func (s *PercentScale) Trace(in Inputs) ([]TracePoint, error) {
	return nil, nil
}
