package search

import (
	"fmt"

	"github.com/emtune/tuner-core/pkg/utils"
)

// MeshStep moves the last variable value by exactly one
// correlation-signed mesh step toward the target. Last-resort fallback
// when richer strategies keep proposing already-tried values.
type MeshStep struct{}

func NewMeshStep() *MeshStep {
	return &MeshStep{}
}

func (s *MeshStep) Name() string { return "MeshStep" }

func (s *MeshStep) NextValue(in Inputs) (float64, error) {
	if len(in.VariableValues) == 0 {
		return 0, fmt.Errorf("%s: empty history", s.Name())
	}

	step := float64(in.Correlation) * in.MeshSize
	last := in.VariableValues[len(in.VariableValues)-1]
	var next float64
	if in.CurrentOutput > in.TargetOutput {
		next = last - step
	} else {
		next = last + step
	}
	return utils.RoundToMesh(next, in.MeshSize), nil
}

func (s *MeshStep) Trace(in Inputs) ([]TracePoint, error) {
	return nil, nil
}
