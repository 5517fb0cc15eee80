package search

import (
	"fmt"

	"github.com/emtune/tuner-core/pkg/utils"
)

// CrossingPointSplit partitions the history into points whose output
// lies above vs. below the target, takes the closest point on each
// side, and linearly interpolates the variable value at the target
// between those two bracketing points. It makes the fewest assumptions
// of all strategies but fails permanently until the search has
// actually bracketed the target.
type CrossingPointSplit struct {
	percent *PercentScale
}

func NewCrossingPointSplit() *CrossingPointSplit {
	return &CrossingPointSplit{percent: NewPercentScale()}
}

func (s *CrossingPointSplit) Name() string { return "CrossingPointSplit" }

// bracket holds the history points closest to the target on each side,
// with outputs expressed as offsets from the target.
type bracket struct {
	aboveVar    float64
	aboveOffset float64
	belowVar    float64
	belowOffset float64
}

func (s *CrossingPointSplit) findBracket(in Inputs) (bracket, error) {
	var (
		b        bracket
		hasAbove bool
		hasBelow bool
	)
	for i, x := range in.VariableValues {
		offset := in.OutputValues[i] - in.TargetOutput
		if offset > 0 {
			if !hasAbove || offset < b.aboveOffset {
				b.aboveOffset = offset
				b.aboveVar = x
				hasAbove = true
			}
		} else {
			if !hasBelow || offset > b.belowOffset {
				b.belowOffset = offset
				b.belowVar = x
				hasBelow = true
			}
		}
	}
	if !hasAbove || !hasBelow {
		return bracket{}, fmt.Errorf("%s: no points on both sides of target %g: %w",
			s.Name(), in.TargetOutput, ErrNoBracket)
	}
	return b, nil
}

func (s *CrossingPointSplit) NextValue(in Inputs) (float64, error) {
	if len(in.VariableValues) < minFitPoints {
		return s.percent.NextValue(in)
	}

	b, err := s.findBracket(in)
	if err != nil {
		return 0, err
	}

	// Secant through the two bracket points, evaluated at offset 0.
	slope := (b.aboveVar - b.belowVar) / (b.aboveOffset - b.belowOffset)
	next := b.belowVar - b.belowOffset*slope
	return utils.RoundToMesh(next, in.MeshSize), nil
}

func (s *CrossingPointSplit) Trace(in Inputs) ([]TracePoint, error) {
	if len(in.VariableValues) < minFitPoints {
		return nil, nil
	}

	b, err := s.findBracket(in)
	if err != nil {
		return nil, err
	}

	slope := (b.aboveVar - b.belowVar) / (b.aboveOffset - b.belowOffset)

	const tracePoints = 10
	points := make([]TracePoint, 0, tracePoints)
	for _, offset := range utils.Linspace(b.belowOffset, b.aboveOffset, tracePoints) {
		points = append(points, TracePoint{
			Variable: b.belowVar + (offset-b.belowOffset)*slope,
			Output:   in.TargetOutput + offset,
		})
	}
	return points, nil
}
