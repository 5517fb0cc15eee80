package search

import (
	"errors"
	"testing"
)

func TestCrossingPointSplitInterpolatesBracket(t *testing.T) {
	s := NewCrossingPointSplit()

	// Closest above: (120, 2010); closest below: (130, 1990). The
	// secant through them crosses the target halfway at 125.
	in := Inputs{
		CurrentOutput:  1990,
		TargetOutput:   2000,
		VariableValues: []float64{100, 110, 120, 130},
		OutputValues:   []float64{2050, 2030, 2010, 1990},
		Correlation:    -1,
		MeshSize:       1.0,
	}
	got, err := s.NextValue(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 125 {
		t.Errorf("expected 125, got %v", got)
	}
}

func TestCrossingPointSplitPicksClosestPoints(t *testing.T) {
	s := NewCrossingPointSplit()

	// Far points must not influence the crossing: the bracket is
	// (40, 2020) above and (60, 1980) below, crossing at 50.
	in := Inputs{
		CurrentOutput:  1980,
		TargetOutput:   2000,
		VariableValues: []float64{10, 40, 90, 60},
		OutputValues:   []float64{2300, 2020, 1700, 1980},
		Correlation:    -1,
		MeshSize:       1.0,
	}
	got, err := s.NextValue(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 50 {
		t.Errorf("expected 50, got %v", got)
	}
}

func TestCrossingPointSplitRequiresBracket(t *testing.T) {
	s := NewCrossingPointSplit()

	// All outputs below target: no bracket, no fallback.
	in := Inputs{
		CurrentOutput:  1900,
		TargetOutput:   2000,
		VariableValues: []float64{100, 110, 120, 130},
		OutputValues:   []float64{1600, 1700, 1800, 1900},
		Correlation:    1,
		MeshSize:       1.0,
	}
	_, err := s.NextValue(in)
	if !errors.Is(err, ErrNoBracket) {
		t.Fatalf("expected ErrNoBracket, got %v", err)
	}

	// All outputs above target behaves the same.
	for i := range in.OutputValues {
		in.OutputValues[i] += 500
	}
	in.CurrentOutput = 2400
	_, err = s.NextValue(in)
	if !errors.Is(err, ErrNoBracket) {
		t.Fatalf("expected ErrNoBracket, got %v", err)
	}
}

func TestCrossingPointSplitDelegatesOnShortHistory(t *testing.T) {
	s := NewCrossingPointSplit()
	p := NewPercentScale()

	in := Inputs{
		CurrentOutput:  1900,
		TargetOutput:   2000,
		VariableValues: []float64{100, 110},
		OutputValues:   []float64{1800, 1900},
		Correlation:    1,
		MeshSize:       1.0,
	}
	got, err := s.NextValue(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, err := p.NextValue(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("expected PercentScale result %v for short history, got %v", want, got)
	}
}

func TestCrossingPointSplitTrace(t *testing.T) {
	s := NewCrossingPointSplit()

	in := Inputs{
		CurrentOutput:  1990,
		TargetOutput:   2000,
		VariableValues: []float64{100, 110, 120, 130},
		OutputValues:   []float64{2050, 2030, 2010, 1990},
		Correlation:    -1,
		MeshSize:       1.0,
	}
	points, err := s.Trace(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 10 {
		t.Fatalf("expected 10 trace points, got %d", len(points))
	}
	if points[0].Output != 1990 || points[len(points)-1].Output != 2010 {
		t.Errorf("trace should span the bracket outputs, got [%v, %v]",
			points[0].Output, points[len(points)-1].Output)
	}
}
