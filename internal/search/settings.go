package search

import "fmt"

// Settings is the immutable configuration of one optimizer, supplied
// once at construction.
type Settings struct {
	// TargetQuantity names the measured output quantity the search
	// tries to match, e.g. "f0". The analyzer decides which names it
	// recognizes.
	TargetQuantity string
	// TargetValue is the desired value of the target quantity.
	TargetValue float64
	// Tolerance is the fractional tolerance around TargetValue, e.g.
	// 0.01 for ±1%.
	Tolerance float64
	// Correlation is +1 if increasing the variable increases the
	// output, -1 otherwise.
	Correlation int
	// MeshSize is the smallest resolvable step of the simulation grid;
	// every proposed value is snapped to this grid.
	MeshSize float64
	// MinValue and MaxValue optionally clamp proposed values. Nil
	// disables the bound; a pointer is used so a bound of 0 works.
	MinValue *float64
	MaxValue *float64
	// Strategy is the initial proposal strategy. It may be swapped at
	// any batch boundary via overrides.
	Strategy Strategy
}

// Validate checks the settings at construction time. Failures are
// configuration errors and never retried.
func (s *Settings) Validate() error {
	if s.TargetQuantity == "" {
		return fmt.Errorf("target quantity must be set")
	}
	if s.Correlation != 1 && s.Correlation != -1 {
		return fmt.Errorf("correlation must be +1 or -1, got %d", s.Correlation)
	}
	if s.Tolerance < 0 {
		return fmt.Errorf("tolerance must be non-negative, got %g", s.Tolerance)
	}
	if s.MeshSize <= 0 {
		return fmt.Errorf("mesh size must be positive, got %g", s.MeshSize)
	}
	if s.MinValue != nil && s.MaxValue != nil && *s.MinValue > *s.MaxValue {
		return fmt.Errorf("min bound %g exceeds max bound %g", *s.MinValue, *s.MaxValue)
	}
	if s.Strategy == nil {
		return fmt.Errorf("initial strategy must be set")
	}
	return nil
}
