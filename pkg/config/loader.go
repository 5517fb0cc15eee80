package config

import (
	"fmt"
	"os"
)

// LoadCampaign loads and parses a campaign configuration file
func LoadCampaign(path string) (*Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read campaign file %s: %w", path, err)
	}
	campaign, err := ParseCampaignYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse campaign file %s: %w", path, err)
	}
	return campaign, nil
}

var validStrategyKinds = map[string]bool{
	"percent_scale":        true,
	"mesh_step":            true,
	"lin_fit":              true,
	"poly_fit":             true,
	"crossing_point_split": true,
}

// validateCampaign performs validation on the campaign
func validateCampaign(c *Campaign) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
	if c.PollIntervalMs < 0 {
		return fmt.Errorf("poll_interval_ms cannot be negative")
	}

	if len(c.Optimizers) == 0 {
		return fmt.Errorf("at least one optimizer must be defined")
	}
	names := make(map[string]bool)
	for i := range c.Optimizers {
		spec := &c.Optimizers[i]
		if spec.Name == "" {
			return fmt.Errorf("optimizer name cannot be empty")
		}
		if names[spec.Name] {
			return fmt.Errorf("duplicate optimizer name: %s", spec.Name)
		}
		names[spec.Name] = true

		if err := validateOptimizerSpec(spec); err != nil {
			return fmt.Errorf("optimizer %s: %w", spec.Name, err)
		}
	}
	return nil
}

func validateOptimizerSpec(spec *OptimizerSpec) error {
	if spec.Variable == "" {
		return fmt.Errorf("variable cannot be empty")
	}
	if spec.Batch1.ArtifactName == "" {
		return fmt.Errorf("batch1.artifact_name cannot be empty")
	}
	if spec.Target.Quantity == "" {
		return fmt.Errorf("target.quantity cannot be empty")
	}
	if spec.Target.Tolerance < 0 {
		return fmt.Errorf("target.tolerance cannot be negative")
	}
	if spec.Correlation != "+" && spec.Correlation != "-" {
		return fmt.Errorf("correlation must be %q or %q, got %q", "+", "-", spec.Correlation)
	}
	if spec.MeshSize <= 0 {
		return fmt.Errorf("mesh_size must be positive")
	}
	if spec.MinValue != nil && spec.MaxValue != nil && *spec.MinValue > *spec.MaxValue {
		return fmt.Errorf("min_value %g exceeds max_value %g", *spec.MinValue, *spec.MaxValue)
	}
	if err := validateStrategySpec(spec.Strategy); err != nil {
		return err
	}
	if spec.Overrides != nil {
		for batchNo, strat := range spec.Overrides.Strategies {
			if batchNo < 2 {
				return fmt.Errorf("strategy override batch number must be >= 2, got %d", batchNo)
			}
			if err := validateStrategySpec(strat); err != nil {
				return fmt.Errorf("strategy override for batch %d: %w", batchNo, err)
			}
		}
		for batchNo := range spec.Overrides.Values {
			if batchNo < 2 {
				return fmt.Errorf("value override batch number must be >= 2, got %d", batchNo)
			}
		}
	}
	return nil
}

func validateStrategySpec(s StrategySpec) error {
	if !validStrategyKinds[s.Kind] {
		return fmt.Errorf("unknown strategy kind %q", s.Kind)
	}
	if s.Kind == "poly_fit" && s.Degree < 1 {
		return fmt.Errorf("poly_fit requires degree >= 1, got %d", s.Degree)
	}
	return nil
}

// CorrelationSign converts the config "+"/"-" form to the +1/-1 the
// engine uses.
func (s *OptimizerSpec) CorrelationSign() int {
	if s.Correlation == "-" {
		return -1
	}
	return 1
}
