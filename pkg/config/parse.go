package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseCampaignYAML parses a Campaign from YAML bytes and validates it.
// This is used for APIs where the campaign is provided as payload (not
// via filesystem).
func ParseCampaignYAML(data []byte) (*Campaign, error) {
	var campaign Campaign
	if err := yaml.Unmarshal(data, &campaign); err != nil {
		return nil, fmt.Errorf("failed to parse campaign yaml: %w", err)
	}

	applyDefaults(&campaign)
	if err := validateCampaign(&campaign); err != nil {
		return nil, fmt.Errorf("invalid campaign: %w", err)
	}

	return &campaign, nil
}

// ParseCampaignYAMLString parses a Campaign from a YAML string and validates it.
func ParseCampaignYAMLString(yamlText string) (*Campaign, error) {
	return ParseCampaignYAML([]byte(yamlText))
}

func applyDefaults(c *Campaign) {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.PollIntervalMs == 0 {
		c.PollIntervalMs = 5000
	}
	if c.CacheDir == "" {
		c.CacheDir = "OptCache"
	}
	if c.ArtifactExt == "" {
		c.ArtifactExt = ".son"
	}
	if c.FreqUnit == "" {
		c.FreqUnit = "Hz"
	}
	for i := range c.Optimizers {
		spec := &c.Optimizers[i]
		if spec.MeshSize == 0 {
			spec.MeshSize = 1.0
		}
		if spec.Strategy.Kind == "" {
			spec.Strategy.Kind = "percent_scale"
		}
	}
}
