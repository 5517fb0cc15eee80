package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCampaign(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campaign.yml")
	if err := os.WriteFile(path, []byte(validCampaignYAML), 0o644); err != nil {
		t.Fatalf("writing campaign file: %v", err)
	}

	c, err := LoadCampaign(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Optimizers) != 2 {
		t.Errorf("expected 2 optimizers, got %d", len(c.Optimizers))
	}
}

func TestLoadCampaignMissingFile(t *testing.T) {
	if _, err := LoadCampaign(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatalf("expected error for missing campaign file")
	}
}

func TestLoadCampaignInvalidContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campaign.yml")
	if err := os.WriteFile(path, []byte("log_level: info\n"), 0o644); err != nil {
		t.Fatalf("writing campaign file: %v", err)
	}
	if _, err := LoadCampaign(path); err == nil {
		t.Fatalf("expected validation error to surface through the loader")
	}
}
