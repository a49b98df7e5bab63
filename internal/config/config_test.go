package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Recognition.DistanceThreshold != 0.6 {
		t.Errorf("expected default distance threshold 0.6, got %v", cfg.Recognition.DistanceThreshold)
	}
	if cfg.Recognition.RequiredHits != 3 {
		t.Errorf("expected default required hits 3, got %d", cfg.Recognition.RequiredHits)
	}
	if cfg.Recognition.FrameIntervalMs != 1000 {
		t.Errorf("expected default frame interval 1000, got %d", cfg.Recognition.FrameIntervalMs)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("expected default max open conns 25, got %d", cfg.Database.MaxOpenConns)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RECOGNITION_THRESHOLD", "0.45")
	t.Setenv("RECOGNITION_REQUIRED_HITS", "5")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "10")

	cfg := Load()

	if cfg.Recognition.DistanceThreshold != 0.45 {
		t.Errorf("expected threshold 0.45, got %v", cfg.Recognition.DistanceThreshold)
	}
	if cfg.Recognition.RequiredHits != 5 {
		t.Errorf("expected required hits 5, got %d", cfg.Recognition.RequiredHits)
	}
	if cfg.Database.MaxOpenConns != 10 {
		t.Errorf("expected max open conns 10, got %d", cfg.Database.MaxOpenConns)
	}
}

func TestEnvIntIgnoresInvalid(t *testing.T) {
	t.Setenv("RECOGNITION_REQUIRED_HITS", "not-a-number")
	t.Setenv("RECOGNITION_THRESHOLD", "-2")

	cfg := Load()

	if cfg.Recognition.RequiredHits != 3 {
		t.Errorf("invalid env value should fall back to default 3, got %d", cfg.Recognition.RequiredHits)
	}
	if cfg.Recognition.DistanceThreshold != 0.6 {
		t.Errorf("negative env value should fall back to default 0.6, got %v", cfg.Recognition.DistanceThreshold)
	}
}
