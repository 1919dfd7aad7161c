package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := validateConfig(cfg); err != nil {
		t.Fatalf("default configuration should validate, got: %v", err)
	}
	if cfg.Analysis.Alpha != 0.05 {
		t.Errorf("expected default alpha 0.05, got %v", cfg.Analysis.Alpha)
	}
	if cfg.Bootstrap.Seed != 42 {
		t.Errorf("expected default seed 42, got %d", cfg.Bootstrap.Seed)
	}
	if cfg.Patterns.K != 2 {
		t.Errorf("expected default pattern k 2, got %d", cfg.Patterns.K)
	}
}

func TestLoadAppliesEnvironment(t *testing.T) {
	t.Setenv("ALPHA", "0.01")
	t.Setenv("BOOTSTRAP_ITERATIONS", "500")
	t.Setenv("BOOTSTRAP_SEED", "1234")
	t.Setenv("NETWORK_WEIGHT_METRIC", "log_odds")
	t.Setenv("BATCH_TIMEOUT", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Analysis.Alpha != 0.01 {
		t.Errorf("expected alpha 0.01, got %v", cfg.Analysis.Alpha)
	}
	if cfg.Bootstrap.Iterations != 500 {
		t.Errorf("expected 500 iterations, got %d", cfg.Bootstrap.Iterations)
	}
	if cfg.Bootstrap.Seed != 1234 {
		t.Errorf("expected seed 1234, got %d", cfg.Bootstrap.Seed)
	}
	if cfg.Network.WeightMetric != WeightMetricLogOdds {
		t.Errorf("expected log_odds metric, got %s", cfg.Network.WeightMetric)
	}
	if cfg.Runtime.BatchTimeout != 30*time.Second {
		t.Errorf("expected 30s batch timeout, got %v", cfg.Runtime.BatchTimeout)
	}
}

func TestLoadRejectsBadAlpha(t *testing.T) {
	t.Setenv("ALPHA", "1.5")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for alpha=1.5, got nil")
	}
}

func TestLoadRejectsBadWeightMetric(t *testing.T) {
	t.Setenv("NETWORK_WEIGHT_METRIC", "cosine")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for unknown weight metric, got nil")
	}
}

func TestLoadWithProfile(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "profile.yaml")
	body := `analysis:
  alpha: 0.1
patterns:
  k: 3
  max_combinations: 5000
`
	if err := os.WriteFile(profile, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write profile: %v", err)
	}

	cfg, err := LoadWithProfile(profile)
	if err != nil {
		t.Fatalf("LoadWithProfile failed: %v", err)
	}

	if cfg.Analysis.Alpha != 0.1 {
		t.Errorf("expected profile alpha 0.1, got %v", cfg.Analysis.Alpha)
	}
	if cfg.Patterns.K != 3 {
		t.Errorf("expected profile k 3, got %d", cfg.Patterns.K)
	}
	if cfg.Patterns.MaxCombinations != 5000 {
		t.Errorf("expected profile max_combinations 5000, got %d", cfg.Patterns.MaxCombinations)
	}
	// Untouched values keep defaults.
	if cfg.Bootstrap.Seed != 42 {
		t.Errorf("expected default seed 42, got %d", cfg.Bootstrap.Seed)
	}
}

func TestEnvOverridesProfile(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "profile.yaml")
	if err := os.WriteFile(profile, []byte("analysis:\n  alpha: 0.1\n"), 0o644); err != nil {
		t.Fatalf("failed to write profile: %v", err)
	}

	t.Setenv("ALPHA", "0.2")

	cfg, err := LoadWithProfile(profile)
	if err != nil {
		t.Fatalf("LoadWithProfile failed: %v", err)
	}
	if cfg.Analysis.Alpha != 0.2 {
		t.Errorf("env should override profile: expected 0.2, got %v", cfg.Analysis.Alpha)
	}
}
