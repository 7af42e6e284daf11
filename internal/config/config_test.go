package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	if got := Duration("45s", time.Second); got != 45*time.Second {
		t.Errorf("Duration(45s) = %v", got)
	}
	if got := Duration("", 30*time.Second); got != 30*time.Second {
		t.Errorf("empty value should fall back, got %v", got)
	}
	if got := Duration("not-a-duration", 30*time.Second); got != 30*time.Second {
		t.Errorf("invalid value should fall back, got %v", got)
	}
	if got := Duration("-5s", 30*time.Second); got != 30*time.Second {
		t.Errorf("negative value should fall back, got %v", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Generation.MaxAttempts != 4 {
		t.Errorf("max attempts = %d, want 4", cfg.Generation.MaxAttempts)
	}
	if cfg.Generation.BaselineMinWords != 1500 || cfg.Generation.EscalatedMinWords != 2000 {
		t.Errorf("requested min words = %d/%d, want 1500/2000",
			cfg.Generation.BaselineMinWords, cfg.Generation.EscalatedMinWords)
	}
	if cfg.Generation.AcceptLongForm != 1400 || cfg.Generation.AcceptLongFinal != 1000 {
		t.Errorf("long-form floors = %d/%d, want 1400/1000",
			cfg.Generation.AcceptLongForm, cfg.Generation.AcceptLongFinal)
	}
	if cfg.Discovery.JaccardThreshold != 0.5 {
		t.Errorf("jaccard threshold = %v, want 0.5", cfg.Discovery.JaccardThreshold)
	}
	if cfg.Resources.RequiredCount != 3 {
		t.Errorf("required resource count = %d, want 3", cfg.Resources.RequiredCount)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "copydesk.yaml")
	content := `discovery:
  jaccard_threshold: 0.6
generation:
  max_attempts: 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Discovery.JaccardThreshold != 0.6 {
		t.Errorf("jaccard threshold = %v, want file value 0.6", cfg.Discovery.JaccardThreshold)
	}
	if cfg.Generation.MaxAttempts != 3 {
		t.Errorf("max attempts = %d, want file value 3", cfg.Generation.MaxAttempts)
	}
	// Keys the file omits keep their defaults.
	if cfg.Generation.BaselineMinWords != 1500 {
		t.Errorf("baseline min words = %d, want default 1500", cfg.Generation.BaselineMinWords)
	}
}
