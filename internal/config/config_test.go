package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/avlund/tend/internal/health"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Bind != "127.0.0.1" || cfg.Server.Port != 37780 {
		t.Errorf("server = %s:%d", cfg.Server.Bind, cfg.Server.Port)
	}
	if cfg.Tuning.DecayPerDay != 1.5 {
		t.Errorf("DecayPerDay = %v, want 1.5", cfg.Tuning.DecayPerDay)
	}
	if cfg.Tuning.GhostAfterDays != 30 || cfg.Tuning.AssumedGapDays != 14 {
		t.Errorf("thresholds = %d/%d, want 30/14", cfg.Tuning.GhostAfterDays, cfg.Tuning.AssumedGapDays)
	}
}

func TestListenAddr(t *testing.T) {
	cfg := Default()
	if got := cfg.ListenAddr(); got != "127.0.0.1:37780" {
		t.Errorf("ListenAddr = %q", got)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tuning.DecayPerDay != 1.5 {
		t.Errorf("DecayPerDay = %v, want default", cfg.Tuning.DecayPerDay)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  port: 9999\ntuning:\n  decay_per_day: 5\n  ghost_after_days: 10\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Tuning.DecayPerDay != 5 || cfg.Tuning.GhostAfterDays != 10 {
		t.Errorf("tuning = %v/%d", cfg.Tuning.DecayPerDay, cfg.Tuning.GhostAfterDays)
	}
	// Untouched keys keep defaults.
	if cfg.Tuning.HangoutPoints != 40 {
		t.Errorf("HangoutPoints = %v, want 40", cfg.Tuning.HangoutPoints)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("tuning:\n  decay_per_day: 5\n"), 0644)

	t.Setenv("TEND_DECAY_PER_DAY", "2.5")
	t.Setenv("TEND_PORT", "1234")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tuning.DecayPerDay != 2.5 {
		t.Errorf("DecayPerDay = %v, want 2.5 (env wins)", cfg.Tuning.DecayPerDay)
	}
	if cfg.Server.Port != 1234 {
		t.Errorf("Port = %d, want 1234", cfg.Server.Port)
	}
}

func TestHealthTuning(t *testing.T) {
	cfg := Default()
	tn, err := cfg.HealthTuning()
	if err != nil {
		t.Fatalf("HealthTuning: %v", err)
	}
	if tn.PointsFor(health.TypeCall) != 35 {
		t.Errorf("call points = %v, want 35", tn.PointsFor(health.TypeCall))
	}
	if tn.Location.String() != "UTC" {
		t.Errorf("Location = %v, want UTC", tn.Location)
	}

	cfg.Tuning.Timezone = "Atlantis/Sunken"
	if _, err := cfg.HealthTuning(); err == nil {
		t.Error("expected error for bogus timezone")
	}
}
