// Package config loads tend configuration: compiled-in defaults, overlaid by
// an optional YAML file, overlaid by TEND_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/avlund/tend/internal/health"
)

// DefaultConfigPath returns ~/.tend/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".tend", "config.yaml"), nil
}

// Config holds all tend configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Tuning   TuningConfig   `yaml:"tuning"`
}

type ServerConfig struct {
	Bind string `yaml:"bind" env:"TEND_BIND"`
	Port int    `yaml:"port" env:"TEND_PORT"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" env:"TEND_DB"` // empty: resolved via store.DefaultDBPath()
}

// TuningConfig is the serializable form of health.Tuning.
type TuningConfig struct {
	DecayPerDay    float64 `yaml:"decay_per_day" env:"TEND_DECAY_PER_DAY"`
	HangoutPoints  float64 `yaml:"hangout_points" env:"TEND_HANGOUT_POINTS"`
	CallPoints     float64 `yaml:"call_points" env:"TEND_CALL_POINTS"`
	TextPoints     float64 `yaml:"text_points" env:"TEND_TEXT_POINTS"`
	SocialPoints   float64 `yaml:"social_points" env:"TEND_SOCIAL_POINTS"`
	GhostAfterDays int     `yaml:"ghost_after_days" env:"TEND_GHOST_AFTER_DAYS"`
	AssumedGapDays int     `yaml:"assumed_gap_days" env:"TEND_ASSUMED_GAP_DAYS"`
	Timezone       string  `yaml:"timezone" env:"TEND_TIMEZONE"` // IANA name; day boundaries
}

// Default returns a Config mirroring health.DefaultTuning.
func Default() Config {
	tn := health.DefaultTuning()
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37780,
		},
		Tuning: TuningConfig{
			DecayPerDay:    tn.DecayPerDay,
			HangoutPoints:  tn.PointsFor(health.TypeHangout),
			CallPoints:     tn.PointsFor(health.TypeCall),
			TextPoints:     tn.PointsFor(health.TypeText),
			SocialPoints:   tn.PointsFor(health.TypeSocial),
			GhostAfterDays: tn.GhostAfterDays,
			AssumedGapDays: tn.AssumedGapDays,
			Timezone:       "UTC",
		},
	}
}

// Load builds the effective config: defaults, then the YAML file at path if
// it exists, then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// HealthTuning converts the config block into an engine tuning.
func (c *Config) HealthTuning() (health.Tuning, error) {
	loc, err := time.LoadLocation(c.Tuning.Timezone)
	if err != nil {
		return health.Tuning{}, fmt.Errorf("timezone %q: %w", c.Tuning.Timezone, err)
	}
	return health.Tuning{
		DecayPerDay: c.Tuning.DecayPerDay,
		Points: map[health.InteractionType]float64{
			health.TypeHangout: c.Tuning.HangoutPoints,
			health.TypeCall:    c.Tuning.CallPoints,
			health.TypeText:    c.Tuning.TextPoints,
			health.TypeSocial:  c.Tuning.SocialPoints,
		},
		GhostAfterDays: c.Tuning.GhostAfterDays,
		AssumedGapDays: c.Tuning.AssumedGapDays,
		Location:       loc,
	}, nil
}
