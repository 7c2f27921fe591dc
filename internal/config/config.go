// Package config provides YAML-based game configuration loading and
// difficulty management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// TetrisConfig contains all configuration for the falling-block game.
type TetrisConfig struct {
	Gravity    GravityConfig    `yaml:"gravity"`
	Audio      AudioConfig      `yaml:"audio"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// GravityConfig controls how fast the active piece falls.
type GravityConfig struct {
	IntervalMs    int `yaml:"interval_ms"`     // Time between gravity steps at the start
	MinIntervalMs int `yaml:"min_interval_ms"` // Floor for the scaled interval
}

// AudioConfig controls the optional sound output.
type AudioConfig struct {
	Music   bool    `yaml:"music"`   // Looping background track
	Effects bool    `yaml:"effects"` // Line clear and game over cues
	Volume  float64 `yaml:"volume"`  // Base-2 exponent, 0 is unchanged, negative is quieter
}

// Interval returns the base gravity interval.
func (g GravityConfig) Interval() time.Duration {
	return time.Duration(g.IntervalMs) * time.Millisecond
}

// MinInterval returns the shortest gravity interval difficulty may reach.
func (g GravityConfig) MinInterval() time.Duration {
	return time.Duration(g.MinIntervalMs) * time.Millisecond
}

// Validate reports configuration values the game cannot run with.
func (c TetrisConfig) Validate() error {
	var errs []error
	if c.Gravity.IntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("gravity.interval_ms must be positive, got %d", c.Gravity.IntervalMs))
	}
	if c.Gravity.MinIntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("gravity.min_interval_ms must be positive, got %d", c.Gravity.MinIntervalMs))
	}
	if c.Gravity.MinIntervalMs > c.Gravity.IntervalMs && c.Gravity.IntervalMs > 0 {
		errs = append(errs, fmt.Errorf("gravity.min_interval_ms (%d) exceeds interval_ms (%d)",
			c.Gravity.MinIntervalMs, c.Gravity.IntervalMs))
	}
	if c.Difficulty.InitialLevel < 0 || c.Difficulty.InitialLevel > 1 {
		errs = append(errs, fmt.Errorf("difficulty.initial_level must be within [0, 1], got %g", c.Difficulty.InitialLevel))
	}
	switch c.Difficulty.Progression.Type {
	case "", "score", "time", "none":
	default:
		errs = append(errs, fmt.Errorf("difficulty.progression.type %q is not one of score, time, none",
			c.Difficulty.Progression.Type))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases over time.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "score", "time", or "none"
	MaxAt int    `yaml:"max_at"` // Score/ticks at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	SpeedMultiplier float64 `yaml:"speed_multiplier"` // Multiplier added to speed at max difficulty
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset converts a CLI flag value to a preset.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal, hard or fixed)", s)
	}
}

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}
