// Package config loads and validates simulation configuration from a
// YAML file with environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full simulation configuration. Zero values fall back
// to Default()'s choices during Load.
type Config struct {
	MaxLevel        int   `yaml:"maxLevel"`
	RoundLimit      int   `yaml:"roundLimit"`
	OptionsPerRound int   `yaml:"optionsPerRound"`
	Sessions        int   `yaml:"sessions"`
	Seed            int64 `yaml:"seed"`
	Workers         int   `yaml:"workers"`
	Verbose         bool  `yaml:"verbose"`
	DisablePruning  bool  `yaml:"disablePruning"`

	Stone StoneConfig `yaml:"stone"`

	// PossibleEngravings restricts which stones are worth simulating.
	// Empty means any stone.
	PossibleEngravings []string `yaml:"possibleEngravings"`

	// Priorities ranks engraving names, most important first.
	Priorities []string `yaml:"priorities"`

	// NegativeCap is the highest tolerated negative level. NegativeCaps
	// overrides it per negative engraving name.
	NegativeCap  int            `yaml:"negativeCap"`
	NegativeCaps map[string]int `yaml:"negativeCaps"`

	Goal GoalConfig `yaml:"goal"`

	// Table is the option catalog with relative weights.
	Table []EntryConfig `yaml:"table"`

	// Budgets caps the attempts per slot. Zero means unlimited.
	Budgets BudgetConfig `yaml:"budgets"`

	Output OutputConfig `yaml:"output"`
}

// StoneConfig names the engravings sitting on the stone's three slots.
type StoneConfig struct {
	PositiveA string `yaml:"positiveA"`
	PositiveB string `yaml:"positiveB"`
	Negative  string `yaml:"negative"`
}

// GoalConfig selects the acceptance goal. Mode is one of "total",
// "exact" or "expr".
type GoalConfig struct {
	Mode  string `yaml:"mode"`
	Total int    `yaml:"total"`
	A     int    `yaml:"a"`
	B     int    `yaml:"b"`
	Expr  string `yaml:"expr"`
}

// EntryConfig is one weighted adjustment option.
type EntryConfig struct {
	Slot   string  `yaml:"slot"`
	Delta  int     `yaml:"delta"`
	Weight float64 `yaml:"weight"`
}

// BudgetConfig is the per-slot attempt budget. Zero means unlimited.
type BudgetConfig struct {
	PositiveA int `yaml:"positiveA"`
	PositiveB int `yaml:"positiveB"`
	Negative  int `yaml:"negative"`
}

// OutputConfig names optional output destinations. Empty fields
// disable the corresponding output.
type OutputConfig struct {
	JSON   string `yaml:"json"`
	DOT    string `yaml:"dot"`
	Runlog string `yaml:"runlog"`
}

// Default mirrors the classic stone: levels up to 10, ten attempts per
// slot, three options per round, a 16-point goal.
func Default() Config {
	return Config{
		MaxLevel:        10,
		RoundLimit:      30,
		OptionsPerRound: 3,
		Sessions:        10_000,
		Seed:            1,
		Workers:         8,
		Stone: StoneConfig{
			PositiveA: "Grudge",
			PositiveB: "Cursed Doll",
			Negative:  "Atk. Power Reduction",
		},
		Priorities:  []string{"Grudge", "Cursed Doll"},
		NegativeCap: 4,
		Goal:        GoalConfig{Mode: "total", Total: 16},
		Table: []EntryConfig{
			{Slot: "positive-a", Delta: 1, Weight: 3},
			{Slot: "positive-a", Delta: 0, Weight: 1},
			{Slot: "positive-b", Delta: 1, Weight: 3},
			{Slot: "positive-b", Delta: 0, Weight: 1},
			{Slot: "negative", Delta: 1, Weight: 3},
			{Slot: "negative", Delta: 0, Weight: 1},
		},
		Budgets: BudgetConfig{PositiveA: 10, PositiveB: 10, Negative: 10},
	}
}

// Load reads the YAML file at path (Default() when path is empty),
// applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Sessions = getenvInt("STONESIM_SESSIONS", c.Sessions, 1)
	c.Workers = getenvInt("STONESIM_WORKERS", c.Workers, 1)
	c.Seed = getenvInt64("STONESIM_SEED", c.Seed)
	c.Verbose = getenvBool("STONESIM_VERBOSE", c.Verbose)
	c.Output.Runlog = getenv("STONESIM_RUNLOG", c.Output.Runlog)
}

// Validate checks the structural settings. Engraving names and the
// option catalog are checked during Build, where the domain packages
// can reject them with context.
func (c Config) Validate() error {
	if c.MaxLevel <= 0 {
		return fmt.Errorf("config: maxLevel must be positive, got %d", c.MaxLevel)
	}
	if c.RoundLimit <= 0 {
		return fmt.Errorf("config: roundLimit must be positive, got %d", c.RoundLimit)
	}
	if c.OptionsPerRound <= 0 {
		return fmt.Errorf("config: optionsPerRound must be positive, got %d", c.OptionsPerRound)
	}
	if c.Sessions <= 0 {
		return fmt.Errorf("config: sessions must be positive, got %d", c.Sessions)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("config: workers must be positive, got %d", c.Workers)
	}
	if c.NegativeCap < 0 {
		return fmt.Errorf("config: negativeCap must not be negative, got %d", c.NegativeCap)
	}
	if b := c.Budgets; b.PositiveA < 0 || b.PositiveB < 0 || b.Negative < 0 {
		return fmt.Errorf("config: budgets must not be negative")
	}
	switch c.Goal.Mode {
	case "total", "exact", "expr":
	case "":
		return fmt.Errorf("config: goal mode is required")
	default:
		return fmt.Errorf("config: unknown goal mode %q", c.Goal.Mode)
	}
	if len(c.Table) == 0 {
		return fmt.Errorf("config: table must not be empty")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback, min int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		return fallback
	}
	return v
}

func getenvInt64(key string, fallback int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func getenvBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
