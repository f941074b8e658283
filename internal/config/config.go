// Package config loads and validates the shift rule set.
package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoShifts  = errors.New("config: no shifts defined")
	ErrBadShift  = errors.New("config: invalid shift definition")
	ErrBadLimits = errors.New("config: invalid limits")
	ErrEmptyFile = errors.New("config: file is empty")
)

// ShiftDefinition is one named shift pattern from the catalog.
type ShiftDefinition struct {
	Name            string `yaml:"name"`
	DurationMinutes int    `yaml:"duration_minutes"`
	WeeklyHours     int    `yaml:"weekly_hours"`
	MonthlyHours    int    `yaml:"monthly_hours"`
	MinBreakMinutes int    `yaml:"min_break_minutes"`
	// MaxBreakMinutes of 0 means unbounded.
	MaxBreakMinutes int `yaml:"max_break_minutes"`
}

// RequiresBreak reports whether this shift must be entered as four times.
func (s ShiftDefinition) RequiresBreak() bool {
	return s.MinBreakMinutes > 0
}

// RuleConfig is the full rule set shared read-only by all validations.
type RuleConfig struct {
	Shifts []ShiftDefinition `yaml:"shifts"`

	MaxPeriodHours       float64 `yaml:"max_period_hours"`
	MinRestMinutes       int     `yaml:"min_rest_minutes"`
	MaxContinuousMinutes int     `yaml:"max_continuous_minutes"`

	HistoryCacheMinutes int  `yaml:"history_cache_minutes"`
	SkipImportHeader    bool `yaml:"skip_import_header"`
}

// FindShift returns the first shift whose duration matches exactly.
// Matching is exact: there is no tolerance window.
func (c *RuleConfig) FindShift(durationMinutes int) (ShiftDefinition, bool) {
	for _, s := range c.Shifts {
		if s.DurationMinutes == durationMinutes {
			return s, true
		}
	}
	return ShiftDefinition{}, false
}

// Load reads and validates a rule config. A missing file, empty file or
// failed validation is a fatal load error, never a per-validation one.
func Load(path string) (*RuleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg RuleConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	applyDefaults(&cfg)
	if err = validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *RuleConfig) {
	if cfg.MinRestMinutes <= 0 {
		cfg.MinRestMinutes = 660 // 11h
	}
	if cfg.MaxContinuousMinutes <= 0 {
		cfg.MaxContinuousMinutes = 240 // 4h
	}
	if cfg.HistoryCacheMinutes <= 0 {
		cfg.HistoryCacheMinutes = 30
	}
}

func validate(cfg *RuleConfig) error {
	if len(cfg.Shifts) == 0 {
		return ErrNoShifts
	}
	if cfg.MaxPeriodHours <= 0 {
		return fmt.Errorf("%w: max_period_hours must be positive", ErrBadLimits)
	}

	for _, s := range cfg.Shifts {
		if s.Name == "" {
			return fmt.Errorf("%w: shift with empty name", ErrBadShift)
		}
		if s.DurationMinutes <= 0 {
			return fmt.Errorf("%w: shift %q has non-positive duration", ErrBadShift, s.Name)
		}
		if s.MinBreakMinutes < 0 || s.MaxBreakMinutes < 0 {
			return fmt.Errorf("%w: shift %q has negative break bounds", ErrBadShift, s.Name)
		}
		if s.MaxBreakMinutes > 0 && s.MinBreakMinutes > s.MaxBreakMinutes {
			return fmt.Errorf("%w: shift %q min break exceeds max", ErrBadShift, s.Name)
		}
	}
	return nil
}

// Store owns a cached RuleConfig with an explicit invalidate operation.
// It replaces ambient config state: callers hold the store and pass the
// loaded config into validators.
type Store struct {
	path   string
	mu     sync.Mutex
	cached *RuleConfig
}

// NewStore creates a store reading from path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Get returns the cached config, loading it on first use.
func (s *Store) Get() (*RuleConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return s.cached, nil
	}

	cfg, err := Load(s.path)
	if err != nil {
		return nil, err
	}
	s.cached = cfg
	return cfg, nil
}

// Invalidate drops the cached config so the next Get reloads from disk.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}
