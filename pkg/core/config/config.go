// Package config loads the engine's default assumption set and the preset
// screen definitions. Assumption defaults live in YAML; preset screens are
// HJSON so the file can carry comments for the people tuning them.
package config

import (
	"fmt"
	"os"

	hjson "github.com/hjson/hjson-go/v4"
	yaml "gopkg.in/yaml.v2"

	"stock_valuation/pkg/core/screener"
)

// DCFDefaults are the assumption defaults for report-driven DCF runs.
type DCFDefaults struct {
	GrowthRate      float64 `yaml:"growth_rate"`
	DiscountRate    float64 `yaml:"discount_rate"`
	ProjectionYears int     `yaml:"projection_years"`
}

// DDMDefaults are the assumption defaults for report-driven DDM runs.
type DDMDefaults struct {
	DividendGrowthRate float64 `yaml:"dividend_growth_rate"`
	DiscountRate       float64 `yaml:"discount_rate"`
}

// Defaults is the full default assumption set for the report synthesizer.
type Defaults struct {
	DCF       DCFDefaults `yaml:"dcf"`
	DDM       DDMDefaults `yaml:"ddm"`
	PeerLimit int         `yaml:"peer_limit"`
}

// Default returns the built-in assumption set, used when no file overrides it.
func Default() Defaults {
	return Defaults{
		DCF: DCFDefaults{
			GrowthRate:      0.05,
			DiscountRate:    0.10,
			ProjectionYears: 5,
		},
		DDM: DDMDefaults{
			DividendGrowthRate: 0.04,
			DiscountRate:       0.09,
		},
		PeerLimit: 8,
	}
}

// Load reads a YAML overrides file on top of the built-in defaults.
func Load(path string) (Defaults, error) {
	d := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return d, fmt.Errorf("read assumption defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("parse assumption defaults: %w", err)
	}
	return d, nil
}

// PresetScreen is a named, ready-to-run screener configuration.
type PresetScreen struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Criteria    screener.Criteria `json:"criteria"`
	Limit       int               `json:"limit"`
}

// LoadScreens parses the preset screen definitions from an HJSON file.
func LoadScreens(path string) ([]PresetScreen, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset screens: %w", err)
	}
	return ParseScreens(data)
}

// ParseScreens decodes preset screens from HJSON bytes.
func ParseScreens(data []byte) ([]PresetScreen, error) {
	var screens []PresetScreen
	if err := hjson.Unmarshal(data, &screens); err != nil {
		return nil, fmt.Errorf("parse preset screens: %w", err)
	}
	return screens, nil
}
