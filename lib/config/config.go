// Package config loads settings from the environment.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"github.com/depp/blockpaint/lib/interp"
)

// Prefix is the prefix for environment variables.
const Prefix = "BLOCKPAINT"

// Config holds the settings shared by the command-line tool and the server.
type Config struct {
	LogLevel     string  `envconfig:"LOG_LEVEL" default:"info"`
	Workers      int     `envconfig:"WORKERS" default:"0"`
	CostCutPoint float64 `envconfig:"COST_CUT_POINT" default:"10"`
	CostCutAxis  float64 `envconfig:"COST_CUT_AXIS" default:"7"`
	CostColor    float64 `envconfig:"COST_COLOR" default:"5"`
	CostMerge    float64 `envconfig:"COST_MERGE" default:"1"`
	Addr         string  `envconfig:"ADDR" default:"localhost:8080"`
}

// Read reads the configuration from BLOCKPAINT_* environment variables
// without validating the values, so callers can override them first.
func Read() (*Config, error) {
	var c Config
	if err := envconfig.Process(Prefix, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads and validates the configuration.
func Load() (*Config, error) {
	c, err := Read()
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that the values are usable.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("invalid worker count: %d", c.Workers)
	}
	for _, v := range []float64{c.CostCutPoint, c.CostCutAxis, c.CostColor, c.CostMerge} {
		if v < 0 {
			return fmt.Errorf("invalid cost: %v", v)
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Costs returns the instruction cost table.
func (c *Config) Costs() interp.CostTable {
	return interp.CostTable{
		CutPoint: c.CostCutPoint,
		CutAxis:  c.CostCutAxis,
		Color:    c.CostColor,
		Merge:    c.CostMerge,
	}
}

// Level returns the log level.
func (c *Config) Level() (logrus.Level, error) {
	lv, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("invalid %s_LOG_LEVEL: %w", Prefix, err)
	}
	return lv, nil
}
