// Package config defines environment configuration structs and loaders.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

type AppConfig struct {
	RecallEnvConfig
	Environment string `env:"ENVIRONMENT" envDefault:"prod"`
}

func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.Environment = strings.ToLower(cfg.Environment)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RecallEnvConfig configures recall evaluation runs.
type RecallEnvConfig struct {
	K       int    `env:"RECALL_K" envDefault:"1"`
	Workers int    `env:"RECALL_WORKERS" envDefault:"0"`
	Dataset string `env:"RECALL_DATASET"`
	Cutoffs []int  `env:"RECALL_CUTOFFS" envSeparator:","`
}

// Validate rejects values that can never be valid regardless of the input matrices.
// Upper bounds on k depend on the data and are checked by the metric.
func (c *RecallEnvConfig) Validate() error {
	if c.K < 1 {
		return fmt.Errorf("RECALL_K must be positive, got %d", c.K)
	}
	if c.Workers < 0 {
		return fmt.Errorf("RECALL_WORKERS must not be negative, got %d", c.Workers)
	}
	for _, k := range c.Cutoffs {
		if k < 1 {
			return fmt.Errorf("RECALL_CUTOFFS entries must be positive, got %d", k)
		}
	}
	return nil
}
