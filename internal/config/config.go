// Package config loads and saves shared decider parameter defaults as a
// YAML file, the way projectdiscovery/alterx's Config loads a permutation
// config. The binaries under cmd/ do not read it; they take every parameter
// from their own flags and flag defaults.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the conventional location for a decider config file,
// mirroring alterx's $HOME/.config/<tool>/config.yaml convention.
var DefaultPath = filepath.Join(getUserHomeDir(), ".config/bbchallenge-deciders/config.yaml")

// Config holds default decider parameters as read from or written to a
// config file. Zero values mean "not set".
type Config struct {
	DB              string `yaml:"db"`
	DVF             string `yaml:"dvf"`
	Cores           int    `yaml:"cores"`
	LimitDFAStates  int    `yaml:"limit_dfa_states"`
	Gas             int    `yaml:"gas"`
	Radius          int    `yaml:"radius"`
	BlockSize       int    `yaml:"block_size"`
	PlusThreshold   int    `yaml:"plus_threshold"`
	BlockStepBudget int    `yaml:"block_step_budget"`
	MaxVisited      int    `yaml:"max_visited"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	bin, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(bin, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path as YAML, creating a sample config the way
// alterx's GenerateSample does.
func Save(cfg *Config, path string) error {
	bin, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, bin, 0644)
}

func getUserHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return homeDir
}
