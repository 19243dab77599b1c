package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const envConfigPath = "PRNGCL_CONFIG"

// Config represents the prngcl configuration file
// (~/.config/prngcl/config.yaml, or $PRNGCL_CONFIG).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	// Engine defaults
	Generator  *string  `yaml:"generator"`
	Seed       *int64   `yaml:"seed"`
	Parameters []string `yaml:"parameters"`

	// Run shape
	Instances *int    `yaml:"instances"`
	Samples   *int    `yaml:"samples"`
	Precision *string `yaml:"precision"`

	// Accelerator
	Accelerator *string `yaml:"accelerator"`
	Align       *int    `yaml:"align"`
	Workers     *int    `yaml:"workers"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

// activeConfig is the file loaded by the root Before hook.
var activeConfig Config

func configPath() string {
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "prngcl", "config.yaml")
}

// LoadConfig reads the config file. A missing file yields a zero Config;
// a malformed one is an error.
func LoadConfig() (Config, error) {
	path := configPath()
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyGlobalConfig applies logging defaults from the config file when the
// flags were not given.
func applyGlobalConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyCommandConfig applies config file defaults to command variables
// when the corresponding CLI flag was not explicitly set.
func applyCommandConfig(c *cli.Command, cfg Config) {
	if cfg.Generator != nil && !c.IsSet("generator") {
		generatorName = *cfg.Generator
	}
	if cfg.Seed != nil && !c.IsSet("seed") {
		seedValue = *cfg.Seed
	}
	if cfg.Instances != nil && !c.IsSet("instances") {
		instances = *cfg.Instances
	}
	if cfg.Samples != nil && !c.IsSet("samples") {
		samples = *cfg.Samples
	}
	if cfg.Precision != nil && !c.IsSet("precision") {
		precisionName = *cfg.Precision
	}
	if cfg.Accelerator != nil && !c.IsSet("accel") {
		accelName = *cfg.Accelerator
	}
	if cfg.Align != nil && !c.IsSet("align") {
		align = *cfg.Align
	}
	if cfg.Workers != nil && !c.IsSet("workers") {
		workers = *cfg.Workers
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	applyCommandConfig(c, cfg)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}
