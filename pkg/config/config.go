/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package config holds the knobs of a test run that do not belong in test
// code: log verbosity, where recorded event logs and baselines live, and
// whether baselines are being re-recorded.
//
// Values come from an optional YAML file and are then overridden by
// REACTIVEKIT_* environment variables, so CI can change them without
// touching the file.
package config

import (
	"io/ioutil"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/d-abe/ReactiveKit/pkg/baseline"
	"github.com/d-abe/ReactiveKit/pkg/logging"
)

const (
	EnvLogLevel        = "REACTIVEKIT_LOG_LEVEL"
	EnvRecordDir       = "REACTIVEKIT_RECORD_DIR"
	EnvBaselineDir     = "REACTIVEKIT_BASELINE_DIR"
	EnvUpdateBaselines = "REACTIVEKIT_UPDATE_BASELINES"
)

type Config struct {
	LogLevel string `yaml:"logLevel"` // one of debug, info, warn, error

	RecordDir   string `yaml:"recordDir"`   // directory for event logs, recording is off when empty
	BaselineDir string `yaml:"baselineDir"` // baseline database, in-memory when empty

	UpdateBaselines bool `yaml:"updateBaselines"` // re-record baselines instead of comparing
}

func Default() *Config {
	return &Config{
		LogLevel: logging.LevelWarn.String(),
	}
}

// Load reads the YAML file at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "could not read config file %s", path)
	}

	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.WithMessagef(err, "could not unmarshal config file %s", path)
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return nil, errors.WithMessagef(err, "invalid config file %s", path)
	}

	return c, nil
}

// FromEnv returns a copy of base with every REACTIVEKIT_* variable that is
// set applied to it.
func FromEnv(base *Config) (*Config, error) {
	c := *base

	if val := os.Getenv(EnvLogLevel); val != "" {
		if _, err := logging.ParseLevel(val); err != nil {
			return nil, errors.WithMessage(err, EnvLogLevel)
		}
		c.LogLevel = val
	}

	if val, ok := os.LookupEnv(EnvRecordDir); ok {
		c.RecordDir = val
	}

	if val, ok := os.LookupEnv(EnvBaselineDir); ok {
		c.BaselineDir = val
	}

	if val := os.Getenv(EnvUpdateBaselines); val != "" {
		update, err := strconv.ParseBool(val)
		if err != nil {
			return nil, errors.WithMessagef(err, "could not parse %s", EnvUpdateBaselines)
		}
		c.UpdateBaselines = update
	}

	return &c, nil
}

// Logger returns a console logger writing to stderr at the configured level.
// It may be shared across goroutines.
func (c *Config) Logger() logging.Logger {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		level = logging.LevelWarn
	}
	return logging.Synchronize(logging.NewConsoleLogger(os.Stderr, level))
}

// OpenBaselines opens the baseline store in BaselineDir.
func (c *Config) OpenBaselines() (*baseline.Store, error) {
	return baseline.Open(c.BaselineDir)
}
