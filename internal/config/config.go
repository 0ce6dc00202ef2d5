// ntag-poller
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of ntag-poller.
//
// ntag-poller is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// ntag-poller is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with ntag-poller; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package config loads the ntagpoll YAML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZaparooProject/ntag-poller/internal/logger"
	"github.com/ZaparooProject/ntag-poller/polling"
	"gopkg.in/yaml.v3"
)

// Transport names accepted in the config file
const (
	TransportI2C  = "i2c"
	TransportUART = "uart"
)

const (
	// DefaultConfigFilename is the settings file looked up when none is given.
	DefaultConfigFilename = "ntagpoll.yaml"
	// DefaultI2CBus is the periph.io bus name used when no device is set.
	DefaultI2CBus = "1"
	// DefaultUARTDevice is the serial port used when no device is set.
	DefaultUARTDevice = "/dev/ttyUSB0"
)

var (
	errUnknownTransport = errors.New("unknown transport")
	errUnknownLogLevel  = errors.New("unknown log level")
	errNegativeDuration = errors.New("durations must not be negative")
)

// Config holds the reader connection and polling cadence.
type Config struct {
	// Transport selects the bus: "i2c" or "uart".
	Transport string `yaml:"transport"`
	// Device is the I2C bus name or the serial port path, or "auto".
	Device string `yaml:"device"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// ConfigTimeout bounds the startup SAMConfiguration request.
	ConfigTimeout time.Duration `yaml:"config_timeout"`
	// DetectTimeout bounds the startup target detection.
	DetectTimeout time.Duration `yaml:"detect_timeout"`
	// ReadTimeout bounds each page read.
	ReadTimeout time.Duration `yaml:"read_timeout"`
	// CycleDelay is the pause between page reads.
	CycleDelay time.Duration `yaml:"cycle_delay"`
	// IgnorePaths lists devices skipped when Device is "auto".
	IgnorePaths []string `yaml:"ignore_paths"`
	// Page is the NTAG page read every cycle.
	Page byte `yaml:"page"`
}

// Default returns a configuration with every field set to its default.
func Default() *Config {
	cfg := &Config{}
	_ = Validate(cfg) //nolint:errcheck // zero config always validates
	return cfg
}

// Load reads the YAML file at path and validates it. A missing file at the
// default location yields the defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings and fills in defaults for unset fields.
func Validate(cfg *Config) error {
	switch cfg.Transport {
	case "":
		cfg.Transport = TransportI2C
	case TransportI2C, TransportUART:
	default:
		return fmt.Errorf("%w: %q", errUnknownTransport, cfg.Transport)
	}

	if cfg.Device == "" {
		cfg.Device = DefaultI2CBus
		if cfg.Transport == TransportUART {
			cfg.Device = DefaultUARTDevice
		}
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.ConfigTimeout < 0 || cfg.DetectTimeout < 0 || cfg.ReadTimeout < 0 || cfg.CycleDelay < 0 {
		return errNegativeDuration
	}
	if cfg.ConfigTimeout == 0 {
		cfg.ConfigTimeout = polling.DefaultConfigTimeout
	}
	if cfg.DetectTimeout == 0 {
		cfg.DetectTimeout = polling.DefaultDetectTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = polling.DefaultReadTimeout
	}
	if cfg.CycleDelay == 0 {
		cfg.CycleDelay = polling.DefaultCycleDelay
	}
	if cfg.Page == 0 {
		cfg.Page = polling.DefaultPage
	}

	return nil
}

// PollingConfig converts the settings into a driver configuration.
func (c *Config) PollingConfig() *polling.Config {
	pc := polling.DefaultConfig()
	pc.Page = c.Page
	pc.ConfigTimeout = c.ConfigTimeout
	pc.DetectTimeout = c.DetectTimeout
	pc.ReadTimeout = c.ReadTimeout
	pc.CycleDelay = c.CycleDelay
	return pc
}
