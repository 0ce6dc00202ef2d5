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

// Package cmd implements the ntagpoll command line.
package cmd

import (
	"errors"
	"fmt"
	"os"

	pn532 "github.com/ZaparooProject/ntag-poller"
	"github.com/ZaparooProject/ntag-poller/countdown"
	"github.com/ZaparooProject/ntag-poller/detection"
	"github.com/ZaparooProject/ntag-poller/internal/config"
	"github.com/ZaparooProject/ntag-poller/internal/logger"
	"github.com/ZaparooProject/ntag-poller/polling"
	"github.com/ZaparooProject/ntag-poller/transport/i2c"
	"github.com/ZaparooProject/ntag-poller/transport/uart"
	"github.com/spf13/cobra"
)

var (
	// configPath is the YAML settings file; empty means ntagpoll.yaml if present.
	configPath string
	// deviceFlag overrides the configured bus or serial port.
	deviceFlag string
	// transportFlag overrides the configured transport.
	transportFlag string
	// logLevelFlag overrides the configured log level.
	logLevelFlag string

	rootCmd = &cobra.Command{
		Use:   "ntagpoll",
		Short: "Poll one NTAG page through a PN532 reader.",
		Long: `Configures a PN532 reader, then reads one NTAG page every cycle and logs
the four data bytes whenever a tag answers.

Every request is bounded by a countdown timer; timeouts and bus errors are
logged and polling carries on. The command runs until it is killed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			device, err := openDevice(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = device.Close() }()

			driver, err := polling.New(device, cfg.PollingConfig(),
				polling.WithLogger(logger.Named("polling")))
			if err != nil {
				return fmt.Errorf("failed to create driver: %w", err)
			}

			driver.Run()
			return nil
		},
	}
)

// Execute runs the ntagpoll CLI and exits with non-zero status on error.
func Execute() {
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		logger.Logger().Errorw("ntagpoll failed", "error", err)
		logger.Sync()
		os.Exit(1)
	}
}

// loadConfig reads the settings file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if transportFlag != "" && transportFlag != cfg.Transport {
		cfg.Transport = transportFlag
		// The configured device belongs to the other transport.
		cfg.Device = ""
	}
	if deviceFlag != "" {
		cfg.Device = deviceFlag
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	level, _ := logger.ParseLogLevel(cfg.LogLevel)
	logger.SetLevel(level)
	logger.Logger().Debugw("configuration loaded",
		"transport", cfg.Transport,
		"device", cfg.Device,
		"page", cfg.Page,
		"cycle_delay", cfg.CycleDelay)

	return cfg, nil
}

var errNoTransport = errors.New("no transport configured")

// openTransport opens the bus named by the configuration. An "auto" device
// tries every detected candidate in turn.
func openTransport(cfg *config.Config) (pn532.Transport, error) {
	if cfg.Device != detection.Auto {
		return openNamed(cfg.Transport, cfg.Device)
	}

	candidates, err := detection.HostScanner().Detect(cfg.Transport, &detection.Options{
		IgnorePaths: cfg.IgnorePaths,
		Blocklist:   detection.DefaultBlocklist(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to detect reader: %w", err)
	}

	var errs []error
	for _, candidate := range candidates {
		transport, err := openNamed(cfg.Transport, candidate)
		if err == nil {
			logger.Logger().Infow("using detected device", "transport", cfg.Transport, "device", candidate)
			return transport, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

func openNamed(kind, device string) (pn532.Transport, error) {
	switch kind {
	case config.TransportI2C:
		transport, err := i2c.Open(device)
		if err != nil {
			return nil, fmt.Errorf("failed to create I2C transport: %w", err)
		}
		return transport, nil
	case config.TransportUART:
		transport, err := uart.Open(device)
		if err != nil {
			return nil, fmt.Errorf("failed to create UART transport: %w", err)
		}
		return transport, nil
	default:
		return nil, fmt.Errorf("%w: %q", errNoTransport, kind)
	}
}

// openDevice wires a transport and a host countdown timer into a Device.
func openDevice(cfg *config.Config) (*pn532.Device, error) {
	transport, err := openTransport(cfg)
	if err != nil {
		return nil, err
	}

	device, err := pn532.New(transport, countdown.New(countdown.NewHostTimer()),
		pn532.WithLogger(logger.Named("pn532")))
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("failed to create device: %w", err)
	}
	return device, nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "",
		"path to configuration file (default "+config.DefaultConfigFilename+" if present)")
	flags.StringVar(&deviceFlag, "device", "", "I2C bus name or serial port path, or auto")
	flags.StringVar(&transportFlag, "transport", "", "reader transport: i2c or uart")
	flags.StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(dumpCmd)
}
