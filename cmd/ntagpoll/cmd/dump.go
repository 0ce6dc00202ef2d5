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

package cmd

import (
	"fmt"

	"github.com/ZaparooProject/ntag-poller/internal/logger"
	"github.com/ZaparooProject/ntag-poller/ntag"
	"github.com/ZaparooProject/ntag-poller/polling"
	"github.com/spf13/cobra"
)

var (
	// endPage is the last user page read by dump.
	endPage uint8
	// readRetries repeats transient page read failures.
	readRetries int
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Read NTAG user memory once and print its NDEF message.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
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
		if err := driver.Startup(); err != nil {
			return err
		}

		end := endPage
		if end == 0 {
			model, err := ntag.ReadModel(device, cfg.ReadTimeout, ntag.WithRetries(readRetries))
			if err != nil {
				return fmt.Errorf("failed to identify tag: %w", err)
			}
			logger.Logger().Infow("tag identified", "model", model, "end_page", model.EndPage)
			end = model.EndPage
		}

		msg, err := ntag.ReadNDEF(device, end, cfg.ReadTimeout, ntag.WithRetries(readRetries))
		if err != nil {
			return fmt.Errorf("failed to read tag: %w", err)
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg.String())
		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	dumpCmd.Flags().Uint8Var(&endPage, "end-page", 0, "last user memory page to read (0 reads the capability container)")
	dumpCmd.Flags().IntVar(&readRetries, "retries", 2, "extra attempts for a failed page read")
}
