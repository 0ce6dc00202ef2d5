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

package pn532

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Option is a functional option for configuring a Device
type Option func(*Device) error

// WithLogger sets the logger used for request tracing
func WithLogger(log *zap.SugaredLogger) Option {
	return func(d *Device) error {
		if log != nil {
			d.log = log
		}
		return nil
	}
}

// WithMaxResponseLength caps the response length Process accepts
func WithMaxResponseLength(n int) Option {
	return func(d *Device) error {
		if n <= 0 || n > maxResponseLength {
			return fmt.Errorf("%w: max response length %d", ErrInvalidParameter, n)
		}
		d.maxResponseLen = n
		return nil
	}
}

// WithPollInterval sets the pause between readiness checks. Zero polls
// back to back.
func WithPollInterval(interval time.Duration) Option {
	return func(d *Device) error {
		if interval < 0 {
			return fmt.Errorf("%w: poll interval %v", ErrInvalidParameter, interval)
		}
		d.pollInterval = interval
		return nil
	}
}
