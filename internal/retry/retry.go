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

// Package retry repeats reader operations that failed with a transient error
package retry

import (
	"fmt"
	"time"

	pn532 "github.com/ZaparooProject/ntag-poller"
)

// Config configures retry behavior
type Config struct {
	// Retryable decides whether err is worth another attempt. Defaults to
	// pn532.IsRetryable.
	Retryable func(err error) bool
	// OnRetry runs before every repeated attempt
	OnRetry func(attempt int, err error)
	// Retries is the number of attempts after the first one
	Retries int
	// Delay is the pause before each repeated attempt
	Delay time.Duration
}

// Do runs op until it succeeds, fails permanently, or the retries run out.
// The error of the last attempt is returned.
func Do[T any](config Config, op func() (T, error)) (T, error) {
	retryable := config.Retryable
	if retryable == nil {
		retryable = pn532.IsRetryable
	}

	var zero T
	for attempt := 0; ; attempt++ {
		result, err := op()
		if err == nil {
			return result, nil
		}
		if !retryable(err) {
			return zero, err
		}
		if attempt >= config.Retries {
			if config.Retries == 0 {
				return zero, err
			}
			return zero, fmt.Errorf("giving up after %d attempts: %w", attempt+1, err)
		}

		if config.OnRetry != nil {
			config.OnRetry(attempt+1, err)
		}
		if config.Delay > 0 {
			time.Sleep(config.Delay)
		}
	}
}
