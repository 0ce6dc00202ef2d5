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

package polling

import (
	"errors"
	"fmt"
	"time"

	pn532 "github.com/ZaparooProject/ntag-poller"
)

// Default cadence and timeouts
const (
	DefaultPage          = 10
	DefaultConfigTimeout = 50 * time.Millisecond
	DefaultDetectTimeout = time.Second
	DefaultReadTimeout   = 50 * time.Millisecond
	DefaultCycleDelay    = 500 * time.Millisecond
)

// ErrInvalidConfig is returned for configurations that cannot drive a poll
var ErrInvalidConfig = errors.New("invalid polling config")

// Config controls what the driver reads and how often
type Config struct {
	// ConfigTimeout bounds the startup SAMConfiguration request
	ConfigTimeout time.Duration
	// DetectTimeout bounds the startup target detection request
	DetectTimeout time.Duration
	// ReadTimeout bounds each page read
	ReadTimeout time.Duration
	// CycleDelay is the pause between page reads, whatever their outcome
	CycleDelay time.Duration
	// ReadResponseLen is the expected length of a page read response
	ReadResponseLen int
	// DetectResponseLen is the expected length of the detection response
	DetectResponseLen int
	// Page is the NTAG page index read every cycle
	Page byte
	// SuccessStatus is the status byte that marks a response carrying page
	// data. It is reader firmware defined; the PN532 uses 0x00.
	SuccessStatus byte
}

// DefaultConfig returns the default polling configuration
func DefaultConfig() *Config {
	return &Config{
		Page:              DefaultPage,
		ConfigTimeout:     DefaultConfigTimeout,
		DetectTimeout:     DefaultDetectTimeout,
		ReadTimeout:       DefaultReadTimeout,
		CycleDelay:        DefaultCycleDelay,
		ReadResponseLen:   pn532.NTAGReadResponseLen,
		DetectResponseLen: pn532.InListOneISOATargetResponseLen,
		SuccessStatus:     pn532.StatusOK,
	}
}

// Validate checks that every duration and length is usable
func (c *Config) Validate() error {
	switch {
	case c.ConfigTimeout <= 0:
		return fmt.Errorf("%w: config timeout %v", ErrInvalidConfig, c.ConfigTimeout)
	case c.DetectTimeout <= 0:
		return fmt.Errorf("%w: detect timeout %v", ErrInvalidConfig, c.DetectTimeout)
	case c.ReadTimeout <= 0:
		return fmt.Errorf("%w: read timeout %v", ErrInvalidConfig, c.ReadTimeout)
	case c.CycleDelay <= 0:
		return fmt.Errorf("%w: cycle delay %v", ErrInvalidConfig, c.CycleDelay)
	case c.ReadResponseLen < 1+pageSize:
		return fmt.Errorf("%w: read response length %d", ErrInvalidConfig, c.ReadResponseLen)
	case c.DetectResponseLen < 0:
		return fmt.Errorf("%w: detect response length %d", ErrInvalidConfig, c.DetectResponseLen)
	}
	return nil
}
