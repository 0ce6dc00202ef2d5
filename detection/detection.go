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

// Package detection finds candidate reader devices when the configured
// device is "auto".
package detection

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.bug.st/serial/enumerator"
)

// Auto is the device name that requests detection
const Auto = "auto"

// Detection errors
var (
	ErrNoDevicesFound       = errors.New("no PN532 candidate devices found")
	ErrUnsupportedTransport = errors.New("transport does not support detection")
)

// Options configures detection
type Options struct {
	// IgnorePaths lists device paths never returned
	IgnorePaths []string
	// Blocklist lists USB VID:PID pairs never returned
	Blocklist []string
}

// DefaultOptions returns options with the default blocklist
func DefaultOptions() *Options {
	return &Options{Blocklist: DefaultBlocklist()}
}

// Scanner lists the raw candidates for each transport. Tests replace the
// functions to avoid touching the host.
type Scanner struct {
	// I2CBuses returns /dev/i2c-* style device paths
	I2CBuses func() ([]string, error)
	// SerialPorts returns the serial ports known to the OS
	SerialPorts func() ([]*enumerator.PortDetails, error)
}

// HostScanner scans the running system
func HostScanner() *Scanner {
	return &Scanner{
		I2CBuses: func() ([]string, error) {
			return filepath.Glob("/dev/i2c-*")
		},
		SerialPorts: enumerator.GetDetailedPortsList,
	}
}

// Detect returns candidate device names for the transport, best first.
// I2C candidates are periph.io bus names, serial candidates are port paths.
func (s *Scanner) Detect(transport string, opts *Options) ([]string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	var (
		found []string
		err   error
	)
	switch transport {
	case "i2c":
		found, err = s.detectI2C(opts)
	case "uart":
		found, err = s.detectSerial(opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTransport, transport)
	}
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w on %s", ErrNoDevicesFound, transport)
	}
	return found, nil
}

func (s *Scanner) detectI2C(opts *Options) ([]string, error) {
	paths, err := s.I2CBuses()
	if err != nil {
		return nil, fmt.Errorf("failed to scan for I2C buses: %w", err)
	}

	type bus struct {
		name   string
		number int
	}
	buses := make([]bus, 0, len(paths))
	for _, path := range paths {
		if IsPathIgnored(path, opts.IgnorePaths) {
			continue
		}
		number, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(path), "i2c-"))
		if err != nil {
			continue
		}
		buses = append(buses, bus{name: strconv.Itoa(number), number: number})
	}

	// Bus 1 is the header bus on most single board computers.
	sort.SliceStable(buses, func(i, j int) bool {
		if (buses[i].number == 1) != (buses[j].number == 1) {
			return buses[i].number == 1
		}
		return buses[i].number < buses[j].number
	})

	names := make([]string, 0, len(buses))
	for _, b := range buses {
		names = append(names, b.name)
	}
	return names, nil
}

func (s *Scanner) detectSerial(opts *Options) ([]string, error) {
	ports, err := s.SerialPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	var usb, other []string
	for _, port := range ports {
		if port == nil || IsPathIgnored(port.Name, opts.IgnorePaths) {
			continue
		}
		if port.IsUSB {
			if IsBlocked(port.VID+":"+port.PID, opts.Blocklist) {
				continue
			}
			usb = append(usb, port.Name)
			continue
		}
		other = append(other, port.Name)
	}

	// USB adapters first: a PN532 breakout is usually wired through one.
	sort.Strings(usb)
	sort.Strings(other)
	return append(usb, other...), nil
}
