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

// Package i2c provides the I2C transport for a PN532 using periph.io.
package i2c

import (
	"fmt"
	"io"
	"sync"

	pn532 "github.com/ZaparooProject/ntag-poller"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

const (
	// Address is the 7-bit I2C address of the PN532.
	Address = 0x24

	// statusReady is the low bit of the status byte prefixed to every read.
	statusReady = 0x01

	// Max clock frequency (400 kHz).
	maxClockFreq = 400 * physic.KiloHertz
)

// Transport implements pn532.Transport over an I2C bus
type Transport struct {
	dev     *i2c.Dev
	closer  io.Closer
	busName string
	mu      sync.Mutex
	scratch []byte
}

// Open initializes the host drivers and opens the named I2C bus
func Open(busName string) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, pn532.NewTransportError("open", busName,
			fmt.Errorf("%w: %w", pn532.ErrDeviceNotFound, err), pn532.ErrorTypePermanent)
	}

	// Fall back to the bus default speed when 400 kHz is unsupported.
	_ = bus.SetSpeed(maxClockFreq)

	t := NewWithBus(bus)
	t.busName = busName
	t.closer = bus
	return t, nil
}

// NewWithBus creates a transport on an already opened bus. The caller keeps
// ownership of the bus.
func NewWithBus(bus i2c.Bus) *Transport {
	return &Transport{
		dev:     &i2c.Dev{Addr: Address, Bus: bus},
		busName: bus.String(),
	}
}

// Write sends a frame to the reader
func (t *Transport) Write(frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.dev.Tx(frame, nil); err != nil {
		return pn532.NewTransportError("write", t.busName,
			fmt.Errorf("%w: %w", pn532.ErrTransportWrite, err), pn532.ErrorTypeTransient)
	}
	return nil
}

// Ready reads the status byte and reports whether the reader has data
func (t *Transport) Ready() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	status := []byte{0}
	if err := t.dev.Tx(nil, status); err != nil {
		return false, pn532.NewTransportError("ready", t.busName,
			fmt.Errorf("%w: %w", pn532.ErrTransportRead, err), pn532.ErrorTypeTransient)
	}
	return status[0]&statusReady != 0, nil
}

// Read fills buf with frame bytes. Every I2C read starts with a status byte
// which is dropped here.
func (t *Transport) Read(buf []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(buf) + 1
	if cap(t.scratch) < n {
		t.scratch = make([]byte, n)
	}
	raw := t.scratch[:n]

	if err := t.dev.Tx(nil, raw); err != nil {
		return pn532.NewTransportError("read", t.busName,
			fmt.Errorf("%w: %w", pn532.ErrTransportRead, err), pn532.ErrorTypeTransient)
	}
	if raw[0]&statusReady == 0 {
		return pn532.NewTransportNotReadyError("read", t.busName)
	}

	copy(buf, raw[1:])
	return nil
}

// Close releases the bus if Open created it
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closer == nil {
		return nil
	}
	err := t.closer.Close()
	t.closer = nil
	if err != nil {
		return fmt.Errorf("failed to close I2C bus %s: %w", t.busName, err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() pn532.TransportType {
	return pn532.TransportI2C
}

var _ pn532.Transport = (*Transport)(nil)
