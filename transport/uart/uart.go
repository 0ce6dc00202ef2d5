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

// Package uart provides the HSU (serial) transport for a PN532.
package uart

import (
	"fmt"
	"sync"
	"time"

	pn532 "github.com/ZaparooProject/ntag-poller"
	"github.com/ZaparooProject/ntag-poller/internal/frame"
	"go.bug.st/serial"
)

const (
	// BaudRate is the PN532 HSU default speed.
	BaudRate = 115200

	// peekTimeout bounds the non-blocking readiness check.
	peekTimeout = time.Millisecond

	// DefaultReadTimeout bounds each chunk of a Read.
	DefaultReadTimeout = 100 * time.Millisecond
)

// Port is the part of serial.Port the transport uses
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	ResetInputBuffer() error
	SetReadTimeout(t time.Duration) error
	Close() error
}

// Transport implements pn532.Transport over a serial port
type Transport struct {
	port        Port
	portName    string
	pending     []byte
	readTimeout time.Duration
	mu          sync.Mutex
	awake       bool
}

// Open opens portName at 115200 8N1
func Open(portName string) (*Transport, error) {
	mode := &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, pn532.NewTransportError("open", portName,
			fmt.Errorf("%w: %w", pn532.ErrDeviceNotFound, err), pn532.ErrorTypePermanent)
	}

	return NewWithPort(port, portName), nil
}

// NewWithPort creates a transport on an already opened port
func NewWithPort(port Port, portName string) *Transport {
	return &Transport{
		port:        port,
		portName:    portName,
		readTimeout: DefaultReadTimeout,
	}
}

// Write discards stale input and sends a frame. The first write is prefixed
// with the wakeup preamble.
func (t *Transport) Write(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.port.ResetInputBuffer(); err != nil {
		return t.writeError(err)
	}
	t.pending = t.pending[:0]

	out := data
	if !t.awake {
		out = make([]byte, 0, len(frame.WakeupPreamble)+len(data))
		out = append(out, frame.WakeupPreamble...)
		out = append(out, data...)
	}

	for written := 0; written < len(out); {
		n, err := t.port.Write(out[written:])
		if err != nil {
			return t.writeError(err)
		}
		written += n
	}

	t.awake = true
	return nil
}

// Ready reports whether a byte is waiting. A peeked byte is kept for the
// next Read.
func (t *Transport) Ready() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.pending) > 0 {
		return true, nil
	}

	if err := t.port.SetReadTimeout(peekTimeout); err != nil {
		return false, t.readError(err)
	}
	b := []byte{0}
	n, err := t.port.Read(b)
	if err != nil {
		return false, t.readError(err)
	}
	if n == 0 {
		return false, nil
	}
	t.pending = append(t.pending, b[0])
	return true, nil
}

// Read fills buf, starting with any byte kept by Ready
func (t *Transport) Read(buf []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	filled := copy(buf, t.pending)
	t.pending = t.pending[filled:]
	if filled == len(buf) {
		return nil
	}

	if err := t.port.SetReadTimeout(t.readTimeout); err != nil {
		return t.readError(err)
	}
	for filled < len(buf) {
		n, err := t.port.Read(buf[filled:])
		if err != nil {
			return t.readError(err)
		}
		if n == 0 {
			return pn532.NewTransportError("read", t.portName,
				fmt.Errorf("%w: got %d of %d bytes", pn532.ErrTransportRead, filled, len(buf)),
				pn532.ErrorTypeTransient)
		}
		filled += n
	}
	return nil
}

// ReadFrame reads one information frame: it skips the preamble up to the
// start code, reads LEN and LCS, then exactly LEN data bytes plus DCS and
// postamble. Each chunk waits at most peekTimeout, and the read gives up with
// a timeout once expired reports true. At most maxLen bytes are consumed;
// anything left over is discarded by the next Write.
func (t *Transport) ReadFrame(maxLen int, expired func() bool) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.port.SetReadTimeout(peekTimeout); err != nil {
		return nil, t.readError(err)
	}

	buf := make([]byte, 0, maxLen)
	found := false
	for !found && len(buf) < maxLen {
		b, err := t.nextByte(expired)
		if err != nil {
			return nil, err
		}
		buf = append(buf, b)
		n := len(buf)
		found = n >= 2 && buf[n-2] == 0x00 && buf[n-1] == 0xFF
	}
	if !found {
		return buf, nil
	}

	header, err := t.fill(buf, 2, maxLen, expired)
	if err != nil || len(header) < len(buf)+2 {
		return header, err
	}
	length, lcs := header[len(header)-2], header[len(header)-1]
	if length+lcs != 0 {
		return header, nil
	}
	return t.fill(header, int(length)+2, maxLen, expired)
}

// nextByte returns a byte kept by Ready or waits for one from the port
func (t *Transport) nextByte(expired func() bool) (byte, error) {
	if len(t.pending) > 0 {
		b := t.pending[0]
		t.pending = t.pending[1:]
		return b, nil
	}

	b := []byte{0}
	for {
		n, err := t.port.Read(b)
		if err != nil {
			return 0, t.readError(err)
		}
		if n > 0 {
			return b[0], nil
		}
		if expired() {
			return 0, pn532.NewTimeoutError("read", t.portName)
		}
	}
}

// fill appends count more bytes to buf without growing it past maxLen
func (t *Transport) fill(buf []byte, count, maxLen int, expired func() bool) ([]byte, error) {
	want := min(len(buf)+count, maxLen)
	for len(buf) < want {
		b, err := t.nextByte(expired)
		if err != nil {
			return nil, err
		}
		buf = append(buf, b)
	}
	return buf, nil
}

// Close closes the serial port
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port %s: %w", t.portName, err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() pn532.TransportType {
	return pn532.TransportUART
}

func (t *Transport) writeError(err error) error {
	return pn532.NewTransportError("write", t.portName,
		fmt.Errorf("%w: %w", pn532.ErrTransportWrite, err), pn532.ErrorTypeTransient)
}

func (t *Transport) readError(err error) error {
	return pn532.NewTransportError("read", t.portName,
		fmt.Errorf("%w: %w", pn532.ErrTransportRead, err), pn532.ErrorTypeTransient)
}

var (
	_ pn532.Transport   = (*Transport)(nil)
	_ pn532.FrameReader = (*Transport)(nil)
)
