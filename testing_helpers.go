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
	"sync"

	"github.com/ZaparooProject/ntag-poller/internal/frame"
)

// MockTransport simulates a PN532 on the far side of the bus. Every written
// frame is answered with an ACK followed by a response frame built from
// ResponseFunc, or from the per-command responses when ResponseFunc is nil.
type MockTransport struct {
	// ResponseFunc returns the data that follows the response code. Returning
	// an error makes the mock stay silent after the ACK.
	ResponseFunc func(cmd byte, params []byte) ([]byte, error)
	responses    map[byte][]byte
	errs         map[byte]error
	// OnReady is called on every readiness poll
	OnReady func()
	// Ack replaces the ACK frame, e.g. with a NACK
	Ack []byte
	// RawResponse replaces the built response frame
	RawResponse []byte
	// WriteErr fails every Write
	WriteErr error
	pending  [][]byte
	commands []byte
	aborts   int
	mu       sync.Mutex
	// Stalled keeps queued frames hidden from Ready, like a reply that is
	// still on its way
	Stalled bool
	closed  bool
}

// NewMockTransport creates a mock with no configured responses
func NewMockTransport() *MockTransport {
	return &MockTransport{
		responses: make(map[byte][]byte),
		errs:      make(map[byte]error),
	}
}

// SetResponse configures the response data for a command
func (m *MockTransport) SetResponse(cmd byte, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[cmd] = data
	delete(m.errs, cmd)
}

// SetError makes the mock stay silent after acknowledging a command
func (m *MockTransport) SetError(cmd byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[cmd] = err
	delete(m.responses, cmd)
}

func (m *MockTransport) respond(cmd byte, params []byte) ([]byte, error) {
	if m.ResponseFunc != nil {
		return m.ResponseFunc(cmd, params)
	}
	if err, ok := m.errs[cmd]; ok {
		return nil, err
	}
	if data, ok := m.responses[cmd]; ok {
		return data, nil
	}
	return nil, ErrCommunicationFailed
}

// Write decodes the command frame and queues the reply
func (m *MockTransport) Write(frm []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrTransportWrite
	}
	if m.WriteErr != nil {
		return m.WriteErr
	}
	if frame.IsAck(frm) {
		// the reader drops the command in progress
		m.aborts++
		m.pending = nil
		return nil
	}
	if len(frm) < 9 {
		return ErrFrameCorrupted
	}

	cmd := frm[6]
	params := append([]byte(nil), frm[7:len(frm)-2]...)
	m.commands = append(m.commands, cmd)

	ack := frame.AckFrame
	if m.Ack != nil {
		ack = m.Ack
	}
	m.pending = append(m.pending, append([]byte(nil), ack...))

	if m.RawResponse != nil {
		m.pending = append(m.pending, append([]byte(nil), m.RawResponse...))
		return nil
	}
	data, err := m.respond(cmd, params)
	if err != nil {
		return nil
	}
	m.pending = append(m.pending, frame.BuildResponse(cmd, data))
	return nil
}

// Ready reports whether a queued frame is waiting
func (m *MockTransport) Ready() (bool, error) {
	m.mu.Lock()
	onReady := m.OnReady
	m.mu.Unlock()

	if onReady != nil {
		onReady()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.Stalled && len(m.pending) > 0, nil
}

// Read pops the next queued frame into buf
func (m *MockTransport) Read(buf []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || len(m.pending) == 0 {
		return ErrTransportRead
	}
	next := m.pending[0]
	m.pending = m.pending[1:]

	clear(buf)
	copy(buf, next)
	return nil
}

// Close marks the transport as closed
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.pending = nil
	return nil
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// Commands returns the command codes written so far
func (m *MockTransport) Commands() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.commands...)
}

// Aborts returns how many ACK frames the host sent to cancel a command
func (m *MockTransport) Aborts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aborts
}

// SetStalled hides or reveals queued frames
func (m *MockTransport) SetStalled(stalled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stalled = stalled
}

var _ Transport = (*MockTransport)(nil)
