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
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "transport timeout retryable", err: ErrTransportTimeout, want: true},
		{name: "transport read retryable", err: ErrTransportRead, want: true},
		{name: "no ACK retryable", err: ErrNoACK, want: true},
		{name: "frame corrupted retryable", err: ErrFrameCorrupted, want: true},
		{name: "checksum mismatch retryable", err: ErrChecksumMismatch, want: true},
		{name: "device not found not retryable", err: ErrDeviceNotFound, want: false},
		{name: "data too large not retryable", err: ErrDataTooLarge, want: false},
		{name: "invalid parameter not retryable", err: ErrInvalidParameter, want: false},
		{name: "wrapped sentinel retryable", err: fmt.Errorf("outer: %w", ErrNoACK), want: true},
		{name: "flattened message not retryable", err: errors.New("outer: " + ErrTransportTimeout.Error()), want: false},
		{name: "transport error retryable", err: NewNoACKError("ack", "i2c"), want: true},
		{name: "transport error permanent", err: NewDataTooLargeError("write", "i2c"), want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		name string
		want ErrorType
	}{
		{name: "nil", err: nil, want: ErrorTypePermanent},
		{name: "timeout sentinel", err: ErrTransportTimeout, want: ErrorTypeTimeout},
		{name: "read sentinel", err: ErrTransportRead, want: ErrorTypeTransient},
		{name: "NACK sentinel", err: ErrNACKReceived, want: ErrorTypeTransient},
		{name: "unknown error", err: errors.New("boom"), want: ErrorTypePermanent},
		{name: "timeout transport error", err: NewTimeoutError("ack", "i2c"), want: ErrorTypeTimeout},
		{
			name: "wrapped transport error",
			err:  fmt.Errorf("cycle: %w", NewFrameCorruptedError("response", "uart")),
			want: ErrorTypeTransient,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GetErrorType(tt.err))
		})
	}
}

func TestNewTransportError(t *testing.T) {
	t.Parallel()
	cause := errors.New("permission denied")
	te := NewTransportError("read", "/dev/ttyUSB0", cause, ErrorTypePermanent)

	assert.Equal(t, "read", te.Op)
	assert.Equal(t, "/dev/ttyUSB0", te.Port)
	assert.Equal(t, ErrorTypePermanent, te.Type)
	assert.False(t, te.Retryable)
	require.ErrorIs(t, te, cause)
}

func TestTransportError_Error(t *testing.T) {
	t.Parallel()

	withPort := &TransportError{Err: errors.New("connection failed"), Op: "read", Port: "/dev/ttyUSB0"}
	assert.Equal(t, "read on /dev/ttyUSB0: connection failed", withPort.Error())

	withoutPort := &TransportError{Err: errors.New("device busy"), Op: "write"}
	assert.Equal(t, "write: device busy", withoutPort.Error())
}

func TestErrorConstructors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		te        *TransportError
		sentinel  error
		name      string
		wantType  ErrorType
		retryable bool
	}{
		{name: "timeout", te: NewTimeoutError("read", "i2c"), sentinel: ErrTransportTimeout,
			wantType: ErrorTypeTimeout, retryable: true},
		{name: "frame corrupted", te: NewFrameCorruptedError("read", "i2c"), sentinel: ErrFrameCorrupted,
			wantType: ErrorTypeTransient, retryable: true},
		{name: "no ACK", te: NewNoACKError("ack", "i2c"), sentinel: ErrNoACK,
			wantType: ErrorTypeTransient, retryable: true},
		{name: "not ready", te: NewTransportNotReadyError("ready", "i2c"), sentinel: ErrTransportNotReady,
			wantType: ErrorTypeTransient, retryable: true},
		{name: "data too large", te: NewDataTooLargeError("write", "i2c"), sentinel: ErrDataTooLarge,
			wantType: ErrorTypePermanent, retryable: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.ErrorIs(t, tt.te, tt.sentinel)
			assert.Equal(t, tt.wantType, tt.te.Type)
			assert.Equal(t, tt.retryable, tt.te.Retryable)
		})
	}
}

func TestErrorType_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "permanent", ErrorTypePermanent.String())
	assert.Equal(t, "transient", ErrorTypeTransient.String())
	assert.Equal(t, "timeout", ErrorTypeTimeout.String())
	assert.Equal(t, "ErrorType(9)", ErrorType(9).String())
}
