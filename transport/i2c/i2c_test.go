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

package i2c

import (
	"errors"
	"testing"

	pn532 "github.com/ZaparooProject/ntag-poller"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
)

// fakeBus records writes and serves queued reads
type fakeBus struct {
	err    error
	writes [][]byte
	reads  [][]byte
	addrs  []uint16
	closed bool
}

func (*fakeBus) String() string { return "fake-i2c" }

func (*fakeBus) SetSpeed(physic.Frequency) error { return nil }

func (b *fakeBus) Close() error {
	b.closed = true
	return nil
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	b.addrs = append(b.addrs, addr)
	if b.err != nil {
		return b.err
	}
	if len(w) > 0 {
		b.writes = append(b.writes, append([]byte(nil), w...))
	}
	if len(r) > 0 {
		if len(b.reads) == 0 {
			return errors.New("nothing queued")
		}
		copy(r, b.reads[0])
		b.reads = b.reads[1:]
	}
	return nil
}

func TestTransport_Write(t *testing.T) {
	t.Parallel()
	bus := &fakeBus{}
	tr := NewWithBus(bus)

	frame := []byte{0x00, 0x00, 0xFF, 0x02, 0xFE, 0xD4, 0x02, 0x2A, 0x00}
	require.NoError(t, tr.Write(frame))
	require.Len(t, bus.writes, 1)
	assert.Equal(t, frame, bus.writes[0])
	assert.Equal(t, []uint16{Address}, bus.addrs)
	assert.Equal(t, pn532.TransportI2C, tr.Type())
}

func TestTransport_Ready(t *testing.T) {
	t.Parallel()
	bus := &fakeBus{reads: [][]byte{{0x00}, {0x01}}}
	tr := NewWithBus(bus)

	ready, err := tr.Ready()
	require.NoError(t, err)
	assert.False(t, ready)

	ready, err = tr.Ready()
	require.NoError(t, err)
	assert.True(t, ready)
}

func TestTransport_Read_DropsStatusByte(t *testing.T) {
	t.Parallel()
	ack := []byte{0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00}
	bus := &fakeBus{reads: [][]byte{append([]byte{0x01}, ack...)}}
	tr := NewWithBus(bus)

	buf := make([]byte, len(ack))
	require.NoError(t, tr.Read(buf))
	assert.Equal(t, ack, buf)
}

func TestTransport_Read_NotReady(t *testing.T) {
	t.Parallel()
	bus := &fakeBus{reads: [][]byte{{0x00, 0x00, 0x00}}}
	tr := NewWithBus(bus)

	err := tr.Read(make([]byte, 2))
	require.ErrorIs(t, err, pn532.ErrTransportNotReady)
}

func TestTransport_BusErrors(t *testing.T) {
	t.Parallel()
	bus := &fakeBus{err: errors.New("nak")}
	tr := NewWithBus(bus)

	err := tr.Write([]byte{0x00})
	require.ErrorIs(t, err, pn532.ErrTransportWrite)
	assert.True(t, pn532.IsRetryable(err))

	_, err = tr.Ready()
	require.ErrorIs(t, err, pn532.ErrTransportRead)

	err = tr.Read(make([]byte, 4))
	require.ErrorIs(t, err, pn532.ErrTransportRead)
}

func TestTransport_Close(t *testing.T) {
	t.Parallel()
	bus := &fakeBus{}
	tr := NewWithBus(bus)
	require.NoError(t, tr.Close())
	assert.False(t, bus.closed, "borrowed bus stays open")

	tr.closer = bus
	require.NoError(t, tr.Close())
	assert.True(t, bus.closed)
	require.NoError(t, tr.Close())
}
