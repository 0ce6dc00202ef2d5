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

package ntag

import (
	"testing"
	"time"

	pn532 "github.com/ZaparooProject/ntag-poller"
	"github.com/ZaparooProject/ntag-poller/countdown"
	testutil "github.com/ZaparooProject/ntag-poller/internal/testing"
	"github.com/hsanjuan/go-ndef"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTagDevice(t *testing.T, tag *testutil.VirtualNTAG) *pn532.Device {
	t.Helper()
	mock := pn532.NewMockTransport()
	mock.ResponseFunc = tag.Respond
	device, err := pn532.New(mock, countdown.New(testutil.NewSimTimer(1<<32-1)), pn532.WithPollInterval(0))
	require.NoError(t, err)
	return device
}

func TestReadPages(t *testing.T) {
	t.Parallel()
	tag := testutil.NewVirtualNTAG213(nil)
	for i := 4; i < 10; i++ {
		tag.SetPage(i, [4]byte{byte(i), byte(i), byte(i), byte(i)})
	}
	device := newTagDevice(t, tag)

	data, err := ReadPages(device, 4, 9, 50*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, data, 6*PageSize)
	assert.Equal(t, []byte{4, 4, 4, 4}, data[:4])
	assert.Equal(t, []byte{9, 9, 9, 9}, data[20:24])
	assert.Equal(t, []byte{4, 8}, tag.Reads())
}

func TestReadPages_Errors(t *testing.T) {
	t.Parallel()

	t.Run("inverted range", func(t *testing.T) {
		t.Parallel()
		_, err := ReadPages(newTagDevice(t, testutil.NewVirtualNTAG213(nil)), 9, 4, time.Second)
		require.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("tag absent", func(t *testing.T) {
		t.Parallel()
		tag := testutil.NewVirtualNTAG213(nil)
		tag.SetPresent(false)
		_, err := ReadPages(newTagDevice(t, tag), 4, 7, time.Second)
		require.ErrorIs(t, err, ErrReadStatus)
	})
}

func TestExtractNDEF(t *testing.T) {
	t.Parallel()
	long := make([]byte, 300)
	longTLV := append([]byte{0x03, 0xFF, 0x01, 0x2C}, long...)

	tests := []struct {
		wantErr error
		name    string
		data    []byte
		want    []byte
	}{
		{name: "empty data", data: []byte{}, wantErr: ErrNoNDEF},
		{name: "short form", data: []byte{0x03, 0x03, 0xAA, 0xBB, 0xCC, 0xFE}, want: []byte{0xAA, 0xBB, 0xCC}},
		{name: "after null TLVs", data: []byte{0x00, 0x00, 0x03, 0x01, 0xAA}, want: []byte{0xAA}},
		{name: "after other TLV", data: []byte{0x01, 0x02, 0x11, 0x22, 0x03, 0x01, 0x33}, want: []byte{0x33}},
		{name: "long form", data: longTLV, want: long},
		{name: "terminator first", data: []byte{0xFE, 0x03, 0x01, 0xAA}, wantErr: ErrNoNDEF},
		{name: "truncated value", data: []byte{0x03, 0x10, 0xAA}, wantErr: ErrShortRead},
		{name: "truncated long length", data: []byte{0x03, 0xFF, 0x01}, wantErr: ErrShortRead},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ExtractNDEF(tt.data)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadNDEF(t *testing.T) {
	t.Parallel()
	tag := testutil.NewVirtualNTAG213(nil)
	require.NoError(t, tag.SetNDEFText("hello zaparoo"))
	device := newTagDevice(t, tag)

	msg, err := ReadNDEF(device, NTAG213EndPage, 50*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, msg.Records, 1)

	want, err := ndef.NewTextMessage("hello zaparoo", "en").Marshal()
	require.NoError(t, err)
	got, err := msg.Marshal()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeNDEF_EmptyMessage(t *testing.T) {
	t.Parallel()
	tag := testutil.NewVirtualNTAG213(nil)

	_, err := ReadNDEF(newTagDevice(t, tag), NTAG213EndPage, 50*time.Millisecond)
	require.ErrorIs(t, err, ErrNoNDEF)
}

// flakyProcessor fails the first failures calls with a timeout
type flakyProcessor struct {
	next     Processor
	failures int
	calls    int
}

func (f *flakyProcessor) Process(req pn532.Request, n int, timeout time.Duration) ([]byte, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, pn532.NewTimeoutError("response", "flaky")
	}
	return f.next.Process(req, n, timeout)
}

func TestReadPages_WithRetries(t *testing.T) {
	t.Parallel()
	tag := testutil.NewVirtualNTAG213(nil)
	tag.SetPage(4, [4]byte{0xDE, 0xAD, 0xBE, 0xEF})

	flaky := &flakyProcessor{next: newTagDevice(t, tag), failures: 2}
	data, err := ReadPages(flaky, 4, 4, 50*time.Millisecond, WithRetries(2))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, data)
	assert.Equal(t, 3, flaky.calls)

	flaky = &flakyProcessor{next: newTagDevice(t, tag), failures: 2}
	_, err = ReadPages(flaky, 4, 4, 50*time.Millisecond)
	require.ErrorIs(t, err, pn532.ErrTransportTimeout)
	assert.Equal(t, 1, flaky.calls, "no retries unless asked")
}

func TestModelFromCC(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		cc      []byte
		model   string
		endPage byte
		wantErr bool
	}{
		{name: "NTAG213", cc: []byte{0xE1, 0x10, 0x12, 0x00}, model: "NTAG213", endPage: 39},
		{name: "NTAG215", cc: []byte{0xE1, 0x10, 0x3E, 0x00}, model: "NTAG215", endPage: 129},
		{name: "NTAG216", cc: []byte{0xE1, 0x10, 0x6D, 0x00}, model: "NTAG216", endPage: 225},
		{name: "Ultralight", cc: []byte{0xE1, 0x10, 0x06, 0x00}, model: "NTAG (48 byte data area)", endPage: 15},
		{name: "blank", cc: []byte{0x00, 0x00, 0x00, 0x00}, wantErr: true},
		{name: "short", cc: []byte{0xE1}, wantErr: true},
		{name: "zero size", cc: []byte{0xE1, 0x10, 0x00, 0x00}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, err := ModelFromCC(tt.cc)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNoCapabilityContainer)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.model, m.String())
			assert.Equal(t, tt.endPage, m.EndPage)
		})
	}
}

func TestReadModel(t *testing.T) {
	t.Parallel()
	tag := testutil.NewVirtualNTAG213(nil)

	m, err := ReadModel(newTagDevice(t, tag), 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "NTAG213", m.Name)
	assert.Equal(t, byte(NTAG213EndPage), m.EndPage)
	assert.Equal(t, []byte{3}, tag.Reads())
}
