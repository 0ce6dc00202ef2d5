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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	t.Parallel()
	uid := []byte{0x04, 0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC}
	resp := append([]byte{0x01, 0x01, 0x00, 0x44, 0x00, 0x07}, uid...)

	target, err := ParseTarget(resp)
	require.NoError(t, err)
	assert.Equal(t, byte(1), target.Number)
	assert.Equal(t, [2]byte{0x00, 0x44}, target.SensRes)
	assert.Equal(t, uid, target.UID)
	assert.Equal(t, "04:12:34:56:78:9A:BC", target.UIDString())
	assert.True(t, target.IsType2())

	resp[6] = 0xFF
	assert.Equal(t, byte(0x04), target.UID[0], "UID must not alias the response")
}

func TestParseTarget_Errors(t *testing.T) {
	t.Parallel()

	_, err := ParseTarget(nil)
	require.ErrorIs(t, err, ErrNoTarget)

	_, err = ParseTarget([]byte{0x00})
	require.ErrorIs(t, err, ErrNoTarget)

	_, err = ParseTarget([]byte{0x01, 0x01, 0x00})
	require.ErrorIs(t, err, ErrFrameCorrupted)

	_, err = ParseTarget([]byte{0x01, 0x01, 0x00, 0x44, 0x00, 0x07, 0x04})
	require.ErrorIs(t, err, ErrFrameCorrupted)
}

func TestTarget_IsType2(t *testing.T) {
	t.Parallel()
	assert.False(t, (&Target{SelRes: 0x08}).IsType2(), "MIFARE Classic 1K")
	assert.False(t, (&Target{SelRes: 0x20}).IsType2(), "ISO14443-4")
}
