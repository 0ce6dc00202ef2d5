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

// Package frame encodes and decodes PN532 normal information frames.
package frame

// Frame identifiers (TFI)
const (
	TFIHost   = 0xD4
	TFIReader = 0xD5
)

const (
	preamble  = 0x00
	postamble = 0x00
)

// startCode opens every frame after the preamble
var startCode = [2]byte{0x00, 0xFF}

const (
	// AckLength is the size of an ACK or NACK frame
	AckLength = 6
	// ResponseOverhead is the number of bytes a response frame adds around
	// its data: preamble, start code, LEN, LCS, TFI, response code, DCS and
	// postamble.
	ResponseOverhead = 9
)

// WakeupPreamble brings an HSU (UART) PN532 out of low power mode
var WakeupPreamble = []byte{0x55, 0x55, 0x00, 0x00, 0x00}

// Flow control frames
var (
	AckFrame  = []byte{0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00}
	NackFrame = []byte{0x00, 0x00, 0xFF, 0xFF, 0x00, 0x00}
)
