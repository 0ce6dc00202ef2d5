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

// Package testing holds simulated hardware used by tests: a virtual clock
// timer peripheral, PN532 response builders and a virtual NTAG.
package testing

// Command bytes for reference
const (
	CmdInDataExchange      = 0x40
	CmdInListPassiveTarget = 0x4A
	CmdSAMConfiguration    = 0x14
)

// Status bytes returned by InDataExchange
const (
	StatusOK      = 0x00
	StatusTimeout = 0x01
)

// TestNTAG213UID is a sample NTAG213 UID
//
//nolint:gochecknoglobals // test fixture
var TestNTAG213UID = []byte{0x04, 0xAB, 0xCD, 0xEF, 0x12, 0x34, 0x56}

// BuildSAMConfigurationResponse returns the (empty) SAMConfiguration data
func BuildSAMConfigurationResponse() []byte {
	return []byte{}
}

// BuildTagDetectionResponse returns InListPassiveTarget data for one NTAG
func BuildTagDetectionResponse(uid []byte) []byte {
	// NbTg, Tg, SENS_RES, SEL_RES, NFCIDLength, NFCID
	response := []byte{0x01, 0x01, 0x00, 0x44, 0x00, byte(len(uid))}
	return append(response, uid...)
}

// BuildNoTagResponse returns InListPassiveTarget data with no targets
func BuildNoTagResponse() []byte {
	return []byte{0x00}
}

// BuildPageReadResponse returns InDataExchange data for an NTAG READ
func BuildPageReadResponse(status byte, pages []byte) []byte {
	return append([]byte{status}, pages...)
}
