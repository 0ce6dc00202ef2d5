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

// PN532 Command codes
const (
	cmdSamConfiguration    = 0x14
	cmdInListPassiveTarget = 0x4A
	cmdInDataExchange      = 0x40
)

// NTAG21x commands carried by InDataExchange
const (
	ntagCmdRead = 0x30
)

// Baud rate and modulation for InListPassiveTarget
const (
	brTy106kbpsTypeA = 0x00
)

// StatusOK is the InDataExchange status byte for a successful exchange.
// The first byte of an NTAGRead response carries this status.
const StatusOK = 0x00
