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

import "fmt"

// SAMMode selects how the PN532 uses its security access module
type SAMMode byte

// SAM modes from the PN532 user manual, section 7.2.10
const (
	SAMModeNormal       SAMMode = 0x01
	SAMModeVirtualCard  SAMMode = 0x02
	SAMModeWiredCard    SAMMode = 0x03
	SAMModeDualCard     SAMMode = 0x04
	samVirtualCardDelay         = 0x14 // 20 * 50ms, only used in virtual card mode
)

// Request is a single PN532 command and its parameters
type Request struct {
	Params  []byte
	Command byte
}

// String returns a short description used in logs
func (r Request) String() string {
	return fmt.Sprintf("cmd=%02X params=% X", r.Command, r.Params)
}

// SAMConfiguration builds a SAMConfiguration request
func SAMConfiguration(mode SAMMode, useIRQ bool) Request {
	var irq byte
	if useIRQ {
		irq = 0x01
	}
	return Request{
		Command: cmdSamConfiguration,
		Params:  []byte{byte(mode), samVirtualCardDelay, irq},
	}
}

// InListOneISOATarget builds an InListPassiveTarget request for a single
// 106 kbps type A target
func InListOneISOATarget() Request {
	return Request{
		Command: cmdInListPassiveTarget,
		Params:  []byte{0x01, brTy106kbpsTypeA},
	}
}

// NTAGRead builds an InDataExchange request that reads four pages starting
// at page from target 1. The response is a status byte followed by 16 bytes.
func NTAGRead(page byte) Request {
	return Request{
		Command: cmdInDataExchange,
		Params:  []byte{0x01, ntagCmdRead, page},
	}
}

// NTAGReadResponseLen is the expected response length of an NTAGRead request
const NTAGReadResponseLen = 17

// InListOneISOATargetResponseLen is the expected response length of an
// InListOneISOATarget request answered by a target with a 7-byte UID, as
// NTAG21x tags carry
const InListOneISOATargetResponseLen = 13
