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
	"bytes"
	"errors"
	"fmt"
)

// ErrNoTarget is returned when a detection response lists no target
var ErrNoTarget = errors.New("no target in field")

// Target is an ISO14443A target found by InListOneISOATarget
type Target struct {
	UID     []byte
	SensRes [2]byte
	Number  byte
	SelRes  byte
}

// ParseTarget decodes the data of an InListPassiveTarget response:
// NbTg, Tg, SENS_RES (2), SEL_RES, NFCIDLength, NFCID.
func ParseTarget(resp []byte) (*Target, error) {
	if len(resp) == 0 || resp[0] == 0 {
		return nil, ErrNoTarget
	}
	if len(resp) < 6 {
		return nil, fmt.Errorf("%w: target header is %d bytes", ErrFrameCorrupted, len(resp))
	}

	uidLen := int(resp[5])
	if len(resp) < 6+uidLen {
		return nil, fmt.Errorf("%w: UID needs %d bytes, have %d", ErrFrameCorrupted, uidLen, len(resp)-6)
	}

	return &Target{
		Number:  resp[1],
		SensRes: [2]byte{resp[2], resp[3]},
		SelRes:  resp[4],
		UID:     bytes.Clone(resp[6 : 6+uidLen]),
	}, nil
}

// UIDString returns the UID as colon separated hex
func (t *Target) UIDString() string {
	var b bytes.Buffer
	for i, v := range t.UID {
		if i > 0 {
			b.WriteByte(':')
		}
		fmt.Fprintf(&b, "%02X", v)
	}
	return b.String()
}

// IsType2 reports whether SEL_RES marks an NFC Forum Type 2 tag. NTAG and
// Ultralight answer with SAK 0x00.
func (t *Target) IsType2() bool {
	return t.SelRes == 0x00
}
