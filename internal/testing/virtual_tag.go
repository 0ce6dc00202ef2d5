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

package testing

import (
	"errors"
	"sync"

	"github.com/hsanjuan/go-ndef"
)

const (
	ntagPageSize     = 4
	ntagReadPages    = 4
	ntagReadCmd      = 0x30
	ntag213Pages     = 45
	ntagUserStart    = 4
	ndefTLV          = 0x03
	terminatorTLV    = 0xFE
	errUnknownCmd    = "unsupported command"
	dataExchangeArgs = 3
)

// VirtualNTAG is a simulated NTAG213 answering PN532 commands
type VirtualNTAG struct {
	UID     []byte
	pages   [][ntagPageSize]byte
	reads   []byte
	mu      sync.Mutex
	present bool
}

// NewVirtualNTAG213 creates a present NTAG213 with blank user memory
func NewVirtualNTAG213(uid []byte) *VirtualNTAG {
	if uid == nil {
		uid = TestNTAG213UID
	}
	tag := &VirtualNTAG{
		UID:     uid,
		pages:   make([][ntagPageSize]byte, ntag213Pages),
		present: true,
	}
	// Capability container: NDEF magic, version 1.0, 144 bytes, read/write
	tag.pages[3] = [ntagPageSize]byte{0xE1, 0x10, 0x12, 0x00}
	tag.pages[ntagUserStart] = [ntagPageSize]byte{ndefTLV, 0x00, terminatorTLV, 0x00}
	return tag
}

// SetPresent moves the tag into or out of the field
func (v *VirtualNTAG) SetPresent(present bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.present = present
}

// SetPage overwrites one page
func (v *VirtualNTAG) SetPage(page int, data [ntagPageSize]byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pages[page] = data
}

// SetNDEFText stores a text record NDEF message in user memory
func (v *VirtualNTAG) SetNDEFText(text string) error {
	payload, err := ndef.NewTextMessage(text, "en").Marshal()
	if err != nil {
		return err
	}
	return v.SetUserMemory(append([]byte{ndefTLV, byte(len(payload))}, append(payload, terminatorTLV)...))
}

// SetUserMemory writes raw bytes starting at the first user page
func (v *VirtualNTAG) SetUserMemory(data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(data) > (len(v.pages)-ntagUserStart)*ntagPageSize {
		return errors.New("data exceeds user memory")
	}
	for i, b := range data {
		v.pages[ntagUserStart+i/ntagPageSize][i%ntagPageSize] = b
	}
	return nil
}

// Reads returns the start pages of every READ served so far
func (v *VirtualNTAG) Reads() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]byte(nil), v.reads...)
}

// Respond answers a PN532 command. Its signature matches the mock transport
// response hook.
func (v *VirtualNTAG) Respond(cmd byte, params []byte) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch cmd {
	case CmdSAMConfiguration:
		return BuildSAMConfigurationResponse(), nil
	case CmdInListPassiveTarget:
		if !v.present {
			return BuildNoTagResponse(), nil
		}
		return BuildTagDetectionResponse(v.UID), nil
	case CmdInDataExchange:
		if len(params) != dataExchangeArgs || params[1] != ntagReadCmd {
			return nil, errors.New(errUnknownCmd)
		}
		if !v.present {
			return []byte{StatusTimeout}, nil
		}
		return BuildPageReadResponse(StatusOK, v.readLocked(params[2])), nil
	default:
		return nil, errors.New(errUnknownCmd)
	}
}

// readLocked returns four pages from start, rolling over to page 0 past the
// end of memory like the real tag.
func (v *VirtualNTAG) readLocked(start byte) []byte {
	v.reads = append(v.reads, start)
	out := make([]byte, 0, ntagReadPages*ntagPageSize)
	for i := 0; i < ntagReadPages; i++ {
		page := (int(start) + i) % len(v.pages)
		out = append(out, v.pages[page][:]...)
	}
	return out
}
