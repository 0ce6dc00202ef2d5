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
	"errors"
	"fmt"
	"time"
)

// ccPage holds the capability container
const ccPage = 3

// ccMagic marks a capability container written for NDEF
const ccMagic = 0xE1

// ErrNoCapabilityContainer is returned for tags without an NDEF CC
var ErrNoCapabilityContainer = errors.New("tag has no NDEF capability container")

// Model is an NTAG21x variant identified by its data area size
type Model struct {
	Name    string
	EndPage byte
}

// Known models keyed by the CC data area size byte
//
//nolint:gochecknoglobals // lookup table
var models = map[byte]Model{
	0x12: {Name: "NTAG213", EndPage: 39},
	0x3E: {Name: "NTAG215", EndPage: 129},
	0x6D: {Name: "NTAG216", EndPage: 225},
}

// ModelFromCC identifies the tag from its capability container. Unknown
// sizes give a generic model whose end page is derived from the size.
func ModelFromCC(cc []byte) (Model, error) {
	if len(cc) < PageSize || cc[0] != ccMagic {
		return Model{}, ErrNoCapabilityContainer
	}
	if m, ok := models[cc[2]]; ok {
		return m, nil
	}
	// Data area is size*8 bytes starting at the first user page.
	pages := int(cc[2]) * 8 / PageSize
	if pages == 0 {
		return Model{}, ErrNoCapabilityContainer
	}
	end := UserStartPage + pages - 1
	if end > 0xFF {
		end = 0xFF
	}
	return Model{Name: fmt.Sprintf("NTAG (%d byte data area)", int(cc[2])*8), EndPage: byte(end)}, nil
}

// ReadModel reads the capability container and identifies the tag
func ReadModel(p Processor, timeout time.Duration, opts ...ReadOption) (Model, error) {
	cc, err := ReadPages(p, ccPage, ccPage, timeout, opts...)
	if err != nil {
		return Model{}, err
	}
	return ModelFromCC(cc)
}

// String returns the model name
func (m Model) String() string {
	return m.Name
}
