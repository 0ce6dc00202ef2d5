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

// Package ntag reads NTAG21x user memory through a PN532 and decodes the
// NDEF message stored in it.
package ntag

import (
	"errors"
	"fmt"
	"time"

	pn532 "github.com/ZaparooProject/ntag-poller"
	"github.com/ZaparooProject/ntag-poller/internal/retry"
	"github.com/hsanjuan/go-ndef"
)

// NTAG21x memory layout
const (
	PageSize       = 4
	PagesPerRead   = 4
	UserStartPage  = 4
	NTAG213EndPage = 39 // last user page of an NTAG213
)

// TLV block types
const (
	tlvNull       = 0x00
	tlvNDEF       = 0x03
	tlvTerminator = 0xFE
	tlvLongForm   = 0xFF
)

// Errors
var (
	ErrInvalidRange = errors.New("invalid page range")
	ErrReadStatus   = errors.New("tag read returned error status")
	ErrShortRead    = errors.New("tag read returned too few bytes")
	ErrNoNDEF       = errors.New("no NDEF message found")
)

// Processor is the request/response contract of the reader protocol
type Processor interface {
	Process(req pn532.Request, responseLen int, timeout time.Duration) ([]byte, error)
}

var _ Processor = (*pn532.Device)(nil)

// ReadOption configures ReadPages and ReadNDEF
type ReadOption func(*retry.Config)

// WithRetries repeats a failed read request up to n more times when the
// failure is transient.
func WithRetries(n int) ReadOption {
	return func(c *retry.Config) {
		if n > 0 {
			c.Retries = n
		}
	}
}

// ReadPages reads pages start through end inclusive, four pages per request.
func ReadPages(p Processor, start, end byte, timeout time.Duration, opts ...ReadOption) ([]byte, error) {
	if end < start {
		return nil, fmt.Errorf("%w: %d-%d", ErrInvalidRange, start, end)
	}

	var rc retry.Config
	for _, opt := range opts {
		opt(&rc)
	}

	count := int(end-start) + 1
	out := make([]byte, 0, count*PageSize)
	for page := int(start); page <= int(end); page += PagesPerRead {
		req := pn532.NTAGRead(byte(page))
		resp, err := retry.Do(rc, func() ([]byte, error) {
			return p.Process(req, pn532.NTAGReadResponseLen, timeout)
		})
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", page, err)
		}
		if len(resp) == 0 || resp[0] != pn532.StatusOK {
			return nil, fmt.Errorf("read page %d: %w", page, readStatusError(resp))
		}
		if len(resp) < 1+PagesPerRead*PageSize {
			return nil, fmt.Errorf("read page %d: %w: %d bytes", page, ErrShortRead, len(resp))
		}
		out = append(out, resp[1:1+PagesPerRead*PageSize]...)
	}
	return out[:count*PageSize], nil
}

func readStatusError(resp []byte) error {
	if len(resp) == 0 {
		return ErrShortRead
	}
	return fmt.Errorf("%w: %02X", ErrReadStatus, resp[0])
}

// ExtractNDEF returns the value of the first NDEF TLV in data. NULL TLVs are
// skipped and a terminator TLV ends the search.
func ExtractNDEF(data []byte) ([]byte, error) {
	for i := 0; i < len(data); {
		tlvType := data[i]
		switch tlvType {
		case tlvNull:
			i++
			continue
		case tlvTerminator:
			return nil, ErrNoNDEF
		}

		length, header, err := tlvLength(data[i+1:])
		if err != nil {
			return nil, err
		}
		valueStart := i + 1 + header
		valueEnd := valueStart + length
		if valueEnd > len(data) {
			return nil, fmt.Errorf("%w: TLV length %d exceeds %d bytes read", ErrShortRead, length, len(data)-valueStart)
		}
		if tlvType == tlvNDEF {
			return data[valueStart:valueEnd], nil
		}
		i = valueEnd
	}
	return nil, ErrNoNDEF
}

// tlvLength decodes a one or three byte TLV length field
func tlvLength(data []byte) (length, header int, err error) {
	if len(data) == 0 {
		return 0, 0, ErrShortRead
	}
	if data[0] != tlvLongForm {
		return int(data[0]), 1, nil
	}
	if len(data) < 3 {
		return 0, 0, ErrShortRead
	}
	return int(data[1])<<8 | int(data[2]), 3, nil
}

// DecodeNDEF extracts and parses the NDEF message in user memory
func DecodeNDEF(data []byte) (*ndef.Message, error) {
	payload, err := ExtractNDEF(data)
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, ErrNoNDEF
	}

	msg := &ndef.Message{}
	if _, err := msg.Unmarshal(payload); err != nil {
		return nil, fmt.Errorf("failed to parse NDEF message: %w", err)
	}
	return msg, nil
}

// ReadNDEF reads user memory from UserStartPage through end and decodes it
func ReadNDEF(p Processor, end byte, timeout time.Duration, opts ...ReadOption) (*ndef.Message, error) {
	data, err := ReadPages(p, UserStartPage, end, timeout, opts...)
	if err != nil {
		return nil, err
	}
	return DecodeNDEF(data)
}
