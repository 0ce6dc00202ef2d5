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

package frame

import (
	"bytes"
	"errors"
	"fmt"
)

// Frame errors
var (
	ErrDataTooLarge       = errors.New("frame data too large")
	ErrFrameTooShort      = errors.New("frame too short")
	ErrNoStartCode        = errors.New("frame start code not found")
	ErrLengthChecksum     = errors.New("length checksum mismatch")
	ErrDataChecksum       = errors.New("data checksum mismatch")
	ErrUnexpectedTFI      = errors.New("unexpected frame identifier")
	ErrUnexpectedResponse = errors.New("unexpected response code")
	ErrApplicationError   = errors.New("application level error frame")
)

// errorFrameCode is the single data byte of a syntax error frame
const errorFrameCode = 0x7F

// CalculateChecksum returns the 8-bit sum of data
func CalculateChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// ValidateChecksum returns true when data, including its trailing checksum
// byte, does not sum to zero and the frame must be NACKed.
func ValidateChecksum(data []byte) bool {
	return CalculateChecksum(data) != 0
}

// CalculateLengthChecksum returns the LCS byte for a frame length
func CalculateLengthChecksum(length byte) byte {
	return ^length + 1
}

// CalculateDataChecksum returns the DCS byte for a TFI and its data
func CalculateDataChecksum(tfi byte, data []byte) byte {
	return ^(tfi + CalculateChecksum(data)) + 1
}

// Build encodes a normal information frame carrying cmd and params from the
// host to the PN532.
func Build(cmd byte, params []byte) ([]byte, error) {
	dataLen := 2 + len(params) // TFI + command + params
	if dataLen > 0xFE {
		return nil, fmt.Errorf("%w: %d bytes", ErrDataTooLarge, dataLen)
	}

	frm := make([]byte, 0, dataLen+7)
	frm = append(frm, preamble, startCode[0], startCode[1])
	frm = append(frm, byte(dataLen), CalculateLengthChecksum(byte(dataLen)))
	frm = append(frm, TFIHost, cmd)
	frm = append(frm, params...)

	body := append([]byte{cmd}, params...)
	frm = append(frm, CalculateDataChecksum(TFIHost, body), postamble)
	return frm, nil
}

// IsAck reports whether buf holds an ACK frame
func IsAck(buf []byte) bool {
	return bytes.Equal(buf, AckFrame)
}

// IsNack reports whether buf holds a NACK frame
func IsNack(buf []byte) bool {
	return bytes.Equal(buf, NackFrame)
}

// ParseResponse decodes a PN532 to host information frame answering cmd and
// returns the data that follows the response code. Any bytes after the
// postamble are ignored.
func ParseResponse(buf []byte, cmd byte) ([]byte, error) {
	off := bytes.Index(buf, startCode[:])
	if off < 0 {
		return nil, ErrNoStartCode
	}
	off += 2 // length byte

	if off+2 > len(buf) {
		return nil, ErrFrameTooShort
	}
	length, lcs := buf[off], buf[off+1]
	if length+lcs != 0 {
		return nil, ErrLengthChecksum
	}

	start := off + 2
	end := start + int(length)
	if end+1 > len(buf) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrFrameTooShort, end+1, len(buf))
	}
	body := buf[start:end]
	if ValidateChecksum(buf[start : end+1]) {
		return nil, ErrDataChecksum
	}

	if len(body) == 1 && body[0] == errorFrameCode {
		return nil, ErrApplicationError
	}
	if len(body) < 2 {
		return nil, ErrFrameTooShort
	}
	if body[0] != TFIReader {
		return nil, fmt.Errorf("%w: %02X", ErrUnexpectedTFI, body[0])
	}
	if body[1] != cmd+1 {
		return nil, fmt.Errorf("%w: got %02X, want %02X", ErrUnexpectedResponse, body[1], cmd+1)
	}

	return append([]byte(nil), body[2:]...), nil
}

// BuildResponse encodes a PN532 to host information frame answering cmd.
// It is the inverse of ParseResponse and is used by simulated transports.
func BuildResponse(cmd byte, data []byte) []byte {
	body := append([]byte{TFIReader, cmd + 1}, data...)
	frm := make([]byte, 0, len(body)+7)
	frm = append(frm, preamble, startCode[0], startCode[1])
	frm = append(frm, byte(len(body)), CalculateLengthChecksum(byte(len(body))))
	frm = append(frm, body...)
	frm = append(frm, ^CalculateChecksum(body)+1, postamble)
	return frm
}
