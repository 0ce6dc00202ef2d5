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

import "time"

// PollTuner is implemented by transports that know how often their
// readiness check should run
type PollTuner interface {
	// PollInterval returns the pause between Ready calls
	PollInterval() time.Duration
}

// pollIntervalFor returns the readiness poll interval for a transport
func pollIntervalFor(transport Transport) time.Duration {
	if tuner, ok := transport.(PollTuner); ok {
		if interval := tuner.PollInterval(); interval >= 0 {
			return interval
		}
	}

	switch transport.Type() {
	case TransportUART:
		// Ready already waits for a byte on the line.
		return 0
	case TransportI2C, TransportMock:
		return defaultPollInterval
	default:
		return defaultPollInterval
	}
}

// FrameReader is implemented by transports that cannot tell how many bytes a
// response carries until its header has been read, such as a serial line.
// Device prefers ReadFrame over a fixed length Read for responses.
type FrameReader interface {
	// ReadFrame reads one information frame of at most maxLen bytes. Bytes
	// are returned as received, so malformed headers are left for the frame
	// parser to reject. ReadFrame returns an ErrTransportTimeout error once
	// expired reports true while it is still waiting for input.
	ReadFrame(maxLen int, expired func() bool) ([]byte, error)
}
