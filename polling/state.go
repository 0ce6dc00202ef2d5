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

package polling

// State is the driver lifecycle state
type State int

const (
	// StateInitializing covers the startup sequence. It is entered once, on
	// construction, and never re-entered.
	StateInitializing State = iota
	// StatePolling is the steady-state read loop. It is terminal: request
	// failures are handled inside it and never change the state.
	StatePolling
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StatePolling:
		return "polling"
	default:
		return "unknown"
	}
}

// Outcome classifies a single page read
type Outcome int

const (
	// OutcomePage means the reader returned page data
	OutcomePage Outcome = iota
	// OutcomeNoData means the reader answered with a non-success status
	OutcomeNoData
	// OutcomeError means the request failed on the bus or timed out
	OutcomeError
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomePage:
		return "page"
	case OutcomeNoData:
		return "no data"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the outcome of one cycle. It is not retained by the driver.
type Result struct {
	Err     error
	Data    []byte
	Outcome Outcome
}
