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

package countdown

import (
	"sync"
	"time"
)

// hostMaxAlarm mirrors a 54-bit alarm register.
const hostMaxAlarm = 1<<54 - 1

// HostTimer is a Peripheral backed by the host monotonic clock. The alarm
// callback runs on a runtime timer goroutine, standing in for an interrupt
// handler.
//
// The callback is invoked with the timer's lock held, so once Enable(false)
// or EnableAlarm(false) returns no earlier alarm can still be delivered. The
// callback must not call back into the timer.
type HostTimer struct {
	clock        func() uint64
	callback     func()
	pending      *time.Timer
	counterBase  uint64
	startedAt    uint64
	alarm        uint64
	generation   uint64
	mu           sync.Mutex
	enabled      bool
	alarmEnabled bool
}

// NewHostTimer creates a stopped timer with its counter at zero
func NewHostTimer() *HostTimer {
	return &HostTimer{clock: monotonicMicros}
}

// Enable starts or stops the counter. Stopping freezes the counter value.
func (t *HostTimer) Enable(on bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if on == t.enabled {
		return nil
	}
	if on {
		t.startedAt = t.clock()
		t.enabled = true
	} else {
		t.counterBase = t.counterLocked()
		t.enabled = false
	}
	t.rescheduleLocked()
	return nil
}

// SetCounter loads the counter value
func (t *HostTimer) SetCounter(micros uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counterBase = micros
	t.startedAt = t.clock()
	t.rescheduleLocked()
	return nil
}

// SetAlarm sets the alarm threshold
func (t *HostTimer) SetAlarm(micros uint64) error {
	if micros > hostMaxAlarm {
		return ErrOutOfRange
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.alarm = micros
	t.rescheduleLocked()
	return nil
}

// EnableAlarm arms or disarms the alarm
func (t *HostTimer) EnableAlarm(on bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.alarmEnabled = on
	t.rescheduleLocked()
	return nil
}

// Subscribe registers the alarm callback
func (t *HostTimer) Subscribe(callback func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.callback = callback
	t.rescheduleLocked()
	return nil
}

// MaxAlarm returns the largest alarm threshold in microseconds
func (*HostTimer) MaxAlarm() uint64 {
	return hostMaxAlarm
}

// Counter returns the current counter value in microseconds
func (t *HostTimer) Counter() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counterLocked()
}

func (t *HostTimer) counterLocked() uint64 {
	if !t.enabled {
		return t.counterBase
	}
	return t.counterBase + (t.clock() - t.startedAt)
}

// rescheduleLocked drops any pending alarm and schedules a new one if the
// timer, the alarm and the callback are all in place.
func (t *HostTimer) rescheduleLocked() {
	t.generation++
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	if !t.enabled || !t.alarmEnabled || t.callback == nil {
		return
	}

	var remaining uint64
	if now := t.counterLocked(); now < t.alarm {
		remaining = t.alarm - now
	}
	generation := t.generation
	t.pending = time.AfterFunc(time.Duration(remaining)*time.Microsecond, func() {
		t.fire(generation)
	})
}

func (t *HostTimer) fire(generation uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if generation != t.generation || !t.enabled || !t.alarmEnabled {
		return
	}
	// Single shot
	t.alarmEnabled = false
	t.pending = nil
	if t.callback != nil {
		t.callback()
	}
}

var _ Peripheral = (*HostTimer)(nil)
