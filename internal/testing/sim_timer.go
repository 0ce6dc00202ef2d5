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
	"fmt"
	"sync"
	"time"
)

// SimTimer is a countdown timer peripheral driven by a virtual clock. Time
// only moves when Advance is called, and the alarm callback runs on the
// goroutine that calls Advance.
type SimTimer struct {
	callback     func()
	calls        []string
	now          uint64
	counter      uint64
	alarm        uint64
	maxAlarm     uint64
	firedAt      uint64
	fired        int
	mu           sync.Mutex
	enabled      bool
	alarmEnabled bool
}

// NewSimTimer creates a stopped simulated timer
func NewSimTimer(maxAlarm uint64) *SimTimer {
	return &SimTimer{maxAlarm: maxAlarm}
}

// Enable starts or stops the counter
func (t *SimTimer) Enable(on bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("enable(%t)", on)
	t.enabled = on
	t.checkLocked()
	return nil
}

// SetCounter loads the counter value
func (t *SimTimer) SetCounter(micros uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("counter(%d)", micros)
	t.counter = micros
	return nil
}

// SetAlarm sets the alarm threshold
func (t *SimTimer) SetAlarm(micros uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("alarm(%d)", micros)
	if micros > t.maxAlarm {
		return fmt.Errorf("alarm %d exceeds %d", micros, t.maxAlarm)
	}
	t.alarm = micros
	return nil
}

// EnableAlarm arms or disarms the alarm
func (t *SimTimer) EnableAlarm(on bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("enableAlarm(%t)", on)
	t.alarmEnabled = on
	t.checkLocked()
	return nil
}

// Subscribe registers the alarm callback
func (t *SimTimer) Subscribe(callback func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("subscribe")
	t.callback = callback
	return nil
}

// MaxAlarm returns the configured alarm limit
func (t *SimTimer) MaxAlarm() uint64 {
	return t.maxAlarm
}

// Advance moves the virtual clock forward. The counter only moves while the
// timer is enabled.
func (t *SimTimer) Advance(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	step := uint64(d / time.Microsecond)
	t.now += step
	if t.enabled {
		t.counter += step
	}
	t.checkLocked()
}

// Now returns the virtual time since creation
func (t *SimTimer) Now() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return time.Duration(t.now) * time.Microsecond
}

// FiredAt returns the virtual time of the most recent alarm
func (t *SimTimer) FiredAt() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return time.Duration(t.firedAt) * time.Microsecond
}

// Fired returns how many alarms have been delivered
func (t *SimTimer) Fired() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}

// Enabled reports whether the counter is running
func (t *SimTimer) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// Calls returns the peripheral calls made so far
func (t *SimTimer) Calls() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.calls...)
}

// ResetCalls clears the call log
func (t *SimTimer) ResetCalls() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = nil
}

func (t *SimTimer) record(format string, args ...any) {
	t.calls = append(t.calls, fmt.Sprintf(format, args...))
}

func (t *SimTimer) checkLocked() {
	if !t.enabled || !t.alarmEnabled || t.counter < t.alarm {
		return
	}
	t.alarmEnabled = false
	t.fired++
	t.firedAt = t.now
	if t.callback != nil {
		t.callback()
	}
}
