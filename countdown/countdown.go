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

// Package countdown turns a one-shot countdown timer alarm into a blocking
// timeout primitive.
package countdown

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"
)

// Countdown errors
var (
	ErrOutOfRange = errors.New("duration out of timer range")
	ErrNotArmed   = errors.New("countdown not armed")
)

// Peripheral is a hardware countdown timer with a single alarm.
//
// The counter and the alarm threshold are expressed in microseconds. Once
// enabled with the alarm enabled, the peripheral invokes the subscribed
// callback exactly once when the counter reaches the threshold, then disables
// the alarm. The callback may run on a different goroutine than the caller.
type Peripheral interface {
	// Enable starts or stops the counter
	Enable(on bool) error
	// SetCounter loads the counter value
	SetCounter(micros uint64) error
	// SetAlarm sets the alarm threshold
	SetAlarm(micros uint64) error
	// EnableAlarm arms or disarms the alarm interrupt
	EnableAlarm(on bool) error
	// Subscribe registers the alarm callback, replacing any previous one
	Subscribe(callback func()) error
	// MaxAlarm returns the largest alarm threshold the peripheral accepts
	MaxAlarm() uint64
}

// Source wraps a Peripheral and exposes Arm and Wait.
//
// The alarm flag is the only state shared with the callback: the callback
// only ever stores true, Arm only ever stores false. Source owns its
// peripheral exclusively and must not be used from more than one goroutine.
type Source struct {
	timer     Peripheral
	triggered atomic.Bool
	armed     bool
}

// New creates a Source that owns the given peripheral
func New(timer Peripheral) *Source {
	return &Source{timer: timer}
}

// MaxDuration returns the longest duration Arm accepts.
func (s *Source) MaxDuration() time.Duration {
	maxMicros := uint64(math.MaxInt64 / int64(time.Microsecond))
	if alarm := s.timer.MaxAlarm(); alarm < maxMicros {
		maxMicros = alarm
	}
	return time.Duration(maxMicros) * time.Microsecond
}

// Arm programs the timer to raise the alarm once after d. Sub-microsecond
// remainders are rounded up so the alarm never fires early.
func (s *Source) Arm(d time.Duration) error {
	if d < 0 || d > s.MaxDuration() {
		return fmt.Errorf("%w: %v (max %v)", ErrOutOfRange, d, s.MaxDuration())
	}
	micros := uint64((d + time.Microsecond - 1) / time.Microsecond)

	// Stop first so an alarm from a previous arm cannot land after the reset.
	if err := s.timer.Enable(false); err != nil {
		return fmt.Errorf("failed to stop timer: %w", err)
	}
	s.armed = false
	if err := s.timer.SetCounter(0); err != nil {
		return fmt.Errorf("failed to reset counter: %w", err)
	}
	if err := s.timer.SetAlarm(micros); err != nil {
		return fmt.Errorf("failed to set alarm: %w", err)
	}
	s.triggered.Store(false)
	if err := s.timer.Subscribe(s.onAlarm); err != nil {
		return fmt.Errorf("failed to subscribe alarm: %w", err)
	}
	if err := s.timer.EnableAlarm(true); err != nil {
		return fmt.Errorf("failed to enable alarm: %w", err)
	}
	if err := s.timer.Enable(true); err != nil {
		return fmt.Errorf("failed to start timer: %w", err)
	}
	s.armed = true
	return nil
}

// onAlarm runs in the peripheral's interrupt context.
func (s *Source) onAlarm() {
	s.triggered.Store(true)
}

// Elapsed reports whether the armed alarm has fired. It never blocks.
func (s *Source) Elapsed() bool {
	return s.triggered.Load()
}

// Wait spins until the armed alarm fires, then stops the timer. There is no
// way to abort it: if the alarm never fires, Wait never returns.
func (s *Source) Wait() error {
	if !s.armed {
		return ErrNotArmed
	}
	for !s.triggered.Load() {
		// Busy wait; yielding lets the alarm goroutine run with GOMAXPROCS=1.
		runtime.Gosched()
	}
	s.armed = false
	if err := s.timer.Enable(false); err != nil {
		return fmt.Errorf("failed to stop timer: %w", err)
	}
	return nil
}

// Disarm stops the timer without waiting for the alarm. It is used when the
// guarded operation finishes before the deadline.
func (s *Source) Disarm() error {
	if !s.armed {
		return nil
	}
	s.armed = false
	if err := s.timer.EnableAlarm(false); err != nil {
		return fmt.Errorf("failed to disable alarm: %w", err)
	}
	if err := s.timer.Enable(false); err != nil {
		return fmt.Errorf("failed to stop timer: %w", err)
	}
	return nil
}
