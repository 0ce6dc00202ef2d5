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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostTimer_SourceWaitsAtLeastDuration(t *testing.T) {
	t.Parallel()
	source := New(NewHostTimer())

	for _, d := range []time.Duration{time.Millisecond, 20 * time.Millisecond} {
		start := time.Now()
		require.NoError(t, source.Arm(d))
		require.NoError(t, source.Wait())
		assert.GreaterOrEqual(t, time.Since(start), d)
	}
}

func TestHostTimer_SingleShot(t *testing.T) {
	t.Parallel()
	timer := NewHostTimer()

	var fired atomic.Int32
	require.NoError(t, timer.SetCounter(0))
	require.NoError(t, timer.SetAlarm(1000))
	require.NoError(t, timer.Subscribe(func() { fired.Add(1) }))
	require.NoError(t, timer.EnableAlarm(true))
	require.NoError(t, timer.Enable(true))

	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load(), "alarm must fire once")
	require.NoError(t, timer.Enable(false))
}

func TestHostTimer_DisableDropsPendingAlarm(t *testing.T) {
	t.Parallel()
	timer := NewHostTimer()
	source := New(timer)

	require.NoError(t, source.Arm(5*time.Millisecond))
	require.NoError(t, source.Disarm())
	time.Sleep(20 * time.Millisecond)
	assert.False(t, source.Elapsed(), "stale alarm delivered after disarm")
}

func TestHostTimer_CounterFreezesWhenDisabled(t *testing.T) {
	t.Parallel()
	timer := NewHostTimer()

	require.NoError(t, timer.SetCounter(0))
	require.NoError(t, timer.Enable(true))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, timer.Enable(false))

	frozen := timer.Counter()
	assert.GreaterOrEqual(t, frozen, uint64(2000))
	time.Sleep(2 * time.Millisecond)
	assert.Equal(t, frozen, timer.Counter())
}

func TestHostTimer_SetAlarmOutOfRange(t *testing.T) {
	t.Parallel()
	timer := NewHostTimer()
	require.ErrorIs(t, timer.SetAlarm(timer.MaxAlarm()+1), ErrOutOfRange)
}
