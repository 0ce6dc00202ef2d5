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
	"testing"
	"time"

	testutil "github.com/ZaparooProject/ntag-poller/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simMaxAlarm = 1<<32 - 1

// waitAsync runs Wait on its own goroutine, standing in for the main context
// while the test goroutine plays the interrupt.
func waitAsync(s *Source) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- s.Wait()
	}()
	return done
}

func requireNotDone(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		t.Fatalf("Wait returned before the alarm: %v", err)
	case <-time.After(20 * time.Millisecond):
	}
}

func requireDone(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after the alarm")
	}
}

func TestSource_WaitReturnsOnlyAfterDuration(t *testing.T) {
	t.Parallel()

	durations := []time.Duration{
		0,
		time.Microsecond,
		50 * time.Millisecond,
		time.Second,
		time.Duration(simMaxAlarm) * time.Microsecond,
	}

	for _, d := range durations {
		d := d
		t.Run(d.String(), func(t *testing.T) {
			t.Parallel()
			timer := testutil.NewSimTimer(simMaxAlarm)
			source := New(timer)

			require.NoError(t, source.Arm(d))
			done := waitAsync(source)

			if d > time.Microsecond {
				timer.Advance(d - time.Microsecond)
				requireNotDone(t, done)
				assert.False(t, source.Elapsed())
				timer.Advance(time.Microsecond)
			} else {
				timer.Advance(d)
			}

			requireDone(t, done)
			assert.GreaterOrEqual(t, timer.FiredAt(), d)
			assert.Equal(t, 1, timer.Fired())
			assert.False(t, timer.Enabled(), "Wait must stop the timer")
		})
	}
}

func TestSource_ArmSequence(t *testing.T) {
	t.Parallel()
	timer := testutil.NewSimTimer(simMaxAlarm)
	source := New(timer)

	require.NoError(t, source.Arm(1500*time.Microsecond))
	assert.Equal(t, []string{
		"enable(false)",
		"counter(0)",
		"alarm(1500)",
		"subscribe",
		"enableAlarm(true)",
		"enable(true)",
	}, timer.Calls())
}

func TestSource_ArmRoundsUp(t *testing.T) {
	t.Parallel()
	timer := testutil.NewSimTimer(simMaxAlarm)
	source := New(timer)

	require.NoError(t, source.Arm(1500*time.Nanosecond))
	assert.Contains(t, timer.Calls(), "alarm(2)")
}

func TestSource_ArmOutOfRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		d    time.Duration
	}{
		{name: "past peripheral limit", d: time.Duration(simMaxAlarm+1) * time.Microsecond},
		{name: "negative", d: -time.Millisecond},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			timer := testutil.NewSimTimer(simMaxAlarm)
			source := New(timer)

			err := source.Arm(tt.d)
			require.ErrorIs(t, err, ErrOutOfRange)
			assert.Empty(t, timer.Calls(), "timer must not be touched")
			assert.False(t, timer.Enabled())
			assert.ErrorIs(t, source.Wait(), ErrNotArmed)
		})
	}
}

func TestSource_MaxDuration(t *testing.T) {
	t.Parallel()

	small := New(testutil.NewSimTimer(1000))
	assert.Equal(t, time.Millisecond, small.MaxDuration())

	huge := New(testutil.NewSimTimer(^uint64(0)))
	assert.Equal(t, time.Duration(1<<63-1)/time.Microsecond*time.Microsecond, huge.MaxDuration())
}

func TestSource_WaitWithoutArm(t *testing.T) {
	t.Parallel()
	source := New(testutil.NewSimTimer(simMaxAlarm))

	done := waitAsync(source)
	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrNotArmed)
	case <-time.After(time.Second):
		t.Fatal("Wait without Arm must not hang")
	}
}

func TestSource_WaitTwiceAfterOneArm(t *testing.T) {
	t.Parallel()
	timer := testutil.NewSimTimer(simMaxAlarm)
	source := New(timer)

	require.NoError(t, source.Arm(time.Millisecond))
	timer.Advance(time.Millisecond)
	require.NoError(t, source.Wait())
	assert.ErrorIs(t, source.Wait(), ErrNotArmed)
}

func TestSource_RepeatedCyclesAreIndependent(t *testing.T) {
	t.Parallel()
	timer := testutil.NewSimTimer(simMaxAlarm)
	source := New(timer)

	const cycles = 100
	for i := 1; i <= cycles; i++ {
		d := time.Duration(i) * 100 * time.Microsecond
		require.NoError(t, source.Arm(d))
		require.False(t, source.Elapsed(), "cycle %d: flag must be clear right after Arm", i)

		start := timer.Now()
		timer.Advance(d - time.Microsecond)
		require.False(t, source.Elapsed(), "cycle %d: fired early", i)
		timer.Advance(time.Microsecond)
		require.True(t, source.Elapsed(), "cycle %d: did not fire", i)

		require.NoError(t, source.Wait())
		require.Equal(t, d, timer.FiredAt()-start, "cycle %d", i)
	}
	assert.Equal(t, cycles, timer.Fired())
}

func TestSource_DisarmStopsAlarm(t *testing.T) {
	t.Parallel()
	timer := testutil.NewSimTimer(simMaxAlarm)
	source := New(timer)

	require.NoError(t, source.Arm(time.Millisecond))
	require.NoError(t, source.Disarm())
	timer.Advance(10 * time.Millisecond)

	assert.Zero(t, timer.Fired())
	assert.False(t, source.Elapsed())
	assert.ErrorIs(t, source.Wait(), ErrNotArmed)

	// Disarm without an outstanding arm is a no-op
	require.NoError(t, source.Disarm())
}

func TestSource_RearmAfterDisarmClearsCounter(t *testing.T) {
	t.Parallel()
	timer := testutil.NewSimTimer(simMaxAlarm)
	source := New(timer)

	require.NoError(t, source.Arm(time.Millisecond))
	timer.Advance(900 * time.Microsecond)
	require.NoError(t, source.Disarm())

	require.NoError(t, source.Arm(time.Millisecond))
	timer.Advance(900 * time.Microsecond)
	assert.False(t, source.Elapsed(), "counter must restart from zero")
	timer.Advance(100 * time.Microsecond)
	assert.True(t, source.Elapsed())
	require.NoError(t, source.Wait())
}
