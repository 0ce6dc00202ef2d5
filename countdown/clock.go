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

import "time"

//nolint:gochecknoglobals // process start reference for the fallback clock
var clockOrigin = time.Now()

// fallbackMicros derives a monotonic microsecond count from the runtime
// clock reading taken at process start.
func fallbackMicros() uint64 {
	return uint64(time.Since(clockOrigin) / time.Microsecond)
}
