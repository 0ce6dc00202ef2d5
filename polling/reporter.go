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

import (
	"fmt"

	"go.uber.org/zap"
)

// Reporter receives page data read from a tag
type Reporter interface {
	ReportPage(page byte, data []byte)
}

// ReporterFunc adapts a function to a Reporter
type ReporterFunc func(page byte, data []byte)

// ReportPage calls f
func (f ReporterFunc) ReportPage(page byte, data []byte) {
	f(page, data)
}

// LogReporter logs every page at info level
type LogReporter struct {
	Log *zap.SugaredLogger
}

// ReportPage logs the page index and its bytes
func (r LogReporter) ReportPage(page byte, data []byte) {
	r.Log.Infow("page read", "page", page, "data", fmt.Sprintf("% X", data))
}
