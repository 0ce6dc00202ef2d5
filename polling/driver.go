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

// Package polling drives repeated NTAG page reads through a PN532 and
// classifies each outcome.
package polling

import (
	"errors"
	"fmt"
	"time"

	pn532 "github.com/ZaparooProject/ntag-poller"
	"go.uber.org/zap"
)

// pageSize is the number of payload bytes reported per read
const pageSize = 4

// ErrConfiguration wraps a failed startup configuration request
var ErrConfiguration = errors.New("reader configuration failed")

// Processor is the request/response contract of the reader protocol
type Processor interface {
	Process(req pn532.Request, responseLen int, timeout time.Duration) ([]byte, error)
}

// Option configures a Driver
type Option func(*Driver)

// WithLogger sets the driver logger
func WithLogger(log *zap.SugaredLogger) Option {
	return func(d *Driver) {
		if log != nil {
			d.log = log
		}
	}
}

// WithReporter sets where page data goes. The default logs it.
func WithReporter(reporter Reporter) Option {
	return func(d *Driver) {
		if reporter != nil {
			d.reporter = reporter
		}
	}
}

// WithSleep replaces the inter-cycle delay function
func WithSleep(sleep func(time.Duration)) Option {
	return func(d *Driver) {
		if sleep != nil {
			d.sleep = sleep
		}
	}
}

// Driver runs the startup sequence once and then polls a page forever.
//
// Requests are issued strictly one at a time; Driver is not safe for
// concurrent use.
type Driver struct {
	processor Processor
	reporter  Reporter
	config    *Config
	log       *zap.SugaredLogger
	sleep     func(time.Duration)
	state     State
}

// New creates a driver in the Initializing state
func New(processor Processor, config *Config, opts ...Option) (*Driver, error) {
	if processor == nil {
		return nil, fmt.Errorf("%w: processor is required", ErrInvalidConfig)
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	d := &Driver{
		processor: processor,
		config:    config,
		log:       zap.NewNop().Sugar(),
		sleep:     time.Sleep,
		state:     StateInitializing,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.reporter == nil {
		d.reporter = LogReporter{Log: d.log}
	}
	return d, nil
}

// State returns the current lifecycle state
func (d *Driver) State() State {
	return d.state
}

// Startup configures the reader and primes it with one target detection,
// then moves the driver to Polling. A configuration failure is logged and
// returned, but the driver still enters Polling: the reader may answer later
// requests anyway. Calling Startup again once Polling is a no-op.
func (d *Driver) Startup() error {
	if d.state != StateInitializing {
		return nil
	}

	var configErr error
	_, err := d.processor.Process(pn532.SAMConfiguration(pn532.SAMModeNormal, false), 0, d.config.ConfigTimeout)
	if err != nil {
		configErr = fmt.Errorf("%w: %w", ErrConfiguration, err)
		d.log.Errorw("could not configure reader", "error", configErr)
	}

	// Detection only primes the reader; its outcome does not gate polling.
	resp, err := d.processor.Process(pn532.InListOneISOATarget(), d.config.DetectResponseLen, d.config.DetectTimeout)
	if err != nil {
		d.log.Debugw("initial target detection failed", "error", err)
	} else {
		d.logTarget(resp)
	}

	d.state = StatePolling
	d.log.Infow("scanning", "page", d.config.Page, "interval", d.config.CycleDelay)
	return configErr
}

// Cycle issues one page read and classifies the result. Errors are logged
// and returned in the Result, never propagated.
func (d *Driver) Cycle() Result {
	page := d.config.Page
	resp, err := d.processor.Process(pn532.NTAGRead(page), d.config.ReadResponseLen, d.config.ReadTimeout)
	if err != nil {
		d.logReadError(page, err)
		return Result{Outcome: OutcomeError, Err: err}
	}

	if len(resp) < 1+pageSize || resp[0] != d.config.SuccessStatus {
		return Result{Outcome: OutcomeNoData}
	}

	data := make([]byte, pageSize)
	copy(data, resp[1:1+pageSize])
	d.reporter.ReportPage(page, data)
	return Result{Outcome: OutcomePage, Data: data}
}

// Run performs Startup and then cycles forever, pausing CycleDelay after
// every read. It never returns; there is no shutdown path.
func (d *Driver) Run() {
	_ = d.Startup() // logged; startup continues regardless

	for {
		d.Cycle()
		d.sleep(d.config.CycleDelay)
	}
}

func (d *Driver) logReadError(page byte, err error) {
	errType := pn532.GetErrorType(err)
	if errType == pn532.ErrorTypePermanent {
		d.log.Errorw("page read failed", "page", page, "type", errType, "error", err)
		return
	}
	d.log.Warnw("page read failed", "page", page, "type", errType, "error", err)
}

func (d *Driver) logTarget(resp []byte) {
	target, err := pn532.ParseTarget(resp)
	if err != nil {
		d.log.Debugw("initial target detection", "error", err, "response", fmt.Sprintf("% X", resp))
		return
	}
	d.log.Debugw("initial target detection", "uid", target.UIDString(), "type2", target.IsType2())
}
