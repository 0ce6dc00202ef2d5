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

import (
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/ntag-poller/internal/frame"
	"go.uber.org/zap"
)

// maxResponseLength is the largest payload a normal information frame can
// carry after the TFI and response code bytes.
const maxResponseLength = 0xFF - 2

// defaultPollInterval spaces out readiness checks on the bus
const defaultPollInterval = time.Millisecond

// CountDown bounds a single exchange. Arm starts the deadline, Elapsed is
// polled between readiness checks, Wait completes an expired cycle and
// Disarm ends a cycle that finished in time.
type CountDown interface {
	Arm(d time.Duration) error
	Elapsed() bool
	Wait() error
	Disarm() error
}

// Device represents a PN532 NFC reader
//
// Thread Safety: Device is NOT thread-safe. It owns its CountDown, which
// supports a single outstanding deadline, so all methods must be called from
// one goroutine.
type Device struct {
	transport      Transport
	timeouts       CountDown
	log            *zap.SugaredLogger
	maxResponseLen int
	pollInterval   time.Duration
}

// New creates a PN532 device on the given transport, bounding each exchange
// with timeouts
func New(transport Transport, timeouts CountDown, opts ...Option) (*Device, error) {
	if transport == nil || timeouts == nil {
		return nil, fmt.Errorf("%w: transport and countdown are required", ErrInvalidParameter)
	}

	device := &Device{
		transport:      transport,
		timeouts:       timeouts,
		log:            zap.NewNop().Sugar(),
		maxResponseLen: maxResponseLength,
		pollInterval:   pollIntervalFor(transport),
	}

	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}

	return device, nil
}

// Transport returns the underlying transport
func (d *Device) Transport() Transport {
	return d.transport
}

// Close closes the device connection
func (d *Device) Close() error {
	if err := d.transport.Close(); err != nil {
		return fmt.Errorf("failed to close transport: %w", err)
	}
	return nil
}

// Process sends req, waits for the ACK and the response, and returns the
// response data that follows the response code. The whole exchange is
// bounded by one arm/wait cycle of the device's CountDown, armed before the
// request is written. Responses may be shorter than responseLen; longer ones
// are reported as corrupted frames. A request that times out is aborted.
func (d *Device) Process(req Request, responseLen int, timeout time.Duration) ([]byte, error) {
	if responseLen < 0 || responseLen > d.maxResponseLen {
		return nil, fmt.Errorf("%w: response length %d", ErrInvalidParameter, responseLen)
	}

	frm, err := frame.Build(req.Command, req.Params)
	if err != nil {
		return nil, NewDataTooLargeError("process", d.port())
	}

	// Arming first rejects an out of range timeout before the reader sees
	// the command.
	if err := d.timeouts.Arm(timeout); err != nil {
		return nil, fmt.Errorf("failed to arm timeout: %w", err)
	}

	d.log.Debugw("sending request", "request", req, "responseLen", responseLen, "timeout", timeout)
	if err := d.transport.Write(frm); err != nil {
		if disarmErr := d.timeouts.Disarm(); disarmErr != nil {
			d.log.Debugw("failed to disarm timeout", "error", disarmErr)
		}
		return nil, NewTransportError("write", d.port(),
			fmt.Errorf("%w: %w", ErrTransportWrite, err), ErrorTypeTransient)
	}

	data, err := d.exchange(req, responseLen)
	if disarmErr := d.timeouts.Disarm(); disarmErr != nil && err == nil {
		err = fmt.Errorf("failed to disarm timeout: %w", disarmErr)
	}
	if err != nil {
		if errors.Is(err, ErrTransportTimeout) {
			d.abort(req)
		}
		return nil, err
	}

	d.log.Debugw("received response", "request", req, "data", fmt.Sprintf("% X", data))
	return data, nil
}

// exchange reads the ACK and response for a request already written
func (d *Device) exchange(req Request, responseLen int) ([]byte, error) {
	if err := d.waitReady("ack"); err != nil {
		return nil, err
	}

	ack := make([]byte, frame.AckLength)
	if err := d.transport.Read(ack); err != nil {
		return nil, NewTransportError("ack", d.port(),
			fmt.Errorf("%w: %w", ErrTransportRead, err), ErrorTypeTransient)
	}
	if frame.IsNack(ack) {
		return nil, NewTransportError("ack", d.port(), ErrNACKReceived, ErrorTypeTransient)
	}
	if !frame.IsAck(ack) {
		return nil, NewNoACKError("ack", d.port())
	}

	if err := d.waitReady("response"); err != nil {
		return nil, err
	}

	buf, err := d.readResponse(responseLen + frame.ResponseOverhead)
	if err != nil {
		return nil, err
	}

	data, err := frame.ParseResponse(buf, req.Command)
	if err != nil {
		return nil, d.frameError(err)
	}
	return data, nil
}

// readResponse reads the response frame. Frame aware transports stop at the
// postamble and give up once the countdown elapses; the others fill maxLen
// bytes.
func (d *Device) readResponse(maxLen int) ([]byte, error) {
	fr, ok := d.transport.(FrameReader)
	if !ok {
		buf := make([]byte, maxLen)
		if err := d.transport.Read(buf); err != nil {
			return nil, NewTransportError("response", d.port(),
				fmt.Errorf("%w: %w", ErrTransportRead, err), ErrorTypeTransient)
		}
		return buf, nil
	}

	buf, err := fr.ReadFrame(maxLen, d.timeouts.Elapsed)
	switch {
	case err == nil:
		return buf, nil
	case errors.Is(err, ErrTransportTimeout):
		if waitErr := d.timeouts.Wait(); waitErr != nil {
			return nil, fmt.Errorf("failed to complete timeout: %w", waitErr)
		}
		return nil, NewTimeoutError("response", d.port())
	default:
		return nil, NewTransportError("response", d.port(),
			fmt.Errorf("%w: %w", ErrTransportRead, err), ErrorTypeTransient)
	}
}

// abort tells the reader to drop a command that timed out. The PN532 cancels
// the command in progress when the host sends an ACK frame, so a late reply
// cannot be mistaken for the next exchange's ACK.
func (d *Device) abort(req Request) {
	if err := d.transport.Write(frame.AckFrame); err != nil {
		d.log.Debugw("failed to abort request", "request", req, "error", err)
	}
}

// waitReady polls the transport until it is ready or the deadline passes.
// An expired deadline completes the arm/wait cycle before returning.
func (d *Device) waitReady(op string) error {
	for {
		ready, err := d.transport.Ready()
		if err != nil {
			return NewTransportError(op, d.port(),
				fmt.Errorf("%w: %w", ErrTransportNotReady, err), ErrorTypeTransient)
		}
		if ready {
			return nil
		}
		if d.timeouts.Elapsed() {
			if err := d.timeouts.Wait(); err != nil {
				return fmt.Errorf("failed to complete timeout: %w", err)
			}
			return NewTimeoutError(op, d.port())
		}
		if d.pollInterval > 0 {
			time.Sleep(d.pollInterval)
		}
	}
}

func (d *Device) frameError(err error) error {
	switch {
	case errors.Is(err, frame.ErrDataChecksum), errors.Is(err, frame.ErrLengthChecksum):
		return NewTransportError("response", d.port(),
			fmt.Errorf("%w: %w", ErrChecksumMismatch, err), ErrorTypeTransient)
	case errors.Is(err, frame.ErrApplicationError):
		return NewTransportError("response", d.port(), ErrApplicationError, ErrorTypePermanent)
	default:
		return NewTransportError("response", d.port(),
			fmt.Errorf("%w: %w", ErrFrameCorrupted, err), ErrorTypeTransient)
	}
}

func (d *Device) port() string {
	return string(d.transport.Type())
}
