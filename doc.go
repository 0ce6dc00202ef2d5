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

/*
Package pn532 talks to a PN532 NFC controller one request at a time, with
every exchange bounded by a hardware style countdown timer.

A Device writes a request frame, waits for the reader's ACK and then for its
response, polling the transport's readiness flag in between. The deadline is
armed once per exchange, before the request is written, so a timeout the
countdown cannot represent is rejected without touching the bus. When the
deadline elapses first, the exchange ends with a timeout error and the device
sends an ACK frame, which makes the PN532 abort the command. The UART
transport also drops unread input before every write. A reply already in
flight on I2C can still surface during the next exchange, which then fails
with a retryable error.

Basic Usage:

	import (
	    pn532 "github.com/ZaparooProject/ntag-poller"
	    "github.com/ZaparooProject/ntag-poller/countdown"
	    "github.com/ZaparooProject/ntag-poller/transport/i2c"
	)

	transport, err := i2c.Open("1")
	if err != nil {
	    return err
	}

	device, err := pn532.New(transport, countdown.New(countdown.NewHostTimer()))
	if err != nil {
	    return err
	}
	defer device.Close()

	if _, err := device.Process(pn532.SAMConfiguration(pn532.SAMModeNormal, false), 0, 50*time.Millisecond); err != nil {
	    return err
	}

	resp, err := device.Process(pn532.NTAGRead(10), pn532.NTAGReadResponseLen, 50*time.Millisecond)
	if err != nil {
	    return err
	}
	if len(resp) >= 5 && resp[0] == pn532.StatusOK {
	    fmt.Printf("page 10: % X\n", resp[1:5])
	}

Transport Selection:

  - I2C: periph.io bus, address 0x24 (transport/i2c)
  - UART: HSU at 115200 baud (transport/uart)

The polling package drives the startup sequence and the endless page read
loop on top of a Device.

Error Handling:

Failures are *TransportError values classified as permanent, transient or
timeout:

	if errors.Is(err, pn532.ErrTransportTimeout) {
	    // the reader did not answer in time
	}

Thread Safety:

Device operations are not thread-safe. A Device owns its countdown, which
supports a single outstanding deadline.
*/
package pn532
