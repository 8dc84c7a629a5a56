// Copyright (C) 2021 Homin Lee
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.
//
// Authors: Homin Lee <homin.lee@suapapa.net>
//

// Package payload decodes RTP payload formats that the inspector reports on.
package payload

import (
	"encoding/binary"
	"fmt"

	"github.com/wernerd/rtpwire/internal/wire"
)

// RFC 4733, RTP Payload for DTMF Digits, Telephony Tones and Telephony Signals
/*
   Payload format
    0                   1                   2                   3
    0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
   +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
   |     event     |E|R| volume    |          duration             |
   +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
*/

const telephoneEventLength = 4

const (
	endBit      = 0x80
	reservedBit = 0x40
	volumeMask  = 0x3f
)

// Events of the DTMF named event table.
const (
	EventStar  = 10
	EventPound = 11
	EventA     = 12
	EventD     = 15
	EventFlash = 16
)

// TelephoneEvent is a view on a 4 byte telephone-event payload.
type TelephoneEvent []byte

// ParseTelephoneEvent returns a view on the first telephone-event block of
// buf. Redundant blocks that follow it are ignored.
func ParseTelephoneEvent(buf []byte) (TelephoneEvent, error) {
	if len(buf) < telephoneEventLength {
		return nil, wire.Malformedf("ParseTelephoneEvent",
			"payload (%d bytes) is too small for a telephone event (%d bytes)", len(buf), telephoneEventLength)
	}
	ev := TelephoneEvent(buf[:telephoneEventLength:telephoneEventLength])
	if !ev.IsValid() {
		return nil, wire.Malformedf("ParseTelephoneEvent", "reserved bit is set")
	}
	return ev, nil
}

// NewTelephoneEvent builds a telephone-event payload. Volume is the power
// level in -dBm0, only the low 6 bits are used.
func NewTelephoneEvent(event uint8, end bool, volume uint8, duration uint16) TelephoneEvent {
	ev := make(TelephoneEvent, telephoneEventLength)
	ev[0] = event
	ev[1] = volume & volumeMask
	if end {
		ev[1] |= endBit
	}
	binary.BigEndian.PutUint16(ev[2:], duration)
	return ev
}

// IsValid reports whether ev has the right size and a clear reserved bit.
func (ev TelephoneEvent) IsValid() bool {
	return len(ev) == telephoneEventLength && ev[1]&reservedBit == 0
}

// Event returns the event code.
func (ev TelephoneEvent) Event() uint8 {
	return ev[0]
}

// ASCIIEvent returns the key for DTMF events 0..16 and 0 for all others.
func (ev TelephoneEvent) ASCIIEvent() byte {
	switch e := ev[0]; {
	case e <= 9:
		return '0' + e
	case e == EventStar:
		return '*'
	case e == EventPound:
		return '#'
	case e >= EventA && e <= EventD:
		return 'A' + e - EventA
	case e == EventFlash:
		return '!'
	}
	return 0
}

// Volume returns the power level in -dBm0.
func (ev TelephoneEvent) Volume() uint8 {
	return ev[1] & volumeMask
}

// Duration returns the event duration in timestamp units.
func (ev TelephoneEvent) Duration() uint16 {
	return binary.BigEndian.Uint16(ev[2:])
}

// IsEnd reports whether the E bit is set.
func (ev TelephoneEvent) IsEnd() bool {
	return ev[1]&endBit != 0
}

func (ev TelephoneEvent) String() string {
	return fmt.Sprintf("DTMF[Evt=%d Key=%q Vol=%d Dur=%d IsEnd=%v]",
		ev.Event(), ev.ASCIIEvent(), ev.Volume(), ev.Duration(), ev.IsEnd())
}
