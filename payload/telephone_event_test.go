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

package payload

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wernerd/rtpwire/internal/wire"
)

func TestParseTelephoneEvent(t *testing.T) {
	ev, err := ParseTelephoneEvent([]byte{0x0b, 0x8a, 0x03, 0x20, 0xff})
	require.NoError(t, err)

	assert.Equal(t, uint8(11), ev.Event())
	assert.Equal(t, byte('#'), ev.ASCIIEvent())
	assert.True(t, ev.IsEnd())
	assert.Equal(t, uint8(10), ev.Volume())
	assert.Equal(t, uint16(800), ev.Duration())
	assert.Len(t, ev, 4)
	assert.Equal(t, "DTMF[Evt=11 Key='#' Vol=10 Dur=800 IsEnd=true]", ev.String())
}

func TestParseTelephoneEventMalformed(t *testing.T) {
	_, err := ParseTelephoneEvent([]byte{0x01, 0x00, 0x00})
	assert.True(t, errors.Is(err, wire.ErrMalformedPacket))

	_, err = ParseTelephoneEvent([]byte{0x01, 0x40, 0x00, 0xa0})
	assert.True(t, errors.Is(err, wire.ErrMalformedPacket))
}

func TestNewTelephoneEvent(t *testing.T) {
	ev := NewTelephoneEvent(5, false, 0xff, 160)
	assert.Equal(t, TelephoneEvent{0x05, 0x3f, 0x00, 0xa0}, ev)
	assert.True(t, ev.IsValid())
	assert.False(t, ev.IsEnd())

	ev = NewTelephoneEvent(EventA, true, 7, 0)
	assert.Equal(t, TelephoneEvent{0x0c, 0x87, 0x00, 0x00}, ev)
}

func TestASCIIEvent(t *testing.T) {
	tests := map[uint8]byte{
		0:          '0',
		9:          '9',
		EventStar:  '*',
		EventPound: '#',
		EventA:     'A',
		13:         'B',
		EventD:     'D',
		EventFlash: '!',
		17:         0,
		255:        0,
	}
	for event, want := range tests {
		assert.Equal(t, want, NewTelephoneEvent(event, false, 0, 0).ASCIIEvent(), "event %d", event)
	}
}
