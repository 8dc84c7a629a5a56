// Copyright (C) 2011 Werner Dittmann
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
// Authors: Werner Dittmann <Werner.Dittmann@t-online.de>
//

package rtp

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRtxEncodeDecode(t *testing.T) {
	p := NewPacket()
	p.SetPayloadType(96)
	p.SetSsrc(222)
	p.SetSequenceNumber(42)
	p.SetPayload([]byte{0xaa})
	p.SetPadding(4)

	p.RtxEncode(102, 111, 5)
	assert.Equal(t, uint8(102), p.PayloadType())
	assert.Equal(t, uint32(111), p.Ssrc())
	assert.Equal(t, uint16(5), p.SequenceNumber())
	assert.Equal(t, []byte{0x00, 0x2a, 0xaa}, p.Payload())
	assert.Equal(t, 0, p.Padding())

	buf, err := p.Buffer()
	require.NoError(t, err)
	assert.Len(t, buf, 15)
	assert.Equal(t, byte(0x80), buf[0])

	rtx, err := ParsePacket(copyOf(buf))
	require.NoError(t, err)
	require.NoError(t, rtx.RtxDecode(98, 222))
	assert.Equal(t, uint8(98), rtx.PayloadType())
	assert.Equal(t, uint32(222), rtx.Ssrc())
	assert.Equal(t, uint16(42), rtx.SequenceNumber())
	assert.Equal(t, []byte{0xaa}, rtx.Payload())
	assert.Equal(t, 0, rtx.Padding())

	buf, err = rtx.Buffer()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x80, 98, 0x00, 42, 0, 0, 0, 0, 0, 0, 0, 222, 0xaa}, buf)
}

func TestRtxEncodeKeepsMarker(t *testing.T) {
	p, err := ParsePacket(copyOf(fullPacket))
	require.NoError(t, err)

	p.RtxEncode(100, 1, 2)
	buf, err := p.Buffer()
	require.NoError(t, err)

	rtx, err := ParsePacket(copyOf(buf))
	require.NoError(t, err)
	assert.True(t, rtx.Marker())
	assert.Equal(t, 0, rtx.Padding())
	assert.Equal(t, []uint32{0x11111111, 0x22222222}, rtx.Csrc())
	assert.Equal(t, []byte{0x00, 0x08, 0x11, 0x22, 0x33, 0x44}, rtx.Payload())
}

func TestRtxDecodeShortPayload(t *testing.T) {
	p := NewPacket()
	p.SetPayload([]byte{0x01})
	err := p.RtxDecode(96, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedPacket))
	assert.Equal(t, uint32(0), p.Ssrc())
	assert.Equal(t, uint8(0), p.PayloadType())
}
