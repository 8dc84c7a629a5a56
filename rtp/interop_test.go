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

	pionrtp "github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pionPacket(t *testing.T, profile uint16) *pionrtp.Packet {
	t.Helper()
	pp := &pionrtp.Packet{
		Header: pionrtp.Header{
			Version:          2,
			Marker:           true,
			PayloadType:      111,
			SequenceNumber:   27023,
			Timestamp:        3653407706,
			SSRC:             476325762,
			CSRC:             []uint32{0x01020304, 0x05060708},
			Extension:        true,
			ExtensionProfile: profile,
		},
		Payload: []byte{0x98, 0x36, 0xbe, 0x88, 0x9e},
	}
	require.NoError(t, pp.Header.SetExtension(1, []byte{0xaa}))
	require.NoError(t, pp.Header.SetExtension(3, []byte{0x01, 0x02, 0x03, 0x04, 0x05}))
	return pp
}

func TestParsePionPacket(t *testing.T) {
	for _, profile := range []uint16{pionrtp.ExtensionProfileOneByte, pionrtp.ExtensionProfileTwoByte} {
		pp := pionPacket(t, profile)
		raw, err := pp.Marshal()
		require.NoError(t, err)

		p, err := ParsePacket(raw)
		require.NoError(t, err, "profile 0x%04x", profile)

		assert.Equal(t, pp.Marker, p.Marker())
		assert.Equal(t, pp.PayloadType, p.PayloadType())
		assert.Equal(t, pp.SequenceNumber, p.SequenceNumber())
		assert.Equal(t, pp.Timestamp, p.Timestamp())
		assert.Equal(t, pp.SSRC, p.Ssrc())
		assert.Equal(t, pp.CSRC, p.Csrc())
		assert.Equal(t, pp.Payload, p.Payload())

		id, ok := p.HeaderExtensionID()
		require.True(t, ok)
		assert.Equal(t, profile, id)
		for _, extID := range pp.Header.GetExtensionIDs() {
			ext, ok := p.Extension(extID)
			require.True(t, ok, "extension %d", extID)
			assert.Equal(t, pp.Header.GetExtension(extID), ext)
		}

		// Our canonical layout matches pion's for these packets.
		p.SetPayload(p.Payload())
		buf, err := p.Buffer()
		require.NoError(t, err)
		assert.Equal(t, raw, buf)
	}
}

func TestPionParsesSerializedPacket(t *testing.T) {
	p := NewPacket()
	p.SetPayloadType(96)
	p.SetMarker(true)
	p.SetSequenceNumber(0xbeef)
	p.SetTimestamp(90000)
	p.SetSsrc(0xcafebabe)
	require.NoError(t, p.SetCsrc([]uint32{7, 8, 9}))
	p.SetOneByteExtensions()
	require.NoError(t, p.SetExtension(2, []byte{0x11, 0x22}))
	require.NoError(t, p.SetExtension(9, []byte{0x33}))
	p.SetPayload([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06})
	p.SetPadding(2)

	buf, err := p.Buffer()
	require.NoError(t, err)

	pp := &pionrtp.Packet{}
	require.NoError(t, pp.Unmarshal(copyOf(buf)))
	assert.Equal(t, uint8(2), pp.Version)
	assert.True(t, pp.Marker)
	assert.True(t, pp.Padding)
	assert.Equal(t, uint8(96), pp.PayloadType)
	assert.Equal(t, uint16(0xbeef), pp.SequenceNumber)
	assert.Equal(t, uint32(90000), pp.Timestamp)
	assert.Equal(t, uint32(0xcafebabe), pp.SSRC)
	assert.Equal(t, []uint32{7, 8, 9}, pp.CSRC)
	assert.Equal(t, uint16(pionrtp.ExtensionProfileOneByte), pp.ExtensionProfile)
	assert.Equal(t, []byte{0x11, 0x22}, pp.GetExtension(2))
	assert.Equal(t, []byte{0x33}, pp.GetExtension(9))
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}, pp.Payload)
}
