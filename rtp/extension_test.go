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

func TestOneByteExtensionWireFormat(t *testing.T) {
	p := NewPacket()
	p.SetOneByteExtensions()
	require.NoError(t, p.SetExtension(5, []byte{0x01, 0x02, 0x03}))

	buf, err := p.Buffer()
	require.NoError(t, err)
	require.Len(t, buf, 20)
	assert.Equal(t, byte(0x90), buf[0])
	assert.Equal(t, []byte{0xbe, 0xde, 0x00, 0x01}, buf[12:16])
	assert.Equal(t, []byte{0x52, 0x01, 0x02, 0x03}, buf[16:20])

	reparsed, err := ParsePacket(copyOf(buf))
	require.NoError(t, err)
	assert.True(t, reparsed.HasOneByteExtensions())
	ext, ok := reparsed.Extension(5)
	require.True(t, ok)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, ext)
}

func TestOneByteExtensionLengthLimits(t *testing.T) {
	for _, n := range []int{1, 16} {
		p := NewPacket()
		p.SetOneByteExtensions()
		require.NoError(t, p.SetExtension(14, make([]byte, n)))
		buf, err := p.Buffer()
		require.NoError(t, err, "length %d", n)
		assert.Equal(t, byte(14<<4|(n-1)), buf[16])

		reparsed, err := ParsePacket(copyOf(buf))
		require.NoError(t, err)
		ext, _ := reparsed.Extension(14)
		assert.Len(t, ext, n)
	}

	for _, n := range []int{0, 17, 255} {
		p := NewPacket()
		p.SetOneByteExtensions()
		require.NoError(t, p.SetExtension(1, make([]byte, n)))
		_, err := p.Buffer()
		require.Error(t, err, "length %d", n)
		assert.True(t, errors.Is(err, ErrInvalidUsage))
		assert.True(t, p.SerializationNeeded())
	}
}

func TestTwoByteExtensionLengthLimits(t *testing.T) {
	for _, n := range []int{0, 1, 255} {
		p := NewPacket()
		p.SetTwoByteExtensions()
		require.NoError(t, p.SetExtension(200, make([]byte, n)))
		buf, err := p.Buffer()
		require.NoError(t, err, "length %d", n)

		reparsed, err := ParsePacket(copyOf(buf))
		require.NoError(t, err)
		assert.True(t, reparsed.HasTwoByteExtensions())
		ext, ok := reparsed.Extension(200)
		require.True(t, ok)
		assert.Len(t, ext, n)
	}

	p := NewPacket()
	p.SetTwoByteExtensions()
	require.NoError(t, p.SetExtension(1, make([]byte, 256)))
	_, err := p.Buffer()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidUsage))
}

func TestSetExtensionReservedIDs(t *testing.T) {
	p := NewPacket()
	err := p.SetExtension(0, []byte{0x01})
	assert.True(t, errors.Is(err, ErrInvalidUsage))

	p.SetOneByteExtensions()
	err = p.SetExtension(15, []byte{0x01})
	assert.True(t, errors.Is(err, ErrInvalidUsage))
	assert.Empty(t, p.ExtensionIDs())

	// Ids above 14 stored in Two-Byte mode cannot be written in One-Byte mode.
	p = NewPacket()
	p.SetTwoByteExtensions()
	require.NoError(t, p.SetExtension(20, []byte{0x01}))
	p.extensionProfile = OneByteExtensionProfile
	_, err = p.Buffer()
	assert.True(t, errors.Is(err, ErrInvalidUsage))
}

func TestSetExtensionReplacesValue(t *testing.T) {
	p, err := ParsePacket(copyOf(fullPacket))
	require.NoError(t, err)

	require.NoError(t, p.SetExtension(2, []byte{0x09}))
	require.NoError(t, p.SetExtension(7, []byte{0x07, 0x07}))
	assert.Equal(t, []uint8{1, 2, 3, 7}, p.ExtensionIDs())

	buf, err := p.Buffer()
	require.NoError(t, err)
	reparsed, err := ParsePacket(copyOf(buf))
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2, 3, 7}, reparsed.ExtensionIDs())
	ext, _ := reparsed.Extension(2)
	assert.Equal(t, []byte{0x09}, ext)
	ext, _ = reparsed.Extension(7)
	assert.Equal(t, []byte{0x07, 0x07}, ext)
}

func TestSwitchExtensionMode(t *testing.T) {
	p, err := ParsePacket(copyOf(fullPacket))
	require.NoError(t, err)

	p.SetTwoByteExtensions()
	assert.True(t, p.SerializationNeeded())
	assert.True(t, p.HasTwoByteExtensions())

	buf, err := p.Buffer()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x10, 0x00}, buf[20:22])

	reparsed, err := ParsePacket(copyOf(buf))
	require.NoError(t, err)
	assert.True(t, reparsed.HasTwoByteExtensions())
	for id, want := range map[uint8][]byte{1: {0xff}, 2: {0x01, 0x02, 0x03}, 3: {0xaa, 0xbb, 0xcc, 0xdd}} {
		ext, ok := reparsed.Extension(id)
		require.True(t, ok)
		assert.Equal(t, want, ext)
	}

	// Selecting the mode already active is a no-op.
	reparsed.SetTwoByteExtensions()
	assert.False(t, reparsed.SerializationNeeded())
}

func TestExtensionPaddingZeroFilled(t *testing.T) {
	p := NewPacket()
	p.SetTwoByteExtensions()
	require.NoError(t, p.SetExtension(1, []byte{0xaa}))
	p.SetPayload([]byte{0xff})

	buf, err := p.Buffer()
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x10, 0x00, 0x00, 0x01,
		0x01, 0x01, 0xaa, 0x00,
		0xff}, buf[12:])
}
