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
	"encoding/binary"

	"github.com/wernerd/rtpwire/internal/wire"
)

// Header extension profiles, see RFC 8285.
const (
	OneByteExtensionProfile = 0xBEDE
	TwoByteExtensionProfile = 0x1000

	twoByteProfileMask = 0xfff0
)

const (
	oneByteStopID       = 15
	oneByteMaxID        = 14
	oneByteMaxLength    = 16
	twoByteMaxLength    = 255
	oneByteLengthMask   = 0x0f
	oneByteHeaderLength = 1
	twoByteHeaderLength = 2
)

type extension struct {
	id    uint8
	value []byte
}

// HeaderExtensionID returns the 16 bit profile of the header extension and
// whether the packet has one.
func (p *Packet) HeaderExtensionID() (uint16, bool) {
	return p.extensionProfile, p.hasExtensionProfile
}

// HasOneByteExtensions reports whether the One-Byte header extension mode is
// selected.
func (p *Packet) HasOneByteExtensions() bool {
	return p.hasExtensionProfile && p.extensionProfile == OneByteExtensionProfile
}

// HasTwoByteExtensions reports whether the Two-Byte header extension mode is
// selected (profile 0x100X).
func (p *Packet) HasTwoByteExtensions() bool {
	return p.hasExtensionProfile && p.extensionProfile&twoByteProfileMask == TwoByteExtensionProfile
}

// SetOneByteExtensions selects the One-Byte mode. Extensions already present
// are kept.
func (p *Packet) SetOneByteExtensions() {
	if p.HasOneByteExtensions() {
		return
	}
	p.selectExtensionProfile(OneByteExtensionProfile)
}

// SetTwoByteExtensions selects the Two-Byte mode. Extensions already present
// are kept.
func (p *Packet) SetTwoByteExtensions() {
	if p.HasTwoByteExtensions() {
		return
	}
	p.selectExtensionProfile(TwoByteExtensionProfile)
}

func (p *Packet) selectExtensionProfile(profile uint16) {
	p.serializationNeeded = true
	if len(p.extensions) > 0 {
		p.setHeaderExtensionBit(true)
	}
	p.extensionProfile = profile
	p.hasExtensionProfile = true
}

// Extension returns the value of extension id.
func (p *Packet) Extension(id uint8) ([]byte, bool) {
	if i := p.extensionIndex(id); i >= 0 {
		return p.extensions[i].value, true
	}
	return nil, false
}

// ExtensionIDs returns the extension ids in wire order.
func (p *Packet) ExtensionIDs() []uint8 {
	ids := make([]uint8, len(p.extensions))
	for i, e := range p.extensions {
		ids[i] = e.id
	}
	return ids
}

// SetExtension adds extension id or replaces its value. Id 0 is reserved for
// padding in both modes and 15 is the One-Byte stop marker.
func (p *Packet) SetExtension(id uint8, value []byte) error {
	if id == 0 {
		return wire.InvalidUsagef("Packet.SetExtension", "extension id 0 is reserved for padding")
	}
	if p.HasOneByteExtensions() && id > oneByteMaxID {
		return wire.InvalidUsagef("Packet.SetExtension",
			"extension id %d is out of range 1..%d in One-Byte mode", id, oneByteMaxID)
	}
	p.serializationNeeded = true
	if len(p.extensions) == 0 {
		p.setHeaderExtensionBit(true)
	}
	if value == nil {
		value = []byte{}
	}
	p.storeExtension(id, value)
	return nil
}

// DeleteExtension removes extension id and reports whether it was present.
func (p *Packet) DeleteExtension(id uint8) bool {
	i := p.extensionIndex(id)
	if i < 0 {
		return false
	}
	p.serializationNeeded = true
	p.extensions = append(p.extensions[:i], p.extensions[i+1:]...)
	if len(p.extensions) == 0 {
		p.setHeaderExtensionBit(false)
	}
	return true
}

// ClearExtensions removes all extensions.
func (p *Packet) ClearExtensions() {
	if len(p.extensions) == 0 {
		return
	}
	p.serializationNeeded = true
	p.setHeaderExtensionBit(false)
	p.extensions = nil
}

func (p *Packet) extensionIndex(id uint8) int {
	for i, e := range p.extensions {
		if e.id == id {
			return i
		}
	}
	return -1
}

func (p *Packet) storeExtension(id uint8, value []byte) {
	if i := p.extensionIndex(id); i >= 0 {
		p.extensions[i].value = value
		return
	}
	p.extensions = append(p.extensions, extension{id: id, value: value})
}

/*
One-Byte elements, RFC 8285 section 4.2:

	 0
	 0 1 2 3 4 5 6 7
	+-+-+-+-+-+-+-+-+
	|  ID   |  len  |  data (len+1 bytes) ...
	+-+-+-+-+-+-+-+-+

Id 0 is a single padding byte, id 15 stops parsing.
*/
func (p *Packet) parseOneByteExtensions(ext []byte) error {
	pos := 0
	for pos < len(ext) {
		id := ext[pos] >> 4
		length := int(ext[pos]&oneByteLengthMask) + 1

		if id == oneByteStopID {
			break
		}
		if id != 0 {
			if pos+oneByteHeaderLength+length > len(ext) {
				return wire.Malformedf("ParsePacket",
					"not enough space for the announced One-Byte extension value (id %d, %d bytes)", id, length)
			}
			start := pos + oneByteHeaderLength
			p.storeExtension(id, ext[start:start+length:start+length])
			pos = start + length
		} else {
			pos++
		}
		for pos < len(ext) && ext[pos] == 0 {
			pos++
		}
	}
	return nil
}

/*
Two-Byte elements, RFC 8285 section 4.3:

	 0                   1
	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|       ID      |     length    |  data (length bytes) ...
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+

Id 0 is a single padding byte. There is no stop id.
*/
func (p *Packet) parseTwoByteExtensions(ext []byte) error {
	pos := 0
	for pos+1 < len(ext) {
		id := ext[pos]
		length := int(ext[pos+1])

		if id != 0 {
			if pos+twoByteHeaderLength+length > len(ext) {
				return wire.Malformedf("ParsePacket",
					"not enough space for the announced Two-Byte extension value (id %d, %d bytes)", id, length)
			}
			start := pos + twoByteHeaderLength
			p.storeExtension(id, ext[start:start+length:start+length])
			pos = start + length
		} else {
			pos++
		}
		for pos < len(ext) && ext[pos] == 0 {
			pos++
		}
	}
	return nil
}

// extensionsLength validates the extensions against the selected mode and
// returns the unpadded size of their elements.
func (p *Packet) extensionsLength() (int, error) {
	const function = "Packet.Serialize"

	length := 0
	for _, e := range p.extensions {
		if p.HasOneByteExtensions() {
			switch {
			case e.id == 0 || e.id > oneByteMaxID:
				return 0, wire.InvalidUsagef(function,
					"extension id %d is out of range 1..%d in One-Byte mode", e.id, oneByteMaxID)
			case len(e.value) == 0:
				return 0, wire.InvalidUsagef(function,
					"cannot serialize extension %d with length 0 in One-Byte mode", e.id)
			case len(e.value) > oneByteMaxLength:
				return 0, wire.InvalidUsagef(function,
					"cannot serialize extension %d with length %d > %d in One-Byte mode",
					e.id, len(e.value), oneByteMaxLength)
			}
			length += oneByteHeaderLength + len(e.value)
			continue
		}
		switch {
		case e.id == 0:
			return 0, wire.InvalidUsagef(function, "extension id 0 is reserved for padding")
		case len(e.value) > twoByteMaxLength:
			return 0, wire.InvalidUsagef(function,
				"cannot serialize extension %d with length %d > %d in Two-Byte mode",
				e.id, len(e.value), twoByteMaxLength)
		}
		length += twoByteHeaderLength + len(e.value)
	}
	return length, nil
}

// writeExtensions writes the extension block (profile, length, elements,
// zero pad) at buf[0:] and returns its size and the offset of each value.
func (p *Packet) writeExtensions(buf []byte) (int, []int) {
	offsets := make([]int, len(p.extensions))
	pos := extHeaderLength
	for i, e := range p.extensions {
		if p.HasOneByteExtensions() {
			buf[pos] = e.id<<4 | byte(len(e.value)-1)&oneByteLengthMask
			pos += oneByteHeaderLength
		} else {
			buf[pos] = e.id
			buf[pos+1] = byte(len(e.value))
			pos += twoByteHeaderLength
		}
		offsets[i] = pos
		pos += copy(buf[pos:], e.value)
	}
	elements := wire.PadTo4Bytes(pos - extHeaderLength)

	binary.BigEndian.PutUint16(buf[0:], p.extensionProfile)
	binary.BigEndian.PutUint16(buf[2:], uint16(elements/4))
	return extHeaderLength + elements, offsets
}
