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

const (
	rtpVersion        = 2
	fixedHeaderLength = 12
	extHeaderLength   = 4
	maxCsrcCount      = 15
	maxPadding        = 255
)

const (
	markerPtOffset  = 1
	sequenceOffset  = 2
	timestampOffset = sequenceOffset + 2
	ssrcOffset      = timestampOffset + 4
)

const (
	version2Bit  = 0x80
	versionMask  = 0xc0
	paddingBit   = 0x20
	extensionBit = 0x10
	markerBit    = 0x80
	ccMask       = 0x0f
	ptMask       = 0x7f
)

// Error kinds returned by this package, see package wire.
var (
	ErrMalformedPacket = wire.ErrMalformedPacket
	ErrInvalidUsage    = wire.ErrInvalidUsage
)

// IsRtp reports whether buf could hold an RTP packet.
//
// The check follows the RFC 5761 demultiplexing rules: the buffer must hold
// at least the fixed header, the first byte must lie in 128..191 (version 2)
// and the second byte must stay outside the RTCP packet type range 192..223.
// A buffer that passes may still fail ParsePacket.
func IsRtp(buf []byte) bool {
	if len(buf) < fixedHeaderLength {
		return false
	}
	if buf[0] < 128 || buf[0] > 191 || buf[0]>>6 != rtpVersion {
		return false
	}
	return buf[1] < 192 || buf[1] > 223
}

/*
Packet is a parsed, mutable RTP packet.

	 0                   1                   2                   3
	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|V=2|P|X|  CC   |M|     PT      |       sequence number         |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|                           timestamp                           |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|           synchronization source (SSRC) identifier            |
	+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+
	|            contributing source (CSRC) identifiers             |
	|                             ....                              |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+

Fixed header fields (version, marker, payload type, sequence number,
timestamp, SSRC) are read from and written to the buffer directly. CSRC
list, header extensions, payload and padding are kept as object state and
written into a new buffer by Serialize.

The slices returned by Payload and Extension point into the packet buffer.
They are valid until the next serialization, which moves the packet to a
freshly allocated buffer. Copy the bytes if they must outlive that.

A Packet is not safe for concurrent use.
*/
type Packet struct {
	buffer              []byte
	csrc                []uint32
	extensionProfile    uint16
	hasExtensionProfile bool
	extensions          []extension
	payload             []byte
	padding             int
	serializationNeeded bool
}

// NewPacket returns an empty packet: a 12 byte fixed header with version 2
// and all other fields zero.
func NewPacket() *Packet {
	p := &Packet{
		buffer:  make([]byte, fixedHeaderLength),
		payload: []byte{},
	}
	p.buffer[0] = version2Bit
	return p
}

// ParsePacket parses buf into a Packet.
//
// The packet keeps buf as its buffer and hands out views into it, nothing
// is copied. The caller must not modify buf afterwards except through the
// packet.
func ParsePacket(buf []byte) (*Packet, error) {
	const function = "ParsePacket"

	if !IsRtp(buf) {
		return nil, wire.Malformedf(function, "invalid RTP packet")
	}
	p := &Packet{buffer: buf}
	pos := fixedHeaderLength

	csrcCount := int(buf[0] & ccMask)
	if pos+csrcCount*4 > len(buf) {
		return nil, wire.Malformedf(function,
			"CSRC list (%d entries) exceeds buffer length (%d bytes)", csrcCount, len(buf))
	}
	if csrcCount > 0 {
		p.csrc = make([]uint32, csrcCount)
		for i := range p.csrc {
			p.csrc[i] = binary.BigEndian.Uint32(buf[pos:])
			pos += 4
		}
	}

	if buf[0]&extensionBit != 0 {
		if pos+extHeaderLength > len(buf) {
			return nil, wire.Malformedf(function,
				"no space for header extension at offset %d (buffer length %d bytes)", pos, len(buf))
		}
		p.extensionProfile = binary.BigEndian.Uint16(buf[pos:])
		p.hasExtensionProfile = true
		length := int(binary.BigEndian.Uint16(buf[pos+2:])) * 4
		pos += extHeaderLength

		if pos+length > len(buf) {
			return nil, wire.Malformedf(function,
				"header extension (%d bytes) exceeds buffer length (%d bytes)", length, len(buf))
		}
		ext := buf[pos : pos+length : pos+length]
		pos += length

		var err error
		switch {
		case p.HasOneByteExtensions():
			err = p.parseOneByteExtensions(ext)
		case p.HasTwoByteExtensions():
			err = p.parseTwoByteExtensions(ext)
		}
		if err != nil {
			return nil, err
		}
	}

	if buf[0]&paddingBit != 0 {
		p.padding = int(buf[len(buf)-1])
	}

	payloadLength := len(buf) - pos - p.padding
	if payloadLength < 0 {
		return nil, wire.Malformedf(function,
			"announced padding (%d bytes) is bigger than available space for payload (%d bytes)",
			p.padding, len(buf)-pos)
	}
	p.payload = buf[pos : pos+payloadLength : pos+payloadLength]

	pos += payloadLength + p.padding
	if pos != len(buf) {
		return nil, wire.Malformedf(function,
			"parsed length (%d bytes) does not match buffer length (%d bytes)", pos, len(buf))
	}
	return p, nil
}

// Version returns the RTP version, always 2 for a valid packet.
func (p *Packet) Version() uint8 {
	return p.buffer[0] >> 6
}

// PayloadType returns the 7 bit payload type.
func (p *Packet) PayloadType() uint8 {
	return p.buffer[markerPtOffset] & ptMask
}

// SetPayloadType sets the payload type, the marker bit is left as is.
func (p *Packet) SetPayloadType(pt uint8) {
	p.buffer[markerPtOffset] &^= ptMask
	p.buffer[markerPtOffset] |= pt & ptMask
}

// Marker returns the state of the marker bit.
func (p *Packet) Marker() bool {
	return p.buffer[markerPtOffset]&markerBit == markerBit
}

// SetMarker sets or resets the marker bit.
func (p *Packet) SetMarker(m bool) {
	if m {
		p.buffer[markerPtOffset] |= markerBit
	} else {
		p.buffer[markerPtOffset] &^= markerBit
	}
}

// SequenceNumber returns the sequence number in host order.
func (p *Packet) SequenceNumber() uint16 {
	return binary.BigEndian.Uint16(p.buffer[sequenceOffset:])
}

// SetSequenceNumber stores seq in network order.
func (p *Packet) SetSequenceNumber(seq uint16) {
	binary.BigEndian.PutUint16(p.buffer[sequenceOffset:], seq)
}

// Timestamp returns the RTP timestamp in host order.
func (p *Packet) Timestamp() uint32 {
	return binary.BigEndian.Uint32(p.buffer[timestampOffset:])
}

// SetTimestamp stores timestamp in network order.
func (p *Packet) SetTimestamp(timestamp uint32) {
	binary.BigEndian.PutUint32(p.buffer[timestampOffset:], timestamp)
}

// Ssrc returns the synchronization source identifier.
func (p *Packet) Ssrc() uint32 {
	return binary.BigEndian.Uint32(p.buffer[ssrcOffset:])
}

// SetSsrc stores ssrc in network order.
func (p *Packet) SetSsrc(ssrc uint32) {
	binary.BigEndian.PutUint32(p.buffer[ssrcOffset:], ssrc)
}

// Csrc returns a copy of the CSRC list.
func (p *Packet) Csrc() []uint32 {
	list := make([]uint32, len(p.csrc))
	copy(list, p.csrc)
	return list
}

// SetCsrc replaces the CSRC list. The count nibble in the header is updated
// at once, the list itself is written by the next serialization.
func (p *Packet) SetCsrc(csrc []uint32) error {
	if len(csrc) > maxCsrcCount {
		return wire.InvalidUsagef("Packet.SetCsrc",
			"CSRC list has %d entries, at most %d fit the header", len(csrc), maxCsrcCount)
	}
	p.serializationNeeded = true
	p.csrc = append([]uint32(nil), csrc...)
	p.buffer[0] &^= ccMask
	p.buffer[0] |= byte(len(p.csrc)) & ccMask
	return nil
}

// Payload returns the payload without padding. The slice aliases the packet
// buffer, or the slice handed to SetPayload before the next serialization.
func (p *Packet) Payload() []byte {
	return p.payload
}

// SetPayload replaces the payload. The slice is kept, not copied, until the
// next serialization copies it into the new buffer.
func (p *Packet) SetPayload(payload []byte) {
	p.serializationNeeded = true
	if payload == nil {
		payload = []byte{}
	}
	p.payload = payload
}

// Padding returns the number of padding bytes after the payload.
func (p *Packet) Padding() int {
	return p.padding
}

// SetPadding sets the number of padding bytes. The padding bit is updated
// at once; values above 255 are rejected by Serialize.
func (p *Packet) SetPadding(padding int) {
	p.serializationNeeded = true
	p.padding = padding
	p.setPaddingBit(padding > 0)
}

// SerializationNeeded reports whether the object state changed since the
// buffer was last built.
func (p *Packet) SerializationNeeded() bool {
	return p.serializationNeeded
}

func (p *Packet) setPaddingBit(on bool) {
	if on {
		p.buffer[0] |= paddingBit
	} else {
		p.buffer[0] &^= paddingBit
	}
}

func (p *Packet) setHeaderExtensionBit(on bool) {
	if on {
		p.buffer[0] |= extensionBit
	} else {
		p.buffer[0] &^= extensionBit
	}
}
