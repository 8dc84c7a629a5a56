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
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/wernerd/rtpwire/internal/wire"
)

// Buffer returns the wire representation of the packet, serializing first if
// any setter changed the layout since the last call.
func (p *Packet) Buffer() ([]byte, error) {
	if p.serializationNeeded {
		if err := p.Serialize(); err != nil {
			return nil, err
		}
	}
	return p.buffer, nil
}

// Serialize writes the current object state into a newly allocated buffer.
//
// The fixed header is copied as is. CSRC list, header extensions, payload
// and padding are written from object state and the lengths recomputed. If
// no extension mode is selected or no extension is present the extension
// block is dropped. On success every view previously returned by Payload or
// Extension refers to the old buffer and must not be used any more. On
// failure the packet is left unchanged.
func (p *Packet) Serialize() error {
	const function = "Packet.Serialize"

	if p.padding < 0 || p.padding > maxPadding {
		return wire.InvalidUsagef(function, "padding (%d bytes) must be in range 0..%d", p.padding, maxPadding)
	}

	writeExtensions := len(p.extensions) > 0 && (p.HasOneByteExtensions() || p.HasTwoByteExtensions())

	length := fixedHeaderLength + len(p.csrc)*4
	if writeExtensions {
		extLength, err := p.extensionsLength()
		if err != nil {
			return err
		}
		length += extHeaderLength + wire.PadTo4Bytes(extLength)
	}
	length += len(p.payload) + p.padding

	buf := make([]byte, length)
	copy(buf, p.buffer[:fixedHeaderLength])
	pos := fixedHeaderLength

	for _, csrc := range p.csrc {
		binary.BigEndian.PutUint32(buf[pos:], csrc)
		pos += 4
	}

	var offsets []int
	if writeExtensions {
		var n int
		n, offsets = p.writeExtensions(buf[pos:])
		for i := range offsets {
			offsets[i] += pos
		}
		pos += n
	}

	payloadOffset := pos
	pos += copy(buf[pos:], p.payload)

	if p.padding > 0 {
		pos += p.padding
		buf[pos-1] = byte(p.padding)
	}

	if pos != len(buf) {
		panic(fmt.Sprintf("rtp: serialized %d bytes into a buffer of %d bytes", pos, len(buf)))
	}

	buf[0] &^= versionMask | paddingBit | extensionBit | ccMask
	buf[0] |= version2Bit | byte(len(p.csrc))
	if p.padding > 0 {
		buf[0] |= paddingBit
	}
	if writeExtensions {
		buf[0] |= extensionBit
		for i := range p.extensions {
			start := offsets[i]
			end := start + len(p.extensions[i].value)
			p.extensions[i].value = buf[start:end:end]
		}
	} else {
		p.extensions = nil
		p.extensionProfile = 0
		p.hasExtensionProfile = false
	}
	p.payload = buf[payloadOffset : payloadOffset+len(p.payload) : payloadOffset+len(p.payload)]
	p.buffer = buf
	p.serializationNeeded = false

	logrus.WithFields(logrus.Fields{
		"function":   function,
		"length":     len(buf),
		"csrc":       len(p.csrc),
		"extensions": len(p.extensions),
		"padding":    p.padding,
	}).Debug("Serialized RTP packet")
	return nil
}

// Clone returns a deep copy of the packet, serialized and parsed again from
// a private copy of the buffer.
func (p *Packet) Clone() (*Packet, error) {
	buf, err := p.Buffer()
	if err != nil {
		return nil, err
	}
	return ParsePacket(wire.Clone(buf))
}

// RtxEncode turns the packet into an RFC 4588 retransmission packet: payload
// type and SSRC are rewritten, the original sequence number is prepended to
// the payload, sequenceNumber is installed and padding is removed.
func (p *Packet) RtxEncode(payloadType uint8, ssrc uint32, sequenceNumber uint16) {
	p.SetPayloadType(payloadType)
	p.SetSsrc(ssrc)

	payload := make([]byte, 2+len(p.payload))
	binary.BigEndian.PutUint16(payload, p.SequenceNumber())
	copy(payload[2:], p.payload)
	p.SetPayload(payload)

	p.SetSequenceNumber(sequenceNumber)
	p.SetPadding(0)
}

// RtxDecode restores the original packet from an RFC 4588 retransmission
// packet. The payload must hold at least the 2 byte original sequence number.
func (p *Packet) RtxDecode(payloadType uint8, ssrc uint32) error {
	if len(p.payload) < 2 {
		return wire.Malformedf("Packet.RtxDecode",
			"payload length (%d bytes) must be greater or equal than 2 bytes", len(p.payload))
	}
	p.SetPayloadType(payloadType)
	p.SetSsrc(ssrc)
	p.SetSequenceNumber(binary.BigEndian.Uint16(p.payload))
	p.SetPayload(p.payload[2:])
	p.SetPadding(0)
	return nil
}
