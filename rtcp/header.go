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

package rtcp

import (
	"encoding/binary"
	"fmt"

	"github.com/wernerd/rtpwire/internal/wire"
)

const (
	rtcpVersion        = 2
	commonHeaderLength = 4
	maxCount           = 31
	maxPadding         = 255
)

const (
	packetTypeOffset = 1
	lengthOffset     = 2
)

const (
	version2Bit = 0x80
	versionMask = 0xc0
	paddingBit  = 0x20
	countMask   = 0x1f
)

// Error kinds returned by this package, see package wire.
var (
	ErrMalformedPacket = wire.ErrMalformedPacket
	ErrInvalidUsage    = wire.ErrInvalidUsage
)

// PacketType is the RTCP packet type carried in the second header byte.
type PacketType uint8

// For full reference of registered RTCP packet types refer to:
// http://www.iana.org/assignments/rtp-parameters
const (
	TypeSR    PacketType = 200 // SR         sender report          [RFC3550]
	TypeRR    PacketType = 201 // RR         receiver report        [RFC3550]
	TypeSDES  PacketType = 202 // SDES       source description     [RFC3550]
	TypeBYE   PacketType = 203 // BYE        goodbye                [RFC3550]
	TypeAPP   PacketType = 204 // APP        application-defined    [RFC3550]
	TypeRTPFB PacketType = 205 // RTPFB      Generic RTP Feedback   [RFC4585]
	TypePSFB  PacketType = 206 // PSFB       Payload-specific       [RFC4585]
	TypeXR    PacketType = 207 // XR         extended report        [RFC3611]
)

func (t PacketType) String() string {
	switch t {
	case TypeSR:
		return "SR"
	case TypeRR:
		return "RR"
	case TypeSDES:
		return "SDES"
	case TypeBYE:
		return "BYE"
	case TypeAPP:
		return "APP"
	case TypeRTPFB:
		return "RTPFB"
	case TypePSFB:
		return "PSFB"
	case TypeXR:
		return "XR"
	}
	return fmt.Sprintf("PT%d", uint8(t))
}

// IsRtcp reports whether buf could hold an RTCP packet.
//
// The buffer must hold at least the common header, the first byte must lie
// in 128..191 (version 2) and the packet type must lie in 192..223, the
// range RFC 5761 reserves for RTCP on a multiplexed transport.
func IsRtcp(buf []byte) bool {
	if len(buf) < commonHeaderLength {
		return false
	}
	if buf[0] < 128 || buf[0] > 191 || buf[0]>>6 != rtcpVersion {
		return false
	}
	return buf[1] >= 192 && buf[1] <= 223
}

/*
header is the common part of all RTCP packets:

	 0                   1                   2                   3
	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|V=2|P|  count  |      PT       |             length            |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+

Concrete packet types embed it and call serialize with the length of their
content to get a new buffer with the common header and padding written.
*/
type header struct {
	packetType          PacketType
	buffer              []byte
	padding             int
	serializationNeeded bool
}

// HeaderDump is the common header part of a packet dump.
type HeaderDump struct {
	Version    uint8      `json:"version"`
	PacketType PacketType `json:"packetType"`
	Count      uint8      `json:"count"`
	Length     uint16     `json:"length"`
	Padding    int        `json:"padding"`
}

// Type returns the packet type of the concrete packet.
func (h *header) Type() PacketType {
	return h.packetType
}

// Version returns the RTCP version, always 2 for a valid packet.
func (h *header) Version() uint8 {
	return h.buffer[0] >> 6
}

// Count returns the 5 bit count field. Its meaning depends on the packet
// type.
func (h *header) Count() uint8 {
	return h.buffer[0] & countMask
}

// Length returns the length field: packet size in 32 bit words minus one.
func (h *header) Length() uint16 {
	return binary.BigEndian.Uint16(h.buffer[lengthOffset:])
}

// Padding returns the number of padding bytes at the end of the packet.
func (h *header) Padding() int {
	return h.padding
}

// SetPadding sets the number of padding bytes. The padding bit is updated at
// once, the padding itself is written by the next serialization. Padding
// must keep the packet a multiple of 4 bytes and must not exceed 255.
func (h *header) SetPadding(padding int) {
	h.serializationNeeded = true
	h.padding = padding
	if padding > 0 {
		h.buffer[0] |= paddingBit
	} else {
		h.buffer[0] &^= paddingBit
	}
}

// SerializationNeeded reports whether the object state changed since the
// buffer was last built.
func (h *header) SerializationNeeded() bool {
	return h.serializationNeeded
}

func (h *header) dumpHeader() HeaderDump {
	return HeaderDump{
		Version:    h.Version(),
		PacketType: h.packetType,
		Count:      h.Count(),
		Length:     h.Length(),
		Padding:    h.padding,
	}
}

func (h *header) setCount(count int) {
	h.buffer[0] &^= countMask
	h.buffer[0] |= byte(count) & countMask
}

func (h *header) setLength(length uint16) {
	binary.BigEndian.PutUint16(h.buffer[lengthOffset:], length)
}

func (h *header) writeCommonHeader() {
	h.buffer[0] &^= versionMask | paddingBit
	h.buffer[0] |= version2Bit
	if h.padding > 0 {
		h.buffer[0] |= paddingBit
	}
	h.buffer[packetTypeOffset] = byte(h.packetType)
}

// checkSerialize validates the padding for a packet whose content takes
// length bytes.
func (h *header) checkSerialize(function string, length int) error {
	if h.padding < 0 || h.padding > maxPadding {
		return wire.InvalidUsagef(function, "padding (%d bytes) must be in range 0..%d", h.padding, maxPadding)
	}
	if (length+h.padding)%4 != 0 {
		return wire.InvalidUsagef(function,
			"packet length (%d bytes + %d bytes padding) is not a multiple of 4", length, h.padding)
	}
	return nil
}

// serialize replaces the buffer with a new one of length bytes plus padding.
// The first header byte is carried over, version, type, length and padding
// are rewritten. The caller runs checkSerialize first and writes its content
// after the common header.
func (h *header) serialize(length int) {
	buf := make([]byte, length+h.padding)
	copy(buf, h.buffer[:commonHeaderLength])
	h.buffer = buf
	h.writeCommonHeader()
	h.setLength(uint16(len(buf)/4 - 1))
	if h.padding > 0 {
		buf[len(buf)-1] = byte(h.padding)
	}
}

// packetLength returns the size in bytes announced by the length field of
// the header at buf[0:].
func packetLength(buf []byte) int {
	return (int(binary.BigEndian.Uint16(buf[lengthOffset:])) + 1) * 4
}
