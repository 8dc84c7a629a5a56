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
	"github.com/sirupsen/logrus"
	"github.com/wernerd/rtpwire/internal/wire"
)

// Packet is implemented by every RTCP packet type: *ReceiverReportPacket for
// Receiver Reports and *RawPacket for all types without a decoder.
type Packet interface {
	// Type returns the RTCP packet type.
	Type() PacketType
	// Buffer returns the wire representation, serializing first if needed.
	Buffer() ([]byte, error)
	// Serialize writes the object state into a new buffer.
	Serialize() error
	// SerializationNeeded reports whether Buffer would serialize.
	SerializationNeeded() bool
}

var (
	_ Packet = (*ReceiverReportPacket)(nil)
	_ Packet = (*RawPacket)(nil)
)

// ParseCompound splits a compound RTCP packet into its packets, each one
// sized by its own length field, and parses each according to its type.
func ParseCompound(buf []byte) ([]Packet, error) {
	const function = "ParseCompound"

	var packets []Packet
	for offset := 0; offset < len(buf); {
		rest := buf[offset:]
		if !IsRtcp(rest) {
			return nil, wire.Malformedf(function, "invalid RTCP packet at offset %d", offset)
		}
		length := packetLength(rest)
		if length > len(rest) {
			return nil, wire.Malformedf(function,
				"packet at offset %d announces %d bytes, %d bytes left", offset, length, len(rest))
		}
		chunk := rest[:length:length]

		var (
			packet Packet
			err    error
		)
		switch PacketType(chunk[packetTypeOffset]) {
		case TypeRR:
			packet, err = ParseReceiverReportPacket(chunk)
		default:
			packet, err = ParseRawPacket(chunk)
		}
		if err != nil {
			return nil, err
		}
		packets = append(packets, packet)
		offset += length
	}
	if len(packets) == 0 {
		return nil, wire.Malformedf(function, "empty compound packet")
	}

	logrus.WithFields(logrus.Fields{
		"function": function,
		"length":   len(buf),
		"packets":  len(packets),
	}).Debug("Parsed compound RTCP packet")
	return packets, nil
}

// SerializeCompound concatenates the wire representation of packets into a
// new buffer.
func SerializeCompound(packets ...Packet) ([]byte, error) {
	var size int
	buffers := make([][]byte, len(packets))
	for i, packet := range packets {
		buf, err := packet.Buffer()
		if err != nil {
			return nil, err
		}
		buffers[i] = buf
		size += len(buf)
	}
	out := make([]byte, 0, size)
	for _, buf := range buffers {
		out = append(out, buf...)
	}
	return out, nil
}
