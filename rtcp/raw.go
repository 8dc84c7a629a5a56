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
	"encoding/hex"
	"fmt"
	"io"

	"github.com/wernerd/rtpwire/internal/wire"
)

// RawPacket is an RTCP packet of a type this package does not decode. The
// content after the common header is kept as opaque bytes; only the padding
// can be changed.
type RawPacket struct {
	header
	body []byte
}

// RawDump is a summary of a raw packet.
type RawDump struct {
	HeaderDump
	BodyLength int `json:"bodyLength"`
}

// ParseRawPacket parses the RTCP packet at the start of buf using the length
// field of its header. Bytes after the packet are ignored.
func ParseRawPacket(buf []byte) (*RawPacket, error) {
	const function = "ParseRawPacket"

	if !IsRtcp(buf) {
		return nil, wire.Malformedf(function, "invalid RTCP packet")
	}
	length := packetLength(buf)
	if length > len(buf) {
		return nil, wire.Malformedf(function,
			"announced length (%d bytes) exceeds buffer length (%d bytes)", length, len(buf))
	}

	p := &RawPacket{header: header{packetType: PacketType(buf[packetTypeOffset])}}
	if buf[0]&paddingBit != 0 {
		p.padding = int(buf[length-1])
		if commonHeaderLength+p.padding > length {
			return nil, wire.Malformedf(function,
				"announced padding (%d bytes) exceeds packet length (%d bytes)", p.padding, length)
		}
	}
	p.buffer = buf[:length:length]
	end := length - p.padding
	p.body = buf[commonHeaderLength:end:end]
	return p, nil
}

// Body returns the bytes between the common header and the padding.
func (p *RawPacket) Body() []byte {
	return p.body
}

// Buffer returns the wire representation of the packet, serializing first if
// needed.
func (p *RawPacket) Buffer() ([]byte, error) {
	if p.serializationNeeded {
		if err := p.Serialize(); err != nil {
			return nil, err
		}
	}
	return p.buffer, nil
}

// Serialize writes header, body and padding into a new buffer. The count
// field is kept.
func (p *RawPacket) Serialize() error {
	const function = "RawPacket.Serialize"

	length := commonHeaderLength + len(p.body)
	if err := p.checkSerialize(function, length); err != nil {
		return err
	}
	body := p.body
	p.serialize(length)
	p.body = p.buffer[commonHeaderLength:length:length]
	copy(p.body, body)
	p.serializationNeeded = false
	return nil
}

// Dump returns a summary of the packet.
func (p *RawPacket) Dump() RawDump {
	return RawDump{
		HeaderDump: p.dumpHeader(),
		BodyLength: len(p.body),
	}
}

// Fprint writes a formatted dump of the packet to w.
func (p *RawPacket) Fprint(w io.Writer, label string) {
	fmt.Fprintf(w, "RTCP %s Packet at: %s\n", p.packetType, label)
	fmt.Fprintf(w, "  header dump:         %s\n", hex.EncodeToString(p.buffer[0:commonHeaderLength]))
	fmt.Fprintf(w, "    Version:           %d\n", p.Version())
	fmt.Fprintf(w, "    Padding:           %d\n", p.padding)
	fmt.Fprintf(w, "    Count:             %d\n", p.Count())
	fmt.Fprintf(w, "    Length:            %d\n", p.Length())
	fmt.Fprintf(w, "  body dump:           %s\n", hex.EncodeToString(p.body))
}
