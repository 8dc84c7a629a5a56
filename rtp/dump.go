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
	"encoding/hex"
	"fmt"
	"io"
)

// Dump is a summary of a packet, suitable for logging and JSON output.
type Dump struct {
	Version           uint8         `json:"version"`
	PayloadType       uint8         `json:"payloadType"`
	PayloadFormat     string        `json:"payloadFormat,omitempty"`
	SequenceNumber    uint16        `json:"sequenceNumber"`
	Timestamp         uint32        `json:"timestamp"`
	Ssrc              uint32        `json:"ssrc"`
	Csrc              []uint32      `json:"csrc"`
	Marker            bool          `json:"marker"`
	HeaderExtensionID *uint16       `json:"headerExtensionId,omitempty"`
	Extensions        map[uint8]int `json:"extensions"`
	PayloadLength     int           `json:"payloadLength"`
	Padding           int           `json:"padding"`
}

// Dump returns a summary of the packet. Extensions map id to value length.
func (p *Packet) Dump() Dump {
	d := Dump{
		Version:        p.Version(),
		PayloadType:    p.PayloadType(),
		SequenceNumber: p.SequenceNumber(),
		Timestamp:      p.Timestamp(),
		Ssrc:           p.Ssrc(),
		Csrc:           p.Csrc(),
		Marker:         p.Marker(),
		Extensions:     make(map[uint8]int, len(p.extensions)),
		PayloadLength:  len(p.payload),
		Padding:        p.padding,
	}
	if f, ok := LookupPayloadFormat(d.PayloadType); ok {
		d.PayloadFormat = f.Name
	}
	if id, ok := p.HeaderExtensionID(); ok {
		d.HeaderExtensionID = &id
	}
	for _, e := range p.extensions {
		d.Extensions[e.id] = len(e.value)
	}
	return d
}

// Fprint writes a formatted dump of the packet to w.
func (p *Packet) Fprint(w io.Writer, label string) {
	fmt.Fprintf(w, "RTP Packet at: %s\n", label)
	fmt.Fprintf(w, "  fixed header dump:   %s\n", hex.EncodeToString(p.buffer[0:fixedHeaderLength]))
	fmt.Fprintf(w, "    Version:           %d\n", p.Version())
	fmt.Fprintf(w, "    Padding:           %d\n", p.padding)
	fmt.Fprintf(w, "    Contributing SRCs: %d\n", len(p.csrc))
	fmt.Fprintf(w, "    Marker:            %t\n", p.Marker())
	if f, ok := LookupPayloadFormat(p.PayloadType()); ok {
		fmt.Fprintf(w, "    Payload type:      %d (%s)\n", p.PayloadType(), f.Name)
	} else {
		fmt.Fprintf(w, "    Payload type:      %d (0x%x)\n", p.PayloadType(), p.PayloadType())
	}
	fmt.Fprintf(w, "    Sequence number:   %d (0x%x)\n", p.SequenceNumber(), p.SequenceNumber())
	fmt.Fprintf(w, "    Timestamp:         %d (0x%x)\n", p.Timestamp(), p.Timestamp())
	fmt.Fprintf(w, "    SSRC:              %d (0x%x)\n", p.Ssrc(), p.Ssrc())

	if len(p.csrc) > 0 {
		fmt.Fprintf(w, "  CSRC list:\n")
		for i, v := range p.csrc {
			fmt.Fprintf(w, "      %d: %d (0x%x)\n", i, v, v)
		}
	}
	if id, ok := p.HeaderExtensionID(); ok {
		fmt.Fprintf(w, "  Extension profile: 0x%04x\n", id)
		for _, e := range p.extensions {
			fmt.Fprintf(w, "    %d: %s\n", e.id, hex.EncodeToString(e.value))
		}
	}
	fmt.Fprintf(w, "  payload: %s\n", hex.EncodeToString(p.payload))
}
