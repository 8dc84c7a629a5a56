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
	"encoding/hex"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/wernerd/rtpwire/internal/wire"
)

// Common header plus sender SSRC.
const rrFixedLength = commonHeaderLength + 4

const senderSsrcOffset = commonHeaderLength

/*
ReceiverReportPacket is an RTCP Receiver Report (RR) packet:

	        0                   1                   2                   3
	        0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
	       +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	header |V=2|P|    RC   |   PT=RR=201   |             length            |
	       +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	       |                     SSRC of packet sender                     |
	       +=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+
	report |                 SSRC_1 (SSRC of first source)                 |
	block  +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	  1    :                               ...                             :
	       +=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+

The report blocks of a parsed packet view the packet buffer. After a
serialization they view the new buffer, so setters on a block always edit
the current wire representation.
*/
type ReceiverReportPacket struct {
	header
	reports []*ReceiverReport
}

// ReceiverReportDump is a summary of a Receiver Report packet.
type ReceiverReportDump struct {
	HeaderDump
	Ssrc    uint32       `json:"ssrc"`
	Reports []ReportDump `json:"reports"`
}

// NewReceiverReportPacket returns an empty Receiver Report packet: 8 bytes,
// no report blocks.
func NewReceiverReportPacket() *ReceiverReportPacket {
	p := &ReceiverReportPacket{
		header: header{
			packetType: TypeRR,
			buffer:     make([]byte, rrFixedLength),
		},
	}
	p.writeCommonHeader()
	p.setLength(rrFixedLength/4 - 1)
	return p
}

// ParseReceiverReportPacket parses the Receiver Report packet at the start of
// buf. The packet keeps the part of buf it covers (header, report blocks and
// padding); bytes after it are ignored.
func ParseReceiverReportPacket(buf []byte) (*ReceiverReportPacket, error) {
	const function = "ParseReceiverReportPacket"

	if !IsRtcp(buf) {
		return nil, wire.Malformedf(function, "invalid RTCP packet")
	}
	if PacketType(buf[packetTypeOffset]) != TypeRR {
		return nil, wire.Malformedf(function,
			"packet type %s is not a Receiver Report", PacketType(buf[packetTypeOffset]))
	}
	if len(buf) < rrFixedLength {
		return nil, wire.Malformedf(function,
			"buffer (%d bytes) is too small for a Receiver Report (%d bytes)", len(buf), rrFixedLength)
	}

	p := &ReceiverReportPacket{header: header{packetType: TypeRR}}

	if buf[0]&paddingBit != 0 {
		last := packetLength(buf) - 1
		if last >= len(buf) {
			return nil, wire.Malformedf(function,
				"announced length (%d bytes) exceeds buffer length (%d bytes)", last+1, len(buf))
		}
		p.padding = int(buf[last])
	}

	count := int(buf[0] & countMask)
	if len(buf) < rrFixedLength+count*reportLength {
		return nil, wire.Malformedf(function,
			"buffer (%d bytes) is too small for %d report blocks", len(buf), count)
	}
	total := rrFixedLength + count*reportLength + p.padding
	if total > len(buf) {
		return nil, wire.Malformedf(function,
			"%d report blocks and %d bytes padding exceed buffer length (%d bytes)", count, p.padding, len(buf))
	}
	p.buffer = buf[:total:total]
	// Profile-specific extensions after the blocks are not kept, the next
	// serialization rewrites the length field.
	if total != packetLength(buf) {
		p.serializationNeeded = true
	}

	p.reports = make([]*ReceiverReport, count)
	for i := range p.reports {
		offset := rrFixedLength + i*reportLength
		p.reports[i] = &ReceiverReport{buffer: buf[offset : offset+reportLength : offset+reportLength]}
	}
	return p, nil
}

// Ssrc returns the SSRC of the packet sender.
func (p *ReceiverReportPacket) Ssrc() uint32 {
	return binary.BigEndian.Uint32(p.buffer[senderSsrcOffset:])
}

// SetSsrc sets the SSRC of the packet sender.
func (p *ReceiverReportPacket) SetSsrc(ssrc uint32) {
	binary.BigEndian.PutUint32(p.buffer[senderSsrcOffset:], ssrc)
}

// Reports returns the report blocks in wire order.
func (p *ReceiverReportPacket) Reports() []*ReceiverReport {
	return append([]*ReceiverReport(nil), p.reports...)
}

// AddReport appends a report block. The block must not be part of another
// packet. A nil block is ignored.
func (p *ReceiverReportPacket) AddReport(report *ReceiverReport) {
	if report == nil {
		return
	}
	p.reports = append(p.reports, report)
	p.serializationNeeded = true
}

// Buffer returns the wire representation of the packet, serializing first if
// needed.
func (p *ReceiverReportPacket) Buffer() ([]byte, error) {
	if p.serializationNeeded {
		if err := p.Serialize(); err != nil {
			return nil, err
		}
	}
	return p.buffer, nil
}

// Serialize writes the packet into a new buffer: common header, sender SSRC
// and every report block in order, followed by the padding. On failure the
// packet is left unchanged.
func (p *ReceiverReportPacket) Serialize() error {
	const function = "ReceiverReportPacket.Serialize"

	if len(p.reports) > maxCount {
		return wire.InvalidUsagef(function,
			"%d report blocks exceed the maximum of %d", len(p.reports), maxCount)
	}
	length := rrFixedLength + reportLength*len(p.reports)
	if err := p.checkSerialize(function, length); err != nil {
		return err
	}

	ssrc := p.Ssrc()
	p.serialize(length)
	p.setCount(len(p.reports))
	p.SetSsrc(ssrc)

	for i, report := range p.reports {
		offset := rrFixedLength + i*reportLength
		slot := p.buffer[offset : offset+reportLength : offset+reportLength]
		copy(slot, report.buffer)
		report.buffer = slot
	}
	p.serializationNeeded = false

	logrus.WithFields(logrus.Fields{
		"function": function,
		"length":   len(p.buffer),
		"reports":  len(p.reports),
		"padding":  p.padding,
	}).Debug("Serialized Receiver Report packet")
	return nil
}

// Dump returns a summary of the packet.
func (p *ReceiverReportPacket) Dump() ReceiverReportDump {
	d := ReceiverReportDump{
		HeaderDump: p.dumpHeader(),
		Ssrc:       p.Ssrc(),
		Reports:    make([]ReportDump, len(p.reports)),
	}
	for i, report := range p.reports {
		d.Reports[i] = report.Dump()
	}
	return d
}

// Fprint writes a formatted dump of the packet to w.
func (p *ReceiverReportPacket) Fprint(w io.Writer, label string) {
	fmt.Fprintf(w, "RTCP RR Packet at: %s\n", label)
	fmt.Fprintf(w, "  header dump:         %s\n", hex.EncodeToString(p.buffer[0:commonHeaderLength]))
	fmt.Fprintf(w, "    Version:           %d\n", p.Version())
	fmt.Fprintf(w, "    Padding:           %d\n", p.padding)
	fmt.Fprintf(w, "    Report count:      %d\n", len(p.reports))
	fmt.Fprintf(w, "    Length:            %d\n", p.Length())
	fmt.Fprintf(w, "    Sender SSRC:       %d (0x%x)\n", p.Ssrc(), p.Ssrc())
	for i, report := range p.reports {
		fmt.Fprintf(w, "  Report %d:\n", i)
		fmt.Fprintf(w, "    SSRC:              %d (0x%x)\n", report.Ssrc(), report.Ssrc())
		fmt.Fprintf(w, "    Fraction lost:     %d\n", report.FractionLost())
		fmt.Fprintf(w, "    Cumulative lost:   %d\n", report.CumulativeLost())
		fmt.Fprintf(w, "    Highest sequence:  %d\n", report.HighestSeqNumber())
		fmt.Fprintf(w, "    Jitter:            %d\n", report.Jitter())
		fmt.Fprintf(w, "    LSR:               %d (0x%x)\n", report.LastSRTimestamp(), report.LastSRTimestamp())
		fmt.Fprintf(w, "    DLSR:              %d\n", report.DelaySinceLastSR())
	}
}
