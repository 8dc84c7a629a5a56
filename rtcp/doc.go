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

/*
Package rtcp parses and builds RTCP packets (RFC 3550 section 6).

All packet types share the 4 byte common header; the length field sizes each
packet so a compound packet can be split without knowing every type.
ReceiverReportPacket decodes Receiver Reports including the report blocks,
every other type is kept as a RawPacket whose content is opaque:

	packets, err := rtcp.ParseCompound(datagram)
	if err != nil {
	    return err
	}
	for _, packet := range packets {
	    if rr, ok := packet.(*rtcp.ReceiverReportPacket); ok {
	        for _, report := range rr.Reports() {
	            fmt.Println(report.Ssrc(), report.CumulativeLost())
	        }
	    }
	}

Like the rtp package, packets are parsed in place and rebuilt lazily: field
setters write into the buffer, adding report blocks or changing padding marks
the packet dirty and the next Buffer call serializes it into a new buffer.
*/
package rtcp
