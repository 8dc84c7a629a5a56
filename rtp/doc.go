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
Package rtp parses and builds RTP packets (RFC 3550) including the One-Byte
and Two-Byte header extensions of RFC 8285 and RFC 4588 retransmission
wrapping.

A packet is parsed in place: ParsePacket keeps the given buffer and the
payload and extension values are sub-slices of it. Changing the fixed header
(payload type, marker, sequence number, timestamp, SSRC) writes straight
into the buffer. Changing the CSRC list, extensions, payload or padding only
updates the object and marks it dirty; the next call to Buffer (or an
explicit Serialize) builds a new buffer from the object state:

	p, err := rtp.ParsePacket(datagram)
	if err != nil {
	    return err
	}
	p.SetOneByteExtensions()
	if err := p.SetExtension(3, absSendTime); err != nil {
	    return err
	}
	out, err := p.Buffer()

After a serialization the packet lives in the new buffer. Slices obtained
before that point still refer to the old buffer and no longer describe the
packet.

Use IsRtp to separate RTP from RTCP on a multiplexed transport (RFC 5761)
before parsing.
*/
package rtp
