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

	"github.com/wernerd/rtpwire/internal/wire"
)

const reportLength = 24

const (
	reportSsrcOffset     = 0
	fractionLostOffset   = 4
	cumulativeLostOffset = 5
	highestSeqOffset     = 8
	jitterOffset         = 12
	lsrOffset            = 16
	dlsrOffset           = 20
)

// Range of the 24 bit sign-magnitude cumulative lost counter.
const (
	MaxCumulativeLost = 0x7fffff
	MinCumulativeLost = -0x800000

	lostSignBit       = 0x800000
	lostMagnitudeMask = 0x7fffff
)

/*
ReceiverReport is one report block of a Receiver Report packet:

	 0                   1                   2                   3
	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
	+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+
	|                 SSRC_1 (SSRC of first source)                 |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	| fraction lost |       cumulative number of packets lost       |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|           extended highest sequence number received           |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|                      interarrival jitter                      |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|                         last SR (LSR)                         |
	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
	|                   delay since last SR (DLSR)                  |
	+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+

All setters write straight into the block. A block belongs to at most one
packet.
*/
type ReceiverReport struct {
	buffer []byte
}

// ReportDump is a summary of a report block.
type ReportDump struct {
	Ssrc             uint32 `json:"ssrc"`
	FractionLost     uint8  `json:"fractionLost"`
	CumulativeLost   int32  `json:"cumulativeLost"`
	HighestSeqNumber uint32 `json:"highestSeqNumber"`
	Jitter           uint32 `json:"jitter"`
	LastSRTimestamp  uint32 `json:"lastSRTimestamp"`
	DelaySinceLastSR uint32 `json:"delaySinceLastSR"`
}

// NewReceiverReport returns a zero filled report block.
func NewReceiverReport() *ReceiverReport {
	return &ReceiverReport{buffer: make([]byte, reportLength)}
}

// ParseReceiverReport returns a report block viewing the first 24 bytes of
// buf.
func ParseReceiverReport(buf []byte) (*ReceiverReport, error) {
	if len(buf) < reportLength {
		return nil, wire.Malformedf("ParseReceiverReport",
			"buffer (%d bytes) is too small for a report block (%d bytes)", len(buf), reportLength)
	}
	return &ReceiverReport{buffer: buf[:reportLength:reportLength]}, nil
}

// Buffer returns the 24 byte block.
func (r *ReceiverReport) Buffer() []byte {
	return r.buffer
}

// Ssrc returns the SSRC of the reported source.
func (r *ReceiverReport) Ssrc() uint32 {
	return binary.BigEndian.Uint32(r.buffer[reportSsrcOffset:])
}

// SetSsrc sets the SSRC of the reported source.
func (r *ReceiverReport) SetSsrc(ssrc uint32) {
	binary.BigEndian.PutUint32(r.buffer[reportSsrcOffset:], ssrc)
}

// FractionLost returns the fraction of packets lost as fixed point number
// with the binary point at the left edge.
func (r *ReceiverReport) FractionLost() uint8 {
	return r.buffer[fractionLostOffset]
}

// SetFractionLost sets the fraction lost.
func (r *ReceiverReport) SetFractionLost(fraction uint8) {
	r.buffer[fractionLostOffset] = fraction
}

// CumulativeLost returns the cumulative number of packets lost.
//
// The field is a 24 bit sign-magnitude number: bit 23 is the sign, bits
// 0..22 the magnitude. The bit string 0x800000 (negative zero) stands for
// MinCumulativeLost.
func (r *ReceiverReport) CumulativeLost() int32 {
	b := r.buffer[cumulativeLostOffset:]
	raw := uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])

	if raw&lostSignBit == 0 {
		return int32(raw)
	}
	if raw == lostSignBit {
		return MinCumulativeLost
	}
	return -int32(raw & lostMagnitudeMask)
}

// SetCumulativeLost sets the cumulative number of packets lost, clamped to
// MinCumulativeLost..MaxCumulativeLost.
func (r *ReceiverReport) SetCumulativeLost(lost int32) {
	var raw uint32
	switch {
	case lost >= MaxCumulativeLost:
		raw = MaxCumulativeLost
	case lost >= 0:
		raw = uint32(lost)
	case lost <= MinCumulativeLost:
		raw = lostSignBit
	default:
		raw = uint32(-lost) | lostSignBit
	}
	b := r.buffer[cumulativeLostOffset:]
	b[0] = byte(raw >> 16)
	b[1] = byte(raw >> 8)
	b[2] = byte(raw)
}

// HighestSeqNumber returns the extended highest sequence number received.
func (r *ReceiverReport) HighestSeqNumber() uint32 {
	return binary.BigEndian.Uint32(r.buffer[highestSeqOffset:])
}

// SetHighestSeqNumber sets the extended highest sequence number received.
func (r *ReceiverReport) SetHighestSeqNumber(seq uint32) {
	binary.BigEndian.PutUint32(r.buffer[highestSeqOffset:], seq)
}

// Jitter returns the interarrival jitter in timestamp units.
func (r *ReceiverReport) Jitter() uint32 {
	return binary.BigEndian.Uint32(r.buffer[jitterOffset:])
}

// SetJitter sets the interarrival jitter.
func (r *ReceiverReport) SetJitter(jitter uint32) {
	binary.BigEndian.PutUint32(r.buffer[jitterOffset:], jitter)
}

// LastSRTimestamp returns the middle 32 bits of the NTP timestamp of the
// last sender report received (LSR).
func (r *ReceiverReport) LastSRTimestamp() uint32 {
	return binary.BigEndian.Uint32(r.buffer[lsrOffset:])
}

// SetLastSRTimestamp sets LSR.
func (r *ReceiverReport) SetLastSRTimestamp(lsr uint32) {
	binary.BigEndian.PutUint32(r.buffer[lsrOffset:], lsr)
}

// DelaySinceLastSR returns the delay since the last sender report (DLSR) in
// units of 1/65536 seconds.
func (r *ReceiverReport) DelaySinceLastSR() uint32 {
	return binary.BigEndian.Uint32(r.buffer[dlsrOffset:])
}

// SetDelaySinceLastSR sets DLSR.
func (r *ReceiverReport) SetDelaySinceLastSR(dlsr uint32) {
	binary.BigEndian.PutUint32(r.buffer[dlsrOffset:], dlsr)
}

// Dump returns a summary of the block.
func (r *ReceiverReport) Dump() ReportDump {
	return ReportDump{
		Ssrc:             r.Ssrc(),
		FractionLost:     r.FractionLost(),
		CumulativeLost:   r.CumulativeLost(),
		HighestSeqNumber: r.HighestSeqNumber(),
		Jitter:           r.Jitter(),
		LastSRTimestamp:  r.LastSRTimestamp(),
		DelaySinceLastSR: r.DelaySinceLastSR(),
	}
}
