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

package reception

import (
	"sync"
	"time"

	"github.com/wernerd/rtpwire/rtcp"
	"github.com/wernerd/rtpwire/rtp"
)

const (
	maxDropout  = 3000
	maxMisorder = 100
)

const seqNumMod = (1 << 16)

// Stream holds the reception statistics of one synchronization source, as
// needed to fill a report block of a Receiver Report.
type Stream struct {
	mu   sync.Mutex
	ssrc uint32

	packetCount,
	octetCount uint32
	maxSeqNum, // the highest sequence number seen from this source
	baseSeqNum uint16
	seqNumAccum, // sequence number cycles, shifted by 16
	badSeqNum,
	expectedPrior,
	receivedPrior uint32

	// for interarrival jitter computation, jitter is scaled by 16
	firstArrival time.Time
	lastTransit  uint32
	haveTransit  bool
	jitter       uint32

	lastSR     uint32
	lastSRTime time.Time
}

func newStream(ssrc uint32) *Stream {
	return &Stream{ssrc: ssrc, badSeqNum: seqNumMod + 1}
}

// Ssrc returns the SSRC of the source.
func (s *Stream) Ssrc() uint32 {
	return s.ssrc
}

// Record checks the sequence number of a packet from this source, updates
// the counters and the jitter estimation. It returns false if the packet
// was dropped because its sequence number jumped too far. A second packet
// that continues such a jump restarts the statistics.
//
// See algorithms in chapter A.1 (sequence number handling) and A.8 (jitter
// computation) of RFC 3550.
func (s *Stream) Record(p *rtp.Packet, arrival time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := p.SequenceNumber()
	if s.packetCount == 0 && s.firstArrival.IsZero() {
		s.maxSeqNum = seq
		s.baseSeqNum = seq
		s.firstArrival = arrival
	} else {
		step := seq - s.maxSeqNum
		if step < maxDropout {
			// Ordered, with not too high step.
			if seq < s.maxSeqNum {
				s.seqNumAccum += seqNumMod
			}
			s.maxSeqNum = seq
		} else if uint32(step) <= seqNumMod-maxMisorder {
			if uint32(seq) != s.badSeqNum {
				s.badSeqNum = uint32(seq + 1)
				return false
			}
			// Two sequential packets after a jump: the sender restarted.
			s.maxSeqNum = seq
			s.baseSeqNum = seq
			s.seqNumAccum = 0
			s.badSeqNum = seqNumMod + 1
			s.packetCount = 0
			s.octetCount = 0
			s.expectedPrior = 0
			s.receivedPrior = 0
			s.haveTransit = false
		}
		// else duplicate or reordered packet
	}

	s.packetCount++
	s.octetCount += uint32(len(p.Payload()))

	format, ok := rtp.LookupPayloadFormat(p.PayloadType())
	if !ok || format.ClockRate <= 0 {
		return true
	}
	elapsed := arrival.Sub(s.firstArrival).Microseconds()
	transit := uint32(elapsed*int64(format.ClockRate)/1e6) - p.Timestamp()
	if s.haveTransit {
		delta := int32(transit - s.lastTransit)
		if delta < 0 {
			delta = -delta
		}
		s.jitter += uint32(delta) - ((s.jitter + 8) >> 4)
	}
	s.lastTransit = transit
	s.haveTransit = true
	return true
}

// SetLastSenderReport records the middle 32 bits of the NTP timestamp of
// the last Sender Report from this source and when it was received.
func (s *Stream) SetLastSenderReport(lsr uint32, received time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSR = lsr
	s.lastSRTime = received
}

// PacketCount returns the number of packets received.
func (s *Stream) PacketCount() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.packetCount
}

// OctetCount returns the number of payload octets received.
func (s *Stream) OctetCount() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.octetCount
}

// ExtendedHighestSeqNumber returns the highest sequence number received,
// extended by the number of sequence number cycles.
func (s *Stream) ExtendedHighestSeqNumber() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seqNumAccum + uint32(s.maxSeqNum)
}

// Jitter returns the interarrival jitter in timestamp units.
func (s *Stream) Jitter() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jitter >> 4
}

// Report fills a new report block for this source. Fraction lost covers the
// interval since the previous call. See chapter A.3 in RFC 3550 regarding
// the packet lost algorithm, end of chapter 6.4.1 regarding LSR and DLSR.
func (s *Stream) Report(now time.Time) *rtcp.ReceiverReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	extMaxSeq := s.seqNumAccum + uint32(s.maxSeqNum)
	expected := extMaxSeq - uint32(s.baseSeqNum) + 1
	lost := int64(expected) - int64(s.packetCount)
	switch {
	case lost > rtcp.MaxCumulativeLost:
		lost = rtcp.MaxCumulativeLost
	case lost < rtcp.MinCumulativeLost:
		lost = rtcp.MinCumulativeLost
	}

	expectedDelta := expected - s.expectedPrior
	s.expectedPrior = expected
	receivedDelta := s.packetCount - s.receivedPrior
	s.receivedPrior = s.packetCount
	lostDelta := int64(expectedDelta) - int64(receivedDelta)

	var fracLost uint8
	if expectedDelta != 0 && lostDelta > 0 {
		fracLost = uint8(min((lostDelta<<8)/int64(expectedDelta), 0xff))
	}

	var dlsr uint32
	if !s.lastSRTime.IsZero() {
		dlsr = uint32(now.Sub(s.lastSRTime).Seconds() * 65536)
	}

	report := rtcp.NewReceiverReport()
	report.SetSsrc(s.ssrc)
	report.SetFractionLost(fracLost)
	report.SetCumulativeLost(int32(lost))
	report.SetHighestSeqNumber(extMaxSeq)
	report.SetJitter(s.jitter >> 4)
	report.SetLastSRTimestamp(s.lastSR)
	report.SetDelaySinceLastSR(dlsr)
	return report
}
