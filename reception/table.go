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

// Package reception keeps per-source reception statistics of an RTP receiver
// and turns them into Receiver Report blocks.
package reception

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wernerd/rtpwire/rtcp"
	"github.com/wernerd/rtpwire/rtp"
)

// maxReports is the number of report blocks one Receiver Report can carry.
const maxReports = 31

// Table maps SSRCs to their reception statistics.
type Table struct {
	mu      sync.Mutex
	streams map[uint32]*Stream
	order   []uint32
	next    int // first source of the next Receiver Report
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{streams: make(map[uint32]*Stream)}
}

// Record adds a packet to the statistics of its SSRC, creating them on the
// first packet. See Stream.Record for the result.
func (t *Table) Record(p *rtp.Packet, arrival time.Time) bool {
	t.mu.Lock()
	s, ok := t.streams[p.Ssrc()]
	if !ok {
		s = newStream(p.Ssrc())
		t.streams[p.Ssrc()] = s
		t.order = append(t.order, p.Ssrc())
	}
	t.mu.Unlock()
	return s.Record(p, arrival)
}

// Stream returns the statistics of ssrc.
func (t *Table) Stream(ssrc uint32) (*Stream, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.streams[ssrc]
	return s, ok
}

// Streams returns all sources in the order their first packet arrived.
func (t *Table) Streams() []*Stream {
	t.mu.Lock()
	defer t.mu.Unlock()
	streams := make([]*Stream, len(t.order))
	for i, ssrc := range t.order {
		streams[i] = t.streams[ssrc]
	}
	return streams
}

// ReceiverReport builds a Receiver Report from senderSsrc with one block per
// source. With more than 31 sources each call reports the next 31, starting
// where the previous call stopped, so every source is covered over
// successive reports.
func (t *Table) ReceiverReport(senderSsrc uint32, now time.Time) *rtcp.ReceiverReportPacket {
	streams := t.Streams()
	if len(streams) > maxReports {
		t.mu.Lock()
		start := t.next % len(streams)
		t.next = start + maxReports
		t.mu.Unlock()

		logrus.WithFields(logrus.Fields{
			"function": "Table.ReceiverReport",
			"sources":  len(streams),
			"start":    start,
		}).Debug("Too many sources for one Receiver Report, rotating")
		streams = append(streams[start:], streams[:start]...)[:maxReports]
	}

	rr := rtcp.NewReceiverReportPacket()
	rr.SetSsrc(senderSsrc)
	for _, s := range streams {
		rr.AddReport(s.Report(now))
	}
	return rr
}
