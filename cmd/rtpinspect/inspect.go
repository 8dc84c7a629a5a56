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

package main

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/wernerd/rtpwire/payload"
	"github.com/wernerd/rtpwire/reception"
	"github.com/wernerd/rtpwire/rtcp"
	"github.com/wernerd/rtpwire/rtp"
)

// Block type of the pcapng section header block.
const pcapngMagic = 0x0a0d0d0a

// captureReader is satisfied by the pcap and the pcapng readers.
type captureReader interface {
	gopacket.PacketDataSource
	LinkType() layers.LinkType
}

// Stats counts the inspected datagrams by classification.
type Stats struct {
	Datagrams     int `json:"datagrams"`
	Rtp           int `json:"rtp"`
	Rtcp          int `json:"rtcp"`
	Other         int `json:"other"`
	Malformed     int `json:"malformed"`
	RoundTripBad  int `json:"roundTripMismatches"`
	TelephoneEvts int `json:"telephoneEvents"`
}

// record is the JSON form of one inspected datagram.
type record struct {
	Number    int           `json:"number"`
	Time      time.Time     `json:"time"`
	SrcPort   uint16        `json:"srcPort"`
	DstPort   uint16        `json:"dstPort"`
	Kind      string        `json:"kind"`
	Rtp       *rtp.Dump     `json:"rtp,omitempty"`
	Rtcp      []interface{} `json:"rtcp,omitempty"`
	DTMF      string        `json:"dtmf,omitempty"`
	RoundTrip *bool         `json:"roundTrip,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// summary is the JSON form of the counters and the Receiver Report built
// from the reception statistics.
type summary struct {
	Summary   Stats                    `json:"summary"`
	Reception *rtcp.ReceiverReportDump `json:"reception,omitempty"`
}

type inspector struct {
	cfg      Config
	out      io.Writer
	enc      *json.Encoder
	stats    Stats
	table    *reception.Table
	lastTime time.Time
}

func newInspector(cfg Config, out io.Writer) *inspector {
	return &inspector{
		cfg:   cfg,
		out:   out,
		enc:   json.NewEncoder(out),
		table: reception.NewTable(),
	}
}

// inspectFile inspects the pcap or pcapng capture at path.
func (in *inspector) inspectFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open capture %v", path)
	}
	defer f.Close()

	if err := in.inspectCapture(f); err != nil {
		return errors.Wrapf(err, "inspect capture %v", path)
	}
	return nil
}

// openCapture picks the pcapng or the pcap reader by the file magic.
func openCapture(r io.Reader) (captureReader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, errors.Wrapf(err, "read capture magic")
	}
	if binary.BigEndian.Uint32(magic) == pcapngMagic {
		ng, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, errors.Wrapf(err, "new pcapng reader")
		}
		return ng, nil
	}
	pr, err := pcapgo.NewReader(br)
	if err != nil {
		return nil, errors.Wrapf(err, "new pcap reader")
	}
	return pr, nil
}

// inspectCapture walks every UDP datagram of the capture read from r.
func (in *inspector) inspectCapture(r io.Reader) error {
	reader, err := openCapture(r)
	if err != nil {
		return err
	}

	var packetNumber int
	source := gopacket.NewPacketSource(reader, reader.LinkType())
	for packet := range source.Packets() {
		packetNumber++

		udp, ok := packet.Layer(layers.LayerTypeUDP).(*layers.UDP)
		if !ok || len(udp.Payload) == 0 {
			continue
		}
		if !in.cfg.acceptsPort(uint16(udp.SrcPort), uint16(udp.DstPort)) {
			continue
		}
		rec := record{
			Number:  packetNumber,
			Time:    packet.Metadata().Timestamp,
			SrcPort: uint16(udp.SrcPort),
			DstPort: uint16(udp.DstPort),
		}
		if err := in.inspectDatagram(&rec, udp.Payload); err != nil {
			return err
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":  "inspectCapture",
		"packets":   packetNumber,
		"datagrams": in.stats.Datagrams,
	}).Debug("Capture done")
	return nil
}

// inspectDatagram classifies one UDP payload, parses it and writes the
// result. Only output failures are returned; malformed packets are counted.
func (in *inspector) inspectDatagram(rec *record, datagram []byte) error {
	in.stats.Datagrams++
	in.lastTime = rec.Time

	var err error
	switch {
	case rtp.IsRtp(datagram):
		rec.Kind = "rtp"
		in.stats.Rtp++
		err = in.inspectRtp(rec, datagram)
	case rtcp.IsRtcp(datagram):
		rec.Kind = "rtcp"
		in.stats.Rtcp++
		err = in.inspectRtcp(rec, datagram)
	default:
		rec.Kind = "other"
		in.stats.Other++
	}
	if err != nil {
		in.stats.Malformed++
		rec.Error = err.Error()
		logrus.WithFields(logrus.Fields{
			"function": "inspectDatagram",
			"number":   rec.Number,
			"kind":     rec.Kind,
			"error":    err,
		}).Warn("Malformed packet")
	}
	if in.cfg.Format == formatJSON {
		return errors.Wrapf(in.enc.Encode(rec), "write record %d", rec.Number)
	}
	return in.printRecord(rec)
}

func (in *inspector) inspectRtp(rec *record, datagram []byte) error {
	p, err := rtp.ParsePacket(datagram)
	if err != nil {
		return err
	}
	dump := p.Dump()
	rec.Rtp = &dump
	in.table.Record(p, rec.Time)

	if in.cfg.TelephoneEventPT != 0 && p.PayloadType() == in.cfg.TelephoneEventPT {
		ev, err := payload.ParseTelephoneEvent(p.Payload())
		if err != nil {
			return err
		}
		rec.DTMF = ev.String()
		in.stats.TelephoneEvts++
	}

	if in.cfg.VerifyRoundTrip {
		ok, err := verifyRtp(p)
		if err != nil {
			return err
		}
		in.roundTrip(rec, ok)
	}

	if in.cfg.Format == formatText {
		p.Fprint(in.out, fmt.Sprintf("#%d %d=>%d", rec.Number, rec.SrcPort, rec.DstPort))
	}
	return nil
}

func (in *inspector) inspectRtcp(rec *record, datagram []byte) error {
	packets, err := rtcp.ParseCompound(datagram)
	if err != nil {
		return err
	}

	label := fmt.Sprintf("#%d %d=>%d", rec.Number, rec.SrcPort, rec.DstPort)
	for _, packet := range packets {
		switch p := packet.(type) {
		case *rtcp.ReceiverReportPacket:
			rec.Rtcp = append(rec.Rtcp, p.Dump())
			if in.cfg.Format == formatText {
				p.Fprint(in.out, label)
			}
		case *rtcp.RawPacket:
			rec.Rtcp = append(rec.Rtcp, p.Dump())
			if in.cfg.Format == formatText {
				p.Fprint(in.out, label)
			}
		}
	}

	if in.cfg.VerifyRoundTrip {
		ok, err := verifyRtcp(packets, datagram)
		if err != nil {
			return err
		}
		in.roundTrip(rec, ok)
	}
	return nil
}

func (in *inspector) roundTrip(rec *record, ok bool) {
	rec.RoundTrip = &ok
	if !ok {
		in.stats.RoundTripBad++
		logrus.WithFields(logrus.Fields{
			"function": "roundTrip",
			"number":   rec.Number,
			"kind":     rec.Kind,
		}).Warn("Round trip mismatch")
	}
}

// verifyRtp serializes a clone of p into the canonical layout, parses the
// result and reports whether it describes the same packet.
func verifyRtp(p *rtp.Packet) (bool, error) {
	clone, err := p.Clone()
	if err != nil {
		return false, err
	}
	if err := clone.Serialize(); err != nil {
		return false, err
	}
	buf, err := clone.Buffer()
	if err != nil {
		return false, err
	}
	reparsed, err := rtp.ParsePacket(buf)
	if err != nil {
		return false, err
	}
	if id, ok := p.HeaderExtensionID(); ok && len(p.ExtensionIDs()) == 0 {
		logrus.WithFields(logrus.Fields{
			"function": "verifyRtp",
			"profile":  fmt.Sprintf("0x%04x", id),
		}).Debug("Header extension block without known elements not serialized")
	}
	return samePacket(p, reparsed), nil
}

// samePacket compares the header fields, extension elements, payload and
// padding of a and b. The extension profile is left out, serialization picks
// it from the elements present.
func samePacket(a, b *rtp.Packet) bool {
	if a.Version() != b.Version() ||
		a.PayloadType() != b.PayloadType() ||
		a.Marker() != b.Marker() ||
		a.SequenceNumber() != b.SequenceNumber() ||
		a.Timestamp() != b.Timestamp() ||
		a.Ssrc() != b.Ssrc() ||
		a.Padding() != b.Padding() {
		return false
	}
	if !slices.Equal(a.Csrc(), b.Csrc()) {
		return false
	}
	ids := a.ExtensionIDs()
	if !slices.Equal(ids, b.ExtensionIDs()) {
		return false
	}
	for _, id := range ids {
		av, _ := a.Extension(id)
		bv, _ := b.Extension(id)
		if !bytes.Equal(av, bv) {
			return false
		}
	}
	return bytes.Equal(a.Payload(), b.Payload())
}

// verifyRtcp serializes every packet again and reports whether the compound
// packet comes out byte for byte identical.
func verifyRtcp(packets []rtcp.Packet, datagram []byte) (bool, error) {
	for _, packet := range packets {
		if err := packet.Serialize(); err != nil {
			return false, err
		}
	}
	out, err := rtcp.SerializeCompound(packets...)
	if err != nil {
		return false, err
	}
	return bytes.Equal(out, datagram), nil
}

func (in *inspector) printRecord(rec *record) error {
	var err error
	switch {
	case rec.Error != "":
		_, err = fmt.Fprintf(in.out, "#%d %d=>%d %s malformed: %s\n",
			rec.Number, rec.SrcPort, rec.DstPort, rec.Kind, rec.Error)
	case rec.Kind == "other":
		_, err = fmt.Fprintf(in.out, "#%d %d=>%d not RTP/RTCP\n", rec.Number, rec.SrcPort, rec.DstPort)
	}
	if err == nil && rec.DTMF != "" {
		_, err = fmt.Fprintf(in.out, "  %s\n", rec.DTMF)
	}
	if err == nil && rec.RoundTrip != nil {
		_, err = fmt.Fprintf(in.out, "  round trip: %v\n", *rec.RoundTrip)
	}
	return errors.Wrapf(err, "write record %d", rec.Number)
}

// printSummary writes the counters after the last record, followed by a
// Receiver Report for all RTP sources seen.
func (in *inspector) printSummary() error {
	var rr *rtcp.ReceiverReportPacket
	if len(in.table.Streams()) > 0 {
		rr = in.table.ReceiverReport(in.cfg.ReportSsrc, in.lastTime)
		if err := rr.Serialize(); err != nil {
			return errors.Wrapf(err, "build receiver report")
		}
	}

	if in.cfg.Format == formatJSON {
		s := summary{Summary: in.stats}
		if rr != nil {
			dump := rr.Dump()
			s.Reception = &dump
		}
		return errors.Wrapf(in.enc.Encode(s), "write summary")
	}
	if rr != nil {
		rr.Fprint(in.out, "end of capture")
	}
	_, err := fmt.Fprintf(in.out,
		"datagrams: %d rtp: %d rtcp: %d other: %d malformed: %d round trip mismatches: %d telephone events: %d\n",
		in.stats.Datagrams, in.stats.Rtp, in.stats.Rtcp, in.stats.Other, in.stats.Malformed,
		in.stats.RoundTripBad, in.stats.TelephoneEvts)
	return errors.Wrapf(err, "write summary")
}
