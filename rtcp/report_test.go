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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reportBlock = []byte{
	0xbc, 0x5e, 0x9a, 0x40, // SSRC
	0x19,             // fraction lost
	0x80, 0x00, 0x05, // cumulative lost: -5
	0x00, 0x01, 0x46, 0xe1, // highest sequence number
	0x00, 0x00, 0x01, 0x11, // jitter
	0x09, 0xf3, 0x64, 0x32, // LSR
	0x00, 0x02, 0x4a, 0x79, // DLSR
}

func TestParseReceiverReport(t *testing.T) {
	r, err := ParseReceiverReport(reportBlock)
	require.NoError(t, err)

	assert.Equal(t, uint32(0xbc5e9a40), r.Ssrc())
	assert.Equal(t, uint8(0x19), r.FractionLost())
	assert.Equal(t, int32(-5), r.CumulativeLost())
	assert.Equal(t, uint32(0x146e1), r.HighestSeqNumber())
	assert.Equal(t, uint32(0x111), r.Jitter())
	assert.Equal(t, uint32(0x09f36432), r.LastSRTimestamp())
	assert.Equal(t, uint32(0x24a79), r.DelaySinceLastSR())
	assert.Len(t, r.Buffer(), reportLength)
}

func TestParseReceiverReportShort(t *testing.T) {
	_, err := ParseReceiverReport(reportBlock[:23])
	assert.True(t, errors.Is(err, ErrMalformedPacket))
}

func TestReceiverReportSetters(t *testing.T) {
	r := NewReceiverReport()
	r.SetSsrc(0xbc5e9a40)
	r.SetFractionLost(0x19)
	r.SetCumulativeLost(-5)
	r.SetHighestSeqNumber(0x146e1)
	r.SetJitter(0x111)
	r.SetLastSRTimestamp(0x09f36432)
	r.SetDelaySinceLastSR(0x24a79)

	assert.Equal(t, reportBlock, r.Buffer())
}

func TestCumulativeLost(t *testing.T) {
	tests := []struct {
		name string
		set  int32
		want int32
		wire []byte
	}{
		{"zero", 0, 0, []byte{0x00, 0x00, 0x00}},
		{"positive", 1234, 1234, []byte{0x00, 0x04, 0xd2}},
		{"minus one", -1, -1, []byte{0x80, 0x00, 0x01}},
		{"maximum", MaxCumulativeLost, MaxCumulativeLost, []byte{0x7f, 0xff, 0xff}},
		{"minimum", MinCumulativeLost, MinCumulativeLost, []byte{0x80, 0x00, 0x00}},
		{"largest negative magnitude", -0x7fffff, -0x7fffff, []byte{0xff, 0xff, 0xff}},
		{"clamped high", 0x1000000, MaxCumulativeLost, []byte{0x7f, 0xff, 0xff}},
		{"clamped low", -0x1000000, MinCumulativeLost, []byte{0x80, 0x00, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReceiverReport()
			r.SetFractionLost(0xff)
			r.SetHighestSeqNumber(0xffffffff)
			r.SetCumulativeLost(tt.set)

			assert.Equal(t, tt.want, r.CumulativeLost())
			assert.Equal(t, tt.wire, r.Buffer()[cumulativeLostOffset:cumulativeLostOffset+3])
			// Neighbouring fields are untouched.
			assert.Equal(t, uint8(0xff), r.FractionLost())
			assert.Equal(t, uint32(0xffffffff), r.HighestSeqNumber())
		})
	}
}

func TestReportDump(t *testing.T) {
	r, err := ParseReceiverReport(reportBlock)
	require.NoError(t, err)

	assert.Equal(t, ReportDump{
		Ssrc:             0xbc5e9a40,
		FractionLost:     0x19,
		CumulativeLost:   -5,
		HighestSeqNumber: 0x146e1,
		Jitter:           0x111,
		LastSRTimestamp:  0x09f36432,
		DelaySinceLastSR: 0x24a79,
	}, r.Dump())
}
