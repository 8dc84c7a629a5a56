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
	"sync"

	"github.com/wernerd/rtpwire/internal/wire"
)

// For full reference of registered RTP parameters and payload types refer to:
// http://www.iana.org/assignments/rtp-parameters
//
// Static payload types 0-34 are listed below, 35-71 and 77-95 are unassigned,
// 72-76 are reserved for RTCP conflict avoidance [RFC3551] and 96-127 are
// dynamic.

// Media types of a payload format. Formats carrying both set both bits.
const (
	Audio = 1
	Video = 2
)

// Dynamic payload type range [RFC3551].
const (
	DynamicPayloadTypeFirst = 96
	DynamicPayloadTypeLast  = 127
)

// PayloadFormat describes an RTP payload format.
type PayloadFormat struct {
	TypeNumber,
	MediaType,
	ClockRate,
	Channels int
	Name string
}

var (
	payloadFormatsMu sync.RWMutex
	payloadFormats   = map[uint8]*PayloadFormat{
		0:  {0, Audio, 8000, 1, "PCMU"},
		3:  {3, Audio, 8000, 1, "GSM"},
		4:  {4, Audio, 8000, 1, "G723"},
		5:  {5, Audio, 8000, 1, "DVI4"},
		6:  {6, Audio, 16000, 1, "DVI4"},
		7:  {7, Audio, 8000, 1, "LPC"},
		8:  {8, Audio, 8000, 1, "PCMA"},
		9:  {9, Audio, 8000, 1, "G722"},
		10: {10, Audio, 44100, 2, "L16"},
		11: {11, Audio, 44100, 1, "L16"},
		12: {12, Audio, 8000, 1, "QCELP"},
		13: {13, Audio, 8000, 1, "CN"},
		14: {14, Audio, 90000, 0, "MPA"},
		15: {15, Audio, 8000, 1, "G728"},
		16: {16, Audio, 11025, 1, "DVI4"},
		17: {17, Audio, 22050, 1, "DVI4"},
		18: {18, Audio, 8000, 1, "G729"},
		25: {25, Video, 90000, 0, "CelB"},
		26: {26, Video, 90000, 0, "JPEG"},
		28: {28, Video, 90000, 0, "nv"},
		31: {31, Video, 90000, 0, "H261"},
		32: {32, Video, 90000, 0, "MPV"},
		33: {33, Audio | Video, 90000, 0, "MP2T"},
		34: {34, Video, 90000, 0, "H263"},
	}
)

// LookupPayloadFormat returns the format registered for payload type pt.
func LookupPayloadFormat(pt uint8) (*PayloadFormat, bool) {
	payloadFormatsMu.RLock()
	defer payloadFormatsMu.RUnlock()
	f, ok := payloadFormats[pt]
	return f, ok
}

// RegisterPayloadFormat adds or replaces a dynamic payload format. Only the
// dynamic range 96..127 may be registered, the static formats are fixed.
func RegisterPayloadFormat(f PayloadFormat) error {
	if f.TypeNumber < DynamicPayloadTypeFirst || f.TypeNumber > DynamicPayloadTypeLast {
		return wire.InvalidUsagef("RegisterPayloadFormat",
			"payload type %d is outside the dynamic range %d..%d",
			f.TypeNumber, DynamicPayloadTypeFirst, DynamicPayloadTypeLast)
	}
	payloadFormatsMu.Lock()
	defer payloadFormatsMu.Unlock()
	payloadFormats[uint8(f.TypeNumber)] = &f
	return nil
}
