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

// Package wire holds the byte-range helpers and error kinds shared by the
// rtp and rtcp packages.
package wire

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Error kinds. Every failure returned by the codec wraps exactly one of them.
var (
	// ErrMalformedPacket reports input that does not hold a structurally valid packet.
	ErrMalformedPacket = errors.New("malformed packet")

	// ErrInvalidUsage reports a caller request that violates an encoding constraint.
	ErrInvalidUsage = errors.New("invalid usage")
)

// Malformedf returns ErrMalformedPacket annotated with the formatted message.
func Malformedf(function, format string, args ...interface{}) error {
	err := errors.Wrapf(ErrMalformedPacket, format, args...)
	logrus.WithFields(logrus.Fields{
		"function": function,
		"error":    err.Error(),
	}).Debug("Rejected malformed packet")
	return err
}

// InvalidUsagef returns ErrInvalidUsage annotated with the formatted message.
func InvalidUsagef(function, format string, args ...interface{}) error {
	err := errors.Wrapf(ErrInvalidUsage, format, args...)
	logrus.WithFields(logrus.Fields{
		"function": function,
		"error":    err.Error(),
	}).Debug("Rejected invalid usage")
	return err
}

// PadTo4Bytes rounds size up to the next multiple of 4.
func PadTo4Bytes(size int) int {
	return (size + 3) &^ 3
}

// Clone returns a copy of b that shares no storage with it. A nil slice
// stays nil.
func Clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
