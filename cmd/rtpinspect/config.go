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
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/wernerd/rtpwire/rtp"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
)

// Config holds the inspector settings.
type Config struct {
	LogLevel         logrus.Level
	Format           string
	Ports            []uint16
	VerifyRoundTrip  bool
	TelephoneEventPT uint8
	ReportSsrc       uint32
	PayloadFormats   []rtp.PayloadFormat
}

// rtpinspect config.toml key mapping to Config.
type fileConfig struct {
	LogLevel         string              `toml:"log_level"`
	Format           string              `toml:"format"`
	Ports            []int               `toml:"ports"`
	VerifyRoundTrip  bool                `toml:"verify_roundtrip"`
	TelephoneEventPT int                 `toml:"telephone_event_pt"`
	ReportSsrc       int64               `toml:"report_ssrc"`
	PayloadFormats   []filePayloadFormat `toml:"payload_format"`
}

type filePayloadFormat struct {
	PT        int    `toml:"pt"`
	Name      string `toml:"name"`
	Media     string `toml:"media"`
	ClockRate int    `toml:"clock_rate"`
	Channels  int    `toml:"channels"`
}

func defaultConfig() Config {
	return Config{
		LogLevel: logrus.InfoLevel,
		Format:   formatText,
	}
}

// loadConfig reads the TOML file at path and overlays the keys it defines
// onto the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, errors.Wrapf(err, "load config %v", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Errorf("load config %v: unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("log_level") {
		level, err := logrus.ParseLevel(strings.TrimSpace(raw.LogLevel))
		if err != nil {
			return Config{}, errors.Wrapf(err, "load config %v", path)
		}
		cfg.LogLevel = level
	}
	if meta.IsDefined("format") {
		cfg.Format = strings.ToLower(strings.TrimSpace(raw.Format))
		if cfg.Format != formatText && cfg.Format != formatJSON {
			return Config{}, errors.Errorf("load config %v: unsupported format %q (expected text or json)",
				path, raw.Format)
		}
	}
	if meta.IsDefined("ports") {
		for _, port := range raw.Ports {
			if port < 1 || port > 0xffff {
				return Config{}, errors.Errorf("load config %v: port %d out of range", path, port)
			}
			cfg.Ports = append(cfg.Ports, uint16(port))
		}
	}
	if meta.IsDefined("verify_roundtrip") {
		cfg.VerifyRoundTrip = raw.VerifyRoundTrip
	}
	if meta.IsDefined("telephone_event_pt") {
		if raw.TelephoneEventPT < 0 || raw.TelephoneEventPT > 127 {
			return Config{}, errors.Errorf("load config %v: telephone_event_pt %d out of range",
				path, raw.TelephoneEventPT)
		}
		cfg.TelephoneEventPT = uint8(raw.TelephoneEventPT)
	}
	if meta.IsDefined("report_ssrc") {
		if raw.ReportSsrc < 0 || raw.ReportSsrc > 0xffffffff {
			return Config{}, errors.Errorf("load config %v: report_ssrc %d out of range", path, raw.ReportSsrc)
		}
		cfg.ReportSsrc = uint32(raw.ReportSsrc)
	}
	for i, f := range raw.PayloadFormats {
		media, err := mediaType(f.Media)
		if err != nil {
			return Config{}, errors.Wrapf(err, "load config %v: payload_format %d", path, i)
		}
		cfg.PayloadFormats = append(cfg.PayloadFormats, rtp.PayloadFormat{
			TypeNumber: f.PT,
			MediaType:  media,
			ClockRate:  f.ClockRate,
			Channels:   f.Channels,
			Name:       strings.TrimSpace(f.Name),
		})
	}
	return cfg, nil
}

func mediaType(media string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(media)) {
	case "audio":
		return rtp.Audio, nil
	case "video":
		return rtp.Video, nil
	case "audio+video", "video+audio":
		return rtp.Audio | rtp.Video, nil
	}
	return 0, errors.Errorf("unsupported media %q (expected audio, video or audio+video)", media)
}

// registerPayloadFormats adds the configured dynamic formats to the rtp
// payload-format registry.
func registerPayloadFormats(formats []rtp.PayloadFormat) error {
	for _, f := range formats {
		if err := rtp.RegisterPayloadFormat(f); err != nil {
			return errors.Wrapf(err, "register payload format %v", f.Name)
		}
	}
	return nil
}

// acceptsPort reports whether a datagram between the two ports is
// inspected. An empty port list accepts every datagram.
func (c Config) acceptsPort(src, dst uint16) bool {
	if len(c.Ports) == 0 {
		return true
	}
	for _, port := range c.Ports {
		if port == src || port == dst {
			return true
		}
	}
	return false
}
