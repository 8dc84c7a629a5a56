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

// Command rtpinspect reads a pcap or pcapng capture and prints every RTP and
// RTCP packet found in its UDP datagrams.
//
//	rtpinspect -f call.pcapng [-c rtpinspect.toml] [-v]
package main

import (
	"flag"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := doMain(); err != nil {
		logrus.WithError(err).Fatal("rtpinspect failed")
	}
}

func doMain() error {
	var help, verbose bool
	var filename, configPath string
	flag.BoolVar(&help, "h", false, "whether show this help")
	flag.BoolVar(&help, "help", false, "whether show this help")
	flag.BoolVar(&verbose, "v", false, "whether log at debug level")
	flag.StringVar(&filename, "f", "", "the capture filename, like ./call.pcapng")
	flag.StringVar(&configPath, "c", "", "the TOML config filename, like ./rtpinspect.toml")

	flag.Parse()

	if help {
		flag.Usage()
		os.Exit(0)
	}
	if filename == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := defaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = loadConfig(configPath); err != nil {
			return err
		}
	}
	if verbose {
		cfg.LogLevel = logrus.DebugLevel
	}
	configureLogging(cfg)

	if err := registerPayloadFormats(cfg.PayloadFormats); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function": "doMain",
		"capture":  filename,
		"format":   cfg.Format,
		"ports":    cfg.Ports,
		"verify":   cfg.VerifyRoundTrip,
	}).Info("Inspecting capture")

	in := newInspector(cfg, os.Stdout)
	if err := in.inspectFile(filename); err != nil {
		return err
	}
	return errors.Wrapf(in.printSummary(), "inspect %v", filename)
}

// configureLogging sets the logrus level and, for JSON output, the JSON
// formatter. Logs go to stderr so they never mix with the records.
func configureLogging(cfg Config) {
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(cfg.LogLevel)
	if cfg.Format == formatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
