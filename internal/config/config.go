//
// Copyright (c) 2014-2019 Cesanta Software Limited
// All rights reserved
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package config declares espbrewd's command-line flags, lets
// ESPBREW_-prefixed environment variables override any flag the caller
// didn't set explicitly (internal/pflagenv), and resolves the on-disk
// config directory default.
package config

import (
	goflag "flag"
	"os"
	"path/filepath"

	"github.com/juju/errors"
	"github.com/kardianos/osext"
	"github.com/mongoose-os/espbrewd/internal/pflagenv"
	flag "github.com/spf13/pflag"
)

const envPrefix = "ESPBREW_"

// Config holds the fully-resolved server configuration, per §6's
// environment table.
type Config struct {
	Bind           string
	ConfigDir      string
	ScanIntervalMs int
	FlashBaud      uint
	Log            string
	MQTTBrokerURL  string
	OpenBrowser    bool
}

var (
	bind           = flag.String("bind", "0.0.0.0:8080", "HTTP bind address")
	configDir      = flag.String("config-dir", "", "Directory holding espbrew-boards.yaml and board-type definitions; defaults next to the binary")
	scanIntervalMs = flag.Int("scan-interval-ms", 30000, "Device Probe tick interval, milliseconds")
	flashBaud      = flag.Uint("flash-baud", 460800, "Baud rate used for FLASH_DATA transfer after the SYNC handshake")
	logLevel       = flag.String("log", "info", "Log verbosity: error, warn, info, or debug")
	mqttBrokerURL  = flag.String("mqtt-broker", "", "Optional MQTT broker URL for retained board/<id>/status publication; empty disables it")
	openBrowser    = flag.Bool("open-browser", false, "Open the dashboard URL in the OS browser on startup")
)

// Parse parses os.Args. glog registers its own -v/-logtostderr flags on
// the standard library's flag package at import time, so those are
// folded into our pflag.CommandLine before parsing, matching mos/main.go
// and fwbuild_manager.go's "flag.Parse() before anything else" rule.
// ESPBREW_-prefixed environment variables then override anything left
// at its default, and ConfigDir is resolved to its final form.
func Parse() (*Config, error) {
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	flag.Parse()
	pflagenv.Parse(envPrefix)

	dir, err := resolveConfigDir(*configDir)
	if err != nil {
		return nil, errors.Annotate(err, "config: resolving config dir")
	}

	return &Config{
		Bind:           *bind,
		ConfigDir:      dir,
		ScanIntervalMs: *scanIntervalMs,
		FlashBaud:      *flashBaud,
		Log:            *logLevel,
		MQTTBrokerURL:  *mqttBrokerURL,
		OpenBrowser:    *openBrowser,
	}, nil
}

// resolveConfigDir returns explicit when non-empty; otherwise it resolves
// a "config" directory next to the running executable (not the process's
// cwd, which may be anything when started from a service manager),
// matching the ecosystem default-path idiom osext exists for.
func resolveConfigDir(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	exeDir, err := osext.ExecutableFolder()
	if err != nil {
		return "", errors.Trace(err)
	}
	return filepath.Join(exeDir, "config"), nil
}

// BoardTypesDir is the board-types directory under ConfigDir, created by
// EnsureConfigDir. Nothing reads definitions from it: board types are
// loaded from the board_types list in AssignmentsFile.
func (c *Config) BoardTypesDir() string {
	return filepath.Join(c.ConfigDir, "board-types")
}

// AssignmentsFile is the single YAML file the Board Registry persists
// live assignments to.
func (c *Config) AssignmentsFile() string {
	return filepath.Join(c.ConfigDir, "espbrew-boards.yaml")
}

// EnsureConfigDir creates ConfigDir (and BoardTypesDir) if missing.
func (c *Config) EnsureConfigDir() error {
	if err := os.MkdirAll(c.BoardTypesDir(), 0775); err != nil {
		return errors.Trace(err)
	}
	return nil
}
