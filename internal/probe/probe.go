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

// Package probe enumerates serial ports on the host and filters them down
// to the ones plausibly hosting an ESP32: a known USB-to-serial bridge
// VID, or (when VID/PID isn't available) a platform-specific device path.
package probe

import (
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/golang/glog"
	"go.bug.st/serial/enumerator"
)

// allowedVIDs is the set of USB vendor IDs known to front an ESP32: the
// Espressif native USB controller plus the common third-party UART
// bridges (CP210x, FTDI, CH340) boards are wired through.
var allowedVIDs = map[string]bool{
	"303A": true, // Espressif native USB
	"10C4": true, // Silicon Labs CP210x
	"0403": true, // FTDI
	"1A86": true, // QinHeng CH340
	"1001": true,
}

// PortDescriptor is one candidate ESP32 serial port found by Probe.
type PortDescriptor struct {
	Path         string
	VendorID     string
	ProductID    string
	Manufacturer string
	SerialNumber string
	IsUSB        bool
}

// IsLikelyESP32 reports whether this port is worth a Chip Detector pass:
// either its VID is on the allow-list, or it matched the platform glob
// fallback (IsUSB false but still returned by Probe). Ports that match
// neither never reach this far since Probe already filtered them out, so
// this is mostly a hook for the Scanner Loop to log why it's trying a
// port at all.
func (p PortDescriptor) IsLikelyESP32() bool {
	if p.IsUSB {
		return allowedVIDs[strings.ToUpper(p.VendorID)]
	}
	return true
}

// Probe enumerates serial ports, returning only those that pass the
// VID/PID allow-list or the platform glob fallback. Enumeration failure
// is logged and yields an empty list rather than an error, so a caller
// (the Scanner Loop) never has to treat a bad OS day as fatal.
func Probe() []PortDescriptor {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		glog.Warningf("probe: port enumeration failed: %v", err)
		return nil
	}

	var out []PortDescriptor
	seen := map[string]bool{}
	for _, d := range details {
		seen[d.Name] = true
		if !d.IsUSB {
			if !matchesPlatformGlob(d.Name) {
				continue
			}
			out = append(out, PortDescriptor{Path: d.Name})
			continue
		}
		if !allowedVIDs[strings.ToUpper(d.VID)] {
			continue
		}
		out = append(out, PortDescriptor{
			Path:         d.Name,
			VendorID:     d.VID,
			ProductID:    d.PID,
			SerialNumber: d.SerialNumber,
			Manufacturer: d.Product,
			IsUSB:        true,
		})
	}

	// enumerator can miss plain tty/cu nodes on some platforms (notably
	// when the underlying udev/IOKit query for USB properties fails but
	// the device node itself is present); fold in the glob fallback for
	// anything it didn't already report.
	for _, p := range globFallback() {
		if !seen[p.Path] {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func globFallback() []PortDescriptor {
	var patterns []string
	switch runtime.GOOS {
	case "darwin":
		patterns = []string{"/dev/cu.usbmodem*", "/dev/cu.usbserial*", "/dev/tty.usbmodem*", "/dev/tty.usbserial*"}
	case "linux":
		patterns = []string{"/dev/ttyUSB*", "/dev/ttyACM*"}
	default:
		return nil
	}
	var out []PortDescriptor
	for _, pat := range patterns {
		matches, err := filepath.Glob(pat)
		if err != nil {
			glog.Warningf("probe: glob %q failed: %v", pat, err)
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			out = append(out, PortDescriptor{Path: m})
		}
	}
	return out
}

func matchesPlatformGlob(path string) bool {
	switch runtime.GOOS {
	case "darwin":
		return globMatch(path, "/dev/cu.usbmodem*") || globMatch(path, "/dev/cu.usbserial*") ||
			globMatch(path, "/dev/tty.usbmodem*") || globMatch(path, "/dev/tty.usbserial*")
	case "linux":
		return globMatch(path, "/dev/ttyUSB*") || globMatch(path, "/dev/ttyACM*")
	default:
		// Windows: all COM ports are candidates; VID/PID filtering (done
		// above, for USB devices) is the only gate.
		return true
	}
}

func globMatch(path, pattern string) bool {
	ok, err := filepath.Match(pattern, path)
	return err == nil && ok
}
