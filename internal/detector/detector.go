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

// Package detector briefly opens a serial port, runs the ESP32 ROM
// handshake, and identifies the chip variant and MAC address on the
// other end. Detection is advisory: a failure never makes the port
// unusable for anything else.
package detector

import (
	"bytes"
	"fmt"
	"time"

	"github.com/cesanta/go-serial/serial"
	"github.com/golang/glog"
	"github.com/juju/errors"
	"github.com/mongoose-os/espbrewd/internal/chiptypes"
	"github.com/mongoose-os/espbrewd/internal/espproto"
)

// ChipIdentity is what detection produces for a port.
type ChipIdentity struct {
	Variant  chiptypes.Variant
	MAC      [6]byte
	Features []string
}

func (ci ChipIdentity) MACString() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", ci.MAC[0], ci.MAC[1], ci.MAC[2], ci.MAC[3], ci.MAC[4], ci.MAC[5])
}

// ErrorKind classifies a detection failure.
type ErrorKind int

const (
	ErrNoSync ErrorKind = iota
	ErrUnknownChip
	ErrIO
)

// DetectError is the typed failure Detect returns; Magic is set only for
// ErrUnknownChip.
type DetectError struct {
	Kind  ErrorKind
	Magic uint32
	Err   error
}

func (e *DetectError) Error() string {
	switch e.Kind {
	case ErrNoSync:
		return "chip detect: no SYNC response"
	case ErrUnknownChip:
		return fmt.Sprintf("chip detect: unknown chip magic 0x%08x", e.Magic)
	default:
		return errors.Annotate(e.Err, "chip detect: io error").Error()
	}
}

const (
	detectBaud      = 115200
	syncRetries     = 7
	syncRetryDelay  = 100 * time.Millisecond
	syncReadTimeout = 100 * time.Millisecond
)

// Detect opens path briefly, pulses reset into download mode, runs SYNC,
// reads the chip magic register and (when the offset is confirmed for
// the resulting variant) the MAC eFuse words, then closes the port.
func Detect(path string) (*ChipIdentity, error) {
	oo := serial.OpenOptions{
		PortName:        path,
		BaudRate:        detectBaud,
		DataBits:        8,
		ParityMode:      serial.PARITY_NONE,
		StopBits:        1,
		MinimumReadSize: 0,
	}
	port, err := serial.Open(oo)
	if err != nil {
		return nil, &DetectError{Kind: ErrIO, Err: err}
	}
	defer port.Close()

	if err := resetToDownloadMode(port); err != nil {
		return nil, &DetectError{Kind: ErrIO, Err: err}
	}

	if err := syncHandshake(port); err != nil {
		return nil, err
	}

	magic, err := readReg(port, chiptypes.ChipMagicRegAddr)
	if err != nil {
		return nil, &DetectError{Kind: ErrIO, Err: err}
	}
	variant, ok := chiptypes.MagicToVariant(magic)
	if !ok {
		return nil, &DetectError{Kind: ErrUnknownChip, Magic: magic}
	}

	ci := &ChipIdentity{Variant: variant}
	if lo, hi, ok := chiptypes.MACFuseAddrs(variant); ok {
		macHi, err := readReg(port, hi)
		if err != nil {
			return nil, &DetectError{Kind: ErrIO, Err: err}
		}
		macLo, err := readReg(port, lo)
		if err != nil {
			return nil, &DetectError{Kind: ErrIO, Err: err}
		}
		ci.MAC = composeMAC(macHi, macLo)
		ci.Features = append(ci.Features, "mac")
	} else {
		glog.V(1).Infof("detector: no confirmed MAC eFuse offset for %s, skipping MAC read", variant)
	}

	return ci, nil
}

// resetToDownloadMode pulses DTR/RTS per the standard ROM-loader entry
// sequence: DTR=0,RTS=1 briefly asserts EN low then releases it while
// holding GPIO0 low, landing the chip in the UART download bootloader.
func resetToDownloadMode(port serial.Serial) error {
	if err := port.SetDTR(false); err != nil {
		return err
	}
	if err := port.SetRTS(true); err != nil {
		return err
	}
	time.Sleep(100 * time.Millisecond)
	if err := port.SetDTR(true); err != nil {
		return err
	}
	if err := port.SetRTS(false); err != nil {
		return err
	}
	time.Sleep(50 * time.Millisecond)
	return nil
}

func syncHandshake(port serial.Serial) error {
	cmd := espproto.EncodeCommand(espproto.OpSync, espproto.SyncPayload(), 0)
	for i := 0; i < syncRetries; i++ {
		if _, err := port.Write(cmd); err != nil {
			return &DetectError{Kind: ErrIO, Err: err}
		}
		if resp, err := readFrame(port, syncReadTimeout); err == nil {
			if decoded, err := espproto.SlipDecode(resp); err == nil {
				if r, err := espproto.DecodeResponse(decoded); err == nil && r.Op == espproto.OpSync && r.Ok() {
					return nil
				}
			}
		}
		time.Sleep(syncRetryDelay)
	}
	return &DetectError{Kind: ErrNoSync}
}

func readReg(port serial.Serial, addr uint32) (uint32, error) {
	data := make([]byte, 4)
	data[0] = byte(addr)
	data[1] = byte(addr >> 8)
	data[2] = byte(addr >> 16)
	data[3] = byte(addr >> 24)
	cmd := espproto.EncodeCommand(espproto.OpReadReg, data, espproto.Checksum(data))
	if _, err := port.Write(cmd); err != nil {
		return 0, err
	}
	resp, err := readFrame(port, syncReadTimeout)
	if err != nil {
		return 0, err
	}
	decoded, err := espproto.SlipDecode(resp)
	if err != nil {
		return 0, err
	}
	r, err := espproto.DecodeResponse(decoded)
	if err != nil {
		return 0, err
	}
	if !r.Ok() || len(r.Body) < 4 {
		return 0, errors.Errorf("READ_REG(0x%x): bad response", addr)
	}
	return uint32(r.Body[0]) | uint32(r.Body[1])<<8 | uint32(r.Body[2])<<16 | uint32(r.Body[3])<<24, nil
}

// readFrame reads one SLIP-delimited frame (leading and trailing 0xc0)
// byte-by-byte, bounded by an overall deadline rather than a per-byte
// one, since go-serial exposes inter-character timeout, not read
// deadlines.
func readFrame(port serial.Serial, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	var buf bytes.Buffer
	started := false
	one := make([]byte, 1)
	for time.Now().Before(deadline) {
		n, err := port.Read(one)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			continue
		}
		b := one[0]
		if b == espproto.SlipEnd {
			if !started {
				started = true
				buf.WriteByte(b)
				continue
			}
			buf.WriteByte(b)
			if buf.Len() > 1 {
				return buf.Bytes(), nil
			}
			continue
		}
		if started {
			buf.WriteByte(b)
		}
	}
	return nil, errors.Errorf("timed out waiting for SLIP frame")
}

func composeMAC(hi, lo uint32) [6]byte {
	var mac [6]byte
	mac[0] = byte(hi >> 8)
	mac[1] = byte(hi)
	mac[2] = byte(lo >> 24)
	mac[3] = byte(lo >> 16)
	mac[4] = byte(lo >> 8)
	mac[5] = byte(lo)
	return mac
}
