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
package espproto

import (
	"crypto/sha256"

	"github.com/juju/errors"
)

// ImageMagic is the first byte of every ESP32 application image.
const ImageMagic = 0xe9

// FlashMode identifies the SPI flash read mode encoded in the image header.
type FlashMode string

const (
	FlashModeQIO  FlashMode = "qio"
	FlashModeQOUT FlashMode = "qout"
	FlashModeDIO  FlashMode = "dio"
	FlashModeDOUT FlashMode = "dout"
)

var flashModeNibble = map[FlashMode]byte{
	FlashModeQIO:  0,
	FlashModeQOUT: 1,
	FlashModeDIO:  2,
	FlashModeDOUT: 3,
}

var flashFreqNibble = map[int]byte{
	40: 0,
	26: 1,
	20: 2,
	80: 0xf,
}

var flashSizeNibble = map[int]byte{
	1: 0x00,
	2: 0x10,
	4: 0x20,
	8: 0x30,
	16: 0x40,
	32: 0x50,
	64: 0x60,
}

// HeaderBytes23 computes the two bytes at offsets 2 and 3 of an ESP32
// image header: b2 is the flash_mode byte, b3 packs flash_size (high
// nibble) with flash_freq (low nibble).
func HeaderBytes23(mode FlashMode, freqMHz int, sizeMB int) (b2, b3 byte, err error) {
	b3, b2, err = packHeader(mode, freqMHz, sizeMB)
	return b2, b3, err
}

// ImageSegment is one PT_LOAD-derived (or otherwise explicit) segment of an
// application image: a load address and its raw bytes.
type ImageSegment struct {
	LoadAddr uint32
	Data     []byte
}

// BuildAppImage assembles segments into a flashable ESP32 application
// image: header (magic, segment count, mode/freq/size, entry point),
// segments (each prefixed by its 8-byte addr+size), padding to a 16-byte
// boundary, a trailing XOR checksum byte, then a SHA-256 digest of all
// the preceding bytes. Only the 8-byte common header is written: there is
// no 16-byte extended header, so the image carries no "SHA256 appended"
// flag and is not byte-for-byte the layout `esptool` produces.
func BuildAppImage(segments []ImageSegment, mode FlashMode, freqMHz, sizeMB int, entryPoint uint32) ([]byte, error) {
	b23, b1, err := packHeader(mode, freqMHz, sizeMB)
	if err != nil {
		return nil, errors.Trace(err)
	}

	buf := make([]byte, 0, 4096)
	buf = append(buf, ImageMagic, byte(len(segments)), b1, b23)
	buf = appendU32(buf, entryPoint)

	checksum := byte(0xef)
	for _, seg := range segments {
		buf = appendU32(buf, seg.LoadAddr)
		buf = appendU32(buf, uint32(len(seg.Data)))
		buf = append(buf, seg.Data...)
		for _, bb := range seg.Data {
			checksum ^= bb
		}
	}

	// Pad to a multiple of 16 bytes (leaving room for the checksum byte),
	// then append the checksum.
	for (len(buf)+1)%16 != 0 {
		buf = append(buf, 0)
	}
	buf = append(buf, checksum)

	digest := sha256.Sum256(buf)
	buf = append(buf, digest[:]...)

	return buf, nil
}

func packHeader(mode FlashMode, freqMHz, sizeMB int) (b23, b1 byte, err error) {
	m, ok := flashModeNibble[mode]
	if !ok {
		return 0, 0, errors.Errorf("unknown flash mode %q", mode)
	}
	f, ok := flashFreqNibble[freqMHz]
	if !ok {
		return 0, 0, errors.Errorf("unsupported flash frequency %dMHz", freqMHz)
	}
	s, ok := flashSizeNibble[sizeMB]
	if !ok {
		return 0, 0, errors.Errorf("unsupported flash size %dMB", sizeMB)
	}
	return s | f, m, nil
}

func appendU32(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// PatchHeaderBytes23 rewrites the flash_mode/flash_freq/flash_size nibbles
// of an already-built image in place and recomputes its trailing SHA-256,
// per the requirement that an ELF's embedded header values never override
// the requested flash plan's parameters.
func PatchHeaderBytes23(image []byte, mode FlashMode, freqMHz, sizeMB int) error {
	if len(image) < 4 || image[0] != ImageMagic {
		return errors.Errorf("not an ESP32 image (magic byte 0x%02x)", safeByte(image, 0))
	}
	b23, b1, err := packHeader(mode, freqMHz, sizeMB)
	if err != nil {
		return errors.Trace(err)
	}
	image[2] = b1
	image[3] = b23
	if len(image) >= 32 {
		// The last 32 bytes are the appended SHA-256; recompute over
		// everything preceding it.
		digest := sha256.Sum256(image[:len(image)-32])
		copy(image[len(image)-32:], digest[:])
	}
	return nil
}

func safeByte(b []byte, i int) byte {
	if i < len(b) {
		return b[i]
	}
	return 0
}
