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

// Package stubs implements internal/flasher's StubProvider from the
// RAM-resident flasher stub images embedded at build time (one per chip
// variant the pack's bindata carries: esp32, esp32c3, esp32s3). Variants
// without an embedded stub cannot be flashed: Stub returns an error for
// them and internal/flasher fails the job with FailureNoStubImage.
package stubs

import (
	"encoding/hex"
	"sync"

	"github.com/juju/errors"
	"github.com/mongoose-os/espbrewd/internal/chiptypes"
	"github.com/mongoose-os/espbrewd/internal/flasher"
)

// Embedded is a flasher.StubProvider backed by the hex-decoded stub blobs
// in this package. Decoding happens once, lazily, and is cached.
type Embedded struct {
	mu    sync.Mutex
	cache map[chiptypes.Variant]*flasher.StubImage
}

// New returns a ready Embedded provider.
func New() *Embedded {
	return &Embedded{cache: make(map[chiptypes.Variant]*flasher.StubImage)}
}

type rawStub struct {
	codeHex, dataHex       string
	codeStart, dataStart   uint32
	entry                  uint32
}

var rawStubs = map[chiptypes.Variant]rawStub{
	chiptypes.ESP32:   {ESP32CodeHex, ESP32DataHex, ESP32CodeStart, ESP32DataStart, ESP32Entry},
	chiptypes.ESP32C3: {ESP32C3CodeHex, ESP32C3DataHex, ESP32C3CodeStart, ESP32C3DataStart, ESP32C3Entry},
	chiptypes.ESP32S3: {ESP32S3CodeHex, ESP32S3DataHex, ESP32S3CodeStart, ESP32S3DataStart, ESP32S3Entry},
}

// Stub implements flasher.StubProvider. Variants absent from rawStubs
// (esp32s2, c2, c5, c6, h2, p4 — no stub shipped in the retrieval pack)
// return an error, which internal/flasher records as FailureNoStubImage;
// the flash then fails, with no fallback to the ROM loader.
func (e *Embedded) Stub(v chiptypes.Variant) (*flasher.StubImage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s, ok := e.cache[v]; ok {
		return s, nil
	}

	raw, ok := rawStubs[v]
	if !ok {
		return nil, errors.Errorf("stubs: no embedded flasher stub for variant %q", v)
	}

	code, err := hex.DecodeString(raw.codeHex)
	if err != nil {
		return nil, errors.Annotatef(err, "stubs: decoding %s code segment", v)
	}
	data, err := hex.DecodeString(raw.dataHex)
	if err != nil {
		return nil, errors.Annotatef(err, "stubs: decoding %s data segment", v)
	}

	img := &flasher.StubImage{
		Code:      code,
		CodeStart: raw.codeStart,
		Data:      data,
		DataStart: raw.dataStart,
		Entry:     raw.entry,
	}
	e.cache[v] = img
	return img, nil
}
