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
package assembler

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"testing"

	"github.com/mongoose-os/espbrewd/internal/chiptypes"
)

// buildMinimalELF32 hand-assembles the smallest ELF32 file debug/elf will
// parse: a header, one PT_LOAD program header, and its payload. No
// section headers are emitted (e_shnum=0), which elf.NewFile tolerates.
func buildMinimalELF32(machine elf.Machine, entry uint32, loadAddr uint32, payload []byte) []byte {
	const ehsize = 52
	const phentsize = 32

	buf := make([]byte, ehsize+phentsize+len(payload))

	copy(buf[0:4], []byte{0x7f, 'E', 'L', 'F'})
	buf[4] = 1 // ELFCLASS32
	buf[5] = 1 // ELFDATA2LSB
	buf[6] = 1 // EV_CURRENT

	le := binary.LittleEndian
	le.PutUint16(buf[16:18], uint16(elf.ET_EXEC))
	le.PutUint16(buf[18:20], uint16(machine))
	le.PutUint32(buf[20:24], 1) // e_version
	le.PutUint32(buf[24:28], entry)
	le.PutUint32(buf[28:32], ehsize) // e_phoff
	le.PutUint32(buf[32:36], 0)      // e_shoff
	le.PutUint32(buf[36:40], 0)      // e_flags
	le.PutUint16(buf[40:42], ehsize)
	le.PutUint16(buf[42:44], phentsize)
	le.PutUint16(buf[44:46], 1) // e_phnum
	le.PutUint16(buf[46:48], 0) // e_shentsize
	le.PutUint16(buf[48:50], 0) // e_shnum
	le.PutUint16(buf[50:52], 0) // e_shstrndx

	ph := buf[ehsize : ehsize+phentsize]
	le.PutUint32(ph[0:4], uint32(elf.PT_LOAD))
	le.PutUint32(ph[4:8], ehsize+phentsize) // p_offset
	le.PutUint32(ph[8:12], loadAddr)        // p_vaddr
	le.PutUint32(ph[12:16], loadAddr)       // p_paddr
	le.PutUint32(ph[16:20], uint32(len(payload)))
	le.PutUint32(ph[20:24], uint32(len(payload)))
	le.PutUint32(ph[24:28], 5) // p_flags: R+X
	le.PutUint32(ph[28:32], 4) // p_align

	copy(buf[ehsize+phentsize:], payload)
	return buf
}

func TestAssembleELFSingleSegment(t *testing.T) {
	payload := bytes.Repeat([]byte{0xab}, 64)
	raw := buildMinimalELF32(elf.EM_XTENSA, 0x40080400, 0x40080000, payload)

	plan, err := AssembleELF(bytes.NewReader(raw), Options{TargetVariant: chiptypes.ESP32}, nil, nil)
	if err != nil {
		t.Fatalf("AssembleELF: %v", err)
	}
	if len(plan.Regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(plan.Regions))
	}
	app := plan.Regions[0]
	if app.Role != RoleApp {
		t.Fatalf("expected RoleApp, got %v", app.Role)
	}
	if app.Offset != chiptypes.DefaultAppOffset {
		t.Fatalf("expected app at default offset 0x%x, got 0x%x", chiptypes.DefaultAppOffset, app.Offset)
	}
	if app.Data[0] != 0xe9 {
		t.Fatalf("expected image magic 0xe9, got 0x%x", app.Data[0])
	}
}

func TestAssembleELFWithBootloaderAndPartitionTable(t *testing.T) {
	payload := bytes.Repeat([]byte{0x11}, 32)
	raw := buildMinimalELF32(elf.EM_XTENSA, 0x40080400, 0x40080000, payload)

	bootloader := append([]byte{0xe9, 0x01, 0x00, 0x00}, bytes.Repeat([]byte{0}, 16)...)
	partTable := bytes.Repeat([]byte{0xff}, 0x1000)

	plan, err := AssembleELF(bytes.NewReader(raw), Options{TargetVariant: chiptypes.ESP32}, bootloader, partTable)
	if err != nil {
		t.Fatalf("AssembleELF: %v", err)
	}
	if len(plan.Regions) != 3 {
		t.Fatalf("expected 3 regions, got %d", len(plan.Regions))
	}
	if plan.Regions[0].Role != RoleBootloader || plan.Regions[0].Offset != chiptypes.BootloaderOffset(chiptypes.ESP32) {
		t.Fatalf("unexpected bootloader region: %+v", plan.Regions[0])
	}
	if plan.Regions[1].Role != RolePartitionTable || plan.Regions[1].Offset != chiptypes.DefaultPartitionTableOffset {
		t.Fatalf("unexpected partition table region: %+v", plan.Regions[1])
	}
	if plan.Regions[2].Role != RoleApp {
		t.Fatalf("unexpected app region: %+v", plan.Regions[2])
	}
}

func TestAssembleELFRejectsUnresolvedVariant(t *testing.T) {
	raw := buildMinimalELF32(elf.EM_XTENSA, 0x40080400, 0x40080000, []byte{1, 2, 3, 4})
	_, err := AssembleELF(bytes.NewReader(raw), Options{}, nil, nil)
	if err == nil {
		t.Fatal("expected error when TargetVariant is unset for an Xtensa ELF")
	}
	if ae, ok := err.(*AssembleError); !ok || ae.Kind != ErrUnknownTarget {
		t.Fatalf("expected *AssembleError{Kind: ErrUnknownTarget}, got %#v", err)
	}
}

// TestAssembleELFDerivesVariantFromPath exercises the target/{triple}/{profile}/{name}
// edge case: no TargetVariant is pinned, so the variant must come from
// SourcePath via chiptypes.TargetFromRustTriple.
func TestAssembleELFDerivesVariantFromPath(t *testing.T) {
	payload := bytes.Repeat([]byte{0x22}, 16)
	raw := buildMinimalELF32(elf.EM_RISCV, 0x42000000, 0x42000000, payload)

	plan, err := AssembleELF(bytes.NewReader(raw), Options{
		SourcePath:     "build/target/riscv32imc-esp-espidf/release/app",
		DefaultVariant: chiptypes.ESP32C3,
	}, nil, nil)
	if err != nil {
		t.Fatalf("AssembleELF: %v", err)
	}
	if plan.TargetVariant != chiptypes.ESP32C3 {
		t.Fatalf("expected variant derived from path to be esp32c3, got %v", plan.TargetVariant)
	}
}

// TestAssembleELFUnknownTargetFromPath checks that a target/{triple}/...
// path with an unresolvable triple and no default fails with
// AssembleError{Kind: ErrUnknownTarget} rather than a bare error.
func TestAssembleELFUnknownTargetFromPath(t *testing.T) {
	raw := buildMinimalELF32(elf.EM_RISCV, 0x42000000, 0x42000000, []byte{1, 2, 3, 4})

	_, err := AssembleELF(bytes.NewReader(raw), Options{
		SourcePath: "build/target/riscv32imc-esp-espidf/release/app",
	}, nil, nil)
	if err == nil {
		t.Fatal("expected error for ambiguous riscv32imc triple with no feature hint or default")
	}
	if ae, ok := err.(*AssembleError); !ok || ae.Kind != ErrUnknownTarget {
		t.Fatalf("expected *AssembleError{Kind: ErrUnknownTarget}, got %#v", err)
	}
}
