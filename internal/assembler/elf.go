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
	"debug/elf"
	"fmt"
	"io"
	"strings"

	"github.com/juju/errors"
	"github.com/mongoose-os/espbrewd/internal/chiptypes"
	"github.com/mongoose-os/espbrewd/internal/espproto"
)

// AssembleErrorKind classifies an AssembleELF failure that isn't a plain
// I/O or parse error.
type AssembleErrorKind int

const (
	// ErrUnknownTarget means no chip variant could be inferred: the
	// caller didn't pin one, the source path didn't carry a resolvable
	// target/{triple}/... segment, and the ELF's e_machine field alone
	// can't disambiguate.
	ErrUnknownTarget AssembleErrorKind = iota
)

// AssembleError is the typed failure AssembleELF returns when variant
// inference fails, mirroring internal/detector's DetectError.
type AssembleError struct {
	Kind AssembleErrorKind
	Err  error
}

func (e *AssembleError) Error() string {
	switch e.Kind {
	case ErrUnknownTarget:
		return fmt.Sprintf("assemble: unknown target: %v", e.Err)
	default:
		return errors.Annotate(e.Err, "assemble").Error()
	}
}

// AssembleELF reads a linked ELF binary (as produced by the esp-idf or
// esp-rs toolchains) and produces a single-region FlashPlan holding the
// app image, with a bootloader and partition table region prepended when
// the caller supplies them via bootloader/partitionTable.
//
// Only PT_LOAD program headers are taken; ELF section headers are ignored
// since a stripped binary may not carry them.
func AssembleELF(r io.ReaderAt, opts Options, bootloader, partitionTable []byte) (*FlashPlan, error) {
	opts = opts.resolved()
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, errors.Annotate(err, "not a valid ELF file")
	}
	defer f.Close()

	variant, err := resolveVariant(f, opts)
	if err != nil {
		return nil, err
	}

	var segments []espproto.ImageSegment
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD || prog.Filesz == 0 {
			continue
		}
		data := make([]byte, prog.Filesz)
		if _, err := io.ReadFull(prog.Open(), data); err != nil {
			return nil, errors.Annotatef(err, "reading PT_LOAD segment at 0x%x", prog.Vaddr)
		}
		segments = append(segments, espproto.ImageSegment{
			LoadAddr: uint32(prog.Vaddr),
			Data:     data,
		})
	}
	if len(segments) == 0 {
		return nil, errors.Errorf("ELF file has no PT_LOAD segments")
	}

	appImage, err := espproto.BuildAppImage(segments, opts.FlashMode, opts.FlashFreqMHz, opts.FlashSizeMB, uint32(f.Entry))
	if err != nil {
		return nil, errors.Trace(err)
	}

	plan := &FlashPlan{TargetVariant: variant, FlashMode: opts.FlashMode, FlashFreqMHz: opts.FlashFreqMHz, FlashSizeMB: opts.FlashSizeMB}
	if len(bootloader) > 0 {
		if err := espproto.PatchHeaderBytes23(bootloader, opts.FlashMode, opts.FlashFreqMHz, opts.FlashSizeMB); err != nil {
			return nil, errors.Annotate(err, "patching bootloader header")
		}
		plan.Regions = append(plan.Regions, FlashRegion{
			Offset: chiptypes.BootloaderOffset(variant),
			Data:   bootloader,
			Role:   RoleBootloader,
			Name:   "bootloader",
		})
	}
	if len(partitionTable) > 0 {
		plan.Regions = append(plan.Regions, FlashRegion{
			Offset: chiptypes.DefaultPartitionTableOffset,
			Data:   partitionTable,
			Role:   RolePartitionTable,
			Name:   "partition_table",
		})
	}
	plan.Regions = append(plan.Regions, FlashRegion{
		Offset: chiptypes.DefaultAppOffset,
		Data:   appImage,
		Role:   RoleApp,
		Name:   "app",
	})

	if err := Validate(plan); err != nil {
		return nil, errors.Trace(err)
	}
	return plan, nil
}

// resolveVariant picks the target variant in priority order: an explicit
// Options.TargetVariant pin, then the target/{triple}/{profile}/{name}
// build-path convention (per the Image Assembler's ELF-input edge case),
// then the bare ELF e_machine field as a last resort. Any failure to
// infer a variant is reported as AssembleError{Kind: ErrUnknownTarget}.
func resolveVariant(f *elf.File, opts Options) (chiptypes.Variant, error) {
	if opts.TargetVariant != "" {
		if !opts.TargetVariant.Valid() {
			return "", &AssembleError{Kind: ErrUnknownTarget, Err: errors.Errorf("unrecognized or unconfirmed chip variant %q", opts.TargetVariant)}
		}
		return opts.TargetVariant, nil
	}

	if triple, ok := rustTripleFromPath(opts.SourcePath); ok {
		v, err := chiptypes.TargetFromRustTriple(triple, elfFeatureHint(f), opts.DefaultVariant)
		if err != nil {
			return "", &AssembleError{Kind: ErrUnknownTarget, Err: err}
		}
		return v, nil
	}

	v, err := variantFromELFMachine(f)
	if err != nil {
		return "", &AssembleError{Kind: ErrUnknownTarget, Err: err}
	}
	return v, nil
}

// rustTripleFromPath extracts {triple} from a sourcePath matching the
// Cargo/esp-idf build output convention target/{triple}/{profile}/{name}.
// ok is false when sourcePath doesn't contain a "target" path segment
// followed by at least a triple and profile component, in which case the
// caller falls back to ELF-machine-based inference instead of failing.
func rustTripleFromPath(sourcePath string) (triple string, ok bool) {
	if sourcePath == "" {
		return "", false
	}
	parts := strings.Split(strings.ReplaceAll(sourcePath, `\`, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "target" {
			return parts[i+1], true
		}
	}
	return "", false
}

// elfFeatureHint scans the ELF's symbol table for a symbol named exactly
// after one of the RISC-V variants the esp-rs toolchain embeds as a chip
// feature marker, used to disambiguate a riscv32imc triple shared by
// several chips. A stripped binary has no symbol table; that's treated as
// "no hint" rather than an error, per §4.3's "if present, else default".
func elfFeatureHint(f *elf.File) string {
	syms, err := f.Symbols()
	if err != nil {
		return ""
	}
	for _, sym := range syms {
		switch chiptypes.Variant(sym.Name) {
		case chiptypes.ESP32C3, chiptypes.ESP32C6, chiptypes.ESP32H2:
			return sym.Name
		}
	}
	return ""
}

// variantFromELFMachine falls back to the ELF e_machine field when the
// caller hasn't pinned a target and the source path didn't resolve one:
// EM_XTENSA is always ESP32/S2/S3 (which one is ambiguous from the
// machine field alone); EM_RISCV is ambiguous the same way among
// esp32c3/c6/h2. Either case needs a path or an explicit pin to go
// further, so both return an error here.
func variantFromELFMachine(f *elf.File) (chiptypes.Variant, error) {
	switch f.Machine {
	case elf.EM_XTENSA:
		return "", errors.Errorf("ELF is for an Xtensa target; TargetVariant must be set explicitly (esp32/esp32s2/esp32s3 share e_machine)")
	case elf.EM_RISCV:
		return "", errors.Errorf("ELF is for a RISC-V target; TargetVariant must be set explicitly (esp32c3/c6/h2 share e_machine)")
	default:
		return "", errors.Errorf("unrecognized ELF machine type %v", f.Machine)
	}
}
