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

// Package assembler is the Image Assembler: a pure function library that
// turns a build artifact (ELF, a set of partition binaries, a merged image,
// or an Intel-HEX bundle) into a FlashPlan — the ordered, validated sequence
// of (offset, bytes) regions the Flash Executor writes to the chip.
package assembler

import (
	"sort"

	"github.com/juju/errors"
	"github.com/mongoose-os/espbrewd/internal/chiptypes"
	"github.com/mongoose-os/espbrewd/internal/espproto"
)

// Role identifies the purpose of a FlashRegion.
type Role string

const (
	RoleBootloader     Role = "bootloader"
	RolePartitionTable Role = "partition_table"
	RoleApp            Role = "app"
	RoleData           Role = "data"
	RoleMerged         Role = "merged"
)

const flashSectorSize = 0x1000

// FlashRegion is one (offset, bytes) unit to be written to external flash.
type FlashRegion struct {
	Offset uint32
	Data   []byte
	Role   Role
	Name   string
}

// FlashPlan is an ordered, validated collection of regions plus the flash
// parameters the image header and the physical write must agree on.
type FlashPlan struct {
	Regions       []FlashRegion
	TargetVariant chiptypes.Variant
	FlashMode     espproto.FlashMode
	FlashFreqMHz  int
	FlashSizeMB   int
}

// Options carries the flash parameters a caller wants baked into the plan;
// zero values fall back to dio, 40MHz and 4MB (see resolved), whatever the
// variant.
type Options struct {
	TargetVariant chiptypes.Variant
	FlashMode     espproto.FlashMode
	FlashFreqMHz  int
	FlashSizeMB   int
	// DefaultVariant disambiguates a riscv32imc ELF triple when no
	// embedded feature hint is found.
	DefaultVariant chiptypes.Variant
	// SourcePath is the ELF's build output path, if known. When
	// TargetVariant is unset and SourcePath matches the conventional
	// target/{triple}/{profile}/{name} layout, AssembleELF derives the
	// variant from {triple} instead of requiring the caller to pin it.
	SourcePath string
}

func (o Options) resolved() Options {
	r := o
	if r.FlashMode == "" {
		r.FlashMode = espproto.FlashModeDIO
	}
	if r.FlashFreqMHz == 0 {
		r.FlashFreqMHz = 40
	}
	if r.FlashSizeMB == 0 {
		r.FlashSizeMB = 4
	}
	return r
}

// sortRegions sorts regions in place by offset, as required by §8's
// testable property that plans are always offset-ordered.
func sortRegions(regions []FlashRegion) {
	sort.Slice(regions, func(i, j int) bool { return regions[i].Offset < regions[j].Offset })
}

// Validate checks the invariants every FlashPlan must satisfy: regions
// sorted by offset (enforced here, not merely checked), 4KiB-aligned, and
// non-overlapping, with total size bounded by FlashSizeMB.
func Validate(plan *FlashPlan) error {
	sortRegions(plan.Regions)
	limit := uint32(plan.FlashSizeMB) * 1024 * 1024
	var prevEnd uint32
	for i, r := range plan.Regions {
		if r.Offset%flashSectorSize != 0 {
			return errors.Errorf("region %d (%q) offset 0x%x is not 4KiB-aligned", i, r.Name, r.Offset)
		}
		end := r.Offset + uint32(len(r.Data))
		if limit > 0 && end > limit {
			return errors.Errorf("region %d (%q) 0x%x+%d exceeds flash size %dMB", i, r.Name, r.Offset, len(r.Data), plan.FlashSizeMB)
		}
		if i > 0 && r.Offset < prevEnd {
			return errors.Errorf("region %d (%q) at 0x%x overlaps preceding region ending at 0x%x", i, r.Name, r.Offset, prevEnd)
		}
		prevEnd = end
	}
	return nil
}
