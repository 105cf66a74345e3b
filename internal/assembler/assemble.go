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
	"github.com/juju/errors"
	"github.com/mongoose-os/espbrewd/internal/espproto"
)

// PartitionInput is one named, addressed binary supplied by the caller for
// AssemblePartitionSet: a bootloader, a partition table, an app binary, or
// any other data blob with a fixed flash offset.
type PartitionInput struct {
	Offset uint32
	Data   []byte
	Role   Role
	Name   string
}

// AssemblePartitionSet builds a FlashPlan directly out of a set of
// already-separate, already-addressed binaries (the layout esp-idf's
// `idf.py build` produces: bootloader.bin, partition-table.bin, app.bin,
// each with its own fixed offset). Any part whose Role is RoleBootloader
// or RoleApp and whose data starts with the image magic byte has its
// image header flash_mode/freq/size nibbles patched to
// match opts, since those are baked in by the toolchain for its own build
// defaults and must agree with what the Flash Executor configures the
// chip with.
func AssemblePartitionSet(parts []PartitionInput, opts Options) (*FlashPlan, error) {
	opts = opts.resolved()
	plan := &FlashPlan{
		TargetVariant: opts.TargetVariant,
		FlashMode:     opts.FlashMode,
		FlashFreqMHz:  opts.FlashFreqMHz,
		FlashSizeMB:   opts.FlashSizeMB,
	}
	for _, p := range parts {
		data := p.Data
		if (p.Role == RoleBootloader || p.Role == RoleApp) && len(data) >= 4 && data[0] == espproto.ImageMagic {
			patched := make([]byte, len(data))
			copy(patched, data)
			if err := espproto.PatchHeaderBytes23(patched, opts.FlashMode, opts.FlashFreqMHz, opts.FlashSizeMB); err != nil {
				return nil, errors.Annotatef(err, "patching header of %q", p.Name)
			}
			data = patched
		}
		plan.Regions = append(plan.Regions, FlashRegion{
			Offset: p.Offset,
			Data:   data,
			Role:   p.Role,
			Name:   p.Name,
		})
	}
	if err := Validate(plan); err != nil {
		return nil, errors.Trace(err)
	}
	return plan, nil
}

// AssembleMerged wraps a single pre-merged binary (as produced by
// `esptool.py merge_bin`) into a FlashPlan at baseOffset. Since a merged
// image carries no part boundaries, the whole thing becomes one
// RoleMerged region; it is not split into parts.
func AssembleMerged(data []byte, baseOffset uint32, opts Options) (*FlashPlan, error) {
	opts = opts.resolved()
	plan := &FlashPlan{
		TargetVariant: opts.TargetVariant,
		FlashMode:     opts.FlashMode,
		FlashFreqMHz:  opts.FlashFreqMHz,
		FlashSizeMB:   opts.FlashSizeMB,
		Regions: []FlashRegion{{
			Offset: baseOffset,
			Data:   data,
			Role:   RoleMerged,
			Name:   "merged",
		}},
	}
	if err := Validate(plan); err != nil {
		return nil, errors.Trace(err)
	}
	return plan, nil
}
