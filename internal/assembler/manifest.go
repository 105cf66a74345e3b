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
	"crypto/md5"
	"encoding/hex"
)

// ManifestPart is one FlashRegion's entry in a plan's manifest, the
// part-level summary a client inspects before committing to a flash —
// name, type, address and checksum, the same fields
// common/fwbundle's FirmwarePart carries for its own parts.
type ManifestPart struct {
	Name   string `json:"name"`
	Type   Role   `json:"type"`
	Addr   uint32 `json:"addr"`
	Size   int    `json:"size"`
	MD5Sum string `json:"cs_md5,omitempty"`
}

// Manifest is a FlashPlan rendered as the part list a caller can log, diff,
// or hand back over the API without re-shipping the region bytes.
type Manifest struct {
	TargetVariant string         `json:"target_variant"`
	FlashMode     string         `json:"flash_mode"`
	FlashFreqMHz  int            `json:"flash_freq_mhz"`
	FlashSizeMB   int            `json:"flash_size_mb"`
	Parts         []ManifestPart `json:"parts"`
}

// Manifest summarizes a validated plan's regions for display, without
// re-encoding the region bytes themselves.
func (p *FlashPlan) Manifest() Manifest {
	m := Manifest{
		TargetVariant: string(p.TargetVariant),
		FlashMode:     string(p.FlashMode),
		FlashFreqMHz:  p.FlashFreqMHz,
		FlashSizeMB:   p.FlashSizeMB,
		Parts:         make([]ManifestPart, len(p.Regions)),
	}
	for i, r := range p.Regions {
		sum := md5.Sum(r.Data)
		m.Parts[i] = ManifestPart{
			Name:   r.Name,
			Type:   r.Role,
			Addr:   r.Offset,
			Size:   len(r.Data),
			MD5Sum: hex.EncodeToString(sum[:]),
		}
	}
	return m
}
