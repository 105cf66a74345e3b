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
	"encoding/json"
	"reflect"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/mongoose-os/espbrewd/internal/chiptypes"
)

// TestManifestRoundTripsThroughJSON checks that a plan's manifest survives
// a JSON encode/decode unchanged, the same round-trip property
// fw_bundle_test.go checks for a firmware manifest; on mismatch it renders
// a readable diff instead of a raw struct dump.
func TestManifestRoundTripsThroughJSON(t *testing.T) {
	plan, err := AssemblePartitionSet([]PartitionInput{
		{Offset: 0x1000, Data: []byte{0xe9, 0, 0, 0}, Role: RoleBootloader, Name: "bootloader"},
		{Offset: 0x8000, Data: []byte{0xaa, 0xbb}, Role: RolePartitionTable, Name: "partitions"},
		{Offset: 0x10000, Data: []byte{0xe9, 1, 2, 3}, Role: RoleApp, Name: "app"},
	}, Options{TargetVariant: chiptypes.ESP32})
	if err != nil {
		t.Fatalf("AssemblePartitionSet: %v", err)
	}

	m1 := plan.Manifest()
	mb, err := json.MarshalIndent(m1, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m2 Manifest
	if err := json.Unmarshal(mb, &m2); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(m1, m2) {
		mjs1, _ := json.MarshalIndent(m1, "", "  ")
		mjs2, _ := json.MarshalIndent(m2, "", "  ")
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(string(mjs1), string(mjs2), false)
		t.Fatalf("manifest round-trip mismatch:\n%s\n\n%s", string(mb), dmp.DiffPrettyText(diffs))
	}

	if len(m1.Parts) != 3 || m1.Parts[0].Type != RoleBootloader || m1.Parts[2].Type != RoleApp {
		t.Fatalf("unexpected parts: %+v", m1.Parts)
	}
}
