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

// Package registry maintains the process-wide BoardId -> Board mapping:
// the only mutator of Board records, and the owner of the on-disk
// assignment file.
package registry

import (
	"time"

	"github.com/mongoose-os/espbrewd/internal/chiptypes"
	"github.com/mongoose-os/espbrewd/internal/detector"
)

// Status is a Board's current high-level state.
type Status string

const (
	StatusAvailable Status = "Available"
	StatusMonitoring Status = "Monitoring"
	StatusFlashing   Status = "Flashing"
	StatusOffline    Status = "Offline"
)

// BoardId is opaque but stable: MAC-derived when the chip's MAC is known,
// otherwise a sanitized port path. Never mutated once assigned.
type BoardId string

// Board is one physical unit the server has ever seen.
type Board struct {
	ID                BoardId
	Identity          *detector.ChipIdentity
	CurrentPort       string
	DeviceDescription string
	Assignment        *Assignment
	Status            Status
	LastSeen          time.Time
}

// Assignment is user-supplied logical metadata bound to a BoardId.
type Assignment struct {
	BoardTypeID string
	LogicalName string
	AssignedAt  time.Time
}

// BoardType is a named template assignments reference.
type BoardType struct {
	ID               string
	DisplayName      string
	ChipVariant      chiptypes.Variant
	SourceConfigPath string
}
