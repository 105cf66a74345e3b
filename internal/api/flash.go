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

package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/juju/errors"

	"github.com/mongoose-os/espbrewd/internal/assembler"
	"github.com/mongoose-os/espbrewd/internal/chiptypes"
	"github.com/mongoose-os/espbrewd/internal/espproto"
	"github.com/mongoose-os/espbrewd/internal/flasher"
	"github.com/mongoose-os/espbrewd/internal/registry"
)

// flashUploadLimit is the maxMemory handed to ParseMultipartForm: up to
// 16MiB of a flash request's parts is held in memory and file parts past
// that spill to temporary files. The total body size is not capped.
const flashUploadLimit = 16 << 20

// roleForOffset infers a FlashRegion's role from its conventional
// esp-idf offset, since the multipart wire format (§6) carries only
// offset and name, not role. Anything that doesn't match a well-known
// offset is treated as opaque data.
func roleForOffset(offset uint32, variant chiptypes.Variant) assembler.Role {
	switch offset {
	case chiptypes.BootloaderOffset(variant):
		return assembler.RoleBootloader
	case chiptypes.DefaultPartitionTableOffset:
		return assembler.RolePartitionTable
	case chiptypes.DefaultAppOffset:
		return assembler.RoleApp
	default:
		return assembler.RoleData
	}
}

// parseOffset accepts both hex ("0x8000") and decimal ("32768") forms,
// per §6's "binary_{i}_offset (hex or decimal)".
func parseOffset(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, errors.Annotatef(err, "parsing offset %q", s)
	}
	return uint32(v), nil
}

func (s *Server) handleFlash(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(flashUploadLimit); err != nil {
		replyError(w, http.StatusBadRequest, "malformed_request", errors.Annotate(err, "parsing multipart form").Error())
		return
	}

	boardID := registry.BoardId(r.FormValue("board_id"))
	board, ok := s.reg.Get(boardID)
	if !ok {
		replyError(w, http.StatusNotFound, "unknown_board", "no such board")
		return
	}
	if board.CurrentPort == "" {
		replyError(w, http.StatusConflict, "offline", "board has no open port")
		return
	}

	variant := chiptypes.Variant("")
	if board.Identity != nil {
		variant = board.Identity.Variant
	}

	count, err := strconv.Atoi(r.FormValue("binary_count"))
	if err != nil || count <= 0 {
		replyError(w, http.StatusBadRequest, "invalid_plan", "binary_count must be a positive integer")
		return
	}

	opts := assembler.Options{TargetVariant: variant}
	if fm := r.FormValue("flash_mode"); fm != "" {
		opts.FlashMode = espproto.FlashMode(fm)
	}
	if ff := r.FormValue("flash_freq"); ff != "" {
		if v, err := strconv.Atoi(ff); err == nil {
			opts.FlashFreqMHz = v
		}
	}
	if fs := r.FormValue("flash_size"); fs != "" {
		if v, err := strconv.Atoi(fs); err == nil {
			opts.FlashSizeMB = v
		}
	}

	parts := make([]assembler.PartitionInput, 0, count)
	for i := 0; i < count; i++ {
		idx := strconv.Itoa(i)
		offset, err := parseOffset(r.FormValue("binary_" + idx + "_offset"))
		if err != nil {
			replyError(w, http.StatusBadRequest, "invalid_plan", err.Error())
			return
		}
		file, header, err := r.FormFile("binary_" + idx)
		if err != nil {
			replyError(w, http.StatusBadRequest, "invalid_plan", errors.Annotatef(err, "reading binary_%d", i).Error())
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			replyError(w, http.StatusBadRequest, "invalid_plan", errors.Annotatef(err, "reading binary_%d body", i).Error())
			return
		}
		name := r.FormValue("binary_" + idx + "_name")
		if name == "" && header != nil {
			name = header.Filename
		}
		parts = append(parts, assembler.PartitionInput{
			Offset: offset,
			Data:   data,
			Role:   roleForOffset(offset, variant),
			Name:   name,
		})
	}

	plan, err := assembler.AssemblePartitionSet(parts, opts)
	if err != nil {
		replyError(w, http.StatusBadRequest, "invalid_plan", err.Error())
		return
	}

	started := time.Now()
	job, err := s.flash.Flash(string(boardID), board.CurrentPort, plan, s.flashBaud)
	duration := time.Since(started)
	if err != nil {
		status := http.StatusInternalServerError
		reason := "flash_error"
		if job != nil && job.FailureKind == flasher.FailureBusy {
			status = http.StatusConflict
			reason = "flashing"
		}
		replyError(w, status, reason, err.Error())
		return
	}

	replyJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"duration_ms":   duration.Milliseconds(),
		"bytes_written": job.TotalBytes,
	})
}
