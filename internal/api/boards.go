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
	"encoding/json"
	"net/http"

	"goji.io/pat"

	"github.com/mongoose-os/espbrewd/internal/registry"
)

// boardView is the wire shape of registry.Board per §6: "{id, port?,
// chip_type?, mac_address?, features?, device_description?, status,
// last_updated, assignment?}".
type boardView struct {
	ID                registry.BoardId `json:"id"`
	Port              string           `json:"port,omitempty"`
	ChipType          string           `json:"chip_type,omitempty"`
	MACAddress        string           `json:"mac_address,omitempty"`
	Features          []string         `json:"features,omitempty"`
	DeviceDescription string           `json:"device_description,omitempty"`
	Status            registry.Status  `json:"status"`
	LastUpdated       string           `json:"last_updated"`
	Assignment        *assignmentView  `json:"assignment,omitempty"`
}

type assignmentView struct {
	BoardTypeID string `json:"board_type_id"`
	LogicalName string `json:"logical_name,omitempty"`
	AssignedAt  string `json:"assigned_at"`
}

func toBoardView(b registry.Board) boardView {
	v := boardView{ID: b.ID, Port: b.CurrentPort, DeviceDescription: b.DeviceDescription, Status: b.Status, LastUpdated: b.LastSeen.UTC().Format(timeLayout)}
	if b.Identity != nil {
		v.ChipType = string(b.Identity.Variant)
		v.MACAddress = b.Identity.MACString()
		v.Features = b.Identity.Features
	}
	if b.Assignment != nil {
		v.Assignment = &assignmentView{
			BoardTypeID: b.Assignment.BoardTypeID,
			LogicalName: b.Assignment.LogicalName,
			AssignedAt:  b.Assignment.AssignedAt.UTC().Format(timeLayout),
		}
	}
	return v
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	boards := s.reg.List()
	views := make([]boardView, len(boards))
	for i, b := range boards {
		views[i] = toBoardView(b)
	}
	replyJSON(w, http.StatusOK, map[string]interface{}{
		"boards":      views,
		"server_info": s.info(len(boards)),
	})
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	id := registry.BoardId(pat.Param(r, "id"))
	b, ok := s.reg.Get(id)
	if !ok {
		replyError(w, http.StatusNotFound, "unknown_board", "no such board")
		return
	}
	replyJSON(w, http.StatusOK, toBoardView(b))
}

type boardTypeView struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	ChipVariant string `json:"chip_variant"`
}

func (s *Server) handleListBoardTypes(w http.ResponseWriter, r *http.Request) {
	types := s.reg.BoardTypes()
	views := make([]boardTypeView, len(types))
	for i, t := range types {
		views[i] = boardTypeView{ID: t.ID, DisplayName: t.DisplayName, ChipVariant: string(t.ChipVariant)}
	}
	replyJSON(w, http.StatusOK, map[string]interface{}{"board_types": views})
}

type assignRequest struct {
	BoardUniqueID string `json:"board_unique_id"`
	BoardTypeID   string `json:"board_type_id"`
	LogicalName   string `json:"logical_name,omitempty"`
}

func (s *Server) handleAssignBoard(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		replyError(w, http.StatusBadRequest, "malformed_request", err.Error())
		return
	}
	err := s.reg.Assign(registry.BoardId(req.BoardUniqueID), req.BoardTypeID, req.LogicalName)
	switch {
	case err == nil:
		replyJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
	case registry.IsUnknownBoardType(err):
		replyError(w, http.StatusBadRequest, "unknown_board_type", err.Error())
	case registry.IsUnknownBoard(err):
		replyError(w, http.StatusNotFound, "unknown_board", err.Error())
	default:
		replyError(w, http.StatusInternalServerError, "persist_failed", err.Error())
	}
}

func (s *Server) handleUnassignBoard(w http.ResponseWriter, r *http.Request) {
	id := registry.BoardId(pat.Param(r, "id"))
	err := s.reg.Unassign(id)
	switch {
	case err == nil:
		replyJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
	case registry.IsUnknownBoard(err):
		replyError(w, http.StatusNotFound, "unknown_board", err.Error())
	default:
		replyError(w, http.StatusInternalServerError, "persist_failed", err.Error())
	}
}
