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

// Package api is the HTTP + Push Surface: the goji.io-routed REST API
// over the Board Registry and Flash Executor, plus a websocket push
// channel per monitor session. Routing follows
// fwbuild/manager/fwbuild_manager.go's CreateHandler shape (a root mux,
// a sub-mux for "/api/*", pat patterns for path parameters); the push
// channel follows mos/ui.go's wsClients/wsBroadcast design, generalized
// from one shared UI socket to one socket per monitor session.
package api

import (
	"net/http"
	"time"

	goji "goji.io"
	"goji.io/pat"

	"github.com/mongoose-os/espbrewd/internal/broker"
	"github.com/mongoose-os/espbrewd/internal/flasher"
	"github.com/mongoose-os/espbrewd/internal/registry"
	"github.com/mongoose-os/espbrewd/version"
)

// Registry is the subset of *registry.Registry the surface needs.
type Registry interface {
	List() []registry.Board
	Get(id registry.BoardId) (registry.Board, bool)
	BoardTypes() []registry.BoardType
	Assign(id registry.BoardId, typeID, logicalName string) error
	Unassign(id registry.BoardId) error
}

// Broker is the subset of *broker.Broker the surface needs.
type Broker interface {
	Subscribe(boardID, path string) (*broker.Subscription, error)
	Keepalive(boardID string)
	Reset(boardID string) error
}

// Server wires the Registry, Broker, and Flash Executor into one
// http.Handler. Hostname and LastScan feed server_info in the boards
// listing; Version comes from the version package.
type Server struct {
	reg       Registry
	brk       Broker
	flash     *flasher.Executor
	sess      *sessionTable
	flashBaud uint

	hostname  string
	startedAt time.Time
	lastScan  func() time.Time
}

// Options configures a new Server.
type Options struct {
	Hostname string
	// FlashBaud is the baud rate passed to the Flash Executor for every
	// request; 0 lets the Executor fall back to its own default.
	FlashBaud uint
	// LastScan supplies the time surfaced as server_info's last_scan; nil
	// is treated as "never".
	LastScan func() time.Time
}

// New returns a Server ready to have its Handler mounted.
func New(reg Registry, brk Broker, flash *flasher.Executor, opts Options) *Server {
	return &Server{
		reg:       reg,
		brk:       brk,
		flash:     flash,
		sess:      newSessionTable(60 * time.Second),
		flashBaud: opts.FlashBaud,
		hostname:  opts.Hostname,
		startedAt: time.Now(),
		lastScan:  opts.LastScan,
	}
}

// Close stops the session reaper. It does not close any in-flight
// connections; callers drain those via http.Server.Shutdown first.
func (s *Server) Close() {
	s.sess.Stop()
}

// Handler builds the routed goji.io mux, matching fwbuild_manager's
// CreateHandler: a root mux carrying common middleware, with "/api/*"
// delegated to a sub-mux.
func (s *Server) Handler() http.Handler {
	root := goji.NewMux()
	root.Use(requestLogger)

	root.HandleFunc(pat.Get("/health"), s.handleHealth)
	root.HandleFunc(pat.Get("/ws/monitor/:id"), s.handleMonitorWS)

	// goji.io's wildcard pattern strips the matched "/api/v1" prefix before
	// handing the request to the sub-mux, so routes below are registered
	// relative to that prefix, mirroring fwbuild_manager's "/fwbuild/:version/:action"
	// mounted under "/api/*".
	api := goji.SubMux()
	root.Handle(pat.New("/api/v1/*"), api)

	api.HandleFunc(pat.Get("/boards"), s.handleListBoards)
	api.HandleFunc(pat.Get("/boards/:id"), s.handleGetBoard)
	api.HandleFunc(pat.Get("/board-types"), s.handleListBoardTypes)
	api.HandleFunc(pat.Post("/assign-board"), s.handleAssignBoard)
	api.HandleFunc(pat.Delete("/assign-board/:id"), s.handleUnassignBoard)
	api.HandleFunc(pat.Post("/flash"), s.handleFlash)
	api.HandleFunc(pat.Post("/reset"), s.handleReset)
	api.HandleFunc(pat.Post("/monitor/start"), s.handleMonitorStart)
	api.HandleFunc(pat.Post("/monitor/stop"), s.handleMonitorStop)
	api.HandleFunc(pat.Post("/monitor/keepalive"), s.handleMonitorKeepalive)
	api.HandleFunc(pat.Get("/monitor/sessions"), s.handleMonitorSessions)
	api.HandleFunc(pat.Get("/version"), s.handleVersion)

	return root
}

// handleVersion reports the build identity, mirroring mos/ui.go's
// /version and /version-tag handlers.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	replyJSON(w, http.StatusOK, map[string]interface{}{
		"version":  version.Version,
		"build_id": version.BuildId,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	replyJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"version": version.Version,
	})
}

type serverInfo struct {
	Version     string    `json:"version"`
	Hostname    string    `json:"hostname"`
	TotalBoards int       `json:"total_boards"`
	LastScan    time.Time `json:"last_scan,omitempty"`
}

func (s *Server) info(n int) serverInfo {
	si := serverInfo{Version: version.Version, Hostname: s.hostname, TotalBoards: n}
	if s.lastScan != nil {
		si.LastScan = s.lastScan()
	}
	return si
}
