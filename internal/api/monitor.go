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
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"
	"goji.io/pat"

	"github.com/mongoose-os/espbrewd/internal/broker"
	"github.com/mongoose-os/espbrewd/internal/registry"
)

type monitorStartRequest struct {
	BoardID  string `json:"board_id"`
	BaudRate int    `json:"baud_rate,omitempty"`
}

func (s *Server) handleMonitorStart(w http.ResponseWriter, r *http.Request) {
	var req monitorStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		replyError(w, http.StatusBadRequest, "malformed_request", err.Error())
		return
	}
	board, ok := s.reg.Get(registry.BoardId(req.BoardID))
	if !ok {
		replyError(w, http.StatusNotFound, "unknown_board", "no such board")
		return
	}
	if board.CurrentPort == "" {
		replyError(w, http.StatusNotFound, "offline", "board has no open port")
		return
	}

	sub, err := s.brk.Subscribe(req.BoardID, board.CurrentPort)
	if err != nil {
		if err == broker.ErrPortBusy {
			replyError(w, http.StatusConflict, "flashing", err.Error())
			return
		}
		replyError(w, http.StatusInternalServerError, "port_unavailable", err.Error())
		return
	}

	msess := s.sess.create(registry.BoardId(req.BoardID), sub)
	replyJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": msess.ID,
		"push_url":   "/ws/monitor/" + msess.ID,
	})
}

type sessionIDRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleMonitorStop(w http.ResponseWriter, r *http.Request) {
	var req sessionIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		replyError(w, http.StatusBadRequest, "malformed_request", err.Error())
		return
	}
	msess, ok := s.sess.remove(req.SessionID)
	if !ok {
		replyError(w, http.StatusNotFound, "unknown_session", "no such session")
		return
	}
	msess.Sub.Unsubscribe()
	replyJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func (s *Server) handleMonitorKeepalive(w http.ResponseWriter, r *http.Request) {
	var req sessionIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		replyError(w, http.StatusBadRequest, "malformed_request", err.Error())
		return
	}
	msess, ok := s.sess.get(req.SessionID)
	if !ok {
		replyError(w, http.StatusNotFound, "unknown_session", "no such session")
		return
	}
	s.sess.keepalive(req.SessionID)
	s.brk.Keepalive(string(msess.BoardID))
	replyJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

type sessionView struct {
	SessionID string `json:"session_id"`
	BoardID   string `json:"board_id"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) handleMonitorSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.sess.list()
	views := make([]sessionView, len(sessions))
	for i, m := range sessions {
		views[i] = sessionView{SessionID: m.ID, BoardID: string(m.BoardID), CreatedAt: m.CreatedAt.UTC().Format(timeLayout)}
	}
	replyJSON(w, http.StatusOK, map[string]interface{}{"sessions": views})
}

type resetRequest struct {
	BoardID string `json:"board_id"`
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		replyError(w, http.StatusBadRequest, "malformed_request", err.Error())
		return
	}
	if _, ok := s.reg.Get(registry.BoardId(req.BoardID)); !ok {
		replyError(w, http.StatusNotFound, "unknown_board", "no such board")
		return
	}
	if err := s.brk.Reset(req.BoardID); err != nil {
		replyError(w, http.StatusConflict, "flashing", err.Error())
		return
	}
	replyJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// wsControlFrame is a server->client JSON control frame: {type:"lag",
// dropped:N} or {type:"session_ended", reason:...}, per §4.7.
type wsControlFrame struct {
	Type    string `json:"type"`
	Dropped uint64 `json:"dropped,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// wsClientFrame is a client->server control message: {"cmd":"keepalive"
// | "reset" | "stop"}.
type wsClientFrame struct {
	Cmd string `json:"cmd"`
}

// handleMonitorWS is the push channel for one monitor session. Data
// frames carry base64-encoded serial bytes so arbitrary binary/ANSI
// content survives as a text frame (golang.org/x/net/websocket's
// websocket.Message.Send(string) idiom, per mos/ui.go's wsSend); control
// frames are JSON objects with a "type" field, so a client distinguishes
// the two by attempting a JSON parse.
func (s *Server) handleMonitorWS(w http.ResponseWriter, r *http.Request) {
	id := pat.Param(r, "id")
	msess, ok := s.sess.get(id)
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	websocket.Handler(func(ws *websocket.Conn) {
		s.runMonitorSocket(ws, msess)
	}).ServeHTTP(w, r)
}

// runMonitorSocket serves one /ws/monitor/{id} connection until the
// subscription ends or the client disconnects. Either way, per §5's "an
// HTTP client disconnect cancels its push subscription", the session is
// torn down here rather than left for the idle reaper to notice minutes
// later.
func (s *Server) runMonitorSocket(ws *websocket.Conn, msess *monitorSession) {
	defer ws.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer func() {
		s.sess.remove(msess.ID)
		msess.Sub.Unsubscribe()
	}()
	s.sess.mu.Lock()
	msess.attached = true
	s.sess.mu.Unlock()

	go s.readClientFrames(ws, msess, cancel)

	sub := msess.Sub.Subscriber()
	for {
		frame, err := sub.Recv(ctx)
		if err != nil {
			return
		}
		switch {
		case frame.Data != nil:
			if err := websocket.Message.Send(ws, base64.StdEncoding.EncodeToString(frame.Data)); err != nil {
				return
			}
		case frame.Lag != nil:
			if err := sendControl(ws, wsControlFrame{Type: "lag", Dropped: frame.Lag.Dropped}); err != nil {
				return
			}
		case frame.SessionEnded != nil:
			sendControl(ws, wsControlFrame{Type: "session_ended", Reason: frame.SessionEnded.Reason})
			return
		}
	}
}

func sendControl(ws *websocket.Conn, f wsControlFrame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return websocket.Message.Send(ws, string(b))
}

// readClientFrames handles the three client->server commands §4.7 names.
// "stop" and a read error both end the session from the client side by
// cancelling ctx, which unblocks Recv in runMonitorSocket.
func (s *Server) readClientFrames(ws *websocket.Conn, msess *monitorSession, cancel context.CancelFunc) {
	defer cancel()
	for {
		var text string
		if err := websocket.Message.Receive(ws, &text); err != nil {
			return
		}
		var cf wsClientFrame
		if err := json.Unmarshal([]byte(text), &cf); err != nil {
			glog.V(1).Infof("api: monitor %s: malformed client frame: %v", msess.ID, err)
			continue
		}
		switch cf.Cmd {
		case "keepalive":
			s.sess.keepalive(msess.ID)
			s.brk.Keepalive(string(msess.BoardID))
		case "reset":
			if err := s.brk.Reset(string(msess.BoardID)); err != nil {
				glog.Warningf("api: monitor %s: reset: %v", msess.ID, err)
			}
		case "stop":
			return
		}
	}
}
