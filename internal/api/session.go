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
	"sync"
	"time"

	"github.com/mongoose-os/espbrewd/internal/broker"
	"github.com/mongoose-os/espbrewd/internal/registry"
)

// monitorSession is the HTTP-visible handle a client gets back from
// POST /monitor/start: one board.Subscription leased to one push-channel
// client. Many monitorSessions for the same board all share the same
// underlying broker session (and so the same open port), per §3's "at
// most one active session per BoardId, shared across many subscribers" —
// the sharing happens inside the Broker; what's unique per monitorSession
// here is the keepalive/idle bookkeeping the HTTP surface owns for its
// own /monitor/sessions listing and idle-teardown timer.
type monitorSession struct {
	ID            string
	BoardID       registry.BoardId
	Sub           *broker.Subscription
	CreatedAt     time.Time
	LastKeepalive time.Time
	attached      bool // set once a /ws/monitor/{id} connection has attached
}

// sessionTable tracks monitorSessions by ID and reaps ones whose
// keepalive has lapsed per §4.5's "now - last_keepalive > 2x
// keepalive_interval" rule, at the HTTP-session granularity callers
// observe. This reaper is the only keepalive expiry; the Broker records
// keepalives but does not expire sessions on them.
type sessionTable struct {
	mu              sync.Mutex
	sessions        map[string]*monitorSession
	keepaliveWindow time.Duration

	stopReaper chan struct{}
}

func newSessionTable(keepaliveWindow time.Duration) *sessionTable {
	if keepaliveWindow <= 0 {
		keepaliveWindow = 60 * time.Second
	}
	t := &sessionTable{
		sessions:        make(map[string]*monitorSession),
		keepaliveWindow: keepaliveWindow,
		stopReaper:      make(chan struct{}),
	}
	go t.reapLoop()
	return t
}

func (t *sessionTable) Stop() {
	close(t.stopReaper)
}

func (t *sessionTable) create(boardID registry.BoardId, sub *broker.Subscription) *monitorSession {
	now := time.Now()
	s := &monitorSession{ID: newToken(), BoardID: boardID, Sub: sub, CreatedAt: now, LastKeepalive: now}
	t.mu.Lock()
	t.sessions[s.ID] = s
	t.mu.Unlock()
	return s
}

func (t *sessionTable) get(id string) (*monitorSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[id]
	return s, ok
}

func (t *sessionTable) keepalive(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[id]
	if !ok {
		return false
	}
	s.LastKeepalive = time.Now()
	return true
}

func (t *sessionTable) remove(id string) (*monitorSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[id]
	if ok {
		delete(t.sessions, id)
	}
	return s, ok
}

func (t *sessionTable) list() []*monitorSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*monitorSession, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, s)
	}
	return out
}

func (t *sessionTable) reapLoop() {
	ticker := time.NewTicker(t.keepaliveWindow)
	defer ticker.Stop()
	for {
		select {
		case <-t.stopReaper:
			return
		case <-ticker.C:
			t.reapOnce()
		}
	}
}

func (t *sessionTable) reapOnce() {
	cutoff := time.Now().Add(-2 * t.keepaliveWindow)
	var expired []*monitorSession
	t.mu.Lock()
	for id, s := range t.sessions {
		if s.LastKeepalive.Before(cutoff) {
			expired = append(expired, s)
			delete(t.sessions, id)
		}
	}
	t.mu.Unlock()
	for _, s := range expired {
		s.Sub.Unsubscribe()
	}
}
