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
package registry

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/juju/errors"
	"github.com/mongoose-os/espbrewd/internal/chiptypes"
	"github.com/mongoose-os/espbrewd/internal/detector"
	"github.com/mongoose-os/espbrewd/internal/probe"
)

var errUnknownBoardType = errors.New("unknown board type")
var errUnknownBoard = errors.New("unknown board")

var pathSanitizer = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Registry is the single authoritative BoardId -> Board map. All
// mutating methods serialize through mu; reads return independent
// snapshots so callers never block writers.
type Registry struct {
	mu               sync.Mutex
	boards           map[BoardId]*Board
	pathIndex        map[string]BoardId // port path -> BoardId, for not-yet-identified boards
	boardTypes       map[string]BoardType
	assignments      map[BoardId]Assignment
	configPath       string
	offlineRetention time.Duration
	hostname         string
}

// Options configures a new Registry.
type Options struct {
	ConfigPath       string
	OfflineRetention time.Duration
	Hostname         string
}

// New loads existing state from opts.ConfigPath (if any) and returns a
// ready Registry. A present-but-corrupt file is a startup error; a
// missing file starts empty.
func New(opts Options) (*Registry, error) {
	r := &Registry{
		boards:           make(map[BoardId]*Board),
		pathIndex:        make(map[string]BoardId),
		boardTypes:       make(map[string]BoardType),
		assignments:      make(map[BoardId]Assignment),
		configPath:       opts.ConfigPath,
		offlineRetention: opts.OfflineRetention,
		hostname:         opts.Hostname,
	}
	if opts.ConfigPath == "" {
		return r, nil
	}
	ff, err := load(opts.ConfigPath)
	if err != nil {
		return nil, errors.Trace(err)
	}
	for _, bt := range ff.BoardTypes {
		r.boardTypes[bt.ID] = BoardType{ID: bt.ID, DisplayName: bt.Name, ChipVariant: chiptypes.Variant(bt.Chip), SourceConfigPath: bt.Source}
	}
	for _, a := range ff.Assignments {
		if _, ok := r.boardTypes[a.BoardTypeID]; !ok {
			glog.Warningf("registry: dropping assignment for %q: unknown board type %q", a.BoardUniqueID, a.BoardTypeID)
			continue
		}
		id := BoardId(a.BoardUniqueID)
		r.assignments[id] = Assignment{BoardTypeID: a.BoardTypeID, LogicalName: a.LogicalName, AssignedAt: a.AssignedAt}
		r.boards[id] = &Board{ID: id, Status: StatusOffline, Assignment: cloneAssignment(r.assignments[id])}
	}
	return r, nil
}

func cloneAssignment(a Assignment) *Assignment {
	cp := a
	return &cp
}

// SanitizePortPath turns a raw port path into the PORT-prefixed BoardId
// form used when no MAC is known.
func SanitizePortPath(path string) BoardId {
	return BoardId("PORT" + pathSanitizer.ReplaceAllString(path, "_"))
}

// macBoardId derives the MAC-keyed BoardId form.
func macBoardId(mac [6]byte) BoardId {
	return BoardId(fmt.Sprintf("MAC%02X%02X%02X%02X%02X%02X", mac[0], mac[1], mac[2], mac[3], mac[4], mac[5]))
}

// UpsertFromProbe records a sighting of desc, optionally enriched with a
// ChipIdentity. If identity.MAC is known and a path-keyed placeholder
// already exists for this path, it is merged into the MAC-keyed entry,
// preserving its Assignment (the central "stable identity under hot-plug"
// rule, per the design notes). desc's USB manufacturer/product string (if
// any) is recorded as the board's DeviceDescription.
func (r *Registry) UpsertFromProbe(desc probe.PortDescriptor, identity *detector.ChipIdentity) BoardId {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := desc.Path
	now := time.Now()

	if identity == nil {
		id, ok := r.pathIndex[path]
		if !ok {
			id = SanitizePortPath(path)
			r.pathIndex[path] = id
		}
		b := r.boards[id]
		if b == nil {
			b = &Board{ID: id}
			r.boards[id] = b
		}
		b.CurrentPort = path
		b.DeviceDescription = desc.Manufacturer
		b.LastSeen = now
		if b.Status == StatusOffline || b.Status == "" {
			b.Status = StatusAvailable
		}
		return id
	}

	newID := macBoardId(identity.MAC)
	placeholderID, hadPlaceholder := r.pathIndex[path]

	nb := r.boards[newID]
	if nb == nil {
		nb = &Board{ID: newID}
		r.boards[newID] = nb
	}
	nb.Identity = identity
	nb.CurrentPort = path
	nb.DeviceDescription = desc.Manufacturer
	nb.LastSeen = now
	if nb.Status == StatusOffline || nb.Status == "" {
		nb.Status = StatusAvailable
	}
	if a, ok := r.assignments[newID]; ok {
		nb.Assignment = cloneAssignment(a)
	}

	if hadPlaceholder && placeholderID != newID {
		if old := r.boards[placeholderID]; old != nil {
			if nb.Assignment == nil && old.Assignment != nil {
				nb.Assignment = old.Assignment
			}
			delete(r.boards, placeholderID)
		}
	}
	r.pathIndex[path] = newID

	return newID
}

// MarkAbsent marks a board offline and clears its current port, without
// deleting its entry (so it can reconnect and be recognized later).
func (r *Registry) MarkAbsent(id BoardId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.boards[id]
	if !ok {
		return
	}
	b.Status = StatusOffline
	b.CurrentPort = ""
	for path, pid := range r.pathIndex {
		if pid == id {
			delete(r.pathIndex, path)
		}
	}
}

// List returns a snapshot of all boards, sorted by ID for stable output.
func (r *Registry) List() []Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Board, 0, len(r.boards))
	for _, b := range r.boards {
		if b.Status == StatusOffline && r.offlineRetention > 0 && time.Since(b.LastSeen) > r.offlineRetention {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns a copy of one board, or ok=false if unknown.
func (r *Registry) Get(id BoardId) (Board, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.boards[id]
	if !ok {
		return Board{}, false
	}
	return *b, true
}

// SetStatus transitions a board's Status (used by the Broker/Flash
// Executor to reflect Monitoring/Flashing/Available).
func (r *Registry) SetStatus(id BoardId, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.boards[id]; ok {
		b.Status = status
	}
}

// BoardTypes returns a snapshot of the loaded board types.
func (r *Registry) BoardTypes() []BoardType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]BoardType, 0, len(r.boardTypes))
	for _, bt := range r.boardTypes {
		out = append(out, bt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Assign binds a board-type and optional logical name to a board, then
// persists the file before returning. Returns errUnknownBoardType if
// typeID isn't loaded, errUnknownBoard if id has never been seen.
func (r *Registry) Assign(id BoardId, typeID, logicalName string) error {
	r.mu.Lock()
	if _, ok := r.boardTypes[typeID]; !ok {
		r.mu.Unlock()
		return errUnknownBoardType
	}
	if _, ok := r.boards[id]; !ok {
		r.mu.Unlock()
		return errUnknownBoard
	}
	a := Assignment{BoardTypeID: typeID, LogicalName: logicalName, AssignedAt: time.Now()}
	r.assignments[id] = a
	r.boards[id].Assignment = cloneAssignment(a)
	r.mu.Unlock()

	return r.persist()
}

// Unassign removes a board's assignment.
func (r *Registry) Unassign(id BoardId) error {
	r.mu.Lock()
	if _, ok := r.boards[id]; !ok {
		r.mu.Unlock()
		return errUnknownBoard
	}
	delete(r.assignments, id)
	r.boards[id].Assignment = nil
	r.mu.Unlock()

	return r.persist()
}

// persist writes assignments out synchronously: assignment writes must be
// durable before the API response returns, so Assign/Unassign call this
// inline rather than deferring to a background debounce.
func (r *Registry) persist() error {
	if r.configPath == "" {
		return nil
	}
	r.mu.Lock()
	ff := r.snapshotForPersistLocked()
	r.mu.Unlock()
	return save(r.configPath, ff)
}

func (r *Registry) snapshotForPersistLocked() *fileFormat {
	ff := &fileFormat{SchemaVersion: CurrentSchemaVersion, Server: r.hostname}
	for _, bt := range r.boardTypes {
		ff.BoardTypes = append(ff.BoardTypes, fileBoardType{ID: bt.ID, Name: bt.DisplayName, Chip: string(bt.ChipVariant), Source: bt.SourceConfigPath})
	}
	for id, a := range r.assignments {
		ff.Assignments = append(ff.Assignments, fileAssignment{BoardUniqueID: string(id), BoardTypeID: a.BoardTypeID, LogicalName: a.LogicalName, AssignedAt: a.AssignedAt})
	}
	sort.Slice(ff.BoardTypes, func(i, j int) bool { return ff.BoardTypes[i].ID < ff.BoardTypes[j].ID })
	sort.Slice(ff.Assignments, func(i, j int) bool { return ff.Assignments[i].BoardUniqueID < ff.Assignments[j].BoardUniqueID })
	return ff
}

// IsUnknownBoardType reports whether err is the "unknown board type"
// sentinel, for the HTTP surface to map onto 400.
func IsUnknownBoardType(err error) bool { return errors.Cause(err) == errUnknownBoardType }

// IsUnknownBoard reports whether err is the "unknown board" sentinel, for
// the HTTP surface to map onto 404.
func IsUnknownBoard(err error) bool { return errors.Cause(err) == errUnknownBoard }

// LoadBoardType registers a board type definition (from a config file or
// programmatically); it does not persist, since board types are loaded
// at startup, not mutated at runtime.
func (r *Registry) LoadBoardType(bt BoardType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boardTypes[bt.ID] = bt
}
