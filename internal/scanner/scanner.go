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

// Package scanner drives the periodic probe/detect/reconcile tick: run
// the Device Probe, diff its output against the Registry's last-known
// ports, mark what vanished absent, and fan out chip detection for
// anything new with a bounded worker pool. Structure is a direct
// generalization of mos/ui.go's port-change-poll goroutine, extended
// from "list changed" to full added/removed/same reconciliation.
package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/mongoose-os/espbrewd/internal/detector"
	"github.com/mongoose-os/espbrewd/internal/mqttpub"
	"github.com/mongoose-os/espbrewd/internal/multierror"
	"github.com/mongoose-os/espbrewd/internal/probe"
	"github.com/mongoose-os/espbrewd/internal/registry"
)

// DefaultScanInterval matches §5's "scanner tick 30s (configurable)".
const DefaultScanInterval = 30 * time.Second

// DefaultDetectConcurrency bounds how many Chip Detector passes run at
// once per tick, per §4.8 "concurrency cap (default 4)".
const DefaultDetectConcurrency = 4

// OnChange is invoked after every board state transition the loop makes
// (new board seen, board went offline, board identity enriched). nil is
// a valid no-op observer.
type OnChange func(registry.Board)

// Options configures a Loop.
type Options struct {
	ScanInterval       time.Duration
	DetectConcurrency  int
	DetectCacheTTL     time.Duration
	MQTT               *mqttpub.Publisher
	OnChange           OnChange
}

func (o Options) resolved() Options {
	r := o
	if r.ScanInterval <= 0 {
		r.ScanInterval = DefaultScanInterval
	}
	if r.DetectConcurrency <= 0 {
		r.DetectConcurrency = DefaultDetectConcurrency
	}
	return r
}

// Loop owns the ticking goroutine; Stop cancels it and waits for the
// in-flight tick (if any) to finish.
type Loop struct {
	opts  Options
	reg   *registry.Registry
	cache *detector.Cache

	cancel context.CancelFunc
	done   chan struct{}

	mu         sync.Mutex
	knownPorts map[string]bool
}

// New creates a Loop bound to reg. It does not start ticking until Run
// is called.
func New(reg *registry.Registry, opts Options) *Loop {
	o := opts.resolved()
	return &Loop{
		opts:       o,
		reg:        reg,
		cache:      detector.NewCache(o.DetectCacheTTL),
		knownPorts: make(map[string]bool),
	}
}

// Run starts the ticking goroutine; it returns immediately. Stop (or
// cancelling ctx) ends the loop.
func (l *Loop) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})

	go func() {
		defer close(l.done)
		ticker := time.NewTicker(l.opts.ScanInterval)
		defer ticker.Stop()

		l.tick()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.tick()
			}
		}
	}()
}

// Stop cancels the loop and blocks until its goroutine has returned.
func (l *Loop) Stop() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
}

func (l *Loop) tick() {
	ports := probe.Probe()

	l.mu.Lock()
	added, removed, seen := diffPorts(l.knownPorts, ports)
	l.knownPorts = seen
	l.mu.Unlock()

	for _, path := range removed {
		l.markAbsent(path)
	}
	for _, p := range ports {
		if !contains(added, p.Path) {
			l.refreshSame(p)
		}
	}

	if len(added) == 0 {
		return
	}

	for _, p := range added {
		id := l.reg.UpsertFromProbe(p, nil)
		glog.V(1).Infof("scanner: new port %s -> %s", p.Path, id)
		if b, ok := l.reg.Get(id); ok {
			l.notify(b)
		}
	}

	if err := l.detectAll(added); err != nil {
		glog.Warningf("scanner: tick detection errors: %v", err)
	}
}

func contains(ports []probe.PortDescriptor, path string) bool {
	for _, p := range ports {
		if p.Path == path {
			return true
		}
	}
	return false
}

// diffPorts computes the §4.8 three-way split (added/removed/same) of a
// fresh probe against the previous tick's known port set. Pulled out of
// tick() as a pure function so the reconciliation logic is testable
// without a real serial enumeration.
func diffPorts(known map[string]bool, ports []probe.PortDescriptor) (added []probe.PortDescriptor, removed []string, seen map[string]bool) {
	seen = make(map[string]bool, len(ports))
	for _, p := range ports {
		seen[p.Path] = true
		if !known[p.Path] {
			added = append(added, p)
		}
	}
	for path := range known {
		if !seen[path] {
			removed = append(removed, path)
		}
	}
	return added, removed, seen
}

func (l *Loop) markAbsent(path string) {
	id := registry.SanitizePortPath(path)
	if _, ok := l.reg.Get(id); ok {
		l.reg.MarkAbsent(id)
		if b, ok := l.reg.Get(id); ok {
			l.notify(b)
		}
		return
	}
	// The board may already be MAC-keyed; scan all boards for a matching
	// current port rather than guessing a second id scheme.
	for _, b := range l.reg.List() {
		if b.CurrentPort == path {
			l.reg.MarkAbsent(b.ID)
			b.Status = registry.StatusOffline
			b.CurrentPort = ""
			l.notify(b)
			return
		}
	}
}

func (l *Loop) refreshSame(p probe.PortDescriptor) {
	for _, b := range l.reg.List() {
		if b.CurrentPort == p.Path {
			return
		}
	}
	l.reg.UpsertFromProbe(p, nil)
}

// detectAll fans chip detection for newly-seen ports out across a
// bounded worker pool, collecting per-port failures into one
// multierror rather than letting one bad port blank the whole tick's
// log line.
func (l *Loop) detectAll(added []probe.PortDescriptor) error {
	sem := make(chan struct{}, l.opts.DetectConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var tickErr error

	for _, p := range added {
		if !p.IsLikelyESP32() {
			continue
		}
		p := p
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			identity, err := l.cache.Get(p.Path, p.SerialNumber)
			if err != nil {
				mu.Lock()
				tickErr = multierror.Append(tickErr, err)
				mu.Unlock()
				return
			}

			id := l.reg.UpsertFromProbe(p, identity)
			glog.V(1).Infof("scanner: detected %s on %s -> %s", identity.Variant, p.Path, id)
			if b, ok := l.reg.Get(id); ok {
				l.notify(b)
				l.publishStatus(b)
			}
		}()
	}

	wg.Wait()
	return tickErr
}

func (l *Loop) notify(b registry.Board) {
	if l.opts.OnChange != nil {
		l.opts.OnChange(b)
	}
	l.publishStatus(b)
}

func (l *Loop) publishStatus(b registry.Board) {
	if l.opts.MQTT == nil {
		return
	}
	msg := mqttpub.StatusMessage{
		BoardID: string(b.ID),
		Status:  string(b.Status),
		Port:    b.CurrentPort,
	}
	if b.Identity != nil {
		msg.ChipType = string(b.Identity.Variant)
	}
	if b.Assignment != nil {
		msg.LogicalName = b.Assignment.LogicalName
	}
	l.opts.MQTT.PublishStatus(msg)
}
