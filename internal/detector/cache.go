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
package detector

import (
	"sync"
	"time"
)

const DefaultCacheTTL = 1 * time.Hour

type cacheKey struct {
	path   string
	serial string
}

type cacheEntry struct {
	identity *ChipIdentity
	err      error
}

// Cache memoizes Detect results per (path, device serial) so a board
// isn't re-detected every scan tick of its physical connection. Entries
// expire on their own via time.AfterFunc rather than being checked
// against a stored timestamp on every lookup.
type Cache struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
	timers  map[cacheKey]*time.Timer
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[cacheKey]cacheEntry),
		timers:  make(map[cacheKey]*time.Timer),
	}
}

// Get runs Detect(path) unless a non-expired result for (path, serial) is
// cached, in which case it's returned directly.
func (c *Cache) Get(path, deviceSerial string) (*ChipIdentity, error) {
	key := cacheKey{path: path, serial: deviceSerial}

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return e.identity, e.err
	}
	c.mu.Unlock()

	identity, err := Detect(path)

	c.mu.Lock()
	c.entries[key] = cacheEntry{identity: identity, err: err}
	if t, ok := c.timers[key]; ok {
		t.Stop()
	}
	c.timers[key] = time.AfterFunc(c.ttl, func() {
		c.mu.Lock()
		delete(c.entries, key)
		delete(c.timers, key)
		c.mu.Unlock()
	})
	c.mu.Unlock()

	return identity, err
}

// Invalidate drops any cached result for (path, serial), forcing the next
// Get to re-detect.
func (c *Cache) Invalidate(path, deviceSerial string) {
	key := cacheKey{path: path, serial: deviceSerial}
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.timers[key]; ok {
		t.Stop()
		delete(c.timers, key)
	}
	delete(c.entries, key)
}
