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
package broker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cesanta/go-serial/serial"
	"github.com/golang/glog"
	"github.com/juju/errors"
)

// ErrPortBusy is returned by Subscribe when the Flash Executor currently
// holds the port.
var ErrPortBusy = errors.New("port busy: flash in progress")

// ErrPortUnavailable is returned by Subscribe when the OS-level open
// fails.
var ErrPortUnavailable = errors.New("port unavailable")

// SessionState is one board session's place in the §4.5 state machine:
// Closed -> Opening -> Open -> (Draining -> Closed | Flashing -> Closed).
type SessionState int

const (
	StateClosed SessionState = iota
	StateOpening
	StateOpen
	StateDraining
	StateFlashing
)

// Options configures a Broker.
type Options struct {
	BaudRate        uint
	LingerDelay     time.Duration
	KeepaliveWindow time.Duration
	QueueBytes      int
}

func (o Options) resolved() Options {
	r := o
	if r.BaudRate == 0 {
		r.BaudRate = 115200
	}
	if r.LingerDelay == 0 {
		r.LingerDelay = 500 * time.Millisecond
	}
	if r.KeepaliveWindow == 0 {
		r.KeepaliveWindow = 60 * time.Second
	}
	return r
}

// Broker owns at most one physical serial connection per board and
// multiplexes it to many subscribers.
type Broker struct {
	opts Options

	mu       sync.Mutex
	sessions map[string]*session

	subscriberSeq uint64
}

// New creates a Broker. Callers pass the serial port path with each
// Subscribe/OpenForFlash call, so the Broker doesn't need to know about
// the Registry directly.
func New(opts Options) *Broker {
	return &Broker{opts: opts.resolved(), sessions: make(map[string]*session)}
}

type session struct {
	mu    sync.Mutex // one-mutation-at-a-time per board, per §9
	board string
	path  string
	baud  uint

	state    SessionState
	port     serial.Serial
	portLock sync.RWMutex // RLock while the reader goroutine loads port, Lock while closing swaps it to nil — mirrors serialCodec.closeLock

	subscribers map[*Subscriber]struct{}

	lastKeepalive time.Time
	lingerTimer   *time.Timer
	readerDone    chan struct{}
}

// Subscription is the handle Subscribe returns: a Subscriber to Recv()
// from, plus Unsubscribe to release it.
type Subscription struct {
	broker *Broker
	board  string
	sub    *Subscriber
}

// Subscriber returns the underlying Subscriber so callers can Recv(ctx)
// with whatever context.Context governs their push connection (e.g. the
// HTTP surface's request/websocket context).
func (s *Subscription) Subscriber() *Subscriber { return s.sub }

// Unsubscribe releases the subscription; the session tears itself down
// after LingerDelay if no one re-subscribes.
func (s *Subscription) Unsubscribe() {
	s.broker.unsubscribe(s.board, s.sub)
}

func (b *Broker) getOrCreateSession(boardID string) *session {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[boardID]
	if !ok {
		s = &session{board: boardID, subscribers: make(map[*Subscriber]struct{})}
		b.sessions[boardID] = s
	}
	return s
}

// Subscribe joins (or opens) the session for boardID at path.
func (b *Broker) Subscribe(boardID, path string) (*Subscription, error) {
	s := b.getOrCreateSession(boardID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateFlashing {
		return nil, ErrPortBusy
	}
	if s.lingerTimer != nil {
		s.lingerTimer.Stop()
		s.lingerTimer = nil
	}

	if s.state == StateClosed {
		oo := serial.OpenOptions{
			PortName:        path,
			BaudRate:        b.opts.BaudRate,
			DataBits:        8,
			ParityMode:      serial.PARITY_NONE,
			StopBits:        1,
			MinimumReadSize: 1,
		}
		port, err := serial.Open(oo)
		if err != nil {
			return nil, errors.Annotate(ErrPortUnavailable, err.Error())
		}
		s.port = port
		s.path = path
		s.baud = b.opts.BaudRate
		s.state = StateOpen
		s.readerDone = make(chan struct{})
		go b.readLoop(s)
	}

	id := atomic.AddUint64(&b.subscriberSeq, 1)
	sub := newSubscriber(fmt.Sprintf("%s-%d", boardID, id), b.opts.QueueBytes)
	s.subscribers[sub] = struct{}{}
	s.lastKeepalive = time.Now()

	return &Subscription{broker: b, board: boardID, sub: sub}, nil
}

func (b *Broker) readLoop(s *session) {
	defer close(s.readerDone)
	buf := make([]byte, 4096)
	for {
		s.portLock.RLock()
		port := s.port
		s.portLock.RUnlock()
		if port == nil {
			return
		}
		n, err := port.Read(buf)
		if n > 0 {
			data := append([]byte(nil), buf[:n]...)
			s.mu.Lock()
			for sub := range s.subscribers {
				sub.push(data)
			}
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (b *Broker) unsubscribe(boardID string, sub *Subscriber) {
	b.mu.Lock()
	s, ok := b.sessions[boardID]
	b.mu.Unlock()
	if !ok {
		return
	}

	s.mu.Lock()
	delete(s.subscribers, sub)
	sub.close()
	empty := len(s.subscribers) == 0
	if empty && s.state == StateOpen {
		if s.lingerTimer != nil {
			s.lingerTimer.Stop()
		}
		s.lingerTimer = time.AfterFunc(b.opts.LingerDelay, func() {
			b.teardownIfStillEmpty(boardID)
		})
	}
	s.mu.Unlock()
}

func (b *Broker) teardownIfStillEmpty(boardID string) {
	b.mu.Lock()
	s, ok := b.sessions[boardID]
	b.mu.Unlock()
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.subscribers) != 0 || s.state != StateOpen {
		return
	}
	b.closePortLocked(s)
}

func (b *Broker) closePortLocked(s *session) {
	if s.port == nil {
		s.state = StateClosed
		return
	}
	s.portLock.Lock()
	port := s.port
	s.port = nil
	s.portLock.Unlock()
	if port != nil {
		if err := port.Close(); err != nil {
			glog.Warningf("broker: closing %s: %v", s.path, err)
		}
	}
	s.state = StateClosed
}

// Keepalive records the time of a session's latest keepalive. Nothing in
// the Broker reads that time: a session is not expired when keepalives
// lapse.
func (b *Broker) Keepalive(boardID string) {
	b.mu.Lock()
	s, ok := b.sessions[boardID]
	b.mu.Unlock()
	if !ok {
		return
	}
	s.mu.Lock()
	s.lastKeepalive = time.Now()
	s.mu.Unlock()
}

// Reset pulses DTR/RTS on the open port. It holds the session lock for
// the whole pulse, so the read loop waits to hand bytes to subscribers
// until the pulse ends; those bytes are then forwarded unchanged.
func (b *Broker) Reset(boardID string) error {
	s := b.getOrCreateSession(boardID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateFlashing {
		return errors.New("cannot reset: flash in progress")
	}
	if s.state != StateOpen || s.port == nil {
		return errors.New("cannot reset: no open session")
	}
	port := s.port
	if err := port.SetDTR(false); err != nil {
		return errors.Trace(err)
	}
	if err := port.SetRTS(true); err != nil {
		return errors.Trace(err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := port.SetDTR(true); err != nil {
		return errors.Trace(err)
	}
	if err := port.SetRTS(false); err != nil {
		return errors.Trace(err)
	}
	time.Sleep(50 * time.Millisecond)
	return nil
}

// FlashGuard is the exclusive handle the Flash Executor holds while
// flashing. Release reopens the port for monitoring if anyone
// re-subscribes afterward (naturally, since the session state returns to
// Closed and the next Subscribe reopens it).
type FlashGuard struct {
	broker *Broker
	board  string
}

// Release returns the session to Closed, allowing future subscriptions
// to reopen the port.
func (g *FlashGuard) Release() {
	g.broker.mu.Lock()
	s, ok := g.broker.sessions[g.board]
	g.broker.mu.Unlock()
	if !ok {
		return
	}
	s.mu.Lock()
	s.state = StateClosed
	s.mu.Unlock()
}

// HandoffToFlash evicts all subscribers with a typed end-of-stream marker,
// closes the port, and returns an exclusive guard. The one-mutation-at-a-
// time rule is enforced by s.mu, held for the duration of the handoff.
func (b *Broker) HandoffToFlash(boardID string) (*FlashGuard, error) {
	s := b.getOrCreateSession(boardID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateFlashing {
		return nil, errors.New("flash already in progress")
	}

	s.state = StateDraining
	for sub := range s.subscribers {
		sub.endSession("flashing")
	}
	s.subscribers = make(map[*Subscriber]struct{})
	if s.lingerTimer != nil {
		s.lingerTimer.Stop()
		s.lingerTimer = nil
	}
	b.closePortLocked(s)
	if s.readerDone != nil {
		<-s.readerDone
	}
	s.state = StateFlashing

	return &FlashGuard{broker: b, board: boardID}, nil
}

// OpenForFlash is called by the Flash Executor, holding a FlashGuard, to
// get direct access to the serial port at baud for the stub-loader
// sequence. The Broker keeps no subscriber fan-out active while flashing.
func (b *Broker) OpenForFlash(boardID, path string, baud uint) (serial.Serial, error) {
	oo := serial.OpenOptions{
		PortName:        path,
		BaudRate:        baud,
		DataBits:        8,
		ParityMode:      serial.PARITY_NONE,
		StopBits:        1,
		MinimumReadSize: 0,
	}
	port, err := serial.Open(oo)
	if err != nil {
		return nil, errors.Annotate(ErrPortUnavailable, err.Error())
	}
	return port, nil
}

// Shutdown ends every active session with reason "shutdown", per §5's
// drain-on-SIGINT/SIGTERM requirement.
func (b *Broker) Shutdown() {
	b.mu.Lock()
	sessions := make([]*session, 0, len(b.sessions))
	for _, s := range b.sessions {
		sessions = append(sessions, s)
	}
	b.mu.Unlock()

	for _, s := range sessions {
		s.mu.Lock()
		for sub := range s.subscribers {
			sub.endSession("shutdown")
		}
		s.subscribers = make(map[*Subscriber]struct{})
		if s.state == StateOpen {
			b.closePortLocked(s)
		}
		s.mu.Unlock()
	}
}
