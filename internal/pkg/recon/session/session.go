// Copyright (c) 2024 Telisik Project and contributors, All rights reserved.
//
// This file is part of Telisik.
//
// Telisik is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation version 3 of the License.
//
// Telisik is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Telisik. If not, see <https://www.gnu.org/licenses/>.

// Package session holds the per-scan state shared between the engine
// and its modules. All state lives for exactly one scan run.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/telisik/telisik/internal/pkg/recon/target"
	"github.com/telisik/telisik/internal/pkg/shared/cache"
	"github.com/telisik/telisik/internal/pkg/shared/idgen"
	log "github.com/telisik/telisik/internal/pkg/shared/logger"
	"github.com/telisik/telisik/pkg/event"
	"github.com/telisik/telisik/pkg/plugin"

	uuid "github.com/satori/go.uuid"
)

var seenMarker = []byte("1")

// Session implements plugin.Session for one scan run
type Session struct {
	id      string
	tgt     *target.Target
	seen    *cache.Cache
	stopped int32
	errored int32

	mu     sync.RWMutex
	errMsg string
	events []event.Event
	emitFn func(evt event.Event)
}

// New returns an initialized Session for tgt. cacheMinutes bounds the
// lifetime of seen-set entries; 0 uses the cache default.
func New(tgt *target.Target, cacheMinutes int) (*Session, error) {
	u, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	seen, err := cache.New("seen", cacheMinutes, 0)
	if err != nil {
		return nil, err
	}
	return &Session{
		id:   u.String(),
		tgt:  tgt,
		seen: seen,
	}, nil
}

// ScanID returns the scan run identifier
func (s *Session) ScanID() string {
	return s.id
}

// Target returns the scan target
func (s *Session) Target() plugin.Target {
	return s.tgt
}

// TargetInfo returns the concrete target for the engine side
func (s *Session) TargetInfo() *target.Target {
	return s.tgt
}

// SetEmitFunc installs the engine hook invoked on every emitted event
func (s *Session) SetEmitFunc(fn func(evt event.Event)) {
	s.mu.Lock()
	s.emitFn = fn
	s.mu.Unlock()
}

// Emit records evt as a scan result and forwards it to the engine.
// Missing IDs and timestamps are filled in here.
func (s *Session) Emit(evt event.Event) {
	if !evt.Valid() {
		log.Warn(log.M{Msg: "Discarding invalid event " + evt.Type, SId: s.id, Mod: evt.Module})
		return
	}
	if evt.ID == "" {
		id, err := idgen.GenerateID()
		if err == nil {
			evt.ID = id
		}
	}
	if evt.Timestamp == 0 {
		evt.Timestamp = time.Now().Unix()
	}
	s.mu.Lock()
	s.events = append(s.events, evt)
	fn := s.emitFn
	s.mu.Unlock()
	if fn != nil {
		fn(evt)
	}
}

// Events returns a copy of all events emitted so far
func (s *Session) Events() []event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]event.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Seen tells whether value was already processed in this scan
func (s *Session) Seen(value string) bool {
	return s.seen.Exists(value)
}

// MarkSeen records value as processed for the rest of the scan
func (s *Session) MarkSeen(value string) {
	s.seen.Set(value, seenMarker)
}

// Stop signals modules to abandon any remaining work
func (s *Session) Stop() {
	atomic.StoreInt32(&s.stopped, 1)
}

// ShouldStop tells whether the scan has been signalled to stop
func (s *Session) ShouldStop() bool {
	return atomic.LoadInt32(&s.stopped) == 1
}

// SetError puts the scan in its terminal error state
func (s *Session) SetError(msg string) {
	atomic.StoreInt32(&s.errored, 1)
	s.mu.Lock()
	if s.errMsg == "" {
		s.errMsg = msg
	}
	s.mu.Unlock()
}

// Errored tells whether the scan is in the terminal error state
func (s *Session) Errored() bool {
	return atomic.LoadInt32(&s.errored) == 1
}

// ErrMsg returns the first error that put the scan in error state
func (s *Session) ErrMsg() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}
