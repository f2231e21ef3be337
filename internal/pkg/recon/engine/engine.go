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

// Package engine runs scans: it seeds a session from the target, moves
// events through a queue, and fans them out to the modules watching
// each event category.
package engine

import (
	"context"
	"path"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/enriquebris/goconcurrentqueue"
	rc "github.com/paulbellamy/ratecounter"
	"github.com/remeh/sizedwaitgroup"

	"github.com/telisik/telisik/internal/pkg/recon/session"
	"github.com/telisik/telisik/internal/pkg/recon/target"
	"github.com/telisik/telisik/internal/pkg/shared/fs"
	log "github.com/telisik/telisik/internal/pkg/shared/logger"
	"github.com/telisik/telisik/internal/pkg/shared/str"
	"github.com/telisik/telisik/pkg/event"
	"github.com/telisik/telisik/pkg/plugin"
)

const (
	defaultMaxWorkers = 10
	reporterInterval  = 30 * time.Second
)

// Scan status values as exposed in reports and over the API
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusAborted  = "aborted"
	StatusError    = "error"
)

// Engine dispatches events to modules and tracks scan runs
type Engine struct {
	mods        []plugin.Module
	maxWorkers  int
	maxDuration time.Duration

	mu    sync.RWMutex
	scans map[string]*Scan
}

// New returns an Engine over mods. maxWorkers bounds the number of
// events processed concurrently per scan; 0 uses the default.
func New(mods []plugin.Module, maxWorkers int) *Engine {
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}
	return &Engine{
		mods:       mods,
		maxWorkers: maxWorkers,
		scans:      make(map[string]*Scan),
	}
}

// SetMaxDuration bounds the run time of scans started afterwards,
// 0 means unlimited
func (e *Engine) SetMaxDuration(d time.Duration) {
	e.maxDuration = d
}

// Modules returns the modules the engine dispatches to
func (e *Engine) Modules() []plugin.Module {
	return e.mods
}

// Scan returns the scan run with the given ID, or nil
func (e *Engine) Scan(id string) *Scan {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scans[id]
}

// Scans returns all scan runs started on this engine
func (e *Engine) Scans() []*Scan {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Scan, 0, len(e.scans))
	for _, sc := range e.scans {
		out = append(out, sc)
	}
	return out
}

// Start begins a scan of tgtValue and returns immediately. A non-empty
// only list restricts the scan to the named modules. The scan runs
// until no events remain, the context is cancelled, or Stop is called.
func (e *Engine) Start(ctx context.Context, tgtValue string, only []string) (*Scan, error) {
	tgt, err := target.New(tgtValue)
	if err != nil {
		return nil, err
	}
	sess, err := session.New(tgt, 0)
	if err != nil {
		return nil, err
	}
	watch := make(map[string][]plugin.Module)
	for _, m := range e.mods {
		if len(only) > 0 && !str.IsInList(only, m.Name()) {
			continue
		}
		for _, t := range m.WatchedEvents() {
			watch[t] = append(watch[t], m)
		}
	}
	sc := &Scan{
		sess:      sess,
		watch:     watch,
		q:         goconcurrentqueue.NewFIFO(),
		swg:       sizedwaitgroup.New(e.maxWorkers),
		rc:        rc.NewRateCounter(1 * time.Second),
		delivered: make(map[string]bool),
		done:      make(chan struct{}),
		started:   time.Now(),
	}
	sess.SetEmitFunc(sc.enqueue)

	e.mu.Lock()
	e.scans[sess.ScanID()] = sc
	e.mu.Unlock()

	log.Info(log.M{Msg: "Starting scan of " + tgt.Value(), SId: sess.ScanID()})
	sess.Emit(event.Event{
		Type:     tgt.SeedEventType(),
		Data:     tgt.Value(),
		Module:   "root",
		SourceID: event.TypeRoot,
	})
	if e.maxDuration > 0 {
		timer := time.AfterFunc(e.maxDuration, func() {
			log.Warn(log.M{Msg: "Scan exceeded max duration " + e.maxDuration.String(), SId: sc.ID()})
			sc.Stop()
		})
		go func() {
			<-sc.done
			timer.Stop()
		}()
	}
	go sc.run(ctx)
	return sc, nil
}

// scanOver is the queue sentinel enqueued once no event remains
type scanOver struct{}

// Scan is a single scan run
type Scan struct {
	sess  *session.Session
	watch map[string][]plugin.Module
	q     *goconcurrentqueue.FIFO
	swg   sizedwaitgroup.SizedWaitGroup
	rc    *rc.RateCounter

	pending int64
	dlvMu   sync.Mutex
	// delivered keys are module|type|data, so each module sees a
	// given observation at most once per scan
	delivered map[string]bool

	started time.Time
	finMu   sync.RWMutex
	finish  time.Time
	final   string
	done    chan struct{}
}

// ID returns the scan run identifier
func (sc *Scan) ID() string {
	return sc.sess.ScanID()
}

// Target returns the scan target value
func (sc *Scan) Target() string {
	return sc.sess.TargetInfo().Value()
}

// Events returns all events recorded so far
func (sc *Scan) Events() []event.Event {
	return sc.sess.Events()
}

// Done returns a channel closed when the scan has completed
func (sc *Scan) Done() <-chan struct{} {
	return sc.done
}

// Stop signals the scan to abandon remaining work
func (sc *Scan) Stop() {
	log.Info(log.M{Msg: "Stopping scan", SId: sc.ID()})
	sc.sess.Stop()
}

// Status returns the current scan state
func (sc *Scan) Status() string {
	select {
	case <-sc.done:
	default:
		return StatusRunning
	}
	sc.finMu.RLock()
	defer sc.finMu.RUnlock()
	return sc.final
}

// Report summarizes a completed or in-flight scan run
type Report struct {
	ScanID     string        `json:"scan_id"`
	Target     string        `json:"target"`
	Status     string        `json:"status"`
	Error      string        `json:"error,omitempty"`
	StartedAt  int64         `json:"started_at"`
	FinishedAt int64         `json:"finished_at,omitempty"`
	EventCount int           `json:"event_count"`
	Events     []event.Event `json:"events"`
}

// Result builds the scan report from the current session state
func (sc *Scan) Result() Report {
	evts := sc.sess.Events()
	r := Report{
		ScanID:     sc.ID(),
		Target:     sc.Target(),
		Status:     sc.Status(),
		Error:      sc.sess.ErrMsg(),
		StartedAt:  sc.started.Unix(),
		EventCount: len(evts),
		Events:     evts,
	}
	sc.finMu.RLock()
	if !sc.finish.IsZero() {
		r.FinishedAt = sc.finish.Unix()
	}
	sc.finMu.RUnlock()
	return r
}

// WriteReport persists the scan report as indented JSON under dir
func (sc *Scan) WriteReport(dir string) error {
	if err := fs.EnsureDir(dir); err != nil {
		return err
	}
	return fs.OverwriteFileValueIndent(sc.Result(), path.Join(dir, "scan_"+sc.ID()+".json"))
}

// enqueue is installed as the session emit hook, every emitted event
// passes through here exactly once
func (sc *Scan) enqueue(evt event.Event) {
	sc.rc.Incr(1)
	atomic.AddInt64(&sc.pending, 1)
	if err := sc.q.Enqueue(evt); err != nil {
		log.Warn(log.M{Msg: "Cannot enqueue event " + evt.ID + ": " + err.Error(), SId: sc.ID()})
		atomic.AddInt64(&sc.pending, -1)
	}
}

func (sc *Scan) run(ctx context.Context) {
	go sc.reporter(reporterInterval)
	for {
		res, err := sc.q.DequeueOrWaitForNextElement()
		if err != nil {
			log.Warn(log.M{Msg: "Error occur while dequeing event: " + err.Error(), SId: sc.ID()})
			continue
		}
		if _, over := res.(scanOver); over {
			break
		}
		evt := res.(event.Event)
		sc.swg.Add()
		go func(evt event.Event) {
			defer sc.swg.Done()
			sc.dispatch(ctx, evt)
			// the last in-flight event with an empty queue means no
			// module can produce anything more
			if atomic.AddInt64(&sc.pending, -1) == 0 {
				_ = sc.q.Enqueue(scanOver{})
			}
		}(evt)
	}
	sc.swg.Wait()
	final := StatusFinished
	if sc.sess.Errored() {
		final = StatusError
	} else if sc.sess.ShouldStop() {
		final = StatusAborted
	}
	sc.finMu.Lock()
	sc.finish = time.Now()
	sc.final = final
	sc.finMu.Unlock()
	close(sc.done)
	log.Info(log.M{Msg: "Scan of " + sc.Target() + " completed with status " +
		sc.Status() + ", " + strconv.Itoa(len(sc.sess.Events())) + " events", SId: sc.ID()})
}

func (sc *Scan) dispatch(ctx context.Context, evt event.Event) {
	for _, m := range sc.watch[evt.Type] {
		// modules don't consume their own output
		if m.Name() == evt.Module {
			continue
		}
		key := m.Name() + "|" + evt.Type + "|" + evt.Data
		sc.dlvMu.Lock()
		if sc.delivered[key] {
			sc.dlvMu.Unlock()
			continue
		}
		sc.delivered[key] = true
		sc.dlvMu.Unlock()

		if sc.sess.ShouldStop() || ctx.Err() != nil {
			return
		}
		if err := m.HandleEvent(ctx, sc.sess, evt); err != nil {
			log.Warn(log.M{Msg: "Module returned error: " + err.Error(),
				SId: sc.ID(), Mod: m.Name(), Item: evt.Data})
		}
	}
}

// reporter regularly prints out scan queue overview
func (sc *Scan) reporter(d time.Duration) {
	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for {
		select {
		case <-sc.done:
			return
		case <-ticker.C:
			log.Info(log.M{Msg: "Queue length: " + strconv.Itoa(sc.q.GetLen()) +
				" events/sec: " + strconv.FormatInt(sc.rc.Rate(), 10) +
				" total events: " + strconv.Itoa(len(sc.sess.Events())), SId: sc.ID()})
		}
	}
}
