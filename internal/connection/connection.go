/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package connection tracks live connections against a global admission
// limit and folds per-connection extrema (age, request count) into running
// min/max statistics as connections close, the way the front end's original
// connection tracker service does, adapted onto Go's sync primitives instead
// of an async actor singleton.
package connection

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/nabbar/edgehttp/internal/config"
)

// ID is a process-lifetime-unique, monotonically increasing connection
// identifier.
type ID uint64

// SocketKind is an alias of config.SocketKind, re-exported here for
// per-connection reporting.
type SocketKind = config.SocketKind

// Info is an immutable snapshot of a tracked connection's identity plus a
// live view onto its request counter.
type Info struct {
	ID          ID
	SocketKind  SocketKind
	CreatedAt   time.Time
	numRequests *atomic.Uint64
}

// NumRequests returns the number of requests served so far on this
// connection.
func (i Info) NumRequests() uint64 {
	if i.numRequests == nil {
		return 0
	}
	return i.numRequests.Load()
}

// Metrics is the running, O(1)-updated summary of all connections that have
// ever been tracked, both open and closed. MaxRequestsPerConnection counts
// closed connections only.
type Metrics struct {
	MaxOpenConnections        int
	ConnectionLimitHits       uint64
	MinConnectionAge          *time.Duration
	MaxConnectionAge          *time.Duration
	MaxRequestsPerConnection  uint64
}

// Snapshot is a point-in-time view of the tracker suitable for JSON
// serialization by the connection_info handler.
type Snapshot struct {
	Limit           int
	OpenConnections int
	Metrics         Metrics
	Connections     []Info
}

// Tracker enforces a global admission limit over live connections and folds
// closed-connection statistics into Metrics.
type Tracker struct {
	mu      sync.Mutex
	limit   int
	nextID  ID
	open    map[ID]*trackedConn
	metrics Metrics
}

type trackedConn struct {
	info        Info
	createdMono time.Time
}

// NewTracker builds a Tracker admitting at most limit concurrent
// connections.
func NewTracker(limit int) *Tracker {
	return &Tracker{
		limit: limit,
		open:  make(map[ID]*trackedConn),
	}
}

// TryAdd attempts to admit a new connection of the given socket kind. ok is
// false, with a nil Guard, if the tracker is already at its limit.
func (t *Tracker) TryAdd(kind SocketKind) (*Guard, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.open) >= t.limit {
		t.metrics.ConnectionLimitHits++
		return nil, false
	}

	t.nextID++
	id := t.nextID
	reqs := &atomic.Uint64{}

	tc := &trackedConn{
		info: Info{
			ID:          id,
			SocketKind:  kind,
			CreatedAt:   time.Now(),
			numRequests: reqs,
		},
		createdMono: time.Now(),
	}
	t.open[id] = tc

	if len(t.open) > t.metrics.MaxOpenConnections {
		t.metrics.MaxOpenConnections = len(t.open)
	}

	return &Guard{tracker: t, id: id, reqs: reqs}, true
}

func (t *Tracker) remove(id ID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tc, ok := t.open[id]
	if !ok {
		return
	}
	delete(t.open, id)

	age := time.Since(tc.createdMono)
	if t.metrics.MinConnectionAge == nil || age < *t.metrics.MinConnectionAge {
		t.metrics.MinConnectionAge = &age
	}
	if t.metrics.MaxConnectionAge == nil || age > *t.metrics.MaxConnectionAge {
		t.metrics.MaxConnectionAge = &age
	}

	reqs := tc.info.numRequests.Load()
	if reqs > t.metrics.MaxRequestsPerConnection {
		t.metrics.MaxRequestsPerConnection = reqs
	}
}

// Snapshot returns the current tracker state. The reported min/max
// connection age fold in the age (as of this call's monotonic now) of every
// still-open connection alongside the archived extrema already folded in by
// remove(), so a snapshot taken while long-lived connections are still open
// does not under-report the lifetime extrema.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	conns := make([]Info, 0, len(t.open))
	metrics := t.metrics

	for _, tc := range t.open {
		conns = append(conns, tc.info)

		age := time.Since(tc.createdMono)
		if metrics.MinConnectionAge == nil || age < *metrics.MinConnectionAge {
			metrics.MinConnectionAge = &age
		}
		if metrics.MaxConnectionAge == nil || age > *metrics.MaxConnectionAge {
			metrics.MaxConnectionAge = &age
		}
	}

	return Snapshot{
		Limit:           t.limit,
		OpenConnections: len(t.open),
		Metrics:         metrics,
		Connections:     conns,
	}
}

// Guard represents admission into the tracker for the lifetime of one
// connection. It is released via Release, which the connection driver
// defers for every connection it serves, mirroring the original
// implementation's Drop-triggered removal.
type Guard struct {
	tracker *Tracker
	id      ID
	reqs    *atomic.Uint64
}

// ID returns the admitted connection's identifier.
func (g *Guard) ID() ID { return g.id }

// IncrementRequests records that another request was served on this
// connection.
func (g *Guard) IncrementRequests() {
	g.reqs.Add(1)
}

// Release folds this connection's final statistics into the tracker and
// frees its admission slot. Calling it again is a no-op: the tracker ignores
// a release for an ID it no longer holds.
func (g *Guard) Release() {
	g.tracker.remove(g.id)
}
