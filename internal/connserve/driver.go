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

// Package connserve drives a single accepted connection through a
// protocol-agnostic HTTP/1.1 or h2c serve loop bounded by a two-phase
// lifetime timeout, the way nabbar-golib/httpserver configures
// golang.org/x/net/http2 alongside net/http and waits on shutdown signals,
// adapted here to a per-connection serve+graceful-shutdown race instead of
// a process-wide listen loop.
package connserve

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/nabbar/edgehttp/internal/connection"
	"github.com/nabbar/edgehttp/internal/logging"
	"github.com/nabbar/edgehttp/internal/request"
)

// LifetimeConfig bounds one connection's total serve time before graceful
// shutdown is requested, and the grace window after that before the
// connection is dropped unconditionally.
type LifetimeConfig struct {
	MaxLifetime             time.Duration
	GracefulShutdownTimeout time.Duration
}

// Driver serves one accepted net.Conn under the two-phase timeout in
// ConnectionDriver (§4.6): wait up to MaxLifetime for the serve loop to end
// naturally; on expiry, ask for a graceful shutdown and wait up to
// GracefulShutdownTimeout; on a second expiry, drop the connection.
type Driver struct {
	lifetime   LifetimeConfig
	log        logging.Logger
	reqFactory *request.Factory
}

// NewDriver builds a Driver applying lifetime to every connection it
// serves. A Driver is built once per process and reused across every
// accepted connection, so its request.Factory mints request IDs that are
// unique process-wide, not just per connection.
func NewDriver(lifetime LifetimeConfig, log logging.Logger) *Driver {
	return &Driver{lifetime: lifetime, log: log, reqFactory: &request.Factory{}}
}

// Serve drives conn to completion against handler, incrementing guard's
// request counter on every request, and releases guard unconditionally on
// return. handler is auto-upgraded to h2c so one accepted stream may speak
// either HTTP/1.1 or HTTP/2 cleartext.
func (d *Driver) Serve(conn net.Conn, guard *connection.Guard, handler http.Handler) {
	defer guard.Release()

	trace := uuid.New().String()
	log := d.log.WithField("conn_id", guard.ID()).WithField("trace_id", trace)

	counting := countingHandler{inner: handler, guard: guard, reqFactory: d.reqFactory, log: log}

	h2s := &http2.Server{}
	upgraded := h2c.NewHandler(counting, h2s)

	srv := &http.Server{
		Handler:  upgraded,
		ErrorLog: log.GetStdLogger(logging.WarnLevel),
	}
	if err := http2.ConfigureServer(srv, h2s); err != nil {
		log.Warnf("configuring http2 for connection %d: %v", guard.ID(), err)
	}

	listener := newSingleConnListener(conn)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(listener); err != nil {
			log.Warnf("connection %d serve ended: %v", guard.ID(), err)
		}
	}()

	maxTimer := time.NewTimer(d.lifetime.MaxLifetime)
	defer maxTimer.Stop()

	select {
	case <-done:
		return
	case <-maxTimer.C:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), d.lifetime.GracefulShutdownTimeout)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		_ = srv.Shutdown(shutdownCtx)
	}()

	select {
	case <-done:
		return
	case <-shutdownDone:
		select {
		case <-done:
		default:
			_ = conn.Close()
		}
		return
	case <-shutdownCtx.Done():
		log.Warnf("connection %d exceeded graceful shutdown window, dropping", guard.ID())
		_ = srv.Close()
	}
}

type countingHandler struct {
	inner      http.Handler
	guard      *connection.Guard
	reqFactory *request.Factory
	log        logging.Logger
}

func (c countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.guard.IncrementRequests()

	id := c.reqFactory.Next()
	info := request.Info{
		ID:           id,
		ConnectionID: uint64(c.guard.ID()),
		Method:       r.Method,
		Path:         r.URL.Path,
		Host:         r.Host,
		RemoteAddr:   r.RemoteAddr,
		Headers:      r.Header,
	}
	c.log.WithField("request_id", info.ID).Debugf("serving %s %s", info.Method, info.Path)

	c.inner.ServeHTTP(w, r)
}

// singleConnListener yields exactly one net.Conn from Accept, then blocks
// until Close is called, the way a per-connection http.Server needs a
// Listener even though it already holds the one conn it will ever serve.
type singleConnListener struct {
	conn   net.Conn
	taken  bool
	closed chan struct{}
}

func newSingleConnListener(conn net.Conn) *singleConnListener {
	return &singleConnListener{conn: conn, closed: make(chan struct{})}
}

func (l *singleConnListener) Accept() (net.Conn, error) {
	if !l.taken {
		l.taken = true
		return l.conn, nil
	}
	<-l.closed
	return nil, net.ErrClosed
}

func (l *singleConnListener) Close() error {
	select {
	case <-l.closed:
	default:
		close(l.closed)
	}
	return nil
}

func (l *singleConnListener) Addr() net.Addr {
	return l.conn.LocalAddr()
}
