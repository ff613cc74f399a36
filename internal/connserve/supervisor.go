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

package connserve

import (
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/nabbar/edgehttp/internal/config"
	"github.com/nabbar/edgehttp/internal/connection"
	"github.com/nabbar/edgehttp/internal/logging"
	"github.com/nabbar/edgehttp/internal/xerrors"
)

// Supervisor owns one accept loop per configured listener, admitting
// connections through a shared Tracker and handing each admitted stream to
// a Driver, per ListenerSupervisor (§4.7).
type Supervisor struct {
	tracker *connection.Tracker
	driver  *Driver
	handler http.Handler
	log     logging.Logger
}

// NewSupervisor builds a Supervisor serving handler on every admitted
// connection.
func NewSupervisor(tracker *connection.Tracker, driver *Driver, handler http.Handler, log logging.Logger) *Supervisor {
	return &Supervisor{tracker: tracker, driver: driver, handler: handler, log: log}
}

// Run starts one accept goroutine per listener and blocks until the first
// one fails; a listener returning cleanly is also treated as a failure,
// per §4.7 ("healthy termination of any listener is treated as an
// anomaly").
func (s *Supervisor) Run(listeners []config.ListenerConfig) error {
	errs := make(chan error, len(listeners))

	for _, lc := range listeners {
		lc := lc
		ln, err := s.bind(lc)
		if err != nil {
			return err
		}
		go func() {
			errs <- s.acceptLoop(ln, lc.SocketKind)
		}()
	}

	return <-errs
}

func (s *Supervisor) bind(lc config.ListenerConfig) (net.Listener, error) {
	switch lc.SocketKind {
	case config.SocketTCP:
		ln, err := net.Listen("tcp", lc.BindAddress)
		if err != nil {
			return nil, xerrors.Wrap(xerrors.CodeListenerBind, "binding tcp listener "+lc.BindAddress, err)
		}
		return ln, nil
	case config.SocketUnix:
		_ = os.Remove(lc.BindAddress)
		ln, err := net.Listen("unix", lc.BindAddress)
		if err != nil {
			return nil, xerrors.Wrap(xerrors.CodeListenerBind, "binding unix listener "+lc.BindAddress, err)
		}
		return ln, nil
	default:
		return nil, xerrors.New(xerrors.CodeListenerBind, "unknown socket_kind: "+string(lc.SocketKind))
	}
}

func (s *Supervisor) acceptLoop(ln net.Listener, kind config.SocketKind) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("listener %s accept: %w", ln.Addr(), err)
		}

		if tcpConn, ok := conn.(*net.TCPConn); ok {
			if err := tcpConn.SetNoDelay(true); err != nil {
				s.log.Warnf("setting TCP_NODELAY on %s: %v", conn.RemoteAddr(), err)
			}
		}

		guard, ok := s.tracker.TryAdd(kind)
		if !ok {
			_ = conn.Close()
			continue
		}

		go s.driver.Serve(conn, guard, s.handler)
	}
}
