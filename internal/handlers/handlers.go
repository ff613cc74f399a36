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

// Package handlers implements the introspection JSON responders:
// connection_info, request_info, version_info and the commands endpoints,
// each infallible at the wire level per the front end's handler contract.
package handlers

import (
	"net/http"
	"sort"
	"sync"

	gojson "github.com/goccy/go-json"

	"github.com/nabbar/edgehttp/internal/buildinfo"
	"github.com/nabbar/edgehttp/internal/commandexec"
	"github.com/nabbar/edgehttp/internal/connection"
	"github.com/nabbar/edgehttp/internal/logging"
)

func writeJSON(w http.ResponseWriter, log logging.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "public, no-cache")

	body, err := gojson.Marshal(v)
	if err != nil {
		log.Warnf("marshaling json response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Warnf("writing json response: %v", err)
	}
}

// ConnectionInfoHandler serves `GET {ctx}/connection_info`.
func ConnectionInfoHandler(tracker *connection.Tracker, log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log, http.StatusOK, tracker.Snapshot())
	})
}

// requestInfoBody is the echoed shape for `GET {ctx}/request_info`.
type requestInfoBody struct {
	Method  string              `json:"method"`
	Path    string              `json:"path"`
	Host    string              `json:"host"`
	Remote  string              `json:"remote_addr"`
	Headers map[string][]string `json:"headers"`
}

// RequestInfoHandler serves `GET {ctx}/request_info`, echoing the request's
// method, path and headers with keys sorted for deterministic output.
func RequestInfoHandler(log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := make(map[string][]string, len(r.Header))
		keys := make([]string, 0, len(r.Header))
		for k, v := range r.Header {
			headers[k] = v
			keys = append(keys, k)
		}
		sort.Strings(keys)

		writeJSON(w, log, http.StatusOK, requestInfoBody{
			Method:  r.Method,
			Path:    r.URL.Path,
			Host:    r.Host,
			Remote:  r.RemoteAddr,
			Headers: headers,
		})
	})
}

// VersionInfoHandler serves `GET {ctx}/version_info`, a stable JSON map for
// the process lifetime (buildinfo.Map is memoized).
func VersionInfoHandler(log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log, http.StatusOK, buildinfo.Map())
	})
}

// CommandsListHandler serves `GET {ctx}/commands`: a precomputed JSON array
// of configured commands, marshaled once and served as a cached string.
func CommandsListHandler(exec *commandexec.Executor, log logging.Logger) http.Handler {
	var (
		cached    []byte
		cacheOnce sync.Once
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cacheOnce.Do(func() {
			b, err := gojson.Marshal(exec.Commands())
			if err != nil {
				log.Warnf("marshaling commands list: %v", err)
				return
			}
			cached = b
		})

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "public, no-cache")

		if cached == nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(cached); err != nil {
			log.Warnf("writing commands list response: %v", err)
		}
	})
}

// CommandRunHandler serves `GET {ctx}/commands/{id}` for one configured
// command, gated by the executor's semaphore.
func CommandRunHandler(exec *commandexec.Executor, cmdID string, log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cmd, ok := exec.Lookup(cmdID)
		if !ok {
			w.Header().Set("Cache-Control", "public, no-cache")
			w.WriteHeader(http.StatusNotFound)
			return
		}

		resp, err := exec.Run(r.Context(), cmd)
		if err != nil {
			w.Header().Set("Cache-Control", "public, no-cache")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		writeJSON(w, log, http.StatusOK, resp)
	})
}
