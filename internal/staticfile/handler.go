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

package staticfile

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/nabbar/edgehttp/internal/cachepolicy"
	"github.com/nabbar/edgehttp/internal/logging"
)

// Handler serves static files under Root, falling back to a client-error
// page for not-found/permission-denied/method-not-matched/dot-path cases,
// applying the cache-policy engine's Cache-Control header to 2xx responses.
type Handler struct {
	resolver   *Resolver
	policy     *cachepolicy.Engine
	errorPage  string
	errorCache *time.Duration
	log        logging.Logger
}

// NewHandler builds a Handler. errorPagePath is served verbatim (with
// precompressed-variant negotiation) for every client-error classification.
func NewHandler(resolver *Resolver, policy *cachepolicy.Engine, errorPagePath string, errorCache *time.Duration, log logging.Logger) *Handler {
	return &Handler{resolver: resolver, policy: policy, errorPage: errorPagePath, errorCache: errorCache, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	acceptEncoding := req.Header.Get("Accept-Encoding")

	res := h.resolver.Resolve(req.Method, req.URL.Path, acceptEncoding)

	switch res.Outcome {
	case OutcomeMethodNotMatched:
		h.serveClientError(w, req, http.StatusBadRequest, acceptEncoding)
		return
	case OutcomeNotFound:
		h.serveClientError(w, req, http.StatusNotFound, acceptEncoding)
		return
	case OutcomePermissionDenied:
		h.serveClientError(w, req, http.StatusForbidden, acceptEncoding)
		return
	}

	// Dot-path blocking applies only once the request has classified as
	// found or a directory redirect, so a non-GET/HEAD request to a dot
	// path still reports method_not_matched instead of being masked here.
	if IsDotPath(res.RelPath) {
		h.serveClientError(w, req, http.StatusForbidden, acceptEncoding)
		return
	}

	if res.Outcome == OutcomeDirectoryRedirect {
		http.Redirect(w, req, res.RedirectPath, http.StatusMovedPermanently)
		return
	}

	f, err := os.Open(res.AbsPath)
	if err != nil {
		h.serveInternalError(w)
		return
	}
	defer f.Close()

	if d, ok := h.policy.DurationFor(req.Host, cachepolicy.ResolvedFile{
		Path:    res.RelPath,
		ModTime: res.ModTime,
		HasMod:  res.HasModTime,
	}); ok {
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int64(d.Seconds())))
	}

	if res.Encoding != EncodingIdentity {
		w.Header().Set("Content-Encoding", string(res.Encoding))
		w.Header().Set("Vary", "Accept-Encoding")
	}

	http.ServeContent(w, req, res.RelPath, res.ModTime, f)
}

func (h *Handler) serveClientError(w http.ResponseWriter, req *http.Request, status int, acceptEncoding string) {
	w.Header().Set("Cache-Control", "public, no-cache")
	if h.errorCache != nil {
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int64(h.errorCache.Seconds())))
	}

	if h.errorPage == "" {
		w.WriteHeader(status)
		return
	}

	path := h.errorPage
	if enc, variantPath, ok := h.resolver.negotiatePrecompressed(path, acceptEncoding); ok {
		path = variantPath
		w.Header().Set("Content-Encoding", string(enc))
	}

	f, err := os.Open(path)
	if err != nil {
		w.WriteHeader(status)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := io.Copy(w, f); err != nil {
		h.log.Warnf("writing client error page: %v", err)
	}
}

func (h *Handler) serveInternalError(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "public, no-cache")
	w.WriteHeader(http.StatusInternalServerError)
}
