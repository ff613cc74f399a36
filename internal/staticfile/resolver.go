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

// Package staticfile resolves an inbound request against a configured
// static root and serves it, applying the configured cache policy and
// client-error page, mirroring StaticFileHandler's resolve+policy+compose
// pipeline.
package staticfile

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Outcome classifies a resolve attempt.
type Outcome uint8

const (
	OutcomeFound Outcome = iota
	OutcomeDirectoryRedirect
	OutcomeNotFound
	OutcomePermissionDenied
	OutcomeMethodNotMatched
)

// Encoding is a precompressed content-encoding variant.
type Encoding string

const (
	EncodingIdentity Encoding = ""
	EncodingBrotli   Encoding = "br"
	EncodingGzip     Encoding = "gzip"
)

// Result is the outcome of resolving one request against the static root.
type Result struct {
	Outcome      Outcome
	AbsPath      string
	RelPath      string
	ModTime      time.Time
	HasModTime   bool
	Encoding     Encoding
	RedirectPath string
}

// Resolver maps requests to files under Root, the way the front end's
// external static-file resolution library is assumed to behave, adapted
// onto os.Stat and precompressed-sibling lookup since no corpus library
// exposes this exact resolve contract.
type Resolver struct {
	Root      string
	AllowBr   bool
	AllowGzip bool
}

// NewResolver builds a Resolver rooted at root.
func NewResolver(root string, allowBr, allowGzip bool) *Resolver {
	return &Resolver{Root: root, AllowBr: allowBr, AllowGzip: allowGzip}
}

// Resolve classifies method+urlPath (as received, before cleaning) against
// the static root, negotiating a precompressed variant from acceptEncoding
// when the underlying file and a sibling .br/.gz both exist.
func (r *Resolver) Resolve(method, urlPath, acceptEncoding string) Result {
	if method != http.MethodGet && method != http.MethodHead {
		return Result{Outcome: OutcomeMethodNotMatched}
	}

	cleaned := path.Clean("/" + urlPath)
	rel := strings.TrimPrefix(cleaned, "/")
	abs := filepath.Join(r.Root, filepath.FromSlash(rel))

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsPermission(err) {
			return Result{Outcome: OutcomePermissionDenied, RelPath: rel}
		}
		return Result{Outcome: OutcomeNotFound, RelPath: rel}
	}

	if info.IsDir() {
		if !strings.HasSuffix(urlPath, "/") {
			return Result{Outcome: OutcomeDirectoryRedirect, RelPath: rel, RedirectPath: cleaned + "/"}
		}
		abs = filepath.Join(abs, "index.html")
		info, err = os.Stat(abs)
		if err != nil {
			return Result{Outcome: OutcomeNotFound, RelPath: rel}
		}
	}

	res := Result{
		Outcome:    OutcomeFound,
		AbsPath:    abs,
		RelPath:    rel,
		ModTime:    info.ModTime(),
		HasModTime: true,
	}

	if enc, variantPath, ok := r.negotiatePrecompressed(abs, acceptEncoding); ok {
		res.AbsPath = variantPath
		res.Encoding = enc
	}

	return res
}

func (r *Resolver) negotiatePrecompressed(abs, acceptEncoding string) (Encoding, string, bool) {
	if r.AllowBr && strings.Contains(acceptEncoding, "br") {
		if p := abs + ".br"; fileExists(p) {
			return EncodingBrotli, p, true
		}
	}
	if r.AllowGzip && strings.Contains(acceptEncoding, "gzip") {
		if p := abs + ".gz"; fileExists(p) {
			return EncodingGzip, p, true
		}
	}
	return EncodingIdentity, "", false
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// IsDotPath reports whether the request path's cleaned form begins with a
// dot segment or contains a `/.` segment, per the dot-path blocking rule.
func IsDotPath(urlPath string) bool {
	cleaned := path.Clean("/" + urlPath)
	if strings.HasPrefix(cleaned, "/.") {
		return true
	}
	return strings.Contains(cleaned, "/.")
}
