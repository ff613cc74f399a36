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

package staticfile_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nabbar/edgehttp/internal/cachepolicy"
	"github.com/nabbar/edgehttp/internal/config"
	"github.com/nabbar/edgehttp/internal/duration"
	"github.com/nabbar/edgehttp/internal/logging"
	"github.com/nabbar/edgehttp/internal/staticfile"
)

func setupRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.png"), []byte("fakepng"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "error.html"), []byte("<html>error</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func newHandler(t *testing.T, root string, rules []config.StaticFileCacheRule) *staticfile.Handler {
	t.Helper()
	engine, err := cachepolicy.Compile(rules)
	if err != nil {
		t.Fatal(err)
	}
	resolver := staticfile.NewResolver(root, true, true)
	return staticfile.NewHandler(resolver, engine, filepath.Join(root, "error.html"), nil, logging.New())
}

func TestServeFoundFileWithCacheHeader(t *testing.T) {
	root := setupRoot(t)
	h := newHandler(t, root, []config.StaticFileCacheRule{
		{PathRegex: `\.png$`, RuleType: config.CacheRuleFixedTime, Duration: duration.Duration(900 * time.Second)},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x.png", nil)
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Cache-Control"); got != "public, max-age=900" {
		t.Fatalf("unexpected Cache-Control: %q", got)
	}
}

func TestServeNotFoundServesErrorPage(t *testing.T) {
	root := setupRoot(t)
	h := newHandler(t, root, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/missing.png", nil)
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w.Body.Len() == 0 {
		t.Fatal("expected error page body")
	}
}

func TestDotPathBlocked(t *testing.T) {
	root := setupRoot(t)
	if err := os.WriteFile(filepath.Join(root, ".hidden"), []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := newHandler(t, root, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/.hidden", nil)
	h.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestMethodNotMatched(t *testing.T) {
	root := setupRoot(t)
	h := newHandler(t, root, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x.png", nil)
	h.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestNoRuleMatchOmitsCacheControlMaxAge(t *testing.T) {
	root := setupRoot(t)
	h := newHandler(t, root, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x.png", nil)
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Cache-Control"); got != "" {
		t.Fatalf("expected no Cache-Control header, got %q", got)
	}
}

func TestPrecompressedBrVariantServed(t *testing.T) {
	root := setupRoot(t)
	if err := os.WriteFile(filepath.Join(root, "x.png.br"), []byte("brotli-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := newHandler(t, root, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x.png", nil)
	req.Header.Set("Accept-Encoding", "br, gzip")
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Encoding"); got != "br" {
		t.Fatalf("expected br content-encoding, got %q", got)
	}
}
