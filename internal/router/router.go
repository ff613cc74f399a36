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

// Package router builds the gin.Engine dispatch table the way
// nabbar-golib/router wraps gin-gonic/gin's Engine behind a small
// route-registration API, adapted to this repository's exact-match
// method+path routes with duplicate detection and a static-file default.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nabbar/edgehttp/internal/xerrors"
)

// Key identifies one route by method and fully-joined path.
type Key struct {
	Method string
	Path   string
}

// Route is one registered (method, path) entry bound to a handler.
type Route struct {
	Key     Key
	Handler http.Handler
}

// Router owns a gin.Engine configured with exact-match routes plus a
// default (NoRoute) handler.
type Router struct {
	engine  *gin.Engine
	context string
	seen    map[Key]bool
}

// New builds a Router whose dynamic routes are mounted under contextPrefix
// (e.g. "/cgi"; empty means root) and whose unmatched requests fall to
// defaultHandler.
func New(contextPrefix string, defaultHandler http.Handler) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	r := &Router{
		engine:  engine,
		context: contextPrefix,
		seen:    make(map[Key]bool),
	}

	engine.NoRoute(gin.WrapH(defaultHandler))

	return r
}

// joinPath mirrors the original's context+suffix join: context stays
// empty-safe, suffix always begins with a leading slash in the result.
func (r *Router) joinPath(suffix string) string {
	if r.context == "" {
		return suffix
	}
	if len(suffix) > 0 && suffix[0] != '/' {
		return r.context + "/" + suffix
	}
	return r.context + suffix
}

// Register adds one (method, pathSuffix) → handler route, joined under the
// router's context prefix. Registering a duplicate (method, computed path)
// is a fatal configuration error.
func (r *Router) Register(method, pathSuffix string, handler http.Handler) error {
	full := r.joinPath(pathSuffix)
	key := Key{Method: method, Path: full}

	if r.seen[key] {
		return xerrors.New(xerrors.CodeRouterDuplicateRoute, "duplicate route: "+method+" "+full)
	}
	r.seen[key] = true

	r.engine.Handle(method, full, gin.WrapH(handler))
	return nil
}

// Engine returns the underlying gin.Engine, an http.Handler usable directly
// by the connection driver.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Routes returns the set of registered routes, for diagnostics and tests.
func (r *Router) Routes() []Key {
	keys := make([]Key, 0, len(r.seen))
	for k := range r.seen {
		keys = append(keys, k)
	}
	return keys
}
