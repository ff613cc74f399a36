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

// Package buildinfo assembles the process' version/build metadata map once,
// the way the front end's version module memoizes VERGEN_*-style build
// constants behind a singleton; here sourced from runtime and
// debug.ReadBuildInfo instead of compile-time injected env vars, plus an
// optional ldflags-injected version string for release builds.
package buildinfo

import (
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/nabbar/edgehttp/internal/atomicvalue"
)

// Version is overridable at link time via:
//
//	-ldflags "-X github.com/nabbar/edgehttp/internal/buildinfo.Version=1.2.3"
var Version = "dev"

var (
	once  sync.Once
	cache = atomicvalue.New(map[string]string(nil))
)

// Map returns the process' build/version metadata as a flat string map,
// matching the original's BTreeMap<&str, &str> shape for version_info.
func Map() map[string]string {
	once.Do(func() {
		info := map[string]string{
			"version":    Version,
			"go_version": runtime.Version(),
			"os":         runtime.GOOS,
			"arch":       runtime.GOARCH,
		}

		if bi, ok := debug.ReadBuildInfo(); ok {
			info["module_path"] = bi.Main.Path
			if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
				info["module_version"] = bi.Main.Version
			}
			for _, s := range bi.Settings {
				switch s.Key {
				case "vcs.revision":
					info["vcs_revision"] = s.Value
				case "vcs.time":
					info["vcs_time"] = s.Value
				case "vcs.modified":
					info["vcs_modified"] = s.Value
				}
			}
		}

		cache.Store(info)
	})
	return cache.Load()
}
