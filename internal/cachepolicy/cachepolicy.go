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

// Package cachepolicy maps a resolved static file to a Cache-Control
// max-age duration by walking an ordered list of host/path matchers,
// first match wins, the way the front end's static-file rules service
// folds host and path regexes ahead of a fixed or modification-time
// based strategy.
package cachepolicy

import (
	"regexp"
	"time"

	"github.com/nabbar/edgehttp/internal/config"
	"github.com/nabbar/edgehttp/internal/xerrors"
)

// Strategy selects how a matched rule turns into a duration.
type Strategy uint8

const (
	StrategyFixedTime Strategy = iota
	StrategyModTimePlusDelta
)

// Rule is one compiled matcher+strategy pair.
type Rule struct {
	hostRegex *regexp.Regexp
	pathRegex *regexp.Regexp
	strategy  Strategy
	duration  time.Duration
}

func (r Rule) matches(host, path string) bool {
	if r.hostRegex != nil && !r.hostRegex.MatchString(host) {
		return false
	}
	if r.pathRegex != nil && !r.pathRegex.MatchString(path) {
		return false
	}
	return true
}

// Engine is the compiled, ordered rule list consulted per static response.
type Engine struct {
	rules []Rule
}

// Compile builds an Engine from configuration, compiling every regex once
// up front so no rule is recompiled per request.
func Compile(rules []config.StaticFileCacheRule) (*Engine, error) {
	compiled := make([]Rule, 0, len(rules))

	for _, rc := range rules {
		rule := Rule{
			duration: rc.Duration.Time(),
		}

		switch rc.RuleType {
		case config.CacheRuleFixedTime:
			rule.strategy = StrategyFixedTime
		case config.CacheRuleModTimePlusDelta:
			rule.strategy = StrategyModTimePlusDelta
		default:
			return nil, xerrors.New(xerrors.CodeCachePolicyRegex, "unknown cache rule type: "+string(rc.RuleType))
		}

		if rc.HostRegex != "" {
			re, err := regexp.Compile(rc.HostRegex)
			if err != nil {
				return nil, xerrors.Wrap(xerrors.CodeCachePolicyRegex, "compiling host_regex "+rc.HostRegex, err)
			}
			rule.hostRegex = re
		}

		if rc.PathRegex != "" {
			re, err := regexp.Compile(rc.PathRegex)
			if err != nil {
				return nil, xerrors.Wrap(xerrors.CodeCachePolicyRegex, "compiling path_regex "+rc.PathRegex, err)
			}
			rule.pathRegex = re
		}

		compiled = append(compiled, rule)
	}

	return &Engine{rules: compiled}, nil
}

// ResolvedFile is the minimal shape the engine needs from a resolved static
// file: its served path and, when known, its modification time.
type ResolvedFile struct {
	Path    string
	ModTime time.Time
	HasMod  bool
}

// DurationFor returns the Cache-Control max-age duration for a resolved
// file given the request's Host header, or ok=false if no rule matches and
// the caller should emit no cache header at all.
func (e *Engine) DurationFor(host string, f ResolvedFile) (d time.Duration, ok bool) {
	for _, r := range e.rules {
		if !r.matches(host, f.Path) {
			continue
		}

		switch r.strategy {
		case StrategyFixedTime:
			return r.duration, true
		case StrategyModTimePlusDelta:
			if !f.HasMod {
				return 0, true
			}
			remaining := time.Until(f.ModTime.Add(r.duration))
			if remaining < 0 {
				return 0, true
			}
			if remaining > r.duration {
				return r.duration, true
			}
			return remaining, true
		}
	}
	return 0, false
}
