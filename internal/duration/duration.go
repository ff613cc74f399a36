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

// Package duration wraps time.Duration so that configuration values can be
// written as human strings ("900s", "1m30s") in YAML/JSON and still read
// back as a plain time.Duration at the call site.
package duration

import (
	"strings"
	"time"
)

type Duration time.Duration

func Parse(s string) (Duration, error) {
	s = strings.Trim(s, `"'`)
	v, e := time.ParseDuration(s)
	if e != nil {
		return 0, e
	}
	return Duration(v), nil
}

func MustParse(s string) Duration {
	d, e := Parse(s)
	if e != nil {
		panic(e)
	}
	return d
}

func (d Duration) Time() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	return d.unmarshal(b)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if e := unmarshal(&s); e != nil {
		return e
	}
	return d.unmarshal([]byte(s))
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	return d.unmarshal(b)
}

func (d *Duration) unmarshal(b []byte) error {
	v, e := Parse(string(b))
	if e != nil {
		return e
	}
	*d = v
	return nil
}
