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

// Package request assigns each inbound HTTP request a process-lifetime
// request identifier, for logging correlation only, matching the front
// end's per-request tracing attached to each served call.
package request

import "sync/atomic"

// ID is a monotonically increasing identifier, unique for the life of the
// process.
type ID uint64

// Factory issues sequential request IDs. A single Factory is shared by the
// whole process so IDs stay unique across every connection it serves.
type Factory struct {
	next atomic.Uint64
}

// Next returns the next process-wide request ID, starting at 1.
func (f *Factory) Next() ID {
	return ID(f.next.Add(1))
}

// Info describes one in-flight or completed request for per-request
// logging.
type Info struct {
	ID            ID
	ConnectionID  uint64
	Method        string
	Path          string
	Host          string
	RemoteAddr    string
	Headers       map[string][]string
}
