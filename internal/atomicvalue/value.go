/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

// Package atomicvalue is a generic, type-safe wrapper around sync/atomic.Value,
// trimmed from nabbar-golib/atomic's Value[T] to the Load/Store/Swap subset this
// repository actually calls.
package atomicvalue

import "sync/atomic"

// Value is a lock-free, type-safe holder for a single value of type T.
type Value[T any] struct {
	av atomic.Value
}

type box[T any] struct {
	v T
}

// New returns a Value holding init.
func New[T any](init T) *Value[T] {
	v := &Value[T]{}
	v.Store(init)
	return v
}

// Load returns the current value, or the zero value of T if never stored.
func (o *Value[T]) Load() T {
	i := o.av.Load()
	if i == nil {
		var zero T
		return zero
	}
	return i.(box[T]).v
}

// Store atomically replaces the current value.
func (o *Value[T]) Store(val T) {
	o.av.Store(box[T]{v: val})
}

// Swap atomically stores new and returns the previous value.
func (o *Value[T]) Swap(new T) T {
	old := o.av.Swap(box[T]{v: new})
	if old == nil {
		var zero T
		return zero
	}
	return old.(box[T]).v
}
