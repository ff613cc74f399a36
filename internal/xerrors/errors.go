/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

// Package xerrors is a trimmed, domain-renamed take on the coded-error
// pattern used throughout nabbar-golib/errors: every error carries an
// HTTP-like numeric code plus an optional parent chain, so a config or
// startup failure can be logged and compared by code without string
// matching.
package xerrors

import "strings"

// CodeError is a small numeric classification for an error, analogous to an
// HTTP status code. 0 means "unclassified".
type CodeError uint16

const (
	CodeUnknown             CodeError = 0
	CodeConfigRead          CodeError = 100
	CodeConfigParse         CodeError = 101
	CodeConfigInvalid       CodeError = 102
	CodeRouterDuplicateRoute CodeError = 110
	CodeRouterInvalidPath   CodeError = 111
	CodeCachePolicyRegex    CodeError = 120
	CodeListenerBind        CodeError = 130
	CodeStaticResolve       CodeError = 140
)

// Error is the interface every coded error in this module implements.
type Error interface {
	error
	Code() CodeError
	Is(err error) bool
	Unwrap() error
}

type ers struct {
	code    CodeError
	message string
	parent  error
}

// New builds a leaf coded error.
func New(code CodeError, message string) Error {
	return &ers{code: code, message: message}
}

// Wrap builds a coded error whose Unwrap returns parent, preserving the
// original failure for %w-style inspection while still exposing a code.
func Wrap(code CodeError, message string, parent error) Error {
	return &ers{code: code, message: message, parent: parent}
}

func (e *ers) Error() string {
	if e.parent == nil {
		return e.message
	}
	return e.message + ": " + e.parent.Error()
}

func (e *ers) Code() CodeError {
	return e.code
}

func (e *ers) Unwrap() error {
	return e.parent
}

func (e *ers) Is(err error) bool {
	if err == nil {
		return false
	}
	if o, ok := err.(*ers); ok {
		return o.code == e.code && strings.EqualFold(o.message, e.message)
	}
	return strings.EqualFold(err.Error(), e.Error())
}
