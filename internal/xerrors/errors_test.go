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

package xerrors_test

import (
	"errors"
	"testing"

	"github.com/nabbar/edgehttp/internal/xerrors"
)

func TestWrapUnwrap(t *testing.T) {
	parent := errors.New("boom")
	e := xerrors.Wrap(xerrors.CodeConfigRead, "reading config", parent)

	if e.Code() != xerrors.CodeConfigRead {
		t.Fatalf("expected code %d, got %d", xerrors.CodeConfigRead, e.Code())
	}
	if !errors.Is(e, parent) {
		t.Fatal("expected errors.Is to unwrap to parent")
	}
	if e.Error() != "reading config: boom" {
		t.Fatalf("unexpected message: %s", e.Error())
	}
}

func TestIsByCodeAndMessage(t *testing.T) {
	a := xerrors.New(xerrors.CodeCachePolicyRegex, "bad regex")
	b := xerrors.New(xerrors.CodeCachePolicyRegex, "bad regex")

	if !a.Is(b) {
		t.Fatal("expected equal code+message errors to match Is")
	}
}
