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

package duration_test

import (
	"encoding/json"
	"testing"

	"github.com/nabbar/edgehttp/internal/duration"
)

func TestParseRoundTrip(t *testing.T) {
	d, err := duration.Parse("900s")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if d.Time().Seconds() != 900 {
		t.Fatalf("expected 900s, got %v", d.Time())
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := duration.Parse("not-a-duration"); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	type wrapper struct {
		D duration.Duration `json:"d"`
	}

	in := wrapper{D: duration.MustParse("1m30s")}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var out wrapper
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if out.D.Time() != in.D.Time() {
		t.Fatalf("round trip mismatch: got %v want %v", out.D.Time(), in.D.Time())
	}
}
