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

package router_test

import (
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/edgehttp/internal/router"
)

func defaultHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("static-fallback"))
	})
}

var _ = Describe("Router", func() {
	Describe("Register/dispatch", func() {
		It("should dispatch a registered route under the context prefix", func() {
			r := router.New("/api", defaultHandler())

			err := r.Register(http.MethodGet, "/version_info", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("{}"))
			}))
			Expect(err).ToNot(HaveOccurred())

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/version_info", nil)
			r.Engine().ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("should fall through to the default handler on an unmatched path", func() {
			r := router.New("/api", defaultHandler())

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/version_info", nil)
			r.Engine().ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(w.Body.String()).To(Equal("static-fallback"))
		})

		It("should reject a duplicate (method, path) registration", func() {
			r := router.New("", defaultHandler())
			h := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {})

			Expect(r.Register(http.MethodGet, "/commands", h)).To(Succeed())
			Expect(r.Register(http.MethodGet, "/commands", h)).To(HaveOccurred())
		})

		It("should join routes at the root when the context prefix is empty", func() {
			r := router.New("", defaultHandler())

			err := r.Register(http.MethodGet, "/request_info", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			Expect(err).ToNot(HaveOccurred())

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/request_info", nil)
			r.Engine().ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
		})
	})
})
