package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPanicRecoverer(t *testing.T) {
	wrec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fake", nil)
	cnt := 0
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cnt++
		// params are passed through as expected
		assert.Equal(t, req.URL.Path, r.URL.Path, "unexpected request value")
		panic("boom!")
	})
	wrapped := Chain(h, PanicRecoverer())

	wrapped.ServeHTTP(wrec, req)
	assert.Equal(t, 1, cnt, "underlying handler not called by middleware")
	assert.Equal(t, http.StatusInternalServerError, wrec.Code, "panic must surface as 500")
}

func TestRequestTagger(t *testing.T) {
	wrec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fake", nil)
	var seen string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	})
	Chain(h, RequestTagger()).ServeHTTP(wrec, req)

	assert.NotEmpty(t, seen, "handler must see the stamped request id")
	assert.Equal(t, seen, wrec.Header().Get("X-Request-Id"), "context and header ids must match")
}

func TestChainOrder(t *testing.T) {
	var order []string
	mk := func(tag string) Middleware {
		return func(h http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, tag)
				h.ServeHTTP(w, r)
			})
		}
	}
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	})
	Chain(h, mk("inner"), mk("outer")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
