package middleware

import (
	"context"
	"net/http"

	"github.com/segmentio/ksuid"
	log "github.com/sirupsen/logrus"
	cst "wuyrush.io/quire/constants"
)

type Middleware func(http.Handler) http.Handler

// Chain composites given handler and middlewares
func Chain(h http.Handler, ms ...Middleware) http.Handler {
	for _, m := range ms {
		h = m(h)
	}
	return h
}

// PanicRecoverer recovers from panic of underlying handlers and answers 500
// instead of dropping the connection
func PanicRecoverer() Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if reason := recover(); reason != nil {
					log.WithField("panicReason", reason).Error("got panic from underlying handler")
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			h.ServeHTTP(w, r)
		})
	}
}

type ctxKey string

const ridKey ctxKey = "requestID"

// RequestTagger stamps every request with a ksuid for log correlation, both in
// the request context and on the X-Request-Id response header.
func RequestTagger() Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := ksuid.NewRandom()
			if err != nil {
				log.WithError(err).Error("error generating request id")
				h.ServeHTTP(w, r)
				return
			}
			w.Header().Set("X-Request-Id", id.String())
			h.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ridKey, id.String())))
		})
	}
}

// RequestID returns the id RequestTagger stamped into ctx, or empty.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(ridKey).(string)
	return v
}

// AccessLogger logs one line per handled request.
func AccessLogger() Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.WithFields(log.Fields{
				"httpMethod":          r.Method,
				"path":                r.URL.Path,
				cst.LogFieldRequestID: RequestID(r.Context()),
			}).Info("handling request")
			h.ServeHTTP(w, r)
		})
	}
}
