package api

import (
	"net/http"
	"runtime/debug"
	"time"

	log "github.com/sirupsen/logrus"
)

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrw, r)

		log.WithFields(log.Fields{
			"remote":   r.RemoteAddr,
			"status":   wrw.status,
			"duration": time.Since(start),
		}).Debugf("[api] %s %s", r.Method, r.URL.Path)
	})
}

func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Errorf("[api] panic recovered: %v\n%s", err, debug.Stack())
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
