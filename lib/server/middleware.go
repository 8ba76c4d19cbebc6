package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader is the response header carrying the request ID.
const RequestIDHeader = "X-Request-Id"

type loggerKey struct{}

// logger returns the request's log entry.
func logger(r *http.Request) logrus.FieldLogger {
	if l, ok := r.Context().Value(loggerKey{}).(logrus.FieldLogger); ok {
		return l
	}
	return logrus.StandardLogger()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// requestLogger assigns each request an ID and logs it when it completes.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set(RequestIDHeader, id)
		entry := s.log.WithFields(logrus.Fields{
			"request": id,
			"method":  r.Method,
			"path":    r.URL.Path,
		})
		r = r.WithContext(context.WithValue(r.Context(), loggerKey{}, logrus.FieldLogger(entry)))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		entry.WithFields(logrus.Fields{
			"status":   rec.status,
			"duration": time.Since(start),
		}).Info("request")
	})
}

// recovery turns a panic in a handler into a 500 response.
func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger(r).WithField("panic", v).Error("handler panicked")
				writeJSON(w, http.StatusInternalServerError, &errorResponse{Error: "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
