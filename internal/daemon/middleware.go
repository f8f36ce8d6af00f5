package daemon

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"fieldinspect/internal/logging"
	"fieldinspect/internal/services"
)

const requestIDHeader = "X-Request-ID"

// requestID tags each request with a correlation id, honouring one supplied
// by the caller.
func (s *apiServer) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records latency and status per route and logs at debug.
func (s *apiServer) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(started)

		s.daemon.metrics.RecordHTTPRequest(r.Method, route, rec.status, elapsed)
		logging.WithContext(r.Context(), s.log()).Debug("api request",
			logging.String("route", route),
			logging.Int("status", rec.status),
			logging.Duration("duration", elapsed),
		)
	})
}
