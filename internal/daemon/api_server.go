package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"fieldinspect/internal/api"
	"fieldinspect/internal/logging"
	"fieldinspect/internal/services"
)

// maxBodyBytes bounds submission payloads; inputs are free-form JSON.
const maxBodyBytes = 1 << 20

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon
	svc    *api.InspectionService

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(bind string, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
		svc:    api.NewInspectionService(d.engine),
	}
	srv.server = &http.Server{
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// routes builds the API mux. Every /api route requires an authenticated
// subject; /metrics is public.
func (s *apiServer) routes() http.Handler {
	mux := http.NewServeMux()
	policy := s.daemon.policy

	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.instrument(pattern, s.authMiddleware(policy, h)))
	}
	handle("POST /api/returns/{id}/inspection", s.handleInitialize)
	handle("POST /api/returns/{id}/inspection/stages", s.handleSubmit)
	handle("GET /api/returns/{id}/inspection", s.handleInspection)
	handle("GET /api/returns/{id}/recommendation", s.handleRecommendation)
	handle("GET /api/status", s.handleStatus)

	if s.daemon.metrics != nil {
		mux.Handle("GET /metrics", s.daemon.metrics.Handler())
	}
	return s.requestID(mux)
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleInitialize(w http.ResponseWriter, r *http.Request) {
	id, ok := s.returnID(w, r)
	if !ok {
		return
	}
	resp, err := s.svc.Initialize(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	s.writeJSON(w, status, resp)
}

func (s *apiServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.returnID(w, r)
	if !ok {
		return
	}
	var req api.SubmitStageRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeServiceError(w, r, services.Wrap(services.ErrValidation, "api", "submit_stage", "invalid request body", err))
		return
	}
	resp, err := s.svc.Submit(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleInspection(w http.ResponseWriter, r *http.Request) {
	id, ok := s.returnID(w, r)
	if !ok {
		return
	}
	view, err := s.svc.Inspection(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *apiServer) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.returnID(w, r)
	if !ok {
		return
	}
	view, err := s.svc.Recommendation(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status(r.Context())
	payload := api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		DatabasePath: status.DatabasePath,
		LockFilePath: status.LockFilePath,
		APIBind:      status.APIBind,
		Stats:        api.FromStats(status.Stats),
	}
	if !status.StartedAt.IsZero() {
		payload.StartedAt = status.StartedAt.UTC().Format(time.RFC3339)
	}
	s.writeJSON(w, http.StatusOK, payload)
}

// returnID parses the {id} path segment, writing a 400 on failure.
func (s *apiServer) returnID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.PathValue("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.writeServiceError(w, r, services.Wrap(services.ErrValidation, "api", "parse_return_id",
			fmt.Sprintf("invalid return id %q", raw), nil))
		return 0, false
	}
	return id, true
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := services.FailureKind(err)
	status := statusForKind(kind)
	requestID, _ := services.RequestIDFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		s.log().Error("api request failed",
			logging.String(logging.FieldCorrelationID, requestID),
			logging.String("path", r.URL.Path),
			logging.Error(err),
		)
	}
	s.writeJSON(w, status, errorBody(err.Error(), kind, requestID))
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}

// statusForKind maps failure kinds to HTTP status codes.
func statusForKind(kind string) int {
	switch kind {
	case services.KindPermissionDenied:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindUnprocessable:
		return http.StatusUnprocessableEntity
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(message, kind, requestID string) api.ErrorResponse {
	return api.ErrorResponse{Error: message, Kind: kind, RequestID: requestID}
}
