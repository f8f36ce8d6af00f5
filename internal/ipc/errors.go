package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"fieldinspect/internal/api"
	"fieldinspect/internal/services"
)

// ErrUnauthorized reports a missing or rejected bearer token.
var ErrUnauthorized = errors.New("unauthorized")

// decodeError converts an API error body into an error carrying the matching
// sentinel marker.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body api.ErrorResponse
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(data))
		if body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
	}
	marker := markerForKind(body.Kind, resp.StatusCode)
	msg := body.Error
	if body.RequestID != "" {
		msg = fmt.Sprintf("%s (request %s)", msg, body.RequestID)
	}
	return &RemoteError{Status: resp.StatusCode, Kind: body.Kind, Message: msg, marker: marker}
}

// RemoteError is a failure reported by the daemon.
type RemoteError struct {
	Status  int
	Kind    string
	Message string
	marker  error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("daemon returned %d: %s", e.Status, e.Message)
}

// Unwrap exposes the sentinel marker for errors.Is.
func (e *RemoteError) Unwrap() error {
	return e.marker
}

func markerForKind(kind string, status int) error {
	switch kind {
	case services.KindPermissionDenied:
		return services.ErrPermissionDenied
	case services.KindNotFound:
		return services.ErrNotFound
	case services.KindUnprocessable:
		return services.ErrUnprocessable
	case services.KindValidation:
		return services.ErrValidation
	case services.KindConflict:
		return services.ErrConflict
	case services.KindStorage:
		return services.ErrStorage
	}
	if status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}
