package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/confluxhq/conflux/application/service"
	"github.com/confluxhq/conflux/internal/database"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError maps a service error to an HTTP status and writes the
// uniform error body. Unmapped errors become 500 with a generic message
// so internals never leak to clients.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, database.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, service.ErrActiveSettingDelete):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, ErrBadRequest):
		status = http.StatusBadRequest
		message = err.Error()
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}

	WriteJSON(w, status, errorResponse{Error: message})
}

// ErrBadRequest marks client-side input errors for status mapping.
var ErrBadRequest = errors.New("bad request")
