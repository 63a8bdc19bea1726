package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/susradar/internal/domain"
	"github.com/MrSnakeDoc/susradar/internal/httpserver/deps"
	"github.com/MrSnakeDoc/susradar/internal/logger"
)

// maxBodyBytes caps request bodies; a backup of a few thousand companies fits.
const maxBodyBytes = 8 << 20

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, d deps.Deps, err error) {
	var (
		status = http.StatusInternalServerError
		body   = errorResponse{Error: err.Error()}
		verr   *domain.ValidationError
	)

	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		body.Field = verr.Field
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConfirmationRequired):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrCannotRemoveLastURL):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrAuthenticationFailed):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrRemote):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrStorageUnavailable), errors.Is(err, domain.ErrNetworkUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		d.Logger.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err))
		if status == http.StatusInternalServerError {
			body.Error = http.StatusText(status)
		}
	}

	writeJSON(w, status, body)
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &domain.ValidationError{Field: "body", Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}
