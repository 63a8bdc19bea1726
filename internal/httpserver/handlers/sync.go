package handlers

import (
	"fmt"
	"net/http"

	"github.com/MrSnakeDoc/susradar/internal/domain"
	"github.com/MrSnakeDoc/susradar/internal/httpserver/deps"
	"github.com/MrSnakeDoc/susradar/internal/logger"
	"github.com/MrSnakeDoc/susradar/internal/remote"
)

type credentialsBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

var errSyncDisabled = fmt.Errorf("no sync server configured: %w", domain.ErrNetworkUnavailable)

// syncEnabled writes a 503 and returns false when no sync server is configured.
func syncEnabled(w http.ResponseWriter, r *http.Request, d deps.Deps) bool {
	if d.Sync == nil {
		writeError(w, r, d, errSyncDisabled)
		return false
	}
	return true
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsBody, error) {
	var body credentialsBody
	if err := decodeJSON(w, r, &body); err != nil {
		return body, err
	}
	if body.Username == "" {
		return body, &domain.ValidationError{Field: "username", Reason: "must not be empty"}
	}
	if body.Password == "" {
		return body, &domain.ValidationError{Field: "password", Reason: "must not be empty"}
	}
	return body, nil
}

// Register creates an account on the sync server.
func Register(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !syncEnabled(w, r, d) {
			return
		}
		body, err := decodeCredentials(w, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		if err := d.Sync.Client().Register(r.Context(), body.Username, body.Password); err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusCreated, messageResponse{Message: "account created"})
	}
}

// Login authenticates against the sync server and syncs right away.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !syncEnabled(w, r, d) {
			return
		}
		body, err := decodeCredentials(w, r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		if _, err := d.Sync.Client().Login(r.Context(), body.Username, body.Password); err != nil {
			writeError(w, r, d, err)
			return
		}
		if _, err := d.Sync.Sync(r.Context()); err != nil {
			d.Logger.Warn("initial sync after login failed", logger.Error(err))
		}
		writeJSON(w, http.StatusOK, d.Sync.Client().Status())
	}
}

// Logout forgets the sync credentials.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !syncEnabled(w, r, d) {
			return
		}
		if err := d.Sync.Client().Logout(r.Context()); err != nil {
			writeError(w, r, d, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err))
			return
		}
		writeJSON(w, http.StatusOK, d.Sync.Client().Status())
	}
}

// AuthStatus reports the sync state. It answers "disabled" when no server is configured.
func AuthStatus(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Sync == nil {
			writeJSON(w, http.StatusOK, remote.Status{StateName: "disabled"})
			return
		}
		writeJSON(w, http.StatusOK, d.Sync.Client().Status())
	}
}

// Sync reconciles the local dataset with the sync server.
func Sync(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !syncEnabled(w, r, d) {
			return
		}
		res, err := d.Sync.Sync(r.Context())
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// Probe triggers a connectivity check of the sync server.
func Probe(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.ProbeTrigger == nil {
			writeError(w, r, d, errSyncDisabled)
			return
		}

		select {
		case d.ProbeTrigger <- struct{}{}:
			d.Logger.Info("manual connectivity check triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, messageResponse{Message: "connectivity check triggered"})
		default:
			d.Logger.Warn("connectivity check already pending",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, messageResponse{Message: "connectivity check already pending"})
		}
	}
}
