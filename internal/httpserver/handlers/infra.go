package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/susradar/internal/httpserver/deps"
	"github.com/MrSnakeDoc/susradar/internal/remote"
)

type componentStatus struct {
	OK        bool   `json:"ok"`
	Companies *int   `json:"companies,omitempty"`
	URLs      *int   `json:"urls,omitempty"`
	Backend   string `json:"backend,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Impact    string `json:"impact,omitempty"`
	Error     string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra describes the store and the sync link.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store": checkStore(r.Context(), d),
			"sync":  checkSync(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if store, ok := components["store"]; ok && !store.OK {
		return "critical" // nothing can be saved
	}
	if sync, ok := components["sync"]; ok && !sync.OK {
		return "local-only"
	}
	return "synced"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	status := componentStatus{OK: true, Backend: d.StoreBackend}

	if d.StorePinger != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := d.StorePinger.Ping(pingCtx); err != nil {
			status.OK = false
			status.Impact = "edits-disabled"
			status.Error = "timeout"
			return status
		}
	}

	ds, err := d.Radar.Store().Load(ctx)
	if err != nil {
		status.OK = false
		status.Impact = "edits-disabled"
		status.Error = "unreadable"
		return status
	}
	companies, urls := len(ds.Companies), ds.CountURLs()
	status.Companies = &companies
	status.URLs = &urls
	return status
}

func checkSync(d deps.Deps) componentStatus {
	if d.Sync == nil {
		return componentStatus{OK: false, Mode: "disabled", Impact: "local-only"}
	}

	st := d.Sync.Client().State()
	status := componentStatus{OK: st == remote.StateOnlineAuthenticated, Mode: st.String()}
	if !status.OK {
		status.Impact = "changes-kept-locally"
	}
	return status
}
