package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/susradar/internal/backup"
	"github.com/MrSnakeDoc/susradar/internal/httpserver/deps"
	"github.com/MrSnakeDoc/susradar/internal/logger"
)

// ExportBackup downloads the whole dataset as a backup file.
func ExportBackup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := d.Radar.Export(r.Context())
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", backup.Filename(f.Metadata.ExportedAt)))
		if err := backup.Encode(w, f); err != nil {
			d.Logger.Debug("failed to write backup", logger.Error(err))
		}
	}
}

// ImportBackup replaces all data with the uploaded backup. It requires ?confirm=true.
func ImportBackup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		f, err := backup.Decode(r.Body)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		res, err := d.Radar.Import(r.Context(), f, confirmed)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
