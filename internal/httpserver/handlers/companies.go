package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/susradar/internal/domain"
	"github.com/MrSnakeDoc/susradar/internal/httpserver/deps"
)

// Resolve returns the company tracking ?url=, or 404.
func Resolve(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := d.Radar.Resolve(r.Context(), r.URL.Query().Get("url"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, newCompanyResponse(c, nil))
	}
}

// ListCompanies returns every company with its URLs, sorted by name.
func ListCompanies(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := d.Radar.List(r.Context())
		out := make([]companyResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, fromEntry(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GetCompany returns one company.
func GetCompany(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := d.Radar.Get(r.Context(), companyID(r))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, fromEntry(*e))
	}
}

// AddCompany is the add-to-radar flow.
func AddCompany(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addCompanyRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}
		fields, err := req.fields()
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		e, err := d.Radar.AddCompany(r.Context(), req.URL, fields, req.AdditionalURLs...)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusCreated, fromEntry(*e))
	}
}

// UpdateCompany replaces the editable fields of a company.
func UpdateCompany(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req fieldsRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}
		fields, err := req.fields()
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		id := companyID(r)
		if _, err := d.Radar.UpdateFields(r.Context(), id, fields); err != nil {
			writeError(w, r, d, err)
			return
		}
		e, err := d.Radar.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, fromEntry(*e))
	}
}

// DeleteCompany removes a company and its URLs. Deleting twice is not an error.
func DeleteCompany(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Radar.DeleteRecord(r.Context(), companyID(r)); err != nil {
			writeError(w, r, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ResetCompany restores one field ({"field": "rating"}) or all of them ({}).
func ResetCompany(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}

		id := companyID(r)
		var (
			c       *domain.Company
			applied bool
			err     error
		)
		if req.Field == "" {
			c, applied, err = d.Radar.ResetAll(r.Context(), id)
		} else {
			f, perr := domain.ParseField(req.Field)
			if perr != nil {
				writeError(w, r, d, perr)
				return
			}
			c, applied, err = d.Radar.ResetField(r.Context(), id, f)
		}
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		e, err := d.Radar.Get(r.Context(), id)
		urls := []string(nil)
		if err == nil {
			urls = e.URLs
		}
		writeJSON(w, http.StatusOK, resetResponse{Applied: applied, Company: newCompanyResponse(c, urls)})
	}
}

// AddCompanyURL maps one more URL to a company. A URL already tracked under
// another company is reported as a conflict instead of being moved.
func AddCompanyURL(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req urlRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}

		id := companyID(r)
		if owner, err := d.Radar.Resolve(r.Context(), req.URL); err == nil && owner.ID != id {
			writeError(w, r, d, &domain.URLConflictError{
				URL:         domain.NormalizeURL(req.URL),
				CompanyID:   owner.ID,
				CompanyName: owner.Name,
			})
			return
		}

		if err := d.Radar.AddURL(r.Context(), id, req.URL); err != nil {
			writeError(w, r, d, err)
			return
		}
		e, err := d.Radar.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, fromEntry(*e))
	}
}

// RemoveURL unmaps ?url=. The last URL of a company cannot be removed.
func RemoveURL(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Radar.RemoveURL(r.Context(), r.URL.Query().Get("url")); err != nil {
			writeError(w, r, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func companyID(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if unescaped, err := url.PathUnescape(id); err == nil {
		return unescaped
	}
	return id
}
