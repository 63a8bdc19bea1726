package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/susradar/internal/httpserver/deps"
	"github.com/MrSnakeDoc/susradar/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/susradar/internal/httpserver/mw"
)

func init() { Register(registerCompanies) }

func registerCompanies(r chi.Router, d deps.Deps) {
	guard := chi.Chain(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	)

	read := r.With(guard...)
	read.Get("/api/resolve", handlers.Resolve(d))
	read.Get("/api/companies", handlers.ListCompanies(d))
	read.Get("/api/companies/{id}", handlers.GetCompany(d))
	read.Get("/api/backup", handlers.ExportBackup(d))

	write := r.With(append(guard, d.WriteLimit)...)
	write.Post("/api/companies", handlers.AddCompany(d))
	write.Put("/api/companies/{id}", handlers.UpdateCompany(d))
	write.Delete("/api/companies/{id}", handlers.DeleteCompany(d))
	write.Post("/api/companies/{id}/reset", handlers.ResetCompany(d))
	write.Post("/api/companies/{id}/urls", handlers.AddCompanyURL(d))
	write.Delete("/api/urls", handlers.RemoveURL(d))
	write.Post("/api/backup", handlers.ImportBackup(d))
}
