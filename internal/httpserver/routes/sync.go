package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/susradar/internal/httpserver/deps"
	"github.com/MrSnakeDoc/susradar/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/susradar/internal/httpserver/mw"
)

func init() { Register(registerSync) }

func registerSync(r chi.Router, d deps.Deps) {
	guard := chi.Chain(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	)

	r.With(guard...).Get("/api/auth/status", handlers.AuthStatus(d))

	w := r.With(append(guard, d.WriteLimit)...)
	w.Post("/api/auth/register", handlers.Register(d))
	w.Post("/api/auth/login", handlers.Login(d))
	w.Post("/api/auth/logout", handlers.Logout(d))
	w.Post("/api/sync", handlers.Sync(d))
	w.Post("/api/sync/probe", handlers.Probe(d))
}
