// Package routes mounts the HTTP API. Each file registers its own group of
// routes from init, so adding an endpoint never touches the server setup.
package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/susradar/internal/httpserver/deps"
)

// Registrar mounts a group of routes.
type Registrar func(r chi.Router, d deps.Deps)

var registry []Registrar

// Register adds a route group. Call it from init.
func Register(reg Registrar) {
	registry = append(registry, reg)
}

// RegisterAll mounts every group on r. Called once by httpserver.NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, reg := range registry {
		reg(r, d)
	}
}
