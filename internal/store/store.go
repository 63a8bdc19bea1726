// Package store defines the record store capability shared by every backend.
package store

import (
	"context"

	"github.com/MrSnakeDoc/susradar/internal/domain"
)

// Store persists the whole dataset. Implementations: the Redis, SQL and
// memory local stores, and the remote-backed store wrapping one of them.
type Store interface {
	// Load returns a copy of the persisted dataset. An empty store yields an empty dataset.
	Load(ctx context.Context) (*domain.Dataset, error)

	// Save replaces the persisted dataset.
	Save(ctx context.Context, ds *domain.Dataset) error

	// DeleteCompany removes a record and its mappings. Deleting an absent id succeeds.
	DeleteCompany(ctx context.Context, id string) error
}

// Credentials is what the sync client keeps between runs.
type Credentials struct {
	Token     string
	Username  string
	ServerURL string
}

// CredentialStore persists sync credentials next to the dataset.
type CredentialStore interface {
	LoadCredentials(ctx context.Context) (Credentials, error)
	SaveCredentials(ctx context.Context, creds Credentials) error
	ClearCredentials(ctx context.Context) error
}

// Backend is a local store able to hold credentials too.
type Backend interface {
	Store
	CredentialStore
}
