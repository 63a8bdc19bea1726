package remote

import (
	"context"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/susradar/internal/domain"
	"github.com/MrSnakeDoc/susradar/internal/logger"
	"github.com/MrSnakeDoc/susradar/internal/store"
)

// Store is the remote-backed store: every read and write goes to the local
// store first, writes are then mirrored to the sync server when logged in.
type Store struct {
	mu     sync.Locker
	local  store.Store
	client *Client
	logger logger.Logger
}

// NewStore wraps local with best-effort remote mirroring.
func NewStore(local store.Store, client *Client, log logger.Logger) *Store {
	return &Store{
		mu:     &sync.Mutex{},
		local:  local,
		client: client,
		logger: log.With(logger.String("component", "sync")),
	}
}

// SetLocker replaces the lock Sync holds from the local load to the merged
// save. Pass the lock of the service mutating the same store so that edits
// and syncs are serialised.
func (s *Store) SetLocker(l sync.Locker) { s.mu = l }

// Client returns the sync client behind the store.
func (s *Store) Client() *Client { return s.client }

// Load reads the local store only.
func (s *Store) Load(ctx context.Context) (*domain.Dataset, error) {
	return s.local.Load(ctx)
}

// Save writes locally, then mirrors to the server. Mirror failures are only logged.
func (s *Store) Save(ctx context.Context, ds *domain.Dataset) error {
	if err := s.local.Save(ctx, ds); err != nil {
		return err
	}
	if s.client.State() != StateOnlineAuthenticated {
		return nil
	}
	if err := s.client.PushData(ctx, ds); err != nil {
		s.logger.Warn("failed to mirror dataset to sync server, kept locally",
			logger.Error(err))
	}
	return nil
}

// DeleteCompany deletes on the server when possible, then always locally.
func (s *Store) DeleteCompany(ctx context.Context, id string) error {
	if s.client.State() == StateOnlineAuthenticated {
		if err := s.client.DeleteCompany(ctx, id); err != nil {
			s.logger.Warn("failed to delete company on sync server",
				logger.String("company_id", id),
				logger.Error(err))
		}
	}
	return s.local.DeleteCompany(ctx, id)
}

// SyncResult summarises a reconciliation.
type SyncResult struct {
	Companies int `json:"companies"`
	URLs      int `json:"urls"`
}

// Sync sends the full local dataset to the server and replaces the local
// dataset with the merged answer. On failure the local dataset is untouched.
// Sync must not be called while holding the lock passed to SetLocker.
func (s *Store) Sync(ctx context.Context) (*SyncResult, error) {
	switch s.client.State() {
	case StateOffline:
		return nil, fmt.Errorf("sync: %w", domain.ErrNetworkUnavailable)
	case StateOnlineUnauthenticated:
		return nil, fmt.Errorf("sync: %w: not logged in", domain.ErrAuthenticationFailed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	local, err := s.local.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync: %w: %v", domain.ErrStorageUnavailable, err)
	}

	merged, err := s.client.Reconcile(ctx, local)
	if err != nil {
		s.logger.Warn("sync with server failed", logger.Error(err))
		return nil, fmt.Errorf("sync: %w", err)
	}

	if dropped := merged.Prune(); dropped > 0 {
		s.logger.Warn("merged dataset carried dangling mappings", logger.Int("dropped", dropped))
	}

	if err := s.local.Save(ctx, merged); err != nil {
		return nil, fmt.Errorf("sync: %w: %v", domain.ErrStorageUnavailable, err)
	}

	res := &SyncResult{Companies: len(merged.Companies), URLs: merged.CountURLs()}
	s.logger.Info("synced with server",
		logger.Int("companies", res.Companies),
		logger.Int("urls", res.URLs))
	return res, nil
}
