package redis

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/susradar/internal/store"
)

// LoadCredentials reads sync credentials (zero value when none are stored)
func (s *Store) LoadCredentials(ctx context.Context) (store.Credentials, error) {
	values, err := s.client.HGetAll(ctx, AuthKey()).Result()
	if err != nil {
		return store.Credentials{}, fmt.Errorf("failed to get credentials: %w", err)
	}

	return store.Credentials{
		Token:     values[authFieldToken],
		Username:  values[authFieldUsername],
		ServerURL: values[authFieldServerURL],
	}, nil
}

// SaveCredentials stores sync credentials
func (s *Store) SaveCredentials(ctx context.Context, creds store.Credentials) error {
	err := s.client.HSet(ctx, AuthKey(),
		authFieldToken, creds.Token,
		authFieldUsername, creds.Username,
		authFieldServerURL, creds.ServerURL,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// ClearCredentials removes token and username, keeping the server URL
func (s *Store) ClearCredentials(ctx context.Context) error {
	if err := s.client.HDel(ctx, AuthKey(), authFieldToken, authFieldUsername).Err(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}
