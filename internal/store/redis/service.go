package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/susradar/internal/domain"
)

// Store persists the dataset in two Redis hashes
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Load reads mappings and companies in one round-trip
func (s *Store) Load(ctx context.Context) (*domain.Dataset, error) {
	pipe := s.client.Pipeline()
	mappingsCmd := pipe.HGetAll(ctx, MappingsKey())
	companiesCmd := pipe.HGetAll(ctx, CompaniesKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	ds := domain.NewDataset()
	for key, id := range mappingsCmd.Val() {
		ds.Mappings[key] = id
	}

	for id, raw := range companiesCmd.Val() {
		var company domain.Company
		if err := json.Unmarshal([]byte(raw), &company); err != nil {
			// Refuse the whole dataset: a later Save would erase the record.
			return nil, fmt.Errorf("failed to decode company %s: %w", id, err)
		}
		company.ID = id
		ds.Companies[id] = &company
	}

	return ds, nil
}

// Save replaces the whole dataset atomically (MULTI/EXEC)
func (s *Store) Save(ctx context.Context, ds *domain.Dataset) error {
	companies := make(map[string]any, len(ds.Companies))
	for id, company := range ds.Companies {
		data, err := json.Marshal(company)
		if err != nil {
			return fmt.Errorf("failed to marshal company %s: %w", id, err)
		}
		companies[id] = data
	}

	mappings := make(map[string]any, len(ds.Mappings))
	for key, id := range ds.Mappings {
		mappings[key] = id
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, MappingsKey(), CompaniesKey())
		if len(mappings) > 0 {
			pipe.HSet(ctx, MappingsKey(), mappings)
		}
		if len(companies) > 0 {
			pipe.HSet(ctx, CompaniesKey(), companies)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}

	return nil
}

// DeleteCompany removes a company and every mapping pointing to it
func (s *Store) DeleteCompany(ctx context.Context, id string) error {
	mappings, err := s.client.HGetAll(ctx, MappingsKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to get mappings: %w", err)
	}

	var keys []string
	for key, owner := range mappings {
		if owner == id {
			keys = append(keys, key)
		}
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, CompaniesKey(), id)
		if len(keys) > 0 {
			pipe.HDel(ctx, MappingsKey(), keys...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}

	return nil
}

// Ping checks the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
