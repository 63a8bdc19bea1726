// Package radar resolves visited URLs to company records and applies every
// mutation of the dataset.
package radar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/susradar/internal/domain"
	"github.com/MrSnakeDoc/susradar/internal/logger"
	"github.com/MrSnakeDoc/susradar/internal/store"
)

// Service owns the read-modify-write cycle over a store.Store.
// Mutations in one process are serialised; across processes the last write wins.
type Service struct {
	mu     sync.Mutex
	store  store.Store
	logger logger.Logger
	now    func() time.Time
}

// Entry is a record together with the site keys mapped to it.
type Entry struct {
	Company *domain.Company
	URLs    []string
}

// NewService creates a service over st.
func NewService(st store.Store, log logger.Logger) *Service {
	return &Service{
		store:  st,
		logger: log,
		now:    time.Now,
	}
}

// Store returns the underlying store.
func (s *Service) Store() store.Store { return s.store }

// Locker returns the lock held by every mutation.
func (s *Service) Locker() sync.Locker { return &s.mu }

// load reads the dataset for display. An unreadable store degrades to an empty dataset.
func (s *Service) load(ctx context.Context) *domain.Dataset {
	ds, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("store unreadable, serving empty dataset", logger.Error(err))
		return domain.NewDataset()
	}
	return ds
}

// loadForWrite reads the dataset a mutation builds on. Unlike load it never
// degrades: saving on top of an empty stand-in would wipe the real data.
func (s *Service) loadForWrite(ctx context.Context) (*domain.Dataset, error) {
	ds, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return ds, nil
}

func (s *Service) save(ctx context.Context, ds *domain.Dataset) error {
	if err := s.store.Save(ctx, ds); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────
// Resolution
// ─────────────────────────────────────────────────────────────────

// Resolve returns the record tracking rawURL, or domain.ErrNotFound.
func (s *Service) Resolve(ctx context.Context, rawURL string) (*domain.Company, error) {
	if err := domain.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	c, ok := s.load(ctx).Resolve(rawURL)
	if !ok {
		return nil, fmt.Errorf("no company tracked for %s: %w", domain.NormalizeURL(rawURL), domain.ErrNotFound)
	}
	return c, nil
}

// Get returns one record with its URLs.
func (s *Service) Get(ctx context.Context, id string) (*Entry, error) {
	ds := s.load(ctx)
	c, ok := ds.Companies[id]
	if !ok {
		return nil, fmt.Errorf("company %s: %w", id, domain.ErrNotFound)
	}
	return &Entry{Company: c, URLs: ds.URLsFor(id)}, nil
}

// List returns every record sorted by name.
func (s *Service) List(ctx context.Context) []Entry {
	ds := s.load(ctx)

	entries := make([]Entry, 0, len(ds.Companies))
	for id, c := range ds.Companies {
		entries = append(entries, Entry{Company: c, URLs: ds.URLsFor(id)})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := strings.ToLower(entries[i].Company.Name), strings.ToLower(entries[j].Company.Name)
		if a != b {
			return a < b
		}
		return entries[i].Company.ID < entries[j].Company.ID
	})
	return entries
}

// ─────────────────────────────────────────────────────────────────
// Mutations
// ─────────────────────────────────────────────────────────────────

// mutate runs fn on a fresh dataset and saves the result when fn succeeds.
func (s *Service) mutate(ctx context.Context, fn func(ds *domain.Dataset) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, err := s.loadForWrite(ctx)
	if err != nil {
		return err
	}
	if err := fn(ds); err != nil {
		return err
	}
	return s.save(ctx, ds)
}

// CreateOrReplace upserts c under id and maps rawURL to it. It does not validate c.
func (s *Service) CreateOrReplace(ctx context.Context, rawURL, id string, c *domain.Company) error {
	if err := domain.ValidateURL(rawURL); err != nil {
		return err
	}
	return s.mutate(ctx, func(ds *domain.Dataset) error {
		ds.Put(rawURL, id, c.Clone())
		return nil
	})
}

// AddCompany is the add-to-radar flow: it validates fields, derives the id
// from the name and maps rawURL plus extraURLs to a new user record.
func (s *Service) AddCompany(ctx context.Context, rawURL string, fields domain.Fields, extraURLs ...string) (*Entry, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	urls := append([]string{rawURL}, extraURLs...)
	for _, u := range urls {
		if err := domain.ValidateURL(u); err != nil {
			return nil, err
		}
	}

	id := domain.CompanyID(fields.Name)
	if strings.Trim(id, "_") == "" {
		return nil, &domain.ValidationError{Field: "company_name", Reason: "must contain at least one letter or digit"}
	}

	var entry *Entry
	err := s.mutate(ctx, func(ds *domain.Dataset) error {
		if existing, ok := ds.Companies[id]; ok {
			return fmt.Errorf("%w: %s (%s)", domain.ErrAlreadyExists, existing.Name, id)
		}
		for _, u := range urls {
			if ownerID, ok := ds.Owner(u); ok {
				if owner, exists := ds.Companies[ownerID]; exists {
					return &domain.URLConflictError{URL: domain.NormalizeURL(u), CompanyID: ownerID, CompanyName: owner.Name}
				}
			}
		}

		c := domain.NewUserCompany(id, fields, s.now())
		ds.Put(rawURL, id, c)
		for _, u := range extraURLs {
			ds.MapURL(u, id)
		}
		entry = &Entry{Company: c.Clone(), URLs: ds.URLsFor(id)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("company added",
		logger.String("company_id", id),
		logger.Strings("urls", entry.URLs))
	return entry, nil
}

// UpdateFields replaces the editable fields of a record.
func (s *Service) UpdateFields(ctx context.Context, id string, fields domain.Fields) (*domain.Company, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	var out *domain.Company
	err := s.mutate(ctx, func(ds *domain.Dataset) error {
		c, ok := ds.Companies[id]
		if !ok {
			return fmt.Errorf("company %s: %w", id, domain.ErrNotFound)
		}
		c.ApplyUpdate(fields)
		out = c.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ResetField restores one field from the curated snapshot. applied is false
// when the record has nothing to reset; the record is then left unchanged.
func (s *Service) ResetField(ctx context.Context, id string, f domain.Field) (c *domain.Company, applied bool, err error) {
	return s.reset(ctx, id, func(c *domain.Company) bool { return c.ResetField(f) })
}

// ResetAll returns a record to its pristine curated state.
func (s *Service) ResetAll(ctx context.Context, id string) (c *domain.Company, applied bool, err error) {
	return s.reset(ctx, id, (*domain.Company).ResetAll)
}

func (s *Service) reset(ctx context.Context, id string, fn func(*domain.Company) bool) (*domain.Company, bool, error) {
	var (
		out     *domain.Company
		applied bool
	)
	err := s.mutate(ctx, func(ds *domain.Dataset) error {
		c, ok := ds.Companies[id]
		if !ok {
			return fmt.Errorf("company %s: %w", id, domain.ErrNotFound)
		}
		applied = fn(c)
		out = c.Clone()
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, applied, nil
}

// CanReset reports whether the record has a curated baseline to go back to.
func (s *Service) CanReset(ctx context.Context, id string) (bool, error) {
	c, ok := s.load(ctx).Companies[id]
	if !ok {
		return false, fmt.Errorf("company %s: %w", id, domain.ErrNotFound)
	}
	return c.CanReset(), nil
}

// DeleteRecord removes a record and all its mappings. Deleting an absent id succeeds.
func (s *Service) DeleteRecord(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteCompany(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	s.logger.Info("company deleted", logger.String("company_id", id))
	return nil
}

// AddURL maps rawURL to an existing record, overwriting any previous owner.
// Callers that care about ownership check Resolve first.
func (s *Service) AddURL(ctx context.Context, id, rawURL string) error {
	if err := domain.ValidateURL(rawURL); err != nil {
		return err
	}
	return s.mutate(ctx, func(ds *domain.Dataset) error {
		if _, ok := ds.Companies[id]; !ok {
			return fmt.Errorf("company %s: %w", id, domain.ErrNotFound)
		}
		ds.MapURL(rawURL, id)
		return nil
	})
}

// RemoveURL unmaps rawURL. The last URL of a company cannot be removed;
// deleting the record is the only way to reach zero mappings.
func (s *Service) RemoveURL(ctx context.Context, rawURL string) error {
	return s.mutate(ctx, func(ds *domain.Dataset) error {
		ownerID, ok := ds.Owner(rawURL)
		if !ok {
			return fmt.Errorf("url %s: %w", domain.NormalizeURL(rawURL), domain.ErrNotFound)
		}
		if len(ds.URLsFor(ownerID)) <= 1 {
			return fmt.Errorf("url %s: %w", domain.NormalizeURL(rawURL), domain.ErrCannotRemoveLastURL)
		}
		ds.UnmapURL(rawURL)
		return nil
	})
}

// Bootstrap stores seed when the store holds no company yet.
// It reports whether the seed was written.
func (s *Service) Bootstrap(ctx context.Context, seed *domain.Dataset) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, err := s.loadForWrite(ctx)
	if err != nil {
		return false, err
	}
	if !ds.IsEmpty() {
		return false, nil
	}
	if err := s.save(ctx, seed.Clone()); err != nil {
		return false, err
	}
	s.logger.Info("curated dataset loaded",
		logger.Int("companies", len(seed.Companies)),
		logger.Int("urls", seed.CountURLs()))
	return true, nil
}
