package seed

import (
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/susradar/internal/domain"
)

// defaultCreatedAt is used when the seed file sets no created_at.
var defaultCreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Mapper converts a seed Config into a dataset of pristine curated records.
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapDataset validates every company and builds the dataset.
// Unlike user input, a broken seed is an error rather than a skipped entry.
func (m *Mapper) MapDataset(config *Config) (*domain.Dataset, error) {
	createdAt := config.CreatedAt
	if createdAt.IsZero() {
		createdAt = defaultCreatedAt
	}

	ds := domain.NewDataset()
	for i, cc := range config.Companies {
		fields := domain.Fields{
			Name:   cc.Name,
			Rating: cc.Rating,
			Descriptions: domain.Descriptions{
				Usability: strings.TrimSpace(cc.Descriptions.Usability),
				Customer:  strings.TrimSpace(cc.Descriptions.Customer),
				Political: strings.TrimSpace(cc.Descriptions.Political),
			},
			AlternativeLinks: cc.AlternativeLinks,
		}
		if cc.DefaultDescription != "" {
			cat, err := domain.ParseCategory(cc.DefaultDescription)
			if err != nil {
				return nil, fmt.Errorf("seed company #%d: %w", i, err)
			}
			fields.DefaultCategory = cat
		}
		if err := fields.Validate(); err != nil {
			return nil, fmt.Errorf("seed company #%d: %w", i, err)
		}

		id := cc.ID
		if id == "" {
			id = domain.CompanyID(cc.Name)
		}
		if _, dup := ds.Companies[id]; dup {
			return nil, fmt.Errorf("seed company %s: %w", id, domain.ErrAlreadyExists)
		}
		if len(cc.URLs) == 0 {
			return nil, fmt.Errorf("seed company %s: %w", id, &domain.ValidationError{Field: "urls", Reason: "must list at least one URL"})
		}

		c := domain.NewCuratedCompany(id, fields, createdAt)
		ds.Companies[id] = c
		for _, u := range cc.URLs {
			if err := domain.ValidateURL(u); err != nil {
				return nil, fmt.Errorf("seed company %s: %w", id, err)
			}
			ds.MapURL(u, id)
		}
	}

	return ds, nil
}

// Dataset loads the seed at path (embedded default when empty) and maps it.
func Dataset(path string) (*domain.Dataset, error) {
	config, err := NewLoader(path).Load()
	if err != nil {
		return nil, err
	}
	return NewMapper().MapDataset(config)
}
