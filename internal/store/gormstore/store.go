package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/MrSnakeDoc/susradar/internal/domain"
	"github.com/MrSnakeDoc/susradar/internal/store"
)

// Store persists the dataset in a SQLite database through gorm.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the SQLite file at path and migrates it.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql handle: %w", err)
	}
	// SQLite allows a single writer.
	sqlDB.SetMaxOpenConns(1)

	s := NewStore(db)
	if err := s.AutoMigrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStore wraps an existing gorm handle. Call AutoMigrate before use.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the tables.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&MappingRecord{}, &CompanyRecord{}, &CredentialsRecord{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Load reads every mapping and company row.
func (s *Store) Load(ctx context.Context) (*domain.Dataset, error) {
	db := s.db.WithContext(ctx)

	var mappings []MappingRecord
	if err := db.Find(&mappings).Error; err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	var companies []CompanyRecord
	if err := db.Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}

	ds := domain.NewDataset()
	for _, m := range mappings {
		ds.Mappings[m.URL] = m.CompanyID
	}
	for _, row := range companies {
		var company domain.Company
		if err := json.Unmarshal([]byte(row.Record), &company); err != nil {
			return nil, fmt.Errorf("decode company %s: %w", row.ID, err)
		}
		company.ID = row.ID
		ds.Companies[row.ID] = &company
	}
	return ds, nil
}

// Save replaces both tables inside one transaction.
func (s *Store) Save(ctx context.Context, ds *domain.Dataset) error {
	now := time.Now().UTC()

	companies := make([]CompanyRecord, 0, len(ds.Companies))
	for id, company := range ds.Companies {
		data, err := json.Marshal(company)
		if err != nil {
			return fmt.Errorf("marshal company %s: %w", id, err)
		}
		companies = append(companies, CompanyRecord{ID: id, Record: string(data), UpdatedAt: now})
	}

	mappings := make([]MappingRecord, 0, len(ds.Mappings))
	for url, id := range ds.Mappings {
		mappings = append(mappings, MappingRecord{URL: url, CompanyID: id})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&MappingRecord{}).Error; err != nil {
			return err
		}
		if err := all.Delete(&CompanyRecord{}).Error; err != nil {
			return err
		}
		if len(companies) > 0 {
			if err := tx.CreateInBatches(companies, 100).Error; err != nil {
				return err
			}
		}
		if len(mappings) > 0 {
			if err := tx.CreateInBatches(mappings, 100).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}
	return nil
}

// DeleteCompany removes a company row and its mappings.
func (s *Store) DeleteCompany(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ?", id).Delete(&MappingRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&CompanyRecord{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete company %s: %w", id, err)
	}
	return nil
}

// LoadCredentials returns the stored credentials (zero value when none).
func (s *Store) LoadCredentials(ctx context.Context) (store.Credentials, error) {
	var row CredentialsRecord
	err := s.db.WithContext(ctx).First(&row, credentialsRowID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.Credentials{}, nil
		}
		return store.Credentials{}, fmt.Errorf("get credentials: %w", err)
	}
	return store.Credentials{Token: row.Token, Username: row.Username, ServerURL: row.ServerURL}, nil
}

// SaveCredentials upserts the credentials row.
func (s *Store) SaveCredentials(ctx context.Context, creds store.Credentials) error {
	row := CredentialsRecord{
		ID:        credentialsRowID,
		Token:     creds.Token,
		Username:  creds.Username,
		ServerURL: creds.ServerURL,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// ClearCredentials blanks token and username, keeping the server URL.
func (s *Store) ClearCredentials(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Model(&CredentialsRecord{}).
		Where("id = ?", credentialsRowID).
		Updates(map[string]any{"token": "", "username": ""}).Error
	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
