package index

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/susradar/internal/domain"
	"github.com/MrSnakeDoc/susradar/internal/store"
)

// MemoryIndex keeps the dataset in process memory.
// It backs the "memory" store mode and the tests; nothing survives a restart.
type MemoryIndex struct {
	mu        sync.RWMutex
	dataset   *domain.Dataset
	creds     store.Credentials
	lastWrite time.Time // Timestamp of last Save or DeleteCompany
}

// NewMemoryIndex creates an empty memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		dataset: domain.NewDataset(),
	}
}

// Load returns a copy of the dataset
func (idx *MemoryIndex) Load(_ context.Context) (*domain.Dataset, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.dataset.Clone(), nil
}

// Save replaces the dataset
func (idx *MemoryIndex) Save(_ context.Context, ds *domain.Dataset) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.dataset = ds.Clone()
	idx.lastWrite = time.Now()
	return nil
}

// DeleteCompany removes a company and its mappings
func (idx *MemoryIndex) DeleteCompany(_ context.Context, id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.dataset.Delete(id) {
		idx.lastWrite = time.Now()
	}
	return nil
}

// Count returns the number of companies in the index
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.dataset.Companies)
}

// GetLastWrite returns the timestamp of the last write
func (idx *MemoryIndex) GetLastWrite() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastWrite
}

// ─────────────────────────────────────────────────────────────────
// Credential methods
// ─────────────────────────────────────────────────────────────────

// LoadCredentials returns the stored credentials (zero value when none)
func (idx *MemoryIndex) LoadCredentials(_ context.Context) (store.Credentials, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.creds, nil
}

// SaveCredentials stores credentials
func (idx *MemoryIndex) SaveCredentials(_ context.Context, creds store.Credentials) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.creds = creds
	return nil
}

// ClearCredentials drops token and username, keeping the server URL
func (idx *MemoryIndex) ClearCredentials(_ context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.creds = store.Credentials{ServerURL: idx.creds.ServerURL}
	return nil
}
