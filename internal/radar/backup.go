package radar

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/susradar/internal/backup"
	"github.com/MrSnakeDoc/susradar/internal/domain"
	"github.com/MrSnakeDoc/susradar/internal/logger"
)

// ImportResult summarises an import.
type ImportResult struct {
	Companies int `json:"companies"`
	URLs      int `json:"urls"`
	Pruned    int `json:"pruned"`
}

// Export returns a backup of the whole dataset. It fails rather than export
// an empty stand-in when the store is unreadable.
func (s *Service) Export(ctx context.Context) (*backup.File, error) {
	ds, err := s.loadForWrite(ctx)
	if err != nil {
		return nil, err
	}
	return backup.New(ds, s.now()), nil
}

// Import replaces every record and mapping with the content of f.
// confirmed must be true: the current data is lost.
func (s *Service) Import(ctx context.Context, f *backup.File, confirmed bool) (*ImportResult, error) {
	if !confirmed {
		return nil, fmt.Errorf("import replaces all data: %w", domain.ErrConfirmationRequired)
	}
	if f == nil || f.Data == nil {
		return nil, &domain.ValidationError{Field: "backup", Reason: "missing data"}
	}

	ds := f.Data.Clone()
	pruned := ds.Prune()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(ctx, ds); err != nil {
		return nil, err
	}

	res := &ImportResult{Companies: len(ds.Companies), URLs: ds.CountURLs(), Pruned: pruned}
	s.logger.Info("backup imported",
		logger.Int("companies", res.Companies),
		logger.Int("urls", res.URLs),
		logger.Int("pruned", res.Pruned))
	return res, nil
}
