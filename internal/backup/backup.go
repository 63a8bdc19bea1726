// Package backup reads and writes the SusRadar backup file.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/MrSnakeDoc/susradar/internal/domain"
)

const (
	FormatVersion = "1.0"
	ExtensionName = "SusRadar"

	filenameLayout = "2006-01-02-15-04-05"
)

// Metadata describes a backup.
type Metadata struct {
	ExportedAt     time.Time `json:"exportedAt"`
	Version        string    `json:"version"`
	ExtensionName  string    `json:"extensionName"`
	TotalCompanies int       `json:"totalCompanies"`
	TotalURLs      int       `json:"totalUrls"`
}

// File is a full backup: metadata plus the whole dataset.
type File struct {
	Metadata Metadata        `json:"metadata"`
	Data     *domain.Dataset `json:"data"`
}

// New builds a backup of ds taken at now.
func New(ds *domain.Dataset, now time.Time) *File {
	return &File{
		Metadata: Metadata{
			ExportedAt:     now.UTC(),
			Version:        FormatVersion,
			ExtensionName:  ExtensionName,
			TotalCompanies: len(ds.Companies),
			TotalURLs:      ds.CountURLs(),
		},
		Data: ds,
	}
}

// Filename returns susradar-backup-YYYY-MM-DD-HH-MM-SS.json for t.
func Filename(t time.Time) string {
	return "susradar-backup-" + t.Format(filenameLayout) + ".json"
}

// Encode writes f as indented JSON.
func Encode(w io.Writer, f *File) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}

// Decode reads a backup. Both url_mappings and company_data must be present;
// anything else is rejected as an invalid file.
func Decode(r io.Reader) (*File, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}

	var shape struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, &domain.ValidationError{Field: "backup", Reason: fmt.Sprintf("not valid JSON: %v", err)}
	}
	for _, key := range []string{"url_mappings", "company_data"} {
		if v, ok := shape.Data[key]; !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return nil, &domain.ValidationError{Field: "backup", Reason: "missing data." + key}
		}
	}

	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, &domain.ValidationError{Field: "backup", Reason: err.Error()}
	}
	return &f, nil
}
