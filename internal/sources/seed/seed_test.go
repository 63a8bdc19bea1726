package seed

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/MrSnakeDoc/susradar/internal/domain"
)

func TestDefaultSeed(t *testing.T) {
	ds, err := Dataset("")
	if err != nil {
		t.Fatalf("Dataset() error = %v", err)
	}

	for _, id := range []string{"meta_corp", "x_corp", "bytedance"} {
		c, ok := ds.Companies[id]
		if !ok {
			t.Errorf("missing curated company %s", id)
			continue
		}
		if c.Origin != domain.OriginCurated || c.UserAdded || c.IsModified || c.Original != nil {
			t.Errorf("%s is not a pristine curated record: %+v", id, c)
		}
		if c.Descriptions.Usability == "" {
			t.Errorf("%s has no usability description", id)
		}
		if len(c.AlternativeLinks) != 4 {
			t.Errorf("%s has %d alternative links, want 4", id, len(c.AlternativeLinks))
		}
	}

	tests := []struct {
		url  string
		want string
	}{
		{"https://www.facebook.com/feed", "meta_corp"},
		{"instagram.com", "meta_corp"},
		{"https://x.com/home", "x_corp"},
		{"www.twitter.com", "x_corp"},
		{"https://www.tiktok.com/@user", "bytedance"},
	}
	for _, tt := range tests {
		c, ok := ds.Resolve(tt.url)
		if !ok || c.ID != tt.want {
			t.Errorf("Resolve(%q) = %v, want %s", tt.url, c, tt.want)
		}
	}

	if got := ds.CountURLs(); got != 6 {
		t.Errorf("CountURLs() = %d, want 6", got)
	}
}

func TestLoaderFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	content := `
companies:
  - name: Evil Corp
    rating: 5
    descriptions:
      political: lobbying
    urls: [evil.example]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create seed file: %v", err)
	}

	ds, err := Dataset(path)
	if err != nil {
		t.Fatalf("Dataset() error = %v", err)
	}

	c, ok := ds.Companies["evil_corp"]
	if !ok {
		t.Fatal("id was not derived from the name")
	}
	if c.DefaultCategory != domain.CategoryPolitical {
		t.Errorf("DefaultCategory = %q, want political", c.DefaultCategory)
	}
	if !c.CreatedAt.Equal(defaultCreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", c.CreatedAt, defaultCreatedAt)
	}
}

func TestLoaderMissingFile(t *testing.T) {
	if _, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml")).Load(); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestMapDatasetRejectsBrokenSeed(t *testing.T) {
	tests := []struct {
		name    string
		company CompanyConfig
		want    error
	}{
		{"no name", CompanyConfig{Rating: 3, URLs: []string{"a.com"}}, domain.ErrValidation},
		{"bad rating", CompanyConfig{Name: "A", Rating: 9, URLs: []string{"a.com"}}, domain.ErrValidation},
		{"bad category", CompanyConfig{Name: "A", Rating: 3, DefaultDescription: "nope", URLs: []string{"a.com"}}, domain.ErrValidation},
		{"no urls", CompanyConfig{Name: "A", Rating: 3}, domain.ErrValidation},
		{"blank url", CompanyConfig{Name: "A", Rating: 3, URLs: []string{" "}}, domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMapper().MapDataset(&Config{Companies: []CompanyConfig{tt.company}})
			if !errors.Is(err, tt.want) {
				t.Errorf("MapDataset() error = %v, want %v", err, tt.want)
			}
		})
	}

	dup := &Config{Companies: []CompanyConfig{
		{Name: "A", Rating: 1, URLs: []string{"a.com"}},
		{Name: "a", Rating: 2, URLs: []string{"b.com"}},
	}}
	if _, err := NewMapper().MapDataset(dup); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("duplicate ids error = %v, want ErrAlreadyExists", err)
	}
}
