package domain

import (
	"fmt"
	"strings"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Validate checks user supplied fields before any mutation.
func (f Fields) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return &ValidationError{Field: "company_name", Reason: "must not be empty"}
	}
	if f.Rating < MinRating || f.Rating > MaxRating {
		return &ValidationError{
			Field:  "sus_rating",
			Reason: fmt.Sprintf("must be between %d and %d, got %d", MinRating, MaxRating, f.Rating),
		}
	}
	if f.DefaultCategory != "" && !f.DefaultCategory.Valid() {
		return &ValidationError{
			Field:  "default_description",
			Reason: fmt.Sprintf("unknown category %q", f.DefaultCategory),
		}
	}
	return nil
}

// ValidateURL rejects URLs that normalize to an empty site key.
func ValidateURL(raw string) error {
	if NormalizeURL(raw) == "" {
		return &ValidationError{Field: "url", Reason: "must not be empty"}
	}
	return nil
}
