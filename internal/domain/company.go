package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category selects one of the three description texts of a company.
type Category string

const (
	CategoryUsability Category = "usability"
	CategoryCustomer  Category = "customer"
	CategoryPolitical Category = "political"
)

// Categories is ordered by default-selection priority.
var Categories = [...]Category{CategoryUsability, CategoryCustomer, CategoryPolitical}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory accepts a category name, case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", &ValidationError{Field: "default_description", Reason: fmt.Sprintf("unknown category %q", s)}
	}
	return c, nil
}

// Origin tells where a record came from.
type Origin string

const (
	OriginCurated Origin = "curated"
	OriginUser    Origin = "user"

	// legacyOriginCurated is how older stores and backups spell OriginCurated.
	legacyOriginCurated = "susradar"
)

// parseOrigin maps stored origin values, including legacy ones, to an Origin.
func parseOrigin(raw string, userAdded bool) Origin {
	switch Origin(strings.ToLower(raw)) {
	case OriginCurated, legacyOriginCurated:
		return OriginCurated
	case OriginUser:
		return OriginUser
	}
	if userAdded {
		return OriginUser
	}
	return OriginCurated
}

// Descriptions holds one free-text description per category.
type Descriptions struct {
	Usability string `json:"usability"`
	Customer  string `json:"customer"`
	Political string `json:"political"`
}

// Get returns the text of category c.
func (d Descriptions) Get(c Category) string {
	switch c {
	case CategoryCustomer:
		return d.Customer
	case CategoryPolitical:
		return d.Political
	default:
		return d.Usability
	}
}

// Set replaces the text of category c.
func (d *Descriptions) Set(c Category, text string) {
	switch c {
	case CategoryCustomer:
		d.Customer = text
	case CategoryPolitical:
		d.Political = text
	default:
		d.Usability = text
	}
}

// DeriveDefaultCategory picks the first category with text, in priority order.
// Usability is returned when every description is empty.
func DeriveDefaultCategory(d Descriptions) Category {
	for _, c := range Categories {
		if strings.TrimSpace(d.Get(c)) != "" {
			return c
		}
	}
	return CategoryUsability
}

// Fields is the editable part of a company record.
// The original snapshot of a curated record has the same shape.
type Fields struct {
	Name             string
	Rating           int
	Descriptions     Descriptions
	DefaultCategory  Category
	AlternativeLinks []string
}

// Description is the text shown by default. It is always derived, never stored.
func (f Fields) Description() string {
	return f.Descriptions.Get(f.DefaultCategory)
}

// Clone returns a copy that shares no slices with f.
func (f Fields) Clone() Fields {
	out := f
	if f.AlternativeLinks != nil {
		out.AlternativeLinks = append([]string(nil), f.AlternativeLinks...)
	}
	return out
}

// Clean trims user input and fills in the default category when unset.
func (f Fields) Clean() Fields {
	out := f.Clone()
	out.Name = strings.TrimSpace(out.Name)
	out.Descriptions.Usability = strings.TrimSpace(out.Descriptions.Usability)
	out.Descriptions.Customer = strings.TrimSpace(out.Descriptions.Customer)
	out.Descriptions.Political = strings.TrimSpace(out.Descriptions.Political)

	links := make([]string, 0, len(out.AlternativeLinks))
	for _, link := range out.AlternativeLinks {
		if link = strings.TrimSpace(link); link != "" {
			links = append(links, link)
		}
	}
	out.AlternativeLinks = links

	if out.DefaultCategory == "" {
		out.DefaultCategory = DeriveDefaultCategory(out.Descriptions)
	}
	return out
}

// Company is a tracked company with its edit provenance.
type Company struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is derived from the display name. Not part of the stored record,
	// it is the key of company_data.
	ID string

	// ─────────────────────────────
	// Editable fields
	// ─────────────────────────────

	Fields

	// ─────────────────────────────
	// Provenance
	// ─────────────────────────────

	// CreatedAt is set once at creation.
	CreatedAt time.Time

	// UserAdded is true when the record came from user input.
	UserAdded bool

	// Origin is curated for seed records and user for add-site records.
	Origin Origin

	// IsModified is true when a curated record differs from Original.
	IsModified bool

	// Original holds the curated values captured at the first edit.
	// Always nil for user records.
	Original *Fields
}

// NewUserCompany builds a record for the add-to-radar flow.
func NewUserCompany(id string, fields Fields, now time.Time) *Company {
	return &Company{
		ID:        id,
		Fields:    fields.Clean(),
		CreatedAt: now,
		UserAdded: true,
		Origin:    OriginUser,
	}
}

// NewCuratedCompany builds a pristine seed record.
func NewCuratedCompany(id string, fields Fields, createdAt time.Time) *Company {
	return &Company{
		ID:        id,
		Fields:    fields.Clean(),
		CreatedAt: createdAt,
		Origin:    OriginCurated,
	}
}

// Clone returns a deep copy of c.
func (c *Company) Clone() *Company {
	if c == nil {
		return nil
	}
	out := *c
	out.Fields = c.Fields.Clone()
	if c.Original != nil {
		orig := c.Original.Clone()
		out.Original = &orig
	}
	return &out
}

// repairProvenance restores the provenance invariants on decoded data.
func (c *Company) repairProvenance() {
	if c.Origin == OriginUser {
		c.UserAdded = true
		c.IsModified = false
		c.Original = nil
		return
	}
	if c.IsModified && c.Original == nil {
		c.IsModified = false
	}
}
