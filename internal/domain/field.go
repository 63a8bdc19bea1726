package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Field tags one editable, resettable field of a company record.
type Field int

const (
	FieldName Field = iota
	FieldRating
	FieldDefaultCategory
	FieldUsability
	FieldCustomer
	FieldPolitical
	FieldAlternativeLinks

	fieldCount
)

// AllFields lists every tag in display order.
var AllFields = [fieldCount]Field{
	FieldName,
	FieldRating,
	FieldDefaultCategory,
	FieldUsability,
	FieldCustomer,
	FieldPolitical,
	FieldAlternativeLinks,
}

type fieldOps struct {
	name  string
	equal func(a, b Fields) bool
	copy  func(dst *Fields, src Fields)
}

// fieldTable is indexed by Field. TestFieldTableIsComplete keeps it exhaustive.
var fieldTable = [fieldCount]fieldOps{
	FieldName: {
		name:  "name",
		equal: func(a, b Fields) bool { return a.Name == b.Name },
		copy:  func(dst *Fields, src Fields) { dst.Name = src.Name },
	},
	FieldRating: {
		name:  "rating",
		equal: func(a, b Fields) bool { return a.Rating == b.Rating },
		copy:  func(dst *Fields, src Fields) { dst.Rating = src.Rating },
	},
	FieldDefaultCategory: {
		name:  "default_description",
		equal: func(a, b Fields) bool { return a.DefaultCategory == b.DefaultCategory },
		copy:  func(dst *Fields, src Fields) { dst.DefaultCategory = src.DefaultCategory },
	},
	FieldUsability:        descriptionOps(CategoryUsability),
	FieldCustomer:         descriptionOps(CategoryCustomer),
	FieldPolitical:        descriptionOps(CategoryPolitical),
	FieldAlternativeLinks: {
		name:  "alternative_links",
		equal: func(a, b Fields) bool { return slices.Equal(a.AlternativeLinks, b.AlternativeLinks) },
		copy: func(dst *Fields, src Fields) {
			dst.AlternativeLinks = append([]string{}, src.AlternativeLinks...)
		},
	},
}

func descriptionOps(c Category) fieldOps {
	return fieldOps{
		name:  string(c),
		equal: func(a, b Fields) bool { return a.Descriptions.Get(c) == b.Descriptions.Get(c) },
		copy:  func(dst *Fields, src Fields) { dst.Descriptions.Set(c, src.Descriptions.Get(c)) },
	}
}

// String returns the wire name of the field.
func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldTable[f].name
}

// ParseField resolves a wire name. "description" is accepted as an alias for usability.
func ParseField(s string) (Field, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "description" {
		return FieldUsability, nil
	}
	for _, f := range AllFields {
		if fieldTable[f].name == s {
			return f, nil
		}
	}
	return 0, &ValidationError{Field: "field", Reason: fmt.Sprintf("unknown field %q", s)}
}

// Equal reports whether a and b hold the same value for f.
func (f Field) Equal(a, b Fields) bool {
	return fieldTable[f].equal(a, b)
}

// Copy sets f on dst from src.
func (f Field) Copy(dst *Fields, src Fields) {
	fieldTable[f].copy(dst, src)
}

// DiffFields returns the fields whose values differ between a and b.
func DiffFields(a, b Fields) []Field {
	var diff []Field
	for _, f := range AllFields {
		if !f.Equal(a, b) {
			diff = append(diff, f)
		}
	}
	return diff
}
