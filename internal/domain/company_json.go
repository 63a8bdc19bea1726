package domain

import (
	"encoding/json"
	"time"
)

// fieldsJSON is the stored shape of the editable fields.
// description is written for older readers and only read to migrate legacy records.
type fieldsJSON struct {
	Name             string        `json:"company_name"`
	Rating           int           `json:"sus_rating"`
	Descriptions     *Descriptions `json:"descriptions,omitempty"`
	DefaultCategory  Category      `json:"default_description,omitempty"`
	Description      string        `json:"description"`
	AlternativeLinks []string      `json:"alternative_links"`
}

type companyJSON struct {
	fieldsJSON
	CreatedAt  time.Time `json:"date_added"`
	UserAdded  bool      `json:"user_added"`
	Origin     string    `json:"origin"`
	IsModified bool      `json:"is_modified"`
	Original   *Fields   `json:"original_data"`
}

func encodeFields(f Fields) fieldsJSON {
	links := f.AlternativeLinks
	if links == nil {
		links = []string{}
	}
	d := f.Descriptions
	return fieldsJSON{
		Name:             f.Name,
		Rating:           f.Rating,
		Descriptions:     &d,
		DefaultCategory:  f.DefaultCategory,
		Description:      f.Description(),
		AlternativeLinks: links,
	}
}

// decodeFields migrates the legacy single description into descriptions.usability.
// fallback is used when no default category was stored.
func decodeFields(raw fieldsJSON, fallback func(Descriptions) Category) Fields {
	f := Fields{
		Name:             raw.Name,
		Rating:           raw.Rating,
		DefaultCategory:  raw.DefaultCategory,
		AlternativeLinks: raw.AlternativeLinks,
	}
	if raw.Descriptions != nil {
		f.Descriptions = *raw.Descriptions
	} else {
		f.Descriptions.Usability = raw.Description
	}
	if !f.DefaultCategory.Valid() {
		f.DefaultCategory = fallback(f.Descriptions)
	}
	if f.AlternativeLinks == nil {
		f.AlternativeLinks = []string{}
	}
	return f
}

// MarshalJSON writes the snapshot shape stored under original_data.
func (f Fields) MarshalJSON() ([]byte, error) {
	return json.Marshal(encodeFields(f))
}

// UnmarshalJSON reads a snapshot. Legacy snapshots carry no default category
// and fall back to usability.
func (f *Fields) UnmarshalJSON(data []byte) error {
	var raw fieldsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = decodeFields(raw, func(Descriptions) Category { return CategoryUsability })
	return nil
}

// MarshalJSON writes the CompanyRecordJSON shape. The ID is the map key and is not written.
func (c Company) MarshalJSON() ([]byte, error) {
	return json.Marshal(companyJSON{
		fieldsJSON: encodeFields(c.Fields),
		CreatedAt:  c.CreatedAt,
		UserAdded:  c.UserAdded,
		Origin:     string(c.Origin),
		IsModified: c.IsModified,
		Original:   c.Original,
	})
}

// UnmarshalJSON reads current and legacy records.
func (c *Company) UnmarshalJSON(data []byte) error {
	var raw companyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id := c.ID
	*c = Company{
		ID:         id,
		Fields:     decodeFields(raw.fieldsJSON, DeriveDefaultCategory),
		CreatedAt:  raw.CreatedAt,
		UserAdded:  raw.UserAdded,
		Origin:     parseOrigin(raw.Origin, raw.UserAdded),
		IsModified: raw.IsModified,
		Original:   raw.Original,
	}
	c.repairProvenance()
	return nil
}
