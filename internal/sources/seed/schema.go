package seed

import "time"

// Config is the top-level structure of the seed YAML.
type Config struct {
	CreatedAt time.Time       `yaml:"created_at"`
	Companies []CompanyConfig `yaml:"companies"`
}

// CompanyConfig is one curated company.
type CompanyConfig struct {
	ID                 string             `yaml:"id,omitempty"` // derived from name when empty
	Name               string             `yaml:"name"`
	Rating             int                `yaml:"rating"`
	Descriptions       DescriptionsConfig `yaml:"descriptions"`
	DefaultDescription string             `yaml:"default_description,omitempty"`
	AlternativeLinks   []string           `yaml:"alternative_links,omitempty"`
	URLs               []string           `yaml:"urls"`
}

type DescriptionsConfig struct {
	Usability string `yaml:"usability,omitempty"`
	Customer  string `yaml:"customer,omitempty"`
	Political string `yaml:"political,omitempty"`
}
