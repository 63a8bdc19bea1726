package gormstore

import "time"

// MappingRecord is one site key -> company id row.
type MappingRecord struct {
	URL       string `gorm:"primaryKey;column:url"`
	CompanyID string `gorm:"index;not null;column:company_id"`
}

func (MappingRecord) TableName() string { return "url_mappings" }

// CompanyRecord stores a company as its JSON document.
type CompanyRecord struct {
	ID        string    `gorm:"primaryKey;column:id"`
	Record    string    `gorm:"type:text;not null;column:record"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (CompanyRecord) TableName() string { return "companies" }

// CredentialsRecord is a single row (ID 1) holding sync credentials.
type CredentialsRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Token     string `gorm:"column:token"`
	Username  string `gorm:"column:username"`
	ServerURL string `gorm:"column:server_url"`
}

func (CredentialsRecord) TableName() string { return "credentials" }

const credentialsRowID = 1
