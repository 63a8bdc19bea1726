package handlers

import (
	"github.com/MrSnakeDoc/susradar/internal/domain"
	"github.com/MrSnakeDoc/susradar/internal/radar"
)

// fieldsRequest is the editable part of a company as sent by the forms.
type fieldsRequest struct {
	CompanyName        string              `json:"company_name"`
	SusRating          int                 `json:"sus_rating"`
	Descriptions       domain.Descriptions `json:"descriptions"`
	DefaultDescription string              `json:"default_description"`
	Description        string              `json:"description"` // legacy single description
	AlternativeLinks   []string            `json:"alternative_links"`
}

func (req fieldsRequest) fields() (domain.Fields, error) {
	f := domain.Fields{
		Name:             req.CompanyName,
		Rating:           req.SusRating,
		Descriptions:     req.Descriptions,
		AlternativeLinks: req.AlternativeLinks,
	}
	if f.Descriptions == (domain.Descriptions{}) && req.Description != "" {
		f.Descriptions.Usability = req.Description
	}
	if req.DefaultDescription != "" {
		c, err := domain.ParseCategory(req.DefaultDescription)
		if err != nil {
			return domain.Fields{}, err
		}
		f.DefaultCategory = c
	}
	return f, nil
}

type addCompanyRequest struct {
	fieldsRequest
	URL            string   `json:"url"`
	AdditionalURLs []string `json:"additional_urls"`
}

type urlRequest struct {
	URL string `json:"url"`
}

type resetRequest struct {
	Field string `json:"field"` // empty resets every field
}

type companyResponse struct {
	ID             string          `json:"id"`
	Record         *domain.Company `json:"record"`
	URLs           []string        `json:"urls,omitempty"`
	CanReset       bool            `json:"can_reset"`
	ModifiedFields []string        `json:"modified_fields,omitempty"`
}

func newCompanyResponse(c *domain.Company, urls []string) companyResponse {
	resp := companyResponse{
		ID:       c.ID,
		Record:   c,
		URLs:     urls,
		CanReset: c.CanReset(),
	}
	for _, f := range c.ModifiedFields() {
		resp.ModifiedFields = append(resp.ModifiedFields, f.String())
	}
	return resp
}

func fromEntry(e radar.Entry) companyResponse {
	return newCompanyResponse(e.Company, e.URLs)
}

type resetResponse struct {
	Applied bool            `json:"applied"`
	Company companyResponse `json:"company"`
}
