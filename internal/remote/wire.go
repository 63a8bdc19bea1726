package remote

import (
	"errors"

	"github.com/MrSnakeDoc/susradar/internal/domain"
)

// dataPayload is the {mappings, companies} document of the sync server.
type dataPayload struct {
	Mappings  map[string]string          `json:"mappings"`
	Companies map[string]*domain.Company `json:"companies"`
}

func toPayload(ds *domain.Dataset) dataPayload {
	p := dataPayload{Mappings: ds.Mappings, Companies: ds.Companies}
	if p.Mappings == nil {
		p.Mappings = map[string]string{}
	}
	if p.Companies == nil {
		p.Companies = map[string]*domain.Company{}
	}
	return p
}

func (p dataPayload) dataset() *domain.Dataset {
	ds := domain.NewDataset()
	for k, v := range p.Mappings {
		ds.Mappings[k] = v
	}
	for id, c := range p.Companies {
		ds.Companies[id] = c
	}
	ds.AssignIDs()
	return ds
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the answer of POST /login.
type LoginResult struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	ExpiresIn int    `json:"expires_in"`
}

type syncResponse struct {
	Message string       `json:"message"`
	Data    *dataPayload `json:"data"`
}

// merged returns the reconciled dataset. A reply without data, or with a
// null half, is rejected so it can never replace the local records.
func (r syncResponse) merged() (*domain.Dataset, error) {
	switch {
	case r.Data == nil:
		return nil, errors.New("sync response carried no data")
	case r.Data.Mappings == nil:
		return nil, errors.New("sync response carried no mappings")
	case r.Data.Companies == nil:
		return nil, errors.New("sync response carried no companies")
	}
	return r.Data.dataset(), nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
