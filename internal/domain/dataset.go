package domain

import (
	"encoding/json"
	"sort"
)

// Dataset is the whole persisted state: site key -> company id, and company id -> record.
type Dataset struct {
	Mappings  map[string]string
	Companies map[string]*Company
}

// NewDataset returns an empty, ready to use dataset.
func NewDataset() *Dataset {
	return &Dataset{
		Mappings:  make(map[string]string),
		Companies: make(map[string]*Company),
	}
}

// ensure makes nil maps usable, for datasets decoded from partial documents.
func (ds *Dataset) ensure() {
	if ds.Mappings == nil {
		ds.Mappings = make(map[string]string)
	}
	if ds.Companies == nil {
		ds.Companies = make(map[string]*Company)
	}
}

// IsEmpty reports whether no company is tracked.
func (ds *Dataset) IsEmpty() bool {
	return len(ds.Companies) == 0
}

// Clone returns a deep copy.
func (ds *Dataset) Clone() *Dataset {
	out := &Dataset{
		Mappings:  make(map[string]string, len(ds.Mappings)),
		Companies: make(map[string]*Company, len(ds.Companies)),
	}
	for k, v := range ds.Mappings {
		out.Mappings[k] = v
	}
	for id, c := range ds.Companies {
		out.Companies[id] = c.Clone()
	}
	return out
}

// Put upserts a record and maps the normalized url to it.
func (ds *Dataset) Put(rawURL, id string, c *Company) {
	ds.ensure()
	c.ID = id
	ds.Companies[id] = c
	ds.Mappings[NormalizeURL(rawURL)] = id
}

// MapURL maps the normalized url to id, replacing any previous owner.
func (ds *Dataset) MapURL(rawURL, id string) string {
	ds.ensure()
	key := NormalizeURL(rawURL)
	ds.Mappings[key] = id
	return key
}

// matchingKeys returns every stored key equal to the normalized url.
// Stores written by older versions may hold several raw spellings of one site.
func (ds *Dataset) matchingKeys(rawURL string) []string {
	key := NormalizeURL(rawURL)

	var keys []string
	if _, ok := ds.Mappings[key]; ok {
		keys = append(keys, key)
	}
	for _, k := range ds.sortedKeys() {
		if k != key && NormalizeURL(k) == key {
			keys = append(keys, k)
		}
	}
	return keys
}

// Owner returns the id of the company mapped from rawURL.
func (ds *Dataset) Owner(rawURL string) (string, bool) {
	for _, k := range ds.matchingKeys(rawURL) {
		if id := ds.Mappings[k]; id != "" {
			return id, true
		}
	}
	return "", false
}

// Resolve returns the record owning rawURL, if any.
func (ds *Dataset) Resolve(rawURL string) (*Company, bool) {
	for _, k := range ds.matchingKeys(rawURL) {
		if c, ok := ds.Companies[ds.Mappings[k]]; ok {
			return c, true
		}
	}
	return nil, false
}

// URLsFor lists the distinct site keys mapped to id, sorted.
func (ds *Dataset) URLsFor(id string) []string {
	seen := make(map[string]struct{})
	urls := make([]string, 0, 4)
	for k, owner := range ds.Mappings {
		if owner != id {
			continue
		}
		key := NormalizeURL(k)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		urls = append(urls, key)
	}
	sort.Strings(urls)
	return urls
}

// UnmapURL removes every stored spelling of rawURL and returns the former owner.
func (ds *Dataset) UnmapURL(rawURL string) (string, bool) {
	keys := ds.matchingKeys(rawURL)
	if len(keys) == 0 {
		return "", false
	}
	owner := ds.Mappings[keys[0]]
	for _, k := range keys {
		delete(ds.Mappings, k)
	}
	return owner, true
}

// Delete removes a record and every mapping pointing to it.
// It reports whether anything was removed.
func (ds *Dataset) Delete(id string) bool {
	_, existed := ds.Companies[id]
	delete(ds.Companies, id)
	for k, owner := range ds.Mappings {
		if owner == id {
			delete(ds.Mappings, k)
			existed = true
		}
	}
	return existed
}

// Prune drops mappings whose company does not exist and returns how many were dropped.
func (ds *Dataset) Prune() int {
	dropped := 0
	for k, id := range ds.Mappings {
		if _, ok := ds.Companies[id]; !ok {
			delete(ds.Mappings, k)
			dropped++
		}
	}
	return dropped
}

// CountURLs returns the number of distinct site keys.
func (ds *Dataset) CountURLs() int {
	seen := make(map[string]struct{}, len(ds.Mappings))
	for k := range ds.Mappings {
		seen[NormalizeURL(k)] = struct{}{}
	}
	return len(seen)
}

func (ds *Dataset) sortedKeys() []string {
	keys := make([]string, 0, len(ds.Mappings))
	for k := range ds.Mappings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type datasetJSON struct {
	Mappings  map[string]string   `json:"url_mappings"`
	Companies map[string]*Company `json:"company_data"`
}

// MarshalJSON writes the {url_mappings, company_data} document.
func (ds Dataset) MarshalJSON() ([]byte, error) {
	out := datasetJSON{Mappings: ds.Mappings, Companies: ds.Companies}
	if out.Mappings == nil {
		out.Mappings = map[string]string{}
	}
	if out.Companies == nil {
		out.Companies = map[string]*Company{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the {url_mappings, company_data} document and sets record ids from keys.
func (ds *Dataset) UnmarshalJSON(data []byte) error {
	var raw datasetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ds.Mappings = raw.Mappings
	ds.Companies = raw.Companies
	ds.ensure()
	ds.AssignIDs()
	return nil
}

// AssignIDs copies map keys into record ids and drops nil records.
func (ds *Dataset) AssignIDs() {
	for id, c := range ds.Companies {
		if c == nil {
			delete(ds.Companies, id)
			continue
		}
		c.ID = id
	}
}
