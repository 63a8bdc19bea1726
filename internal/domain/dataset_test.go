package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDatasetResolve(t *testing.T) {
	ds := NewDataset()
	ds.Put("acme.com", "acme", NewCuratedCompany("acme", acmeFields(), time.Now()))

	tests := []struct {
		url    string
		wantOK bool
	}{
		{"https://www.acme.com/page", true},
		{"http://ACME.com", true},
		{"acme.com", true},
		{"shop.acme.com", false},
		{"https://acme.org", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			c, ok := ds.Resolve(tt.url)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.url, ok, tt.wantOK)
			}
			if ok && c.ID != "acme" {
				t.Errorf("Resolve(%q) = %s, want acme", tt.url, c.ID)
			}
		})
	}
}

func TestDatasetResolveLegacyKeys(t *testing.T) {
	ds := NewDataset()
	ds.Companies["meta_corp"] = &Company{ID: "meta_corp", Fields: Fields{Name: "Meta", Rating: 4}}
	ds.Mappings["www.facebook.com"] = "meta_corp"

	if c, ok := ds.Resolve("https://facebook.com/groups"); !ok || c.ID != "meta_corp" {
		t.Errorf("legacy www key should still resolve, got %v %v", c, ok)
	}
}

func TestDatasetResolveDanglingMapping(t *testing.T) {
	ds := NewDataset()
	ds.Mappings["ghost.com"] = "ghost"
	if _, ok := ds.Resolve("ghost.com"); ok {
		t.Error("mapping without record must resolve to not found")
	}
	if n := ds.Prune(); n != 1 || len(ds.Mappings) != 0 {
		t.Errorf("Prune() = %d, mappings = %v", n, ds.Mappings)
	}
}

func TestDatasetDeleteCascades(t *testing.T) {
	ds := NewDataset()
	ds.Put("a.com", "a", &Company{Fields: Fields{Name: "A", Rating: 1}})
	ds.MapURL("a.org", "a")
	ds.Put("b.com", "b", &Company{Fields: Fields{Name: "B", Rating: 1}})

	if !ds.Delete("a") {
		t.Fatal("Delete() should report removal")
	}
	for k, id := range ds.Mappings {
		if id == "a" {
			t.Errorf("dangling mapping %s -> a", k)
		}
	}
	if len(ds.Mappings) != 1 {
		t.Errorf("unrelated mappings removed: %v", ds.Mappings)
	}
	if ds.Delete("a") {
		t.Error("second Delete() should report nothing removed")
	}
}

func TestDatasetURLsForDeduplicates(t *testing.T) {
	ds := NewDataset()
	ds.Companies["meta_corp"] = &Company{ID: "meta_corp"}
	ds.Mappings["facebook.com"] = "meta_corp"
	ds.Mappings["www.facebook.com"] = "meta_corp"
	ds.Mappings["instagram.com"] = "meta_corp"

	urls := ds.URLsFor("meta_corp")
	if len(urls) != 2 || urls[0] != "facebook.com" || urls[1] != "instagram.com" {
		t.Errorf("URLsFor() = %v", urls)
	}
	if ds.CountURLs() != 2 {
		t.Errorf("CountURLs() = %d, want 2", ds.CountURLs())
	}

	owner, ok := ds.UnmapURL("https://www.facebook.com")
	if !ok || owner != "meta_corp" {
		t.Fatalf("UnmapURL() = %q, %v", owner, ok)
	}
	if len(ds.Mappings) != 1 {
		t.Errorf("both spellings should be removed, left %v", ds.Mappings)
	}
}

func TestDatasetJSON(t *testing.T) {
	raw := `{"url_mappings":{"acme.com":"acme"},"company_data":{"acme":{"company_name":"Acme","sus_rating":3,"origin":"curated"}}}`

	var ds Dataset
	if err := json.Unmarshal([]byte(raw), &ds); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	c, ok := ds.Resolve("acme.com")
	if !ok || c.ID != "acme" {
		t.Fatalf("decoded dataset does not resolve: %v %v", c, ok)
	}

	empty, err := json.Marshal(NewDataset())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(empty) != `{"url_mappings":{},"company_data":{}}` {
		t.Errorf("empty dataset encoded as %s", empty)
	}
}

func TestDatasetCloneIsDeep(t *testing.T) {
	ds := NewDataset()
	ds.Put("acme.com", "acme", NewCuratedCompany("acme", acmeFields(), time.Now()))

	cp := ds.Clone()
	cp.Companies["acme"].Rating = 1
	cp.Mappings["x.com"] = "acme"

	if ds.Companies["acme"].Rating != 3 || len(ds.Mappings) != 1 {
		t.Error("Clone() shares state with the source dataset")
	}
}
