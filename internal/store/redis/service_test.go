package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/susradar/internal/domain"
	"github.com/MrSnakeDoc/susradar/internal/logger"
	"github.com/MrSnakeDoc/susradar/internal/radar"
	"github.com/MrSnakeDoc/susradar/internal/store"
)

var _ store.Backend = (*Store)(nil)

func setupTestRedis(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), s
}

func sampleDataset() *domain.Dataset {
	ds := domain.NewDataset()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ds.Put("facebook.com", "meta_corp", domain.NewCuratedCompany("meta_corp", domain.Fields{
		Name:             "Meta (Facebook)",
		Rating:           4,
		Descriptions:     domain.Descriptions{Customer: "tracks you"},
		AlternativeLinks: []string{"https://signal.org"},
	}, created))
	ds.MapURL("instagram.com", "meta_corp")
	ds.Put("shop.com", "shop", domain.NewUserCompany("shop", domain.Fields{Name: "Shop", Rating: 2}, created))
	return ds
}

func TestLoadEmpty(t *testing.T) {
	st, _ := setupTestRedis(t)

	ds, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !ds.IsEmpty() || len(ds.Mappings) != 0 {
		t.Errorf("expected empty dataset, got %+v", ds)
	}
}

func TestSaveAndLoad(t *testing.T) {
	st, s := setupTestRedis(t)
	ctx := context.Background()

	if err := st.Save(ctx, sampleDataset()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if got := s.HGet(KeyMappings, "instagram.com"); got != "meta_corp" {
		t.Errorf("mapping stored as %q", got)
	}

	ds, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	meta, ok := ds.Resolve("https://www.instagram.com/explore")
	if !ok {
		t.Fatal("instagram should resolve after reload")
	}
	if meta.ID != "meta_corp" || meta.DefaultCategory != domain.CategoryCustomer || meta.Origin != domain.OriginCurated {
		t.Errorf("unexpected record %+v", meta)
	}
	if shop := ds.Companies["shop"]; shop == nil || shop.Origin != domain.OriginUser || !shop.UserAdded {
		t.Errorf("user record not restored: %+v", shop)
	}
}

func TestSaveReplacesEverything(t *testing.T) {
	st, _ := setupTestRedis(t)
	ctx := context.Background()

	if err := st.Save(ctx, sampleDataset()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	next := domain.NewDataset()
	next.Put("tiktok.com", "bytedance", &domain.Company{Fields: domain.Fields{Name: "ByteDance", Rating: 5}})
	if err := st.Save(ctx, next); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	ds, _ := st.Load(ctx)
	if len(ds.Companies) != 1 || len(ds.Mappings) != 1 {
		t.Errorf("old data survived a full save: %+v", ds)
	}

	if err := st.Save(ctx, domain.NewDataset()); err != nil {
		t.Fatalf("Save(empty) error = %v", err)
	}
	ds, _ = st.Load(ctx)
	if !ds.IsEmpty() {
		t.Error("saving an empty dataset should clear the store")
	}
}

func TestLoadRejectsCorruptRecords(t *testing.T) {
	st, s := setupTestRedis(t)
	ctx := context.Background()

	if err := st.Save(ctx, sampleDataset()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	s.HSet(KeyCompanies, "shop", `{"sus_rating":"oops"}`)

	if _, err := st.Load(ctx); err == nil {
		t.Fatal("Load() should fail on an undecodable record")
	}
}

func TestCorruptRecordSurvivesMutation(t *testing.T) {
	st, s := setupTestRedis(t)
	ctx := context.Background()

	if err := st.Save(ctx, sampleDataset()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	const corrupt = `{"sus_rating":"oops"}`
	s.HSet(KeyCompanies, "shop", corrupt)

	svc := radar.NewService(st, logger.Nop())
	err := svc.AddURL(ctx, "meta_corp", "threads.net")
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("AddURL() error = %v, want ErrStorageUnavailable", err)
	}

	if got := s.HGet(KeyCompanies, "shop"); got != corrupt {
		t.Errorf("shop record = %q, want it left untouched", got)
	}
	if got := s.HGet(KeyMappings, "shop.com"); got != "shop" {
		t.Errorf("shop.com mapping = %q, want shop", got)
	}
	if got := s.HGet(KeyMappings, "threads.net"); got != "" {
		t.Errorf("threads.net was mapped to %q despite the failed load", got)
	}
}

func TestDeleteCompany(t *testing.T) {
	st, _ := setupTestRedis(t)
	ctx := context.Background()

	if err := st.Save(ctx, sampleDataset()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := st.DeleteCompany(ctx, "meta_corp"); err != nil {
		t.Fatalf("DeleteCompany() error = %v", err)
	}
	if err := st.DeleteCompany(ctx, "meta_corp"); err != nil {
		t.Fatalf("DeleteCompany() should be idempotent: %v", err)
	}

	ds, _ := st.Load(ctx)
	if _, ok := ds.Companies["meta_corp"]; ok {
		t.Error("company still present")
	}
	for key, id := range ds.Mappings {
		if id == "meta_corp" {
			t.Errorf("dangling mapping %s", key)
		}
	}
	if _, ok := ds.Companies["shop"]; !ok {
		t.Error("unrelated company removed")
	}
}

func TestStoreUnavailable(t *testing.T) {
	st, s := setupTestRedis(t)
	s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := st.Load(ctx); err == nil {
		t.Error("Load() should fail when Redis is down")
	}
	if err := st.Save(ctx, sampleDataset()); err == nil {
		t.Error("Save() should fail when Redis is down")
	}
	if err := st.Ping(ctx); err == nil || errors.Is(err, redis.Nil) {
		t.Errorf("Ping() = %v, want connection error", err)
	}
}

func TestCredentials(t *testing.T) {
	st, _ := setupTestRedis(t)
	ctx := context.Background()

	empty, err := st.LoadCredentials(ctx)
	if err != nil {
		t.Fatalf("LoadCredentials() error = %v", err)
	}
	if empty != (store.Credentials{}) {
		t.Errorf("expected no credentials, got %+v", empty)
	}

	creds := store.Credentials{Token: "jwt", Username: "alice", ServerURL: "http://localhost:5000"}
	if err := st.SaveCredentials(ctx, creds); err != nil {
		t.Fatalf("SaveCredentials() error = %v", err)
	}
	got, _ := st.LoadCredentials(ctx)
	if got != creds {
		t.Errorf("LoadCredentials() = %+v, want %+v", got, creds)
	}

	if err := st.ClearCredentials(ctx); err != nil {
		t.Fatalf("ClearCredentials() error = %v", err)
	}
	got, _ = st.LoadCredentials(ctx)
	if got.Token != "" || got.Username != "" || got.ServerURL != creds.ServerURL {
		t.Errorf("ClearCredentials() left %+v", got)
	}
}
