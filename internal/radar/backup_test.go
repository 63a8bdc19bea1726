package radar

import (
	"context"
	"errors"
	"testing"

	"github.com/MrSnakeDoc/susradar/internal/backup"
	"github.com/MrSnakeDoc/susradar/internal/domain"
)

func TestExportImport(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seedAcme(t, svc)

	f, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if f.Metadata.TotalCompanies != 1 || f.Metadata.TotalURLs != 1 {
		t.Errorf("metadata = %+v", f.Metadata)
	}
	if !f.Metadata.ExportedAt.Equal(fixedNow) {
		t.Errorf("ExportedAt = %v", f.Metadata.ExportedAt)
	}

	other, _ := newTestService(t)
	if _, err := other.AddCompany(ctx, "old.com", domain.Fields{Name: "Old", Rating: 2}); err != nil {
		t.Fatal(err)
	}

	if _, err := other.Import(ctx, f, false); !errors.Is(err, domain.ErrConfirmationRequired) {
		t.Fatalf("Import(unconfirmed) error = %v", err)
	}
	if _, err := other.Resolve(ctx, "old.com"); err != nil {
		t.Fatal("unconfirmed import touched the data")
	}

	res, err := other.Import(ctx, f, true)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.Companies != 1 || res.URLs != 1 || res.Pruned != 0 {
		t.Errorf("result = %+v", res)
	}
	if _, err := other.Resolve(ctx, "old.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("import did not replace existing data")
	}
	if _, err := other.Resolve(ctx, "acme.com"); err != nil {
		t.Errorf("imported record not resolvable: %v", err)
	}
}

func TestImport_PrunesDanglingMappings(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ds := domain.NewDataset()
	ds.Put("a.com", "a", domain.NewUserCompany("a", domain.Fields{Name: "A", Rating: 1}, fixedNow))
	ds.Mappings["ghost.com"] = "ghost"

	res, err := svc.Import(ctx, backup.New(ds, fixedNow), true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Pruned != 1 {
		t.Errorf("Pruned = %d, want 1", res.Pruned)
	}
	if _, err := svc.Resolve(ctx, "ghost.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("dangling mapping survived import")
	}
}

func TestImport_RejectsEmptyFile(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Import(context.Background(), &backup.File{}, true); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}
