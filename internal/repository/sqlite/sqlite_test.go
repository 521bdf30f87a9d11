package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"propgraph/internal/models"
	"propgraph/internal/quantity"
	"propgraph/internal/storage"
	"propgraph/internal/symbols"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "propgraph.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testFactory() (*quantity.Factory, *symbols.Registry) {
	reg := symbols.Builtin()
	models.RegisterObjectTypes(reg)
	return quantity.NewFactory(reg), reg
}

func TestQuantityRoundTrip(t *testing.T) {
	repo := testRepo(t)
	f, reg := testFactory()
	ctx := context.Background()

	q, err := f.Create("band_gap", 3.0,
		quantity.WithTags("dft"), quantity.WithUncertainty(0.1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.SaveQuantity(ctx, storage.FromQuantity(q, reg)); err != nil {
		t.Fatalf("save: %v", err)
	}

	sq, err := repo.GetQuantity(ctx, q.InternalID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	back, err := sq.ToQuantity(f, repo.Lookup(ctx))
	if err != nil {
		t.Fatalf("to quantity: %v", err)
	}
	if !q.Equal(back) {
		t.Error("round-tripped quantity must equal the original")
	}
	if back.InternalID() != q.InternalID() {
		t.Error("internal id must survive persistence")
	}
}

func TestProvenanceArena(t *testing.T) {
	repo := testRepo(t)
	f, reg := testFactory()
	ctx := context.Background()

	in, err := f.Create("temperature", 300.0)
	if err != nil {
		t.Fatalf("create input: %v", err)
	}
	derived, err := f.Create("band_gap", 3.0,
		quantity.WithProvenance(quantity.NewProvenance("m", in)))
	if err != nil {
		t.Fatalf("create derived: %v", err)
	}

	// Saving the derived quantity files the input's value into the arena.
	if err := repo.SaveQuantity(ctx, storage.FromQuantity(derived, reg)); err != nil {
		t.Fatalf("save: %v", err)
	}

	sq, err := repo.GetQuantity(ctx, derived.InternalID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if missing := sq.MissingIDs(); len(missing) != 1 || missing[0] != in.InternalID() {
		t.Fatalf("expected stripped input %s, got %v", in.InternalID(), missing)
	}

	back, err := sq.ToQuantity(f, repo.Lookup(ctx))
	if err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	p := back.Provenance()
	if len(p.Inputs) != 1 {
		t.Fatalf("expected one provenance input, got %d", len(p.Inputs))
	}
	resolved := p.Inputs[0]
	if resolved.Magnitude() != 300.0 || resolved.Unit().String() != "K" {
		t.Errorf("expected 300 K input, got %v %s", resolved.Magnitude(), resolved.Unit())
	}
	if !derived.Equal(back) {
		t.Error("rehydrated quantity must equal the original")
	}

	// Without the arena, rehydration must refuse.
	if _, err := sq.ToQuantity(f, nil); err == nil {
		t.Error("expected rehydration without lookup to fail")
	}
}

func TestArenaDeduplicates(t *testing.T) {
	repo := testRepo(t)
	f, reg := testFactory()
	ctx := context.Background()

	in, _ := f.Create("temperature", 300.0)
	a, _ := f.Create("band_gap", 1.0,
		quantity.WithProvenance(quantity.NewProvenance("m", in)))
	b, _ := f.Create("band_gap", 2.0,
		quantity.WithProvenance(quantity.NewProvenance("m", in)))

	if err := repo.SaveQuantity(ctx, storage.FromQuantity(a, reg)); err != nil {
		t.Fatalf("save a: %v", err)
	}
	if err := repo.SaveQuantity(ctx, storage.FromQuantity(b, reg)); err != nil {
		t.Fatalf("save b: %v", err)
	}

	// Both derivations share one arena entry for the input.
	entry, ok := repo.Lookup(ctx).Resolve(in.InternalID())
	if !ok {
		t.Fatal("expected arena entry for shared input")
	}
	if entry.Value != 300.0 || entry.Units != "K" {
		t.Errorf("unexpected arena entry: %+v", entry)
	}
}

func TestMaterials(t *testing.T) {
	repo := testRepo(t)
	f, reg := testFactory()
	ctx := context.Background()

	q1, _ := f.Create("band_gap", 3.0)
	q2, _ := f.Create("temperature", 300.0)
	records := []*storage.StorageQuantity{
		storage.FromQuantity(q1, reg),
		storage.FromQuantity(q2, reg),
	}

	if err := repo.SaveMaterial(ctx, "mat-1", records); err != nil {
		t.Fatalf("save material: %v", err)
	}

	back, err := repo.GetMaterial(ctx, "mat-1")
	if err != nil {
		t.Fatalf("get material: %v", err)
	}
	if len(back) != 2 {
		t.Fatalf("expected 2 records, got %d", len(back))
	}
	// Ordered by symbol.
	if back[0].SymbolType.Name != "band_gap" || back[1].SymbolType.Name != "temperature" {
		t.Errorf("unexpected order: %s, %s", back[0].SymbolType.Name, back[1].SymbolType.Name)
	}

	ids, err := repo.ListMaterials(ctx)
	if err != nil {
		t.Fatalf("list materials: %v", err)
	}
	if len(ids) != 1 || ids[0] != "mat-1" {
		t.Errorf("expected [mat-1], got %v", ids)
	}

	// Re-saving with fewer records replaces the membership.
	if err := repo.SaveMaterial(ctx, "mat-1", records[:1]); err != nil {
		t.Fatalf("re-save material: %v", err)
	}
	back, err = repo.GetMaterial(ctx, "mat-1")
	if err != nil {
		t.Fatalf("get material: %v", err)
	}
	if len(back) != 1 {
		t.Errorf("expected membership replaced, got %d records", len(back))
	}
}
