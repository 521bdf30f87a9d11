package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"propgraph/internal/codec"
	"propgraph/internal/models"
	"propgraph/internal/repository/sqlite"
	"propgraph/internal/symbols"
)

func testService(t *testing.T, opts ...ServiceOption) *EvaluationService {
	t.Helper()
	reg := symbols.Builtin()
	models.RegisterObjectTypes(reg)
	return NewEvaluationService(reg, models.Builtin(), opts...)
}

func parseDoc(t *testing.T, src string) *codec.MaterialInput {
	t.Helper()
	doc, err := codec.NewYAMLCodec().Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

const sampleDoc = `
materials:
  - id: mgo
    quantities:
      - symbol: bulk_modulus
        value: 160
        units: GPa
      - symbol: shear_modulus
        value: 130
        units: GPa
  - id: copper
    quantities:
      - symbol: electrical_conductivity
        value: 5.96e7
        units: S/m
      - symbol: temperature
        value: 300
        units: K
      - symbol: is_metallic
        value: true
`

func TestLoadMaterials(t *testing.T) {
	s := testService(t)
	mats, err := s.LoadMaterials(parseDoc(t, sampleDoc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(mats) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(mats))
	}
	if mats[0].ID() != "mgo" || !mats[0].Has("bulk_modulus") {
		t.Errorf("unexpected first material: %s %v", mats[0].ID(), mats[0].Symbols())
	}
	if !mats[1].Has("is_metallic") {
		t.Error("expected object quantity loaded")
	}

	t.Run("unknown symbol fails", func(t *testing.T) {
		bad := parseDoc(t, `
materials:
  - quantities:
      - symbol: nope
        value: 1
`)
		if _, err := s.LoadMaterials(bad); err == nil {
			t.Error("expected unknown symbol to fail loading")
		}
	})
}

func TestEvaluateMaterial(t *testing.T) {
	bus := NewEventBus()
	events := make(chan Event, 64)
	bus.Subscribe(events)

	s := testService(t, WithEventBus(bus))
	mats, err := s.LoadMaterials(parseDoc(t, sampleDoc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := s.EvaluateMaterial(context.Background(), mats[0]); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	for _, want := range []string{"youngs_modulus", "poisson_ratio", "vickers_hardness"} {
		if !mats[0].Has(want) {
			t.Errorf("expected derived symbol %s", want)
		}
	}

	close(events)
	var derived, evaluated int
	for ev := range events {
		switch ev.Type {
		case EventQuantityDerived:
			derived++
		case EventMaterialEvaluated:
			evaluated++
		}
	}
	if derived < 3 {
		t.Errorf("expected at least 3 derivation events, got %d", derived)
	}
	if evaluated != 1 {
		t.Errorf("expected 1 material event, got %d", evaluated)
	}
}

func TestEvaluateAllWithPersistence(t *testing.T) {
	repo, err := sqlite.New(filepath.Join(t.TempDir(), "propgraph.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	defer repo.Close()

	s := testService(t, WithRepository(repo))
	mats, err := s.LoadMaterials(parseDoc(t, sampleDoc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	ctx := context.Background()
	if err := s.EvaluateAll(ctx, mats, 2); err != nil {
		t.Fatalf("evaluate all: %v", err)
	}

	// Copper gets Wiedemann-Franz thermal conductivity.
	if !mats[1].Has("thermal_conductivity") {
		t.Error("expected derived thermal conductivity")
	}

	ids, err := repo.ListMaterials(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 persisted materials, got %v", ids)
	}

	back, err := s.LoadStoredMaterial(ctx, "copper")
	if err != nil {
		t.Fatalf("load stored: %v", err)
	}
	if !back.Has("thermal_conductivity") {
		t.Error("expected persisted derivation to reload")
	}
	// Derivations reload with their provenance inputs resolved.
	q := back.QuantitiesFor("thermal_conductivity")[0]
	if q.Provenance().Model != "wiedemann_franz" {
		t.Errorf("unexpected provenance model %q", q.Provenance().Model)
	}
	if len(q.Provenance().Inputs) == 0 {
		t.Error("expected resolved provenance inputs")
	}
}

func TestExportDocument(t *testing.T) {
	s := testService(t)
	mats, err := s.LoadMaterials(parseDoc(t, sampleDoc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	doc := s.ExportDocument(mats)
	if len(doc.Materials) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(doc.Materials))
	}
	if doc.Materials[0].Quantities[0].InternalID == "" {
		t.Error("expected storage records with internal ids")
	}
}
