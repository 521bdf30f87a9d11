package storage

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"propgraph/internal/models"
	"propgraph/internal/quantity"
	"propgraph/internal/symbols"
)

func testFactory() (*quantity.Factory, *symbols.Registry) {
	reg := symbols.Builtin()
	models.RegisterObjectTypes(reg)
	return quantity.NewFactory(reg), reg
}

func TestFromQuantity(t *testing.T) {
	f, reg := testFactory()

	t.Run("registered symbol by name", func(t *testing.T) {
		q, err := f.Create("band_gap", 3.0, quantity.WithTags("dft"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		sq := FromQuantity(q, reg)
		if sq.SymbolType.Name != "band_gap" || sq.SymbolType.Spec != nil {
			t.Errorf("expected name-only reference, got %+v", sq.SymbolType)
		}
		if sq.Class != "numeric" || sq.Units != "eV" || sq.Value != 3.0 {
			t.Errorf("unexpected record: %+v", sq)
		}
		if sq.InternalID != q.InternalID() {
			t.Error("internal id must carry over")
		}
	})

	t.Run("unregistered symbol inlined", func(t *testing.T) {
		sym, err := symbols.Symbol{Name: "exotic", Units: "GPa"}.Normalized()
		if err != nil {
			t.Fatalf("normalize: %v", err)
		}
		q, err := f.Create(sym, 1.0)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		sq := FromQuantity(q, reg)
		if sq.SymbolType.Spec == nil || sq.SymbolType.Spec.Units != "GPa" {
			t.Errorf("expected inlined symbol spec, got %+v", sq.SymbolType)
		}
	})

	t.Run("provenance inputs resolved in memory", func(t *testing.T) {
		in, err := f.Create("temperature", 300.0)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		q, err := f.Create("band_gap", 3.0,
			quantity.WithProvenance(quantity.NewProvenance("m", in)))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		sq := FromQuantity(q, reg)
		if len(sq.Provenance.Inputs) != 1 {
			t.Fatalf("expected one provenance input")
		}
		node := sq.Provenance.Inputs[0]
		if !node.Resolved || node.Value != 300.0 {
			t.Errorf("expected resolved in-memory input, got %+v", node)
		}
		if len(sq.MissingIDs()) != 0 {
			t.Errorf("nothing should be missing in memory: %v", sq.MissingIDs())
		}
	})
}

func TestSerializationStripsInputValues(t *testing.T) {
	f, reg := testFactory()

	in, err := f.Create("temperature", 300.0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	q, err := f.Create("band_gap", 3.0,
		quantity.WithProvenance(quantity.NewProvenance("m", in)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	data, err := json.Marshal(FromQuantity(q, reg))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Inspect the raw wire form: the input node must carry no value key.
	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("unmarshal wire form: %v", err)
	}
	inputs := wire["provenance"].(map[string]any)["inputs"].([]any)
	if _, present := inputs[0].(map[string]any)["value"]; present {
		t.Error("provenance input value must not be serialized")
	}

	var back StorageQuantity
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	node := back.Provenance.Inputs[0]
	if node.Resolved || node.Value != nil {
		t.Error("deserialized input must be unresolved")
	}
	missing := back.MissingIDs()
	if len(missing) != 1 || missing[0] != in.InternalID() {
		t.Errorf("expected missing id %s, got %v", in.InternalID(), missing)
	}
}

func TestToQuantity(t *testing.T) {
	f, reg := testFactory()

	t.Run("round trip without provenance inputs", func(t *testing.T) {
		q, err := f.Create("band_gap", 3.0,
			quantity.WithTags("dft"), quantity.WithUncertainty(0.1))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		data, err := json.Marshal(FromQuantity(q, reg))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var sq StorageQuantity
		if err := json.Unmarshal(data, &sq); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		back, err := sq.ToQuantity(f, nil)
		if err != nil {
			t.Fatalf("to quantity: %v", err)
		}
		if !q.Equal(back) {
			t.Error("round-tripped quantity must equal the original")
		}
		if back.InternalID() != q.InternalID() {
			t.Error("internal id must survive the round trip")
		}
		if got := back.Uncertainty().(float64); math.Abs(got-0.1) > 1e-12 {
			t.Errorf("expected uncertainty 0.1, got %v", got)
		}
	})

	t.Run("missing lookup", func(t *testing.T) {
		in, _ := f.Create("temperature", 300.0)
		q, _ := f.Create("band_gap", 3.0,
			quantity.WithProvenance(quantity.NewProvenance("m", in)))
		data, _ := json.Marshal(FromQuantity(q, reg))
		var sq StorageQuantity
		if err := json.Unmarshal(data, &sq); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if _, err := sq.ToQuantity(f, nil); !errors.Is(err, ErrMissingLookup) {
			t.Errorf("expected ErrMissingLookup, got %v", err)
		}
	})

	t.Run("lookup resolves stripped inputs", func(t *testing.T) {
		in, _ := f.Create("temperature", 300.0)
		q, _ := f.Create("band_gap", 3.0,
			quantity.WithProvenance(quantity.NewProvenance("m", in)))
		data, _ := json.Marshal(FromQuantity(q, reg))
		var sq StorageQuantity
		if err := json.Unmarshal(data, &sq); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		lookup := LookupMap{
			in.InternalID(): {Value: 300.0, Units: "K"},
		}
		back, err := sq.ToQuantity(f, lookup)
		if err != nil {
			t.Fatalf("to quantity: %v", err)
		}
		if !q.Equal(back) {
			t.Error("resolved round trip must equal the original")
		}
		p := back.Provenance()
		if len(p.Inputs) != 1 || p.Inputs[0].Magnitude() != 300.0 {
			t.Errorf("expected resolved input value, got %+v", p.Inputs)
		}
	})

	t.Run("object payload round trip", func(t *testing.T) {
		s := &models.Structure{
			Formula: "MgO",
			Volume:  18.7,
			Sites:   []models.Site{{Element: "Mg", Mass: 24.305}, {Element: "O", Mass: 15.999}},
		}
		q, err := f.Create("structure", s)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		data, err := json.Marshal(FromQuantity(q, reg))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var sq StorageQuantity
		if err := json.Unmarshal(data, &sq); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		back, err := sq.ToQuantity(f, nil)
		if err != nil {
			t.Fatalf("to quantity: %v", err)
		}
		got, ok := back.Value().(*models.Structure)
		if !ok {
			t.Fatalf("expected *Structure, got %T", back.Value())
		}
		if got.Formula != "MgO" || len(got.Sites) != 2 {
			t.Errorf("unexpected structure %+v", got)
		}
	})

	t.Run("complex values tagged", func(t *testing.T) {
		q, err := f.Create("poisson_ratio", complex(0.3, 0.1))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		data, err := json.Marshal(FromQuantity(q, reg))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var sq StorageQuantity
		if err := json.Unmarshal(data, &sq); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		back, err := sq.ToQuantity(f, nil)
		if err != nil {
			t.Fatalf("to quantity: %v", err)
		}
		if got := back.Magnitude().(complex128); got != complex(0.3, 0.1) {
			t.Errorf("expected (0.3+0.1i), got %v", got)
		}
	})
}

func TestStorageEquality(t *testing.T) {
	f, reg := testFactory()

	in, _ := f.Create("temperature", 300.0)
	q, _ := f.Create("band_gap", 3.0,
		quantity.WithProvenance(quantity.NewProvenance("m", in)))

	a := FromQuantity(q, reg)
	b := FromQuantity(q, reg)
	if !a.Equal(b) {
		t.Error("records of the same quantity must be equal")
	}

	// Values do not participate in storage equality.
	b.Value = 99.0
	b.Provenance.Inputs[0].Value = nil
	if !a.Equal(b) {
		t.Error("storage equality must ignore values")
	}

	other, _ := f.Create("band_gap", 3.0)
	if a.Equal(FromQuantity(other, reg)) {
		t.Error("different internal ids must not be equal")
	}

	t.Run("input order ignored", func(t *testing.T) {
		t1, _ := f.Create("temperature", 300.0)
		t2, _ := f.Create("temperature", 400.0)
		x, _ := f.Create("band_gap", 3.0,
			quantity.WithProvenance(quantity.NewProvenance("m", t1, t2)))
		sx := FromQuantity(x, reg)
		sy := FromQuantity(x, reg)
		sy.Provenance.Inputs[0], sy.Provenance.Inputs[1] =
			sy.Provenance.Inputs[1], sy.Provenance.Inputs[0]
		if !sx.Equal(sy) {
			t.Error("input order must not affect storage equality")
		}
	})

	t.Run("duplicate inputs match once", func(t *testing.T) {
		t1, _ := f.Create("temperature", 300.0)
		t2, _ := f.Create("temperature", 400.0)
		x, _ := f.Create("band_gap", 3.0,
			quantity.WithProvenance(quantity.NewProvenance("m", t1, t2)))
		sx := FromQuantity(x, reg)
		sy := FromQuantity(x, reg)
		// Two copies of the same input must not pass for two distinct ones.
		sy.Provenance.Inputs[1] = sy.Provenance.Inputs[0]
		if sx.Equal(sy) {
			t.Error("duplicated input id must break storage equality")
		}
	})
}
