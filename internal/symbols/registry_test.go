package symbols

import (
	"errors"
	"strings"
	"testing"
)

func TestRegistry(t *testing.T) {
	t.Run("register and lookup", func(t *testing.T) {
		r := NewRegistry()
		if err := r.Register(Symbol{Name: "band_gap", Units: "eV"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sym, err := r.Lookup("band_gap")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sym.Category != CategoryNumeric {
			t.Errorf("expected numeric default category, got %s", sym.Category)
		}
	})

	t.Run("unknown symbol", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.Lookup("nope")
		if !errors.Is(err, ErrUnknownSymbol) {
			t.Errorf("expected ErrUnknownSymbol, got %v", err)
		}
	})

	t.Run("duplicate registration rejected", func(t *testing.T) {
		r := NewRegistry()
		if err := r.Register(Symbol{Name: "a", Units: ""}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := r.Register(Symbol{Name: "a", Units: ""}); err == nil {
			t.Error("expected duplicate registration to fail")
		}
	})

	t.Run("object symbols cannot carry units", func(t *testing.T) {
		r := NewRegistry()
		err := r.Register(Symbol{Name: "s", Category: CategoryObject, Units: "m"})
		if err == nil {
			t.Error("expected error for object symbol with units")
		}
	})

	t.Run("default for unregistered symbol rejected", func(t *testing.T) {
		r := NewRegistry()
		if err := r.RegisterDefault("missing", 1.0); !errors.Is(err, ErrUnknownSymbol) {
			t.Errorf("expected ErrUnknownSymbol, got %v", err)
		}
	})
}

func TestConstraint(t *testing.T) {
	cases := []struct {
		expr    string
		value   float64
		satisfy bool
	}{
		{"> 0", 1, true},
		{"> 0", 0, false},
		{">= 0", 0, true},
		{"< 10", 5, true},
		{"<= 10", 10, true},
		{"!= 0", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			c, err := parseConstraint(tc.expr)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := c(tc.value); got != tc.satisfy {
				t.Errorf("%q on %g: expected %v, got %v", tc.expr, tc.value, tc.satisfy, got)
			}
		})
	}

	t.Run("malformed expression", func(t *testing.T) {
		if _, err := parseConstraint("between 0 and 1"); err == nil {
			t.Error("expected error for malformed constraint")
		}
	})
}

func TestLoadDefinitions(t *testing.T) {
	src := `
symbols:
  - name: band_gap
    units: eV
    constraint: ">= 0"
    default: 0.0
  - name: structure
    category: object
    object_type: Structure
`
	r := NewRegistry()
	if err := r.LoadDefinitions(strings.NewReader(src)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sym, err := r.Lookup("band_gap")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sym.Constraint() == nil {
		t.Error("expected compiled constraint")
	}
	if sym.Constraint()(-1) {
		t.Error("expected constraint to reject negative values")
	}

	if _, ok := r.DefaultValue("band_gap"); !ok {
		t.Error("expected default value for band_gap")
	}

	obj, err := r.Lookup("structure")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !obj.IsObject() || obj.ObjectType != "Structure" {
		t.Errorf("unexpected object symbol: %+v", obj)
	}
}

func TestBuiltin(t *testing.T) {
	r := Builtin()

	if !r.Has("bulk_modulus") || !r.Has("structure") {
		t.Fatal("expected built-in symbols to be registered")
	}

	sym, err := r.Lookup("density")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := sym.CanonicalUnit(); err != nil {
		t.Errorf("built-in units should parse: %v", err)
	}

	if _, ok := r.DefaultValue("temperature"); !ok {
		t.Error("expected default temperature")
	}

	if _, ok := r.ObjectFactory("bool"); !ok {
		t.Error("expected bool object factory")
	}
}
