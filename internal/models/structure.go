package models

import (
	"encoding/json"
	"fmt"

	"propgraph/internal/symbols"
)

// Physical constants used by the built-in catalog.
const (
	amuKilograms = 1.66053906660e-27 // kg per atomic mass unit
	amuGrams     = 1.66053906660e-24
	boltzmann    = 1.380649e-23 // J/K
	lorenzNumber = 2.44e-8      // W*ohm/K^2
)

// Site is one atom in a structure.
type Site struct {
	Element string  `yaml:"element" json:"element"`
	Mass    float64 `yaml:"mass" json:"mass"` // amu
}

// Structure is the object payload behind the "structure" symbol: a
// minimal crystal description sufficient for the built-in models.
type Structure struct {
	Formula string  `yaml:"formula" json:"formula"`
	Volume  float64 `yaml:"volume" json:"volume"` // angstrom^3 per cell
	Sites   []Site  `yaml:"sites" json:"sites"`
}

// NumSites returns the number of atoms in the cell.
func (s *Structure) NumSites() int { return len(s.Sites) }

// TotalMass returns the cell mass in amu.
func (s *Structure) TotalMass() float64 {
	var total float64
	for _, site := range s.Sites {
		total += site.Mass
	}
	return total
}

// AverageMass returns the mean atomic mass in kg, or 0 for an empty cell.
func (s *Structure) AverageMass() float64 {
	if len(s.Sites) == 0 {
		return 0
	}
	return s.TotalMass() / float64(len(s.Sites)) * amuKilograms
}

// Density returns the mass density in g/cm^3.
func (s *Structure) Density() float64 {
	if s.Volume == 0 {
		return 0
	}
	// amu/angstrom^3 to g/cm^3: the 1e-24 factors cancel.
	return s.TotalMass() * amuGrams / (s.Volume * 1e-24)
}

// AtomicDensity returns sites per angstrom^3.
func (s *Structure) AtomicDensity() float64 {
	if s.Volume == 0 {
		return 0
	}
	return float64(len(s.Sites)) / s.Volume
}

// VolumePerAtom returns angstrom^3 per site.
func (s *Structure) VolumePerAtom() float64 {
	if len(s.Sites) == 0 {
		return 0
	}
	return s.Volume / float64(len(s.Sites))
}

// RegisterObjectTypes installs the object coercion factories the
// built-in catalog depends on.
func RegisterObjectTypes(reg *symbols.Registry) {
	reg.RegisterObjectType("Structure", symbols.ObjectFactory{
		Matches: func(v any) bool {
			_, ok := v.(*Structure)
			return ok
		},
		New: func(v any) (any, error) {
			switch s := v.(type) {
			case Structure:
				return &s, nil
			case map[string]any:
				// Deserialized records arrive as generic maps.
				data, err := json.Marshal(s)
				if err != nil {
					return nil, err
				}
				var out Structure
				if err := json.Unmarshal(data, &out); err != nil {
					return nil, err
				}
				return &out, nil
			}
			return nil, fmt.Errorf("expected Structure, got %T", v)
		},
	})
}

// asStructure extracts the structure payload a model was handed.
func asStructure(inputs map[string]any, key string) (*Structure, error) {
	s, ok := inputs[key].(*Structure)
	if !ok {
		return nil, fmt.Errorf("input %s: expected *Structure, got %T", key, inputs[key])
	}
	if s.NumSites() == 0 || s.Volume <= 0 {
		return nil, fmt.Errorf("input %s: degenerate structure", key)
	}
	return s, nil
}

// fnum extracts a real scalar input.
func fnum(inputs map[string]any, key string) (float64, error) {
	switch v := inputs[key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}
	return 0, fmt.Errorf("input %s: expected scalar magnitude, got %T", key, inputs[key])
}
