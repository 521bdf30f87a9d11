package models

import (
	"fmt"
	"math"
)

// Builtin returns the built-in model catalog.
func Builtin() *Catalog {
	c := NewCatalog()
	for _, m := range []Model{
		densityModel(),
		youngsModulusModel(),
		poissonRatioModel(),
		vickersHardnessModel(),
		wiedemannFranzModel(),
		clarkeThermalConductivityModel(),
	} {
		if err := c.Register(m); err != nil {
			// The built-in catalog is static; a failure here is a
			// programming error.
			panic(err)
		}
	}
	return c
}

// densityModel derives mass and atomic densities from a structure.
func densityModel() Model {
	return &Definition{
		ModelName:   "density",
		Description: "Mass density, atomic density, and volume per atom from a crystal structure.",
		Conns: []Connection{
			{Inputs: []string{"structure"}, Outputs: []string{"density", "atomic_density", "volume_per_atom"}},
		},
		Units: map[string]string{
			"density":         "g/cm^3",
			"atomic_density":  "1/angstrom^3",
			"volume_per_atom": "angstrom^3",
		},
		Run: func(inputs map[string]any) (map[string]any, error) {
			s, err := asStructure(inputs, "structure")
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"density":         s.Density(),
				"atomic_density":  s.AtomicDensity(),
				"volume_per_atom": s.VolumePerAtom(),
			}, nil
		},
	}
}

// youngsModulusModel: E = 9KG / (3K + G) for isotropic solids.
func youngsModulusModel() Model {
	return &Definition{
		ModelName:   "youngs_modulus",
		Description: "Young's modulus from bulk and shear moduli.",
		Conns: []Connection{
			{Inputs: []string{"bulk_modulus", "shear_modulus"}, Outputs: []string{"youngs_modulus"}},
		},
		Units: map[string]string{
			"bulk_modulus":   "GPa",
			"shear_modulus":  "GPa",
			"youngs_modulus": "GPa",
		},
		Run: func(inputs map[string]any) (map[string]any, error) {
			k, err := fnum(inputs, "bulk_modulus")
			if err != nil {
				return nil, err
			}
			g, err := fnum(inputs, "shear_modulus")
			if err != nil {
				return nil, err
			}
			denom := 3*k + g
			if denom == 0 {
				return nil, fmt.Errorf("degenerate moduli: 3K+G = 0")
			}
			return map[string]any{"youngs_modulus": 9 * k * g / denom}, nil
		},
	}
}

// poissonRatioModel: nu = (3K - 2G) / (2(3K + G)).
func poissonRatioModel() Model {
	return &Definition{
		ModelName:   "poisson_ratio",
		Description: "Poisson ratio from bulk and shear moduli.",
		Conns: []Connection{
			{Inputs: []string{"bulk_modulus", "shear_modulus"}, Outputs: []string{"poisson_ratio"}},
		},
		Units: map[string]string{
			"bulk_modulus":  "GPa",
			"shear_modulus": "GPa",
			"poisson_ratio": "dimensionless",
		},
		Run: func(inputs map[string]any) (map[string]any, error) {
			k, err := fnum(inputs, "bulk_modulus")
			if err != nil {
				return nil, err
			}
			g, err := fnum(inputs, "shear_modulus")
			if err != nil {
				return nil, err
			}
			denom := 2 * (3*k + g)
			if denom == 0 {
				return nil, fmt.Errorf("degenerate moduli: 3K+G = 0")
			}
			return map[string]any{"poisson_ratio": (3*k - 2*g) / denom}, nil
		},
	}
}

// vickersHardnessModel: Tian's empirical hardness,
// Hv = 0.92 (G/K)^1.137 G^0.708 with moduli in GPa.
func vickersHardnessModel() Model {
	return &Definition{
		ModelName:   "vickers_hardness",
		Description: "Empirical Vickers hardness from bulk and shear moduli.",
		Conns: []Connection{
			{Inputs: []string{"bulk_modulus", "shear_modulus"}, Outputs: []string{"vickers_hardness"}},
		},
		Units: map[string]string{
			"bulk_modulus":     "GPa",
			"shear_modulus":    "GPa",
			"vickers_hardness": "GPa",
		},
		Run: func(inputs map[string]any) (map[string]any, error) {
			k, err := fnum(inputs, "bulk_modulus")
			if err != nil {
				return nil, err
			}
			g, err := fnum(inputs, "shear_modulus")
			if err != nil {
				return nil, err
			}
			if k <= 0 || g <= 0 {
				return nil, fmt.Errorf("moduli must be positive, got K=%g G=%g", k, g)
			}
			hv := 0.92 * math.Pow(g/k, 1.137) * math.Pow(g, 0.708)
			return map[string]any{"vickers_hardness": hv}, nil
		},
	}
}

// wiedemannFranzModel: kappa = L * sigma * T for metals, with the
// Sommerfeld value of the Lorenz number. Gated on is_metallic.
func wiedemannFranzModel() Model {
	return &Definition{
		ModelName:   "wiedemann_franz",
		Description: "Electronic thermal conductivity from electrical conductivity and temperature.",
		Conns: []Connection{
			{Inputs: []string{"electrical_conductivity", "temperature"}, Outputs: []string{"thermal_conductivity"}},
		},
		Units: map[string]string{
			"electrical_conductivity": "S/m",
			"temperature":             "K",
			"thermal_conductivity":    "W/m/K",
		},
		Constraints: []string{"is_metallic"},
		Check: func(inputs map[string]any) bool {
			metallic, ok := inputs["is_metallic"].(bool)
			return ok && metallic
		},
		Run: func(inputs map[string]any) (map[string]any, error) {
			sigma, err := fnum(inputs, "electrical_conductivity")
			if err != nil {
				return nil, err
			}
			temp, err := fnum(inputs, "temperature")
			if err != nil {
				return nil, err
			}
			return map[string]any{"thermal_conductivity": lorenzNumber * sigma * temp}, nil
		},
	}
}

// clarkeThermalConductivityModel: Clarke's estimate of the minimum
// lattice thermal conductivity,
// kappa = 0.87 kB m^(-2/3) rho^(1/6) E^(1/2), in SI units.
func clarkeThermalConductivityModel() Model {
	return &Definition{
		ModelName:   "clarke_thermal_conductivity",
		Description: "Clarke minimum thermal conductivity from elastic and structural data.",
		Conns: []Connection{
			{Inputs: []string{"structure", "youngs_modulus", "density"}, Outputs: []string{"thermal_conductivity"}},
		},
		Units: map[string]string{
			"youngs_modulus":       "Pa",
			"density":              "kg/m^3",
			"thermal_conductivity": "W/m/K",
		},
		Run: func(inputs map[string]any) (map[string]any, error) {
			s, err := asStructure(inputs, "structure")
			if err != nil {
				return nil, err
			}
			e, err := fnum(inputs, "youngs_modulus")
			if err != nil {
				return nil, err
			}
			rho, err := fnum(inputs, "density")
			if err != nil {
				return nil, err
			}
			if e <= 0 || rho <= 0 {
				return nil, fmt.Errorf("modulus and density must be positive, got E=%g rho=%g", e, rho)
			}
			kappa := 0.87 * boltzmann *
				math.Pow(s.AverageMass(), -2.0/3.0) *
				math.Pow(rho, 1.0/6.0) *
				math.Sqrt(e)
			return map[string]any{"thermal_conductivity": kappa}, nil
		},
	}
}
