package symbols

// Builtin returns a registry preloaded with the property symbols the
// built-in model catalog operates on. Callers may layer additional
// definitions on top with LoadDefinitions.
func Builtin() *Registry {
	r := NewRegistry()

	numeric := []Symbol{
		{Name: "band_gap", Units: "eV", ConstraintExpr: ">= 0"},
		{Name: "temperature", Units: "K", ConstraintExpr: "> 0"},
		{Name: "relative_permeability", Units: "dimensionless"},
		{Name: "bulk_modulus", Units: "GPa", ConstraintExpr: "> 0"},
		{Name: "shear_modulus", Units: "GPa", ConstraintExpr: "> 0"},
		{Name: "youngs_modulus", Units: "GPa", ConstraintExpr: "> 0"},
		{Name: "poisson_ratio", Units: "dimensionless"},
		{Name: "vickers_hardness", Units: "GPa", ConstraintExpr: ">= 0"},
		{Name: "density", Units: "g/cm^3", ConstraintExpr: "> 0"},
		{Name: "atomic_density", Units: "1/angstrom^3", ConstraintExpr: "> 0"},
		{Name: "volume_per_atom", Units: "angstrom^3", ConstraintExpr: "> 0"},
		{Name: "electrical_conductivity", Units: "S/m", ConstraintExpr: ">= 0"},
		{Name: "thermal_conductivity", Units: "W/m/K", ConstraintExpr: ">= 0"},
	}
	for _, sym := range numeric {
		if err := r.Register(sym); err != nil {
			// Built-in definitions are static; a failure here is a
			// programming error.
			panic(err)
		}
	}

	objects := []Symbol{
		{Name: "structure", Category: CategoryObject, ObjectType: "Structure"},
		{Name: "is_metallic", Category: CategoryObject, ObjectType: "bool"},
	}
	for _, sym := range objects {
		if err := r.Register(sym); err != nil {
			panic(err)
		}
	}

	// Booleans ride as object payloads because they are rejected by the
	// numeric variant.
	r.RegisterObjectType("bool", ObjectFactory{
		Matches: func(v any) bool { _, ok := v.(bool); return ok },
	})

	defaults := map[string]any{
		"temperature":           300.0,
		"relative_permeability": 1.0,
	}
	for name, value := range defaults {
		if err := r.RegisterDefault(name, value); err != nil {
			panic(err)
		}
	}

	return r
}
