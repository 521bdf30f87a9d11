package symbols

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// definitionFile is the YAML layout for symbol definition files:
//
//	symbols:
//	  - name: band_gap
//	    units: eV
//	    constraint: ">= 0"
//	    default: 0.0
//	  - name: structure
//	    category: object
//	    object_type: Structure
type definitionFile struct {
	Symbols []definition `yaml:"symbols"`
}

type definition struct {
	Symbol  `yaml:",inline"`
	Default any `yaml:"default,omitempty"`
}

// LoadDefinitions reads symbol definitions from r into the registry.
func (r *Registry) LoadDefinitions(src io.Reader) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("read symbol definitions: %w", err)
	}
	var file definitionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse symbol definitions: %w", err)
	}
	for _, def := range file.Symbols {
		if err := r.Register(def.Symbol); err != nil {
			return err
		}
		if def.Default != nil {
			if err := r.RegisterDefault(def.Name, def.Default); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadDefinitionFile reads symbol definitions from a YAML file on disk.
func (r *Registry) LoadDefinitionFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open symbol definitions: %w", err)
	}
	defer f.Close()
	return r.LoadDefinitions(f)
}
