package quantity

import (
	"encoding/hex"
	"fmt"
	"log"

	"github.com/google/uuid"

	"propgraph/internal/symbols"
	"propgraph/internal/units"
)

// ValueWithUnits is a raw magnitude paired with the unit expression it
// is stated in, for callers that have no Quantity to hand.
type ValueWithUnits struct {
	Value any
	Units string
}

// Factory constructs quantities against a symbol registry, enforcing
// unit handling, constraints, and object coercion in one place.
type Factory struct {
	reg *symbols.Registry
}

// NewFactory creates a factory over the given registry.
func NewFactory(reg *symbols.Registry) *Factory {
	return &Factory{reg: reg}
}

// Registry returns the symbol registry the factory builds against.
func (f *Factory) Registry() *symbols.Registry { return f.reg }

type createOpts struct {
	units       string
	tags        []string
	provenance  *Provenance
	uncertainty any
	internalID  string
}

// Option customizes quantity construction.
type Option func(*createOpts)

// WithUnits states the unit expression the supplied magnitude is in.
func WithUnits(expr string) Option {
	return func(o *createOpts) { o.units = expr }
}

// WithTags attaches free-form tags.
func WithTags(tags ...string) Option {
	return func(o *createOpts) { o.tags = append(o.tags, tags...) }
}

// WithProvenance attaches a derivation record.
func WithProvenance(p *Provenance) Option {
	return func(o *createOpts) { o.provenance = p }
}

// WithUncertainty attaches an uncertainty: a raw magnitude in the
// value's units, a ValueWithUnits, or another numeric *Quantity.
func WithUncertainty(u any) Option {
	return func(o *createOpts) { o.uncertainty = u }
}

// WithInternalID overrides the generated storage identity, used when
// reconstructing quantities from storage.
func WithInternalID(id string) Option {
	return func(o *createOpts) { o.internalID = id }
}

// Create builds a quantity for a symbol, given either the registry name
// (string) or a symbols.Symbol for ad-hoc symbols. The value may be a
// magnitude, an opaque object payload, or another *Quantity to rewrap.
func (f *Factory) Create(symbol any, value any, opts ...Option) (*Quantity, error) {
	sym, err := f.resolveSymbol(symbol)
	if err != nil {
		return nil, err
	}

	var o createOpts
	for _, opt := range opts {
		opt(&o)
	}

	// Rewrapping an existing quantity inherits whatever the options do
	// not override.
	if src, ok := value.(*Quantity); ok {
		if o.units == "" && src.IsNumeric() {
			o.units = src.unit.String()
		}
		if o.tags == nil {
			o.tags = src.Tags()
		}
		if o.provenance == nil {
			o.provenance = src.provenance
		}
		if o.uncertainty == nil && src.uncertainty != nil {
			o.uncertainty = ValueWithUnits{Value: src.Uncertainty(), Units: src.unit.String()}
		}
		if src.IsObject() {
			value = src.object
		} else {
			value = ValueWithUnits{Value: src.Magnitude(), Units: src.unit.String()}
		}
	}

	if sym.IsObject() {
		return f.createObject(sym, value, o)
	}
	return f.createNumeric(sym, value, o)
}

func (f *Factory) resolveSymbol(symbol any) (symbols.Symbol, error) {
	switch s := symbol.(type) {
	case string:
		return f.reg.Lookup(s)
	case symbols.Symbol:
		return s.Normalized()
	case *symbols.Symbol:
		return s.Normalized()
	}
	return symbols.Symbol{}, fmt.Errorf("cannot resolve symbol from %T", symbol)
}

func (f *Factory) createNumeric(sym symbols.Symbol, value any, o createOpts) (*Quantity, error) {
	if value == nil {
		return nil, fmt.Errorf("symbol %s: %w: nil", sym.Name, ErrInvalidValue)
	}

	unitExpr := o.units
	sourceUnit := ""
	if vw, ok := value.(ValueWithUnits); ok {
		sourceUnit = vw.Units
		value = vw.Value
		if unitExpr == "" {
			unitExpr = vw.Units
		}
	}
	if unitExpr == "" {
		log.Printf("No units supplied for %s, assuming canonical %q", sym.Name, sym.Units)
		unitExpr = sym.Units
	}
	unit, err := units.Parse(unitExpr)
	if err != nil {
		return nil, fmt.Errorf("symbol %s: %w", sym.Name, err)
	}

	norm, err := normalizeValue(value)
	if err != nil {
		return nil, fmt.Errorf("symbol %s: %w", sym.Name, err)
	}
	if sourceUnit != "" && sourceUnit != unitExpr {
		from, err := units.Parse(sourceUnit)
		if err != nil {
			return nil, fmt.Errorf("symbol %s: %w", sym.Name, err)
		}
		norm, err = convertValue(norm, from, unit)
		if err != nil {
			return nil, fmt.Errorf("symbol %s: %w", sym.Name, err)
		}
	}

	if c := sym.Constraint(); c != nil {
		if !forEachScalar(norm, c) {
			return nil, fmt.Errorf("symbol %s: %w: value %v fails %q",
				sym.Name, ErrConstraintViolation, norm, sym.ConstraintExpr)
		}
	}

	var uncertainty any
	if o.uncertainty != nil {
		uncertainty, err = f.coerceUncertainty(sym, o.uncertainty, unit)
		if err != nil {
			return nil, err
		}
	}

	q := &Quantity{
		symbol:      sym,
		class:       ClassNumeric,
		value:       norm,
		unit:        unit,
		uncertainty: uncertainty,
		tags:        o.tags,
		provenance:  o.provenance,
		internalID:  o.internalID,
	}
	finish(q)
	return q, nil
}

// coerceUncertainty normalizes the uncertainty into the value's unit.
func (f *Factory) coerceUncertainty(sym symbols.Symbol, raw any, unit units.Unit) (any, error) {
	var (
		value any
		from  units.Unit
	)
	switch u := raw.(type) {
	case *Quantity:
		if !u.IsNumeric() {
			return nil, fmt.Errorf("symbol %s: uncertainty must be numeric", sym.Name)
		}
		value = u.value
		from = u.unit
	case ValueWithUnits:
		parsed, err := units.Parse(u.Units)
		if err != nil {
			return nil, fmt.Errorf("symbol %s: uncertainty: %w", sym.Name, err)
		}
		value = u.Value
		from = parsed
	default:
		value = raw
		from = unit
	}
	norm, err := normalizeValue(value)
	if err != nil {
		return nil, fmt.Errorf("symbol %s: uncertainty: %w", sym.Name, err)
	}
	converted, err := convertValue(norm, from, unit)
	if err != nil {
		return nil, fmt.Errorf("symbol %s: uncertainty: %w", sym.Name, err)
	}
	return converted, nil
}

func (f *Factory) createObject(sym symbols.Symbol, value any, o createOpts) (*Quantity, error) {
	if o.units != "" {
		log.Printf("Ignoring units %q supplied for object symbol %s", o.units, sym.Name)
	}
	if o.uncertainty != nil {
		log.Printf("Ignoring uncertainty supplied for object symbol %s", sym.Name)
	}

	factory, ok := f.reg.ObjectFactory(sym.ObjectType)
	if !ok {
		return nil, fmt.Errorf("symbol %s: %w: %s", sym.Name, ErrUnknownObjectType, sym.ObjectType)
	}
	payload := value
	switch {
	case factory.Matches != nil && factory.Matches(value):
		// Already the target type.
	case factory.New != nil:
		coerced, err := factory.New(value)
		if err != nil {
			return nil, fmt.Errorf("symbol %s: %w: cannot coerce %T to %s: %v",
				sym.Name, ErrTypeMismatch, value, sym.ObjectType, err)
		}
		payload = coerced
	default:
		return nil, fmt.Errorf("symbol %s: %w: %T is not %s",
			sym.Name, ErrTypeMismatch, value, sym.ObjectType)
	}

	q := &Quantity{
		symbol:     sym,
		class:      ClassObject,
		object:     payload,
		tags:       o.tags,
		provenance: o.provenance,
		internalID: o.internalID,
	}
	finish(q)
	return q, nil
}

// finish assigns the storage identity and stamps provenance bookkeeping.
func finish(q *Quantity) {
	if q.internalID == "" {
		q.internalID = newInternalID()
	}
	if q.provenance == nil {
		q.provenance = &Provenance{}
	}
	q.provenance.stamp(q.internalID)
}

func newInternalID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// FromDefault builds a quantity from the symbol's registered default,
// tagged with provenance model "default".
func (f *Factory) FromDefault(name string) (*Quantity, error) {
	value, ok := f.reg.DefaultValue(name)
	if !ok {
		return nil, fmt.Errorf("symbol %s: %w", name, ErrNoDefaultValue)
	}
	return f.Create(name, value, WithProvenance(NewProvenance(ModelDefault)))
}

// Coerce returns the value unchanged when it is already a quantity, and
// builds one otherwise. Idempotent by construction.
func (f *Factory) Coerce(symbol any, value any, opts ...Option) (*Quantity, error) {
	if q, ok := value.(*Quantity); ok {
		return q, nil
	}
	return f.Create(symbol, value, opts...)
}
