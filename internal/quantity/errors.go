package quantity

import "errors"

var (
	// ErrInvalidValue indicates a payload outside the acceptable numeric
	// set (booleans included, which are rejected deliberately).
	ErrInvalidValue = errors.New("invalid numeric value")

	// ErrConstraintViolation indicates a magnitude failing its symbol's
	// registered constraint; the quantity is never constructed.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrTypeMismatch indicates an object payload that could not be
	// coerced into the symbol's declared object type.
	ErrTypeMismatch = errors.New("object type mismatch")

	// ErrUnknownObjectType indicates an object symbol whose declared
	// type has no registered coercion factory.
	ErrUnknownObjectType = errors.New("unregistered object type")

	// ErrNoDefaultValue indicates a FromDefault call for a symbol with
	// no registered default.
	ErrNoDefaultValue = errors.New("no default value")

	// ErrMixedAggregation indicates an aggregation over quantities that
	// are not uniformly numeric.
	ErrMixedAggregation = errors.New("cannot aggregate object quantities")
)
