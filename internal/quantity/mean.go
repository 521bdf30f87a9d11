package quantity

import (
	"fmt"
	"math"
	"sort"
)

// FromMean aggregates quantities of one symbol into a single quantity:
// the unweighted arithmetic mean of the magnitudes, with the population
// standard deviation recorded as uncertainty. All inputs must be
// numeric real scalars of the same symbol; the result carries provenance
// model "aggregation" with the sources as inputs and the union of their
// tags.
func (f *Factory) FromMean(qs []*Quantity) (*Quantity, error) {
	if len(qs) == 0 {
		return nil, fmt.Errorf("cannot aggregate zero quantities")
	}
	name := qs[0].symbol.Name
	for _, q := range qs {
		if q.IsObject() {
			return nil, fmt.Errorf("%w: %s", ErrMixedAggregation, q.symbol.Name)
		}
		if q.symbol.Name != name {
			return nil, fmt.Errorf("cannot aggregate mixed symbols %s and %s", name, q.symbol.Name)
		}
	}

	// Express everything in the first quantity's unit.
	target := qs[0].unit
	values := make([]float64, len(qs))
	for i, q := range qs {
		if !isScalar(q.value) || containsComplex(q.value) {
			return nil, fmt.Errorf("symbol %s: aggregation requires real scalar values", name)
		}
		converted, err := convertValue(q.value, q.unit, target)
		if err != nil {
			return nil, fmt.Errorf("symbol %s: %w", name, err)
		}
		values[i] = scalarFloat(converted)
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(values)))

	tagSet := map[string]bool{}
	for _, q := range qs {
		for _, t := range q.tags {
			tagSet[t] = true
		}
	}
	tags := make([]string, 0, len(tagSet))
	for t := range tagSet {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	opts := []Option{
		WithUnits(target.String()),
		WithProvenance(NewProvenance(ModelAggregation, qs...)),
		WithUncertainty(std),
	}
	if len(tags) > 0 {
		opts = append(opts, WithTags(tags...))
	}
	return f.Create(qs[0].symbol, mean, opts...)
}
