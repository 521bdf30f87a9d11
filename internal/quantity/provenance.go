package quantity

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"
)

// Sentinel model names for quantities not produced by a catalog model.
const (
	ModelDefault     = "default"
	ModelAggregation = "aggregation"
)

// Provenance records how a quantity came to be: the model that derived
// it (empty for external data) and the input quantities it consumed.
// Inputs reference live quantities, so a provenance node roots a full
// derivation tree.
type Provenance struct {
	Model  string
	Source map[string]any
	Inputs []*Quantity
}

// NewProvenance builds a provenance node for a model derivation.
func NewProvenance(model string, inputs ...*Quantity) *Provenance {
	return &Provenance{Model: model, Inputs: inputs}
}

// stamp fills the bookkeeping fields of the source map. ownerID is the
// internal id of the quantity this provenance belongs to.
func (p *Provenance) stamp(ownerID string) {
	if p.Source == nil {
		p.Source = map[string]any{"source": nil}
	}
	if _, ok := p.Source["date_created"]; !ok {
		p.Source["date_created"] = time.Now().UTC().Format(time.RFC3339)
	}
	if _, ok := p.Source["source_key"]; !ok {
		p.Source["source_key"] = ownerID
	}
}

// Equal compares provenance trees structurally: same model and the same
// multiset of inputs, compared recursively. Source metadata is
// bookkeeping and does not participate.
func (p *Provenance) Equal(other *Provenance) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.Model != other.Model {
		return false
	}
	// Match inputs by fingerprint; fingerprints fold in the full
	// provenance chain, so equal fingerprints mean equal trees.
	return equalFingerprintSets(p.Inputs, other.Inputs)
}

func equalFingerprintSets(a, b []*Quantity) bool {
	if len(a) != len(b) {
		return false
	}
	af := make([]string, len(a))
	bf := make([]string, len(b))
	for i := range a {
		af[i] = a[i].Fingerprint()
		bf[i] = b[i].Fingerprint()
	}
	sort.Strings(af)
	sort.Strings(bf)
	for i := range af {
		if af[i] != bf[i] {
			return false
		}
	}
	return true
}

// fingerprint digests the provenance tree: the model name plus the
// sorted fingerprints of the inputs. Values and source metadata are
// excluded so storage-side identity survives value stripping.
func (p *Provenance) fingerprint() string {
	h := sha256.New()
	if p != nil {
		h.Write([]byte(p.Model))
		h.Write([]byte{0})
		prints := make([]string, len(p.Inputs))
		for i, in := range p.Inputs {
			prints[i] = in.Fingerprint()
		}
		sort.Strings(prints)
		for _, fp := range prints {
			h.Write([]byte(fp))
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
