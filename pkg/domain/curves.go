// Package domain defines the catalog records, derived relation values, the
// read-only query contract, and the error taxonomy used by modcurves.
package domain

// Collection identifies a record collection served by a Store.
type Collection string

// Supported collections.
const (
	// CollectionCurves holds modular curve records keyed by label.
	CollectionCurves Collection = "modcurves"
	// CollectionECQ holds elliptic curves over Q.
	CollectionECQ Collection = "ec_q"
	// CollectionECNF holds elliptic curves over number fields.
	CollectionECNF Collection = "ec_nf"
)

// Matrix is a 2x2 integer matrix stored row-major as (a, b, c, d).
type Matrix [4]int

// PrimePower is a (prime, exponent) pair of a factorization.
type PrimePower [2]int

// Prime returns the prime component.
func (p PrimePower) Prime() int { return p[0] }

// Exp returns the exponent component.
func (p PrimePower) Exp() int { return p[1] }

// Orbit is a (level, degree) pair of Galois orbit data.
type Orbit [2]int

// Level returns the orbit level.
func (o Orbit) Level() int { return o[0] }

// Degree returns the orbit degree.
func (o Orbit) Degree() int { return o[1] }

// CurveRecord is an immutable snapshot of a modular curve as stored in the
// catalog. The JSON field names follow the catalog column names.
type CurveRecord struct {
	Label               string       `json:"label"`
	Name                string       `json:"name,omitempty"`
	Level               int          `json:"level"`
	Index               int          `json:"index"`
	Genus               int          `json:"genus"`
	Rank                *int         `json:"rank,omitempty"`
	Cusps               int          `json:"cusps"`
	RationalCusps       int          `json:"rational_cusps"`
	Generators          []Matrix     `json:"generators,omitempty"`
	Parents             []string     `json:"parents,omitempty"`
	Dims                []int        `json:"dims,omitempty"`
	Newforms            []string     `json:"newforms,omitempty"`
	Conductor           []PrimePower `json:"conductor,omitempty"`
	Obstructions        []int        `json:"obstructions,omitempty"`
	CMDiscriminants     []int        `json:"cm_discriminants,omitempty"`
	ContainsNegativeOne bool         `json:"contains_negative_one"`
	QTwists             []string     `json:"qtwists,omitempty"`
	IsogenyOrbits       []Orbit      `json:"isogeny_orbits,omitempty"`
	Orbits              []Orbit      `json:"orbits,omitempty"`
	TraceHash           int64        `json:"trace_hash,omitempty"`
	Simple              bool         `json:"simple"`
	GonalityBounds      [2]int       `json:"gonality_bounds"`
	SLabel              string       `json:"Slabel,omitempty"`
	PlaneModel          string       `json:"plane_model,omitempty"`
}

// HasRank reports whether the rank of the Jacobian is known.
func (c CurveRecord) HasRank() bool { return c.Rank != nil }

// RankIs reports whether the rank is known and equal to r.
func (c CurveRecord) RankIs(r int) bool { return c.Rank != nil && *c.Rank == r }

// DocumentLabel implements Document.
func (c CurveRecord) DocumentLabel() string { return c.Label }

// Field implements Document for the fields the query layer filters and sorts on.
func (c CurveRecord) Field(name string) (any, bool) {
	switch name {
	case "label":
		return c.Label, true
	case "name":
		return c.Name, true
	case "level":
		return c.Level, true
	case "index":
		return c.Index, true
	case "genus":
		return c.Genus, true
	case "rank":
		if c.Rank == nil {
			return nil, false
		}
		return *c.Rank, true
	case "parents":
		return c.Parents, true
	case "newforms":
		return c.Newforms, true
	case "qtwists":
		return c.QTwists, true
	case "contains_negative_one":
		return c.ContainsNegativeOne, true
	case "trace_hash":
		return c.TraceHash, true
	case "simple":
		return c.Simple, true
	case "Slabel":
		return c.SLabel, true
	}
	return nil, false
}

// Clone returns a deep copy so callers cannot alias stored slices.
func (c CurveRecord) Clone() CurveRecord {
	out := c
	if c.Rank != nil {
		r := *c.Rank
		out.Rank = &r
	}
	out.Generators = append([]Matrix(nil), c.Generators...)
	out.Parents = append([]string(nil), c.Parents...)
	out.Dims = append([]int(nil), c.Dims...)
	out.Newforms = append([]string(nil), c.Newforms...)
	out.Conductor = append([]PrimePower(nil), c.Conductor...)
	out.Obstructions = append([]int(nil), c.Obstructions...)
	out.CMDiscriminants = append([]int(nil), c.CMDiscriminants...)
	out.QTwists = append([]string(nil), c.QTwists...)
	out.IsogenyOrbits = append([]Orbit(nil), c.IsogenyOrbits...)
	out.Orbits = append([]Orbit(nil), c.Orbits...)
	return out
}
