package domain

import "strconv"

// CoverRelation is one edge of the covering lattice as seen from a curve.
// It is derived per request and never persisted.
type CoverRelation struct {
	Label      string `json:"label"`
	Name       string `json:"name"`
	Level      int    `json:"level"`
	IndexRatio int    `json:"index_ratio"`
	Genus      int    `json:"genus"`
	Rank       *int   `json:"rank,omitempty"`
	DimsDiff   string `json:"dims_diff"`
	Direction  string `json:"direction"`
}

// Lattice directions.
const (
	DirectionCovers    = "covers"
	DirectionCoveredBy = "covered_by"
)

// RankDisplay renders the rank, or the empty string when it is unknown.
func (r CoverRelation) RankDisplay() string {
	if r.Rank == nil {
		return ""
	}
	return strconv.Itoa(*r.Rank)
}

// Twist is a curve differing from another only by the presence of -I.
type Twist struct {
	Label               string `json:"label"`
	Name                string `json:"name"`
	ContainsNegativeOne bool   `json:"contains_negative_one"`
}

// FriendKind classifies a same-arithmetic cross reference.
type FriendKind string

// Friend kinds.
const (
	FriendModularCurve FriendKind = "modular_curve"
	FriendNewform      FriendKind = "newform"
	FriendIsogenyClass FriendKind = "isogeny_class"
)

// Friend is a cross reference to an object sharing the curve's arithmetic.
type Friend struct {
	Kind  FriendKind `json:"kind"`
	Label string     `json:"label"`
	Name  string     `json:"name"`
}

// RationalPoint is a non-cuspidal rational point realised by an elliptic
// curve over Q whose Galois image is contained in the curve's subgroup.
type RationalPoint struct {
	Label          string `json:"label"`
	Link           string `json:"link"`
	Equation       string `json:"equation"`
	CM             string `json:"cm"`
	JInvariant     string `json:"jinv"`
	JFactorization string `json:"jinv_factorization,omitempty"`
}

// PointCertainty classifies a number-field point of low degree.
type PointCertainty string

// Point certainties. Definite is a design-level label, not a proof.
const (
	PointDefinite PointCertainty = "definite"
	PointPossible PointCertainty = "possible"
)

// NumberFieldPoint is a point over a number field of degree at most the genus.
type NumberFieldPoint struct {
	Label      string         `json:"label"`
	Link       string         `json:"link"`
	FieldLabel string         `json:"field_label"`
	Degree     int            `json:"degree"`
	CM         string         `json:"cm"`
	JInvariant string         `json:"jinv"`
	Certainty  PointCertainty `json:"certainty"`
}
