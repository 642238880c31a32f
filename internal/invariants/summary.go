package invariants

import (
	"modcurves/internal/label"
	"modcurves/pkg/domain"
)

// Summary bundles the display-ready invariants of one curve.
type Summary struct {
	Label               string     `json:"label" yaml:"label"`
	Title               string     `json:"title" yaml:"title"`
	LatexName           string     `json:"latex_name,omitempty" yaml:"latex_name,omitempty"`
	Properties          []Property `json:"properties" yaml:"properties"`
	FullTorsionDegree   string     `json:"full_torsion_field_degree" yaml:"full_torsion_field_degree"`
	CyclicIsogenyDegree int        `json:"cyclic_isogeny_field_degree" yaml:"cyclic_isogeny_field_degree"`
	CyclicTorsionDegree int        `json:"cyclic_torsion_field_degree" yaml:"cyclic_torsion_field_degree"`
	FactoredConductor   string     `json:"factored_conductor" yaml:"factored_conductor"`
	FormattedDims       string     `json:"formatted_dims" yaml:"formatted_dims"`
	FormattedNewforms   string     `json:"formatted_newforms" yaml:"formatted_newforms"`
	ObstructionPrimes   string     `json:"obstruction_primes" yaml:"obstruction_primes"`
	CMDiscriminants     string     `json:"cm_discriminants" yaml:"cm_discriminants"`
	Generators          string     `json:"generators" yaml:"generators"`
	PlaneModel          string     `json:"plane_model,omitempty" yaml:"plane_model,omitempty"`
}

// Summarize computes every invariant of rec. It fails as a whole when any
// single invariant cannot be derived.
func Summarize(rec domain.CurveRecord) (Summary, error) {
	full, err := FullTorsionFieldDegree(rec)
	if err != nil {
		return Summary{}, err
	}
	isog, err := CyclicIsogenyFieldDegree(rec)
	if err != nil {
		return Summary{}, err
	}
	tors, err := CyclicTorsionFieldDegree(rec)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Label:               rec.Label,
		Title:               Title(rec),
		LatexName:           label.NameToLatex(rec.Name),
		Properties:          Properties(rec),
		FullTorsionDegree:   full.String(),
		CyclicIsogenyDegree: isog,
		CyclicTorsionDegree: tors,
		FactoredConductor:   FactoredConductor(rec.Conductor),
		FormattedDims:       FormattedDims(rec.Dims),
		FormattedNewforms:   FormattedNewforms(rec.Newforms),
		ObstructionPrimes:   ObstructionPrimes(rec.Obstructions),
		CMDiscriminants:     CMDiscriminantList(rec.CMDiscriminants),
		Generators:          ShowGenerators(rec.Generators),
		PlaneModel:          rec.PlaneModel,
	}, nil
}
