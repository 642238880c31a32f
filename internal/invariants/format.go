package invariants

import (
	"fmt"
	"modcurves/internal/label"
	"modcurves/pkg/domain"
	"sort"
	"strconv"
	"strings"
)

// FactoredConductor renders (prime, exponent) pairs as p^e terms joined by
// \cdot, in input order. The empty factorization renders as "1".
func FactoredConductor(pairs []domain.PrimePower) string {
	if len(pairs) == 0 {
		return "1"
	}
	terms := make([]string, len(pairs))
	for i, pp := range pairs {
		terms[i] = strconv.Itoa(pp.Prime()) + label.ShowExp(pp.Exp(), false)
	}
	return strings.Join(terms, `\cdot`)
}

// FormattedDims groups the dimension multiset by value and renders d^c
// terms in ascending order of d, comma-joined.
func FormattedDims(dims []int) string {
	counts := make(map[int]int, len(dims))
	for _, d := range dims {
		counts[d]++
	}
	keys := make([]int, 0, len(counts))
	for d := range counts {
		keys = append(keys, d)
	}
	sort.Ints(keys)
	terms := make([]string, len(keys))
	for i, d := range keys {
		terms[i] = strconv.Itoa(d) + label.ShowExp(counts[d], false)
	}
	return strings.Join(terms, ", ")
}

// MultisetDifference removes from a one occurrence of each element of b,
// when present. Order of the surviving elements of a is preserved.
func MultisetDifference(a, b []int) []int {
	remove := make(map[int]int, len(b))
	for _, d := range b {
		remove[d]++
	}
	out := make([]int, 0, len(a))
	for _, d := range a {
		if remove[d] > 0 {
			remove[d]--
			continue
		}
		out = append(out, d)
	}
	return out
}

// FormattedNewforms lists distinct newform labels in order of first
// occurrence, each with its multiplicity as an exponent.
func FormattedNewforms(newforms []string) string {
	counts := make(map[string]int, len(newforms))
	var order []string
	for _, nf := range newforms {
		if counts[nf] == 0 {
			order = append(order, nf)
		}
		counts[nf]++
	}
	terms := make([]string, len(order))
	for i, nf := range order {
		terms[i] = nf + label.ShowExp(counts[nf], true)
	}
	return strings.Join(terms, ", ")
}

// ObstructionPrimes lists the nonzero entries among the first three
// obstructions followed by an ellipsis.
func ObstructionPrimes(obstructions []int) string {
	head := obstructions
	if len(head) > 3 {
		head = head[:3]
	}
	var terms []string
	for _, p := range head {
		if p != 0 {
			terms = append(terms, strconv.Itoa(p))
		}
	}
	return strings.Join(terms, ",") + `\ldots`
}

// CMDiscriminantList comma-joins the CM discriminants.
func CMDiscriminantList(discs []int) string {
	terms := make([]string, len(discs))
	for i, d := range discs {
		terms[i] = strconv.Itoa(d)
	}
	return strings.Join(terms, ",")
}

// ShowGenerators renders each generator as a LaTeX bmatrix.
func ShowGenerators(gens []domain.Matrix) string {
	terms := make([]string, len(gens))
	for i, g := range gens {
		terms[i] = fmt.Sprintf(`$\begin{bmatrix}%d&%d\\%d&%d\end{bmatrix}$`, g[0], g[1], g[2], g[3])
	}
	return strings.Join(terms, ", ")
}

// Property is a labelled scalar shown alongside a curve.
type Property struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Properties lists the headline scalars of a curve. Rank appears only
// when it is known.
func Properties(rec domain.CurveRecord) []Property {
	props := []Property{
		{"Label", rec.Label},
		{"Level", strconv.Itoa(rec.Level)},
		{"Index", strconv.Itoa(rec.Index)},
		{"Genus", strconv.Itoa(rec.Genus)},
	}
	if rec.Rank != nil {
		props = append(props, Property{"Rank", strconv.Itoa(*rec.Rank)})
	}
	return append(props,
		Property{"Cusps", strconv.Itoa(rec.Cusps)},
		Property{`$\Q$-cusps`, strconv.Itoa(rec.RationalCusps)},
	)
}

// Title is the page heading of a curve.
func Title(rec domain.CurveRecord) string {
	if rec.Name != "" {
		return "Modular curve " + label.NameToLatex(rec.Name)
	}
	return "Modular curve " + rec.Label
}
