package invariants

import (
	"math/rand"
	"modcurves/pkg/domain"
	"testing"
)

func TestFactoredConductor(t *testing.T) {
	if got := FactoredConductor(nil); got != "1" {
		t.Fatalf("empty conductor = %q", got)
	}
	if got := FactoredConductor([]domain.PrimePower{{2, 3}, {5, 1}}); got != `2^3\cdot5` {
		t.Fatalf("got %q", got)
	}
	if got := FactoredConductor([]domain.PrimePower{{2, 10}, {3, 1}, {7, 2}}); got != `2^{10}\cdot3\cdot7^2` {
		t.Fatalf("got %q", got)
	}
}

func TestFormattedDims(t *testing.T) {
	if got := FormattedDims(nil); got != "" {
		t.Fatalf("empty dims = %q", got)
	}
	if got := FormattedDims([]int{2, 1, 1, 3, 1}); got != "1^3, 2, 3" {
		t.Fatalf("got %q", got)
	}
}

func TestFormattedDimsOrderIndependent(t *testing.T) {
	dims := []int{4, 1, 1, 2, 2, 2, 7, 1}
	want := FormattedDims(dims)
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]int(nil), dims...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := FormattedDims(shuffled); got != want {
			t.Fatalf("permutation %v rendered %q, want %q", shuffled, got, want)
		}
	}
}

func TestMultisetDifference(t *testing.T) {
	a := []int{1, 1, 2, 3, 3, 3}
	if got := FormattedDims(MultisetDifference(a, a)); got != "" {
		t.Fatalf("A - A = %q", got)
	}
	got := MultisetDifference([]int{1, 1, 2, 3}, []int{1, 3, 5})
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("one occurrence per element must be removed, got %v", got)
	}
	if got := MultisetDifference(nil, []int{1}); len(got) != 0 {
		t.Fatalf("difference from empty = %v", got)
	}
}

func TestFormattedNewforms(t *testing.T) {
	got := FormattedNewforms([]string{"11.2.a.a", "20.2.a.a", "11.2.a.a"})
	if got != "11.2.a.a$^2$, 20.2.a.a" {
		t.Fatalf("got %q", got)
	}
}

func TestObstructionAndCMLists(t *testing.T) {
	if got := ObstructionPrimes([]int{0, 3, 5, 7}); got != `3,5\ldots` {
		t.Fatalf("got %q", got)
	}
	if got := ObstructionPrimes(nil); got != `\ldots` {
		t.Fatalf("got %q", got)
	}
	if got := CMDiscriminantList([]int{-3, -4, -16}); got != "-3,-4,-16" {
		t.Fatalf("got %q", got)
	}
}

func TestShowGenerators(t *testing.T) {
	got := ShowGenerators([]domain.Matrix{{1, 2, 0, 1}, {3, 0, 0, 1}})
	want := `$\begin{bmatrix}1&2\\0&1\end{bmatrix}$, $\begin{bmatrix}3&0\\0&1\end{bmatrix}$`
	if got != want {
		t.Fatalf("got %q", got)
	}
}

func TestPropertiesRankOptional(t *testing.T) {
	rec := domain.CurveRecord{Label: "11.12.1.a.1", Level: 11, Index: 12, Genus: 1, Cusps: 2, RationalCusps: 2}
	if props := Properties(rec); len(props) != 6 {
		t.Fatalf("expected 6 properties without rank, got %d", len(props))
	}
	r := 0
	rec.Rank = &r
	props := Properties(rec)
	if len(props) != 7 || props[4].Name != "Rank" || props[4].Value != "0" {
		t.Fatalf("unexpected properties %+v", props)
	}
}

func TestTitle(t *testing.T) {
	if got := Title(domain.CurveRecord{Label: "4.1.0.a.1"}); got != "Modular curve 4.1.0.a.1" {
		t.Fatalf("got %q", got)
	}
	if got := Title(domain.CurveRecord{Label: "11.12.1.a.1", Name: "X0(11)"}); got != "Modular curve $X_0(11)$" {
		t.Fatalf("got %q", got)
	}
}

func TestSummarize(t *testing.T) {
	rec := domain.CurveRecord{
		Label:         "4.1.0.a.1",
		Level:         4,
		Index:         1,
		IsogenyOrbits: []domain.Orbit{{4, 1}},
		Orbits:        []domain.Orbit{{4, 2}},
	}
	s, err := Summarize(rec)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.FullTorsionDegree != "96" || s.CyclicIsogenyDegree != 1 || s.CyclicTorsionDegree != 2 || s.FactoredConductor != "1" {
		t.Fatalf("unexpected summary %+v", s)
	}
	rec.Orbits = nil
	if _, err := Summarize(rec); err == nil {
		t.Fatalf("expected summary to fail as a whole")
	}
}
