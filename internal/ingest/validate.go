package ingest

import (
	"errors"
	"fmt"
	"modcurves/internal/label"
	"modcurves/pkg/domain"
)

// Validate checks the structural invariants the engine relies on before a
// bundle reaches the record store. All violations are reported together as
// DataConsistencyErrors joined with errors.Join; nil means the bundle is
// safe to load.
func Validate(b Bundle) error {
	var errs []error
	bad := func(lbl, field, format string, args ...any) {
		errs = append(errs, &domain.DataConsistencyError{Label: lbl, Field: field, Detail: fmt.Sprintf(format, args...)})
	}

	seen := make(map[string]struct{}, len(b.Curves))
	for _, c := range b.Curves {
		if _, dup := seen[c.Label]; dup {
			bad(c.Label, "label", "duplicate label")
		}
		seen[c.Label] = struct{}{}
		parts, err := label.Parse(c.Label)
		if err != nil {
			errs = append(errs, &domain.DataConsistencyError{Label: c.Label, Field: "label", Detail: "unparseable", Err: err})
			continue
		}
		if parts.Level != c.Level {
			bad(c.Label, "level", "label says %d, record says %d", parts.Level, c.Level)
		}
		if parts.Index != c.Index {
			bad(c.Label, "index", "label says %d, record says %d", parts.Index, c.Index)
		}
		if parts.Genus != c.Genus {
			bad(c.Label, "genus", "label says %d, record says %d", parts.Genus, c.Genus)
		}
		if c.RationalCusps > c.Cusps {
			bad(c.Label, "rational_cusps", "%d rational cusps exceed %d cusps", c.RationalCusps, c.Cusps)
		}
		checkConductor(c, bad)
		checkOrbitLevel(c, "isogeny_orbits", c.IsogenyOrbits, bad)
		checkOrbitLevel(c, "orbits", c.Orbits, bad)
		for _, p := range c.Parents {
			if p == c.Label {
				bad(c.Label, "parents", "curve lists itself as a parent")
			}
		}
	}

	ecSeen := make(map[string]struct{}, len(b.ECQ))
	for i, e := range b.ECQ {
		if e.LMFDBLabel == "" {
			bad(fmt.Sprintf("ec_q[%d]", i), "lmfdb_label", "missing")
			continue
		}
		if _, dup := ecSeen[e.LMFDBLabel]; dup {
			bad(e.LMFDBLabel, "lmfdb_label", "duplicate label")
		}
		ecSeen[e.LMFDBLabel] = struct{}{}
		if e.JInv == "" {
			bad(e.LMFDBLabel, "jinv", "missing")
		}
	}

	for i, n := range b.ECNF {
		if n.Label == "" {
			bad(fmt.Sprintf("ec_nf[%d]", i), "label", "missing")
			continue
		}
		if n.Degree < 1 {
			bad(n.Label, "degree", "must be at least 1, got %d", n.Degree)
		}
		if n.JInv == "" {
			bad(n.Label, "jinv", "missing")
		}
	}
	return errors.Join(errs...)
}

// checkOrbitLevel requires a non-empty orbit list to carry an entry at the
// curve's own level, since the field-degree invariants read it.
func checkOrbitLevel(c domain.CurveRecord, field string, orbits []domain.Orbit, bad func(string, string, string, ...any)) {
	if len(orbits) == 0 {
		return
	}
	for _, o := range orbits {
		if o.Level() == c.Level {
			return
		}
	}
	bad(c.Label, field, "no entry at level %d", c.Level)
}

// checkConductor requires strictly increasing primes with positive exponents.
func checkConductor(c domain.CurveRecord, bad func(lbl, field, format string, args ...any)) {
	for i, pp := range c.Conductor {
		if pp.Exp() < 1 {
			bad(c.Label, "conductor", "exponent %d of %d is not positive", pp.Exp(), pp.Prime())
		}
		if i > 0 && c.Conductor[i-1].Prime() >= pp.Prime() {
			bad(c.Label, "conductor", "primes not strictly increasing at %d", pp.Prime())
		}
	}
}
