package invariants

import (
	"fmt"
	"modcurves/pkg/domain"
)

// CyclicIsogenyFieldDegree is the least degree among isogeny orbits at the
// curve's own level.
func CyclicIsogenyFieldDegree(rec domain.CurveRecord) (int, error) {
	return minDegreeAtLevel(rec.Label, "isogeny_orbits", rec.Level, rec.IsogenyOrbits)
}

// CyclicTorsionFieldDegree is the least degree among torsion orbits at the
// curve's own level.
func CyclicTorsionFieldDegree(rec domain.CurveRecord) (int, error) {
	return minDegreeAtLevel(rec.Label, "orbits", rec.Level, rec.Orbits)
}

func minDegreeAtLevel(lbl, field string, level int, orbits []domain.Orbit) (int, error) {
	best, found := 0, false
	for _, o := range orbits {
		if o.Level() != level {
			continue
		}
		if !found || o.Degree() < best {
			best, found = o.Degree(), true
		}
	}
	if !found {
		return 0, &domain.DataConsistencyError{
			Label:  lbl,
			Field:  field,
			Detail: fmt.Sprintf("no orbit at level %d", level),
			Err:    domain.ErrNotFound,
		}
	}
	return best, nil
}
