// Package points cross-references a modular curve against the elliptic
// curve collections to list its known non-cuspidal points.
package points

import (
	"context"
	"fmt"
	"modcurves/internal/invariants"
	"modcurves/internal/logging"
	"modcurves/pkg/domain"
	"sort"
)

// DefaultCMZeroLimit caps the non-CM rational points of curves that are
// not known to have infinitely many.
const DefaultCMZeroLimit = 10

var qSort = []string{"conductor", "iso_nlabel", "number"}

// Classifier lists rational and low-degree points of modular curves.
type Classifier struct {
	ecq         domain.Finder[domain.ECRecord]
	ecnf        domain.Finder[domain.NFCurveRecord]
	cmZeroLimit int
	log         *logging.Logger
}

// NewClassifier wires a classifier. A non-positive limit selects
// DefaultCMZeroLimit.
func NewClassifier(ecq domain.Finder[domain.ECRecord], ecnf domain.Finder[domain.NFCurveRecord], cmZeroLimit int, log *logging.Logger) *Classifier {
	if cmZeroLimit <= 0 {
		cmZeroLimit = DefaultCMZeroLimit
	}
	return &Classifier{ecq: ecq, ecnf: ecnf, cmZeroLimit: cmZeroLimit, log: logging.OrNop(log)}
}

// unlimited reports whether the non-CM subset is returned in full.
// Genus 1 with rank 0 is included as well as genus above 1.
func unlimited(self domain.CurveRecord) bool {
	return self.Genus > 1 || (self.Genus == 1 && self.RankIs(0))
}

// RationalPoints returns the elliptic curves over Q whose mod-m image tags
// include self, one per j-invariant, ordered by conductor, isogeny class
// and curve number. Only prime power levels have tagged points.
func (c *Classifier) RationalPoints(ctx context.Context, self domain.CurveRecord) ([]domain.RationalPoint, error) {
	out := []domain.RationalPoint{}
	if !invariants.IsPrimePower(self.Level) {
		return out, nil
	}
	image := domain.Contains("modm_images", self.Label)
	limit := c.cmZeroLimit
	if unlimited(self) {
		limit = 0
	}
	noCM, err := c.ecq.LookupBest(ctx, domain.BestQuery{
		Filter: domain.Filter{image, domain.Eq("cm", 0)},
		SortBy: qSort,
		OnePer: "jinv",
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("rational points of %s: %w", self.Label, err)
	}
	withCM, err := c.ecq.LookupBest(ctx, domain.BestQuery{
		Filter: domain.Filter{image, domain.Ne("cm", 0)},
		SortBy: qSort,
		OnePer: "jinv",
	})
	if err != nil {
		return nil, fmt.Errorf("rational CM points of %s: %w", self.Label, err)
	}
	curves := append(noCM, withCM...)
	sort.SliceStable(curves, func(i, j int) bool {
		a, b := curves[i], curves[j]
		if a.Conductor != b.Conductor {
			return a.Conductor < b.Conductor
		}
		if a.IsoNLabel != b.IsoNLabel {
			return a.IsoNLabel < b.IsoNLabel
		}
		return a.Number < b.Number
	})
	for _, ec := range curves {
		out = append(out, domain.RationalPoint{
			Label:          ec.LMFDBLabel,
			Link:           QLink(ec.LMFDBLabel),
			Equation:       Equation(ec.Ainvs),
			CM:             CMDisplay(ec.CM),
			JInvariant:     ec.JInv,
			JFactorization: JFactorization(ec.JInv, ec.JFactors),
		})
	}
	c.log.Debug("rational points", "label", self.Label, "cm_zero", len(noCM), "cm", len(withCM), "limited", limit > 0)
	return out, nil
}

// NumberFieldPoints returns elliptic curves over number fields of degree
// at most the genus whose Galois image tags include the secondary label of
// self, one per j-invariant. Only prime levels are searched.
func (c *Classifier) NumberFieldPoints(ctx context.Context, self domain.CurveRecord) ([]domain.NumberFieldPoint, error) {
	out := []domain.NumberFieldPoint{}
	if !invariants.IsPrime(self.Level) || self.SLabel == "" || c.ecnf == nil {
		return out, nil
	}
	curves, err := c.ecnf.LookupBest(ctx, domain.BestQuery{
		Filter: domain.Filter{domain.Contains("galois_images", self.SLabel), domain.Lte("degree", self.Genus)},
		SortBy: []string{"degree", "conductor_norm", "label"},
		OnePer: "jinv",
	})
	if err != nil {
		return nil, fmt.Errorf("number field points of %s: %w", self.Label, err)
	}
	for _, ec := range curves {
		out = append(out, domain.NumberFieldPoint{
			Label:      ec.Label,
			Link:       NFLink(ec.Label),
			FieldLabel: ec.FieldLabel,
			Degree:     ec.Degree,
			CM:         CMDisplay(ec.CM),
			JInvariant: ec.JInv,
			Certainty:  Certainty(self, ec.Degree),
		})
	}
	return out, nil
}

// Certainty classifies a point of degree deg as a definite or possible
// point of minimal degree, using the gonality lower bound.
func Certainty(self domain.CurveRecord, deg int) domain.PointCertainty {
	lower := self.GonalityBounds[0]
	if 2*deg < lower {
		return domain.PointDefinite
	}
	if deg < lower && (self.RankIs(0) || (self.Simple && deg < self.Genus)) {
		return domain.PointDefinite
	}
	return domain.PointPossible
}
