// Package lattice derives the covering relations of a modular curve from
// the record store: the curves it covers, the curves covering it, its
// quadratic twists, its ancestors, and same-arithmetic friends.
package lattice

import (
	"context"
	"fmt"
	"modcurves/internal/invariants"
	"modcurves/internal/label"
	"modcurves/internal/logging"
	"modcurves/pkg/domain"
)

// Builder computes lattice relations against injected finders.
type Builder struct {
	curves domain.Finder[domain.CurveRecord]
	ecs    domain.Finder[domain.ECRecord]
	log    *logging.Logger
}

// NewBuilder wires a builder. ecs may be nil, in which case isogeny class
// friends are never reported.
func NewBuilder(curves domain.Finder[domain.CurveRecord], ecs domain.Finder[domain.ECRecord], log *logging.Logger) *Builder {
	return &Builder{curves: curves, ecs: ecs, log: logging.OrNop(log)}
}

func sameSign(self domain.CurveRecord) domain.Filter {
	return domain.Filter{domain.Eq("contains_negative_one", self.ContainsNegativeOne)}
}

// Covers returns the curves self maps to: its parents with the same
// contains_negative_one value.
func (b *Builder) Covers(ctx context.Context, self domain.CurveRecord) ([]domain.CoverRelation, error) {
	if len(self.Parents) == 0 {
		return []domain.CoverRelation{}, nil
	}
	found, err := b.curves.LookupByLabels(ctx, self.Parents, sameSign(self))
	if err != nil {
		return nil, fmt.Errorf("covers of %s: %w", self.Label, err)
	}
	out := make([]domain.CoverRelation, 0, len(found))
	for _, c := range found {
		rel, err := b.relation(self, c, domain.DirectionCovers)
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	b.log.Debug("lattice covers", "label", self.Label, "count", len(out))
	return out, nil
}

// CoveredBy returns the curves mapping to self: records listing self among
// their parents with the same contains_negative_one value.
func (b *Builder) CoveredBy(ctx context.Context, self domain.CurveRecord) ([]domain.CoverRelation, error) {
	found, err := b.curves.LookupByContainment(ctx, "parents", self.Label, sameSign(self))
	if err != nil {
		return nil, fmt.Errorf("covered-by of %s: %w", self.Label, err)
	}
	out := make([]domain.CoverRelation, 0, len(found))
	for _, c := range found {
		rel, err := b.relation(self, c, domain.DirectionCoveredBy)
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	b.log.Debug("lattice covered by", "label", self.Label, "count", len(out))
	return out, nil
}

func (b *Builder) relation(self, other domain.CurveRecord, dir string) (domain.CoverRelation, error) {
	parts, err := label.Parse(other.Label)
	if err != nil {
		return domain.CoverRelation{}, fmt.Errorf("relation %s -> %s: %w", self.Label, other.Label, err)
	}
	var num, den int
	var diff []int
	if dir == domain.DirectionCovers {
		num, den = self.Index, parts.Index
		diff = invariants.MultisetDifference(self.Dims, other.Dims)
	} else {
		num, den = parts.Index, self.Index
		diff = invariants.MultisetDifference(other.Dims, self.Dims)
	}
	ratio, err := indexRatio(self.Label, other.Label, num, den)
	if err != nil {
		b.log.Warn("inconsistent covering index", "label", self.Label, "other", other.Label, "error", err)
		return domain.CoverRelation{}, err
	}
	rel := domain.CoverRelation{
		Label:      other.Label,
		Name:       label.DisplayName(other.Name, other.Label),
		Level:      parts.Level,
		IndexRatio: ratio,
		Genus:      parts.Genus,
		DimsDiff:   invariants.FormattedDims(diff),
		Direction:  dir,
	}
	if other.Rank != nil {
		r := *other.Rank
		rel.Rank = &r
	}
	return rel, nil
}

// indexRatio returns num/den, which must be a positive integer.
func indexRatio(self, other string, num, den int) (int, error) {
	if den < 1 || num < 1 || num%den != 0 {
		return 0, &domain.DataConsistencyError{
			Label:  self,
			Field:  "index",
			Detail: fmt.Sprintf("covering degree %d/%d against %s is not a positive integer", num, den, other),
		}
	}
	return num / den, nil
}
