package lattice

import (
	"context"
	"fmt"
	"modcurves/internal/label"
	"modcurves/pkg/domain"
	"slices"
	"strings"
)

// Twists returns the curves named in self.qtwists other than self.
func (b *Builder) Twists(ctx context.Context, self domain.CurveRecord) ([]domain.Twist, error) {
	labels := make([]string, 0, len(self.QTwists))
	for _, l := range self.QTwists {
		if l != self.Label {
			labels = append(labels, l)
		}
	}
	if len(labels) == 0 {
		return []domain.Twist{}, nil
	}
	found, err := b.curves.LookupByLabels(ctx, labels, nil)
	if err != nil {
		return nil, fmt.Errorf("twists of %s: %w", self.Label, err)
	}
	out := make([]domain.Twist, 0, len(found))
	for _, c := range found {
		out = append(out, domain.Twist{
			Label:               c.Label,
			Name:                label.DisplayName(c.Name, c.Label),
			ContainsNegativeOne: c.ContainsNegativeOne,
		})
	}
	return out, nil
}

// Ancestor is a curve reachable from self by following parents.
type Ancestor struct {
	domain.CoverRelation
	Depth int `json:"depth"`
}

// Ancestors walks parents breadth first up to depth steps, keeping the
// contains_negative_one value of self. Each ancestor is reported once at
// its shortest distance. A depth below 1 yields nothing.
func (b *Builder) Ancestors(ctx context.Context, self domain.CurveRecord, depth int) ([]Ancestor, error) {
	out := []Ancestor{}
	seen := map[string]struct{}{self.Label: {}}
	frontier := []domain.CurveRecord{self}
	for d := 1; d <= depth && len(frontier) > 0; d++ {
		var next []string
		for _, c := range frontier {
			for _, p := range c.Parents {
				if _, ok := seen[p]; ok {
					continue
				}
				seen[p] = struct{}{}
				next = append(next, p)
			}
		}
		if len(next) == 0 {
			break
		}
		found, err := b.curves.LookupByLabels(ctx, next, sameSign(self))
		if err != nil {
			return nil, fmt.Errorf("ancestors of %s at depth %d: %w", self.Label, d, err)
		}
		for _, c := range found {
			rel, err := b.relation(self, c, domain.DirectionCovers)
			if err != nil {
				return nil, err
			}
			out = append(out, Ancestor{CoverRelation: rel, Depth: d})
		}
		frontier = found
	}
	b.log.Debug("lattice ancestors", "label", self.Label, "depth", depth, "count", len(out))
	return out, nil
}

// Friends returns same-arithmetic cross references. Only positive genus
// curves have friends: other curves with the same trace hash and the
// identical newform sequence, and for simple curves the newform itself
// plus, at genus 1 or 2, the elliptic curve isogeny class with that hash.
// A zero trace hash means the hash is unknown and matches nothing.
func (b *Builder) Friends(ctx context.Context, self domain.CurveRecord) ([]domain.Friend, error) {
	out := []domain.Friend{}
	if self.Genus <= 0 {
		return out, nil
	}
	if self.TraceHash == 0 {
		return b.newformFriend(self, out), nil
	}
	candidates, err := b.curves.LookupBest(ctx, domain.BestQuery{
		Filter: domain.Filter{domain.Eq("trace_hash", self.TraceHash), domain.Ne("label", self.Label)},
		SortBy: []string{"level", "index", "label"},
	})
	if err != nil {
		return nil, fmt.Errorf("friends of %s: %w", self.Label, err)
	}
	for _, c := range candidates {
		if !slices.Equal(c.Newforms, self.Newforms) {
			continue
		}
		out = append(out, domain.Friend{
			Kind:  domain.FriendModularCurve,
			Label: c.Label,
			Name:  label.DisplayName(c.Name, c.Label),
		})
	}
	if !self.Simple {
		return out, nil
	}
	out = b.newformFriend(self, out)
	if (self.Genus == 1 || self.Genus == 2) && b.ecs != nil {
		classes, err := b.ecs.LookupBest(ctx, domain.BestQuery{
			Filter: domain.Filter{domain.Eq("trace_hash", self.TraceHash)},
			SortBy: []string{"conductor", "iso_nlabel", "number"},
			OnePer: "lmfdb_iso",
			Limit:  1,
		})
		if err != nil {
			return nil, fmt.Errorf("isogeny class of %s: %w", self.Label, err)
		}
		for _, ec := range classes {
			iso := isogenyClass(ec)
			out = append(out, domain.Friend{Kind: domain.FriendIsogenyClass, Label: iso, Name: "Elliptic curve " + iso})
		}
	}
	return out, nil
}

func (b *Builder) newformFriend(self domain.CurveRecord, out []domain.Friend) []domain.Friend {
	if !self.Simple || len(self.Newforms) == 0 {
		return out
	}
	nf := self.Newforms[0]
	return append(out, domain.Friend{Kind: domain.FriendNewform, Label: nf, Name: "Modular form " + nf})
}

// isogenyClass returns the class label of ec, deriving it from the curve
// label (dropping the trailing curve number) when the record lacks one.
func isogenyClass(ec domain.ECRecord) string {
	if ec.LMFDBIso != "" {
		return ec.LMFDBIso
	}
	return strings.TrimRight(ec.LMFDBLabel, "0123456789")
}
