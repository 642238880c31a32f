// Package core assembles the curve page: invariants, lattice relations and
// points, memoized per label and instrumented per operation.
package core

import (
	"context"
	"errors"
	"fmt"
	"modcurves/internal/invariants"
	"modcurves/internal/lattice"
	"modcurves/internal/logging"
	"modcurves/internal/points"
	"modcurves/pkg/domain"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

// DefaultCacheTTL bounds how long a derived curve view is memoized.
const DefaultCacheTTL = 10 * time.Minute

// Clock provides the current time.
type Clock interface{ Now() time.Time }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

type serviceOptions struct {
	clock       Clock
	log         *logging.Logger
	metrics     MetricsRecorder
	cacheTTL    time.Duration
	cmZeroLimit int
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		clock:       ClockFunc(time.Now),
		log:         logging.Nop(),
		metrics:     noopMetrics{},
		cacheTTL:    DefaultCacheTTL,
		cmZeroLimit: points.DefaultCMZeroLimit,
	}
}

// WithClock overrides the clock used for operation timing.
func WithClock(c Clock) ServiceOption {
	return func(o *serviceOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *logging.Logger) ServiceOption {
	return func(o *serviceOptions) { o.log = logging.OrNop(l) }
}

// WithMetrics installs an operation recorder.
func WithMetrics(m MetricsRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithCacheTTL sets the memoization lifetime. Zero disables memoization.
func WithCacheTTL(d time.Duration) ServiceOption {
	return func(o *serviceOptions) { o.cacheTTL = d }
}

// WithCMZeroLimit caps non-CM rational points on curves with finitely many.
func WithCMZeroLimit(n int) ServiceOption {
	return func(o *serviceOptions) { o.cmZeroLimit = n }
}

// Service answers curve page queries against a record store.
type Service struct {
	store      domain.Store
	lattice    *lattice.Builder
	classifier *points.Classifier
	views      *cache.Cache
	cacheTTL   time.Duration
	clock      Clock
	log        *logging.Logger
	metrics    MetricsRecorder
}

// NewService wires a Service over store.
func NewService(store domain.Store, opts ...ServiceOption) *Service {
	o := defaultServiceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	svc := &Service{
		store:      store,
		lattice:    lattice.NewBuilder(store.Curves(), store.EllipticCurves(), o.log),
		classifier: points.NewClassifier(store.EllipticCurves(), store.NumberFieldCurves(), o.cmZeroLimit, o.log),
		cacheTTL:   o.cacheTTL,
		clock:      o.clock,
		log:        o.log,
		metrics:    o.metrics,
	}
	if o.cacheTTL > 0 {
		svc.views = cache.New(o.cacheTTL, 2*o.cacheTTL)
	}
	return svc
}

// Store returns the underlying record store.
func (s *Service) Store() domain.Store { return s.store }

// CurveView is a curve record with its derived invariants.
type CurveView struct {
	Record  domain.CurveRecord `json:"record" yaml:"record"`
	Summary invariants.Summary `json:"summary" yaml:"summary"`
}

// Relations is everything the curve page links to.
type Relations struct {
	Label             string                    `json:"label" yaml:"label"`
	Covers            []domain.CoverRelation    `json:"covers" yaml:"covers"`
	CoveredBy         []domain.CoverRelation    `json:"covered_by" yaml:"covered_by"`
	Twists            []domain.Twist            `json:"twists" yaml:"twists"`
	Friends           []domain.Friend           `json:"friends" yaml:"friends"`
	RationalPoints    []domain.RationalPoint    `json:"rational_points" yaml:"rational_points"`
	NumberFieldPoints []domain.NumberFieldPoint `json:"number_field_points" yaml:"number_field_points"`
}

// Curve returns the record and derived invariants for label. A missing
// label yields domain.ErrNotFound.
func (s *Service) Curve(ctx context.Context, label string) (CurveView, error) {
	var view CurveView
	err := s.run(ctx, "curve", func() error {
		if s.views != nil {
			if cached, ok := s.views.Get(label); ok {
				s.cacheResult(true)
				view = cached.(CurveView)
				view.Record = view.Record.Clone()
				return nil
			}
			s.cacheResult(false)
		}
		rec, err := s.record(ctx, label)
		if err != nil {
			return err
		}
		sum, err := invariants.Summarize(rec)
		if err != nil {
			return err
		}
		view = CurveView{Record: rec, Summary: sum}
		if s.views != nil {
			s.views.Set(label, CurveView{Record: rec.Clone(), Summary: sum}, cache.DefaultExpiration)
		}
		return nil
	})
	return view, err
}

// Relations gathers covers, covered-by, twists, friends and points for
// label concurrently. Any failing part fails the whole call.
func (s *Service) Relations(ctx context.Context, label string) (Relations, error) {
	var rel Relations
	err := s.run(ctx, "relations", func() error {
		self, err := s.record(ctx, label)
		if err != nil {
			return err
		}
		rel.Label = self.Label
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			rel.Covers, err = s.lattice.Covers(gctx, self)
			return err
		})
		g.Go(func() (err error) {
			rel.CoveredBy, err = s.lattice.CoveredBy(gctx, self)
			return err
		})
		g.Go(func() (err error) {
			rel.Twists, err = s.lattice.Twists(gctx, self)
			return err
		})
		g.Go(func() (err error) {
			rel.Friends, err = s.lattice.Friends(gctx, self)
			return err
		})
		g.Go(func() (err error) {
			rel.RationalPoints, err = s.classifier.RationalPoints(gctx, self)
			return err
		})
		g.Go(func() (err error) {
			rel.NumberFieldPoints, err = s.classifier.NumberFieldPoints(gctx, self)
			return err
		})
		return g.Wait()
	})
	if err != nil {
		return Relations{}, err
	}
	return rel, nil
}

// PointSet lists the known points of one curve.
type PointSet struct {
	Label       string                    `json:"label" yaml:"label"`
	Rational    []domain.RationalPoint    `json:"rational" yaml:"rational"`
	NumberField []domain.NumberFieldPoint `json:"number_field" yaml:"number_field"`
}

// Points returns the rational and low-degree number field points of label.
func (s *Service) Points(ctx context.Context, label string) (PointSet, error) {
	var ps PointSet
	err := s.run(ctx, "points", func() error {
		self, err := s.record(ctx, label)
		if err != nil {
			return err
		}
		ps.Label = self.Label
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			ps.Rational, err = s.classifier.RationalPoints(gctx, self)
			return err
		})
		g.Go(func() (err error) {
			ps.NumberField, err = s.classifier.NumberFieldPoints(gctx, self)
			return err
		})
		return g.Wait()
	})
	if err != nil {
		return PointSet{}, err
	}
	return ps, nil
}

// Ancestors walks the parents of label up to depth steps.
func (s *Service) Ancestors(ctx context.Context, label string, depth int) ([]lattice.Ancestor, error) {
	var out []lattice.Ancestor
	err := s.run(ctx, "ancestors", func() error {
		self, err := s.record(ctx, label)
		if err != nil {
			return err
		}
		out, err = s.lattice.Ancestors(ctx, self, depth)
		return err
	})
	return out, err
}

// Invalidate drops every memoized view, e.g. after an import.
func (s *Service) Invalidate() {
	if s.views != nil {
		s.views.Flush()
	}
}

func (s *Service) record(ctx context.Context, label string) (domain.CurveRecord, error) {
	rec, ok, err := s.store.Curves().Get(ctx, label)
	if err != nil {
		return domain.CurveRecord{}, err
	}
	if !ok {
		return domain.CurveRecord{}, fmt.Errorf("curve %s: %w", label, domain.ErrNotFound)
	}
	return rec, nil
}

type cacheRecorder interface{ CacheResult(hit bool) }

func (s *Service) cacheResult(hit bool) {
	if cr, ok := s.metrics.(cacheRecorder); ok {
		cr.CacheResult(hit)
	}
}

// run times fn, records the outcome and logs failures by kind.
func (s *Service) run(ctx context.Context, op string, fn func() error) error {
	start := s.clock.Now()
	err := fn()
	s.metrics.Observe(ctx, op, err == nil, s.clock.Now().Sub(start))
	var dc *domain.DataConsistencyError
	switch {
	case err == nil:
		s.log.Debug("operation complete", "op", op)
	case errors.Is(err, domain.ErrStoreUnavailable):
		s.log.Error("store unavailable", "op", op, "error", err)
	case errors.As(err, &dc):
		s.log.Warn("data consistency", "op", op, "label", dc.Label, "field", dc.Field, "error", err)
	default:
		s.log.Debug("operation failed", "op", op, "error", err)
	}
	return err
}
