package core

import (
	"context"
	"errors"
	"modcurves/pkg/domain"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder receives one observation per service operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// Metrics publishes service, store and cache metrics to Prometheus.
type Metrics struct {
	opsTotal      *prometheus.CounterVec
	opDuration    *prometheus.HistogramVec
	storeOps      *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		opsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modcurves_operations_total",
				Help: "Service operations by outcome",
			},
			[]string{"operation", "status"}, // status: success, error
		),
		opDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modcurves_operation_duration_seconds",
				Help:    "Service operation latency",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"operation"},
		),
		storeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modcurves_store_operations_total",
				Help: "Record store calls by collection and outcome",
			},
			[]string{"collection", "op", "status"}, // status: success, unavailable, error
		),
		storeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modcurves_store_operation_duration_seconds",
				Help:    "Record store call latency",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
			},
			[]string{"collection", "op"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modcurves_view_cache_lookups_total",
				Help: "Curve view memo lookups",
			},
			[]string{"result"}, // result: hit, miss
		),
	}
	if reg != nil {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.opsTotal.Describe(ch)
	m.opDuration.Describe(ch)
	m.storeOps.Describe(ch)
	m.storeDuration.Describe(ch)
	m.cacheLookups.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.opsTotal.Collect(ch)
	m.opDuration.Collect(ch)
	m.storeOps.Collect(ch)
	m.storeDuration.Collect(ch)
	m.cacheLookups.Collect(ch)
}

// Observe implements MetricsRecorder.
func (m *Metrics) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	m.opsTotal.WithLabelValues(operation, status).Inc()
	m.opDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// CacheResult counts a curve view memo lookup.
func (m *Metrics) CacheResult(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) observeStore(coll domain.Collection, op string, err error, start time.Time) {
	status := "success"
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		status = "unavailable"
	case err != nil:
		status = "error"
	}
	m.storeOps.WithLabelValues(string(coll), op, status).Inc()
	m.storeDuration.WithLabelValues(string(coll), op).Observe(time.Since(start).Seconds())
}

// InstrumentStore wraps every table of s so each call is counted and timed.
func InstrumentStore(s domain.Store, m *Metrics) domain.Store {
	if m == nil {
		return s
	}
	return &instrumentedStore{
		inner:  s,
		curves: &instrumentedTable[domain.CurveRecord]{inner: s.Curves(), coll: domain.CollectionCurves, m: m},
		ecq:    &instrumentedTable[domain.ECRecord]{inner: s.EllipticCurves(), coll: domain.CollectionECQ, m: m},
		ecnf:   &instrumentedTable[domain.NFCurveRecord]{inner: s.NumberFieldCurves(), coll: domain.CollectionECNF, m: m},
	}
}

type instrumentedStore struct {
	inner  domain.Store
	curves *instrumentedTable[domain.CurveRecord]
	ecq    *instrumentedTable[domain.ECRecord]
	ecnf   *instrumentedTable[domain.NFCurveRecord]
}

func (s *instrumentedStore) Curves() domain.Table[domain.CurveRecord]              { return s.curves }
func (s *instrumentedStore) EllipticCurves() domain.Table[domain.ECRecord]         { return s.ecq }
func (s *instrumentedStore) NumberFieldCurves() domain.Table[domain.NFCurveRecord] { return s.ecnf }
func (s *instrumentedStore) Close() error                                          { return s.inner.Close() }

type instrumentedTable[T domain.Document] struct {
	inner domain.Table[T]
	coll  domain.Collection
	m     *Metrics
}

func (t *instrumentedTable[T]) Put(ctx context.Context, docs []T) error {
	start := time.Now()
	err := t.inner.Put(ctx, docs)
	t.m.observeStore(t.coll, "put", err, start)
	return err
}

func (t *instrumentedTable[T]) Count(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := t.inner.Count(ctx)
	t.m.observeStore(t.coll, "count", err, start)
	return n, err
}

func (t *instrumentedTable[T]) Get(ctx context.Context, label string) (T, bool, error) {
	start := time.Now()
	d, ok, err := t.inner.Get(ctx, label)
	t.m.observeStore(t.coll, "get", err, start)
	return d, ok, err
}

func (t *instrumentedTable[T]) LookupByLabels(ctx context.Context, labels []string, filter domain.Filter) ([]T, error) {
	start := time.Now()
	out, err := t.inner.LookupByLabels(ctx, labels, filter)
	t.m.observeStore(t.coll, "lookup_by_labels", err, start)
	return out, err
}

func (t *instrumentedTable[T]) LookupByContainment(ctx context.Context, field string, value any, filter domain.Filter) ([]T, error) {
	start := time.Now()
	out, err := t.inner.LookupByContainment(ctx, field, value, filter)
	t.m.observeStore(t.coll, "lookup_by_containment", err, start)
	return out, err
}

func (t *instrumentedTable[T]) LookupBest(ctx context.Context, q domain.BestQuery) ([]T, error) {
	start := time.Now()
	out, err := t.inner.LookupBest(ctx, q)
	t.m.observeStore(t.coll, "lookup_best", err, start)
	return out, err
}
