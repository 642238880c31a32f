package ingest

import (
	"bytes"
	"context"
	"fmt"
	"modcurves/internal/blob"
	"modcurves/internal/logging"
	"modcurves/pkg/domain"
	"time"

	"golang.org/x/sync/errgroup"
)

// Summary reports what an import or export moved.
type Summary struct {
	Key    string        `json:"key"`
	Format Format        `json:"format"`
	Curves int           `json:"curves"`
	ECQ    int           `json:"ec_q"`
	ECNF   int           `json:"ec_nf"`
	Took   time.Duration `json:"took"`
}

// Loader moves bundles between a blob store and a record store.
type Loader struct {
	blobs blob.Store
	store domain.Store
	log   *logging.Logger
}

// NewLoader constructs a Loader. A nil logger discards output.
func NewLoader(blobs blob.Store, store domain.Store, log *logging.Logger) *Loader {
	return &Loader{blobs: blobs, store: store, log: logging.OrNop(log)}
}

// Import reads the bundle at key, validates it and writes the three
// collections concurrently. Nothing is written when validation fails.
func (l *Loader) Import(ctx context.Context, key string) (Summary, error) {
	start := time.Now()
	info, rc, err := l.blobs.Get(ctx, key)
	if err != nil {
		return Summary{}, fmt.Errorf("fetch bundle %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()

	format := FormatFor(key, info.ContentType)
	b, err := Decode(rc, format)
	if err != nil {
		return Summary{}, fmt.Errorf("bundle %s: %w", key, err)
	}
	if err := Validate(b); err != nil {
		l.log.Warn("bundle rejected", "key", key, "error", err)
		return Summary{}, fmt.Errorf("bundle %s failed validation: %w", key, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.store.Curves().Put(gctx, b.Curves) })
	g.Go(func() error { return l.store.EllipticCurves().Put(gctx, b.ECQ) })
	g.Go(func() error { return l.store.NumberFieldCurves().Put(gctx, b.ECNF) })
	if err := g.Wait(); err != nil {
		return Summary{}, fmt.Errorf("load bundle %s: %w", key, err)
	}

	sum := Summary{
		Key:    key,
		Format: format,
		Curves: len(b.Curves),
		ECQ:    len(b.ECQ),
		ECNF:   len(b.ECNF),
		Took:   time.Since(start),
	}
	l.log.Info("bundle imported", "key", key, "curves", sum.Curves, "ec_q", sum.ECQ, "ec_nf", sum.ECNF)
	return sum, nil
}

// Snapshot reads every record of every collection, in store order.
func Snapshot(ctx context.Context, store domain.Store) (Bundle, error) {
	var b Bundle
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		b.Curves, err = store.Curves().LookupBest(gctx, domain.BestQuery{})
		return err
	})
	g.Go(func() (err error) {
		b.ECQ, err = store.EllipticCurves().LookupBest(gctx, domain.BestQuery{})
		return err
	})
	g.Go(func() (err error) {
		b.ECNF, err = store.NumberFieldCurves().LookupBest(gctx, domain.BestQuery{})
		return err
	})
	if err := g.Wait(); err != nil {
		return Bundle{}, err
	}
	return b, nil
}

// Export writes a snapshot of the record store to key. The format follows
// the key extension. Existing keys are never overwritten.
func (l *Loader) Export(ctx context.Context, key string) (Summary, error) {
	start := time.Now()
	b, err := Snapshot(ctx, l.store)
	if err != nil {
		return Summary{}, fmt.Errorf("snapshot: %w", err)
	}
	format := FormatFor(key, "")
	var buf bytes.Buffer
	if err := Encode(&buf, b, format); err != nil {
		return Summary{}, fmt.Errorf("encode bundle: %w", err)
	}
	if _, err := l.blobs.Put(ctx, key, &buf, blob.PutOptions{ContentType: format.ContentType()}); err != nil {
		return Summary{}, fmt.Errorf("store bundle %s: %w", key, err)
	}
	sum := Summary{
		Key:    key,
		Format: format,
		Curves: len(b.Curves),
		ECQ:    len(b.ECQ),
		ECNF:   len(b.ECNF),
		Took:   time.Since(start),
	}
	l.log.Info("bundle exported", "key", key, "curves", sum.Curves, "ec_q", sum.ECQ, "ec_nf", sum.ECNF)
	return sum, nil
}
