// Command modcurves inspects modular curves in a record store: invariants,
// covering lattice, friends and points. It also loads and exports catalog
// bundles through the configured blob store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"modcurves/internal/blob"
	"modcurves/internal/config"
	"modcurves/internal/core"
	"modcurves/internal/ingest"
	"modcurves/internal/logging"
	"modcurves/pkg/domain"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var exitFunc = os.Exit

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	exitFunc(code)
}

func cli(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{v: config.New(), stdout: stdout}
	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	a.close()
	if err != nil {
		fmt.Fprintf(stderr, "modcurves: %v\n", err)
		return 1
	}
	return 0
}

// app holds what the subcommands share once the root pre-run has resolved
// configuration.
type app struct {
	v       *viper.Viper
	cfgFile string
	format  string
	stdout  io.Writer

	settings config.Settings
	log      *logging.Logger
	registry *prometheus.Registry
	store    domain.Store
	svc      *core.Service
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "modcurves",
		Short:         "Modular curve invariants and covering lattice",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "YAML config file")
	flags.StringVar(&a.format, "format", "json", "Output format: json, yaml")
	flags.String("storage-driver", "", "Record store: memory, sqlite, postgres")
	flags.String("sqlite-path", "", "SQLite database file")
	flags.String("blob-driver", "", "Bundle store: fs, s3, memory")
	flags.String("blob-root", "", "Filesystem bundle store root")
	bind := map[string]string{
		"storage.driver":      "storage-driver",
		"storage.sqlite_path": "sqlite-path",
		"blob.driver":         "blob-driver",
		"blob.fs_root":        "blob-root",
	}
	for key, name := range bind {
		if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}

	root.AddCommand(
		showCommand(a),
		coversCommand(a),
		pointsCommand(a),
		latticeCommand(a),
		importCommand(a),
		exportCommand(a),
	)
	return root
}

func (a *app) setup(ctx context.Context) error {
	switch a.format {
	case "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", a.format)
	}
	settings, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.settings = settings
	if a.log, err = logging.New(settings.Log.Mode); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	store, err := core.OpenStore(ctx, settings.Storage)
	if err != nil {
		return fmt.Errorf("open %s store: %w", settings.Storage.Driver, err)
	}
	opts := []core.ServiceOption{
		core.WithLogger(a.log),
		core.WithCacheTTL(settings.Cache.TTL),
		core.WithCMZeroLimit(settings.Points.CMZeroLimit),
	}
	if settings.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		m, err := core.NewMetrics(a.registry)
		if err != nil {
			_ = store.Close()
			return err
		}
		store = core.InstrumentStore(store, m)
		opts = append(opts, core.WithMetrics(m))
	}
	a.store = store
	a.svc = core.NewService(store, opts...)
	a.log.Debug("configured", "storage", settings.Storage.Driver, "blob", settings.Blob.Driver, "postgres_dsn", settings.Storage.PostgresDSN)
	return nil
}

func (a *app) blobs(ctx context.Context) (blob.Store, error) {
	bs, err := blob.Open(ctx, a.settings.BlobConfig())
	if err != nil {
		return nil, fmt.Errorf("open %s blob store: %w", a.settings.Blob.Driver, err)
	}
	return bs, nil
}

func (a *app) close() {
	if a.registry != nil && a.log != nil {
		if families, err := a.registry.Gather(); err == nil {
			for _, mf := range families {
				a.log.Debug("metric", "name", mf.GetName(), "series", len(mf.GetMetric()))
			}
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil && a.log != nil {
			a.log.Warn("close store", "error", err)
		}
	}
	if a.log != nil {
		a.log.Sync()
	}
}

// write renders v in the selected format. YAML goes through the JSON form
// so both formats share field names.
func (a *app) write(v any) error {
	if a.format == "yaml" {
		return ingest.WriteYAML(a.stdout, v)
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
