// Package config loads modcurves settings from defaults, an optional YAML
// file and MODCURVES_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"modcurves/internal/blob"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MODCURVES_STORAGE_DRIVER.
const EnvPrefix = "MODCURVES"

// Settings is the resolved configuration.
type Settings struct {
	Storage StorageSettings `mapstructure:"storage"`
	Blob    BlobSettings    `mapstructure:"blob"`
	Cache   CacheSettings   `mapstructure:"cache"`
	Log     LogSettings     `mapstructure:"log"`
	Points  PointsSettings  `mapstructure:"points"`
	Metrics MetricsSettings `mapstructure:"metrics"`
}

// StorageSettings selects the record store.
type StorageSettings struct {
	Driver      string `mapstructure:"driver"` // memory|sqlite|postgres
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// BlobSettings selects the bundle store.
type BlobSettings struct {
	Driver            string `mapstructure:"driver"` // fs|s3|memory
	FSRoot            string `mapstructure:"fs_root"`
	S3Bucket          string `mapstructure:"s3_bucket"`
	S3Region          string `mapstructure:"s3_region"`
	S3Endpoint        string `mapstructure:"s3_endpoint"`
	S3PathStyle       bool   `mapstructure:"s3_path_style"`
	S3AccessKeyID     string `mapstructure:"s3_access_key_id"`
	S3SecretAccessKey string `mapstructure:"s3_secret_access_key"`
}

// CacheSettings controls memoization of derived invariants.
type CacheSettings struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// LogSettings controls the zap logger.
type LogSettings struct {
	Mode string `mapstructure:"mode"` // development|production
}

// PointsSettings tunes the rational point search.
type PointsSettings struct {
	CMZeroLimit int `mapstructure:"cm_zero_limit"`
}

// MetricsSettings toggles Prometheus instrumentation.
type MetricsSettings struct {
	Enabled bool `mapstructure:"enabled"`
}

var defaults = map[string]any{
	"storage.driver":            "sqlite",
	"storage.sqlite_path":       "modcurves.db",
	"storage.postgres_dsn":      "postgres://localhost/modcurves?sslmode=disable",
	"blob.driver":               "fs",
	"blob.fs_root":              "./blobdata",
	"blob.s3_bucket":            "",
	"blob.s3_region":            "us-east-1",
	"blob.s3_endpoint":          "",
	"blob.s3_path_style":        false,
	"blob.s3_access_key_id":     "",
	"blob.s3_secret_access_key": "",
	"cache.ttl":                 "10m",
	"log.mode":                  "development",
	"points.cm_zero_limit":      10,
	"metrics.enabled":           true,
}

// New returns a viper instance carrying the defaults and the environment
// binding. Callers may bind command-line flags onto it before Load.
func New() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file (when non-empty) into v and decodes the result.
func Load(v *viper.Viper, file string) (Settings, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate rejects unknown drivers and out-of-range values.
func (s Settings) Validate() error {
	var errs []error
	switch s.Storage.Driver {
	case "memory", "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", s.Storage.Driver))
	}
	switch blob.Driver(s.Blob.Driver) {
	case blob.DriverFilesystem, blob.DriverMemory:
	case blob.DriverS3:
		if s.Blob.S3Bucket == "" {
			errs = append(errs, errors.New("blob.s3_bucket: required for the s3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("blob.driver: unknown driver %q", s.Blob.Driver))
	}
	if s.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache.ttl: must not be negative"))
	}
	if s.Points.CMZeroLimit < 1 {
		errs = append(errs, errors.New("points.cm_zero_limit: must be at least 1"))
	}
	switch s.Log.Mode {
	case "development", "production":
	default:
		errs = append(errs, fmt.Errorf("log.mode: unknown mode %q", s.Log.Mode))
	}
	return errors.Join(errs...)
}

// BlobConfig maps the blob settings onto the blob facade's configuration.
func (s Settings) BlobConfig() blob.Config {
	return blob.Config{
		Driver: blob.Driver(s.Blob.Driver),
		FSRoot: s.Blob.FSRoot,
		S3: blob.S3Config{
			Region:          s.Blob.S3Region,
			Bucket:          s.Blob.S3Bucket,
			Endpoint:        s.Blob.S3Endpoint,
			AccessKeyID:     s.Blob.S3AccessKeyID,
			SecretAccessKey: s.Blob.S3SecretAccessKey,
			PathStyle:       s.Blob.S3PathStyle,
		},
	}
}
