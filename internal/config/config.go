package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/chd-rasters/imerg-sync/internal/domain"
	"github.com/joho/godotenv"
)

// Storage backend selectors.
const (
	BackendAzure = "azure"
	BackendS3    = "s3"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Product selection.
	Run       domain.Run
	Version   int
	StartDate time.Time

	// Earthdata credentials.
	Username string
	Password string

	// Local staging path for raw granules, reused across dates.
	RawTempPath string

	// DownloadTimeout bounds a single granule GET; zero disables the bound.
	DownloadTimeout time.Duration

	// Storage.
	StorageBackend string
	BlobBaseURL    string
	BlobContainer  string
	BlobSAS        string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3UseSSL       bool

	// SyncInterval re-runs the sync on a schedule; zero means one-shot.
	SyncInterval time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables (with a best-effort
// .env load), applying defaults where unset.
func Load() (*Config, error) {
	_ = godotenv.Load()

	startDate, err := parseDate("START_DATE", "2024-06-01")
	if err != nil {
		return nil, err
	}
	version, err := parsePositiveInt("IMERG_VERSION", 7)
	if err != nil {
		return nil, err
	}
	downloadTimeout, err := parseTimeout("DOWNLOAD_TIMEOUT", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	syncInterval, err := parseTimeout("SYNC_INTERVAL", 0)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseTimeout("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Run:       domain.Run(envOrDefault("IMERG_RUN", string(domain.RunLate))),
		Version:   version,
		StartDate: startDate,

		Username: os.Getenv("IMERG_USERNAME"),
		Password: os.Getenv("IMERG_PASSWORD"),

		RawTempPath:     envOrDefault("RAW_TEMP_PATH", "temp/imerg_temp.nc4"),
		DownloadTimeout: downloadTimeout,

		StorageBackend: envOrDefault("STORAGE_BACKEND", BackendAzure),
		BlobBaseURL:    envOrDefault("BLOB_BASE_URL", "https://imb0chd0dev.blob.core.windows.net/"),
		BlobContainer:  envOrDefault("BLOB_CONTAINER", "global"),
		BlobSAS:        os.Getenv("BLOB_SAS"),
		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
		S3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("S3_SECRET_KEY"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3UseSSL:       envOrDefault("S3_USE_SSL", "true") == "true",

		SyncInterval: syncInterval,

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if !cfg.Run.Valid() {
		return nil, fmt.Errorf("IMERG_RUN must be %q or %q", domain.RunEarly, domain.RunLate)
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("IMERG_USERNAME and IMERG_PASSWORD are required")
	}
	switch cfg.StorageBackend {
	case BackendAzure:
		if cfg.BlobSAS == "" {
			return nil, errors.New("BLOB_SAS is required for the azure backend")
		}
	case BackendS3:
		if cfg.S3Endpoint == "" || cfg.S3AccessKey == "" || cfg.S3SecretKey == "" || cfg.S3Bucket == "" {
			return nil, errors.New("S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY, and S3_BUCKET are required for the s3 backend")
		}
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND must be %q or %q", BackendAzure, BackendS3)
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDate(key, def string) (time.Time, error) {
	s := envOrDefault(key, def)
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %q is not a YYYY-MM-DD date", key, s)
	}
	return t.UTC(), nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q is not a positive integer", key, s)
	}
	return n, nil
}

// parseTimeout parses a non-negative duration; zero is allowed and means
// "disabled" for the settings that use it.
func parseTimeout(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: %q is not a non-negative duration", key, s)
	}
	return d, nil
}
