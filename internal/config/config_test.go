package config

import (
	"testing"
	"time"

	"github.com/chd-rasters/imerg-sync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequired populates the variables without which Load always fails.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("IMERG_USERNAME", "user")
	t.Setenv("IMERG_PASSWORD", "pw")
	t.Setenv("BLOB_SAS", "sv=2024&sig=abc")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, domain.RunLate, cfg.Run)
	assert.Equal(t, 7, cfg.Version)
	assert.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), cfg.StartDate)
	assert.Equal(t, "user", cfg.Username)
	assert.Equal(t, "pw", cfg.Password)
	assert.Equal(t, "temp/imerg_temp.nc4", cfg.RawTempPath)
	assert.Equal(t, 10*time.Minute, cfg.DownloadTimeout)
	assert.Equal(t, BackendAzure, cfg.StorageBackend)
	assert.Equal(t, "https://imb0chd0dev.blob.core.windows.net/", cfg.BlobBaseURL)
	assert.Equal(t, "global", cfg.BlobContainer)
	assert.Zero(t, cfg.SyncInterval)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("IMERG_RUN", "E")
	t.Setenv("IMERG_VERSION", "6")
	t.Setenv("START_DATE", "2023-01-15")
	t.Setenv("RAW_TEMP_PATH", "/var/tmp/imerg.nc4")
	t.Setenv("DOWNLOAD_TIMEOUT", "30s")
	t.Setenv("SYNC_INTERVAL", "24h")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, domain.RunEarly, cfg.Run)
	assert.Equal(t, 6, cfg.Version)
	assert.Equal(t, time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC), cfg.StartDate)
	assert.Equal(t, "/var/tmp/imerg.nc4", cfg.RawTempPath)
	assert.Equal(t, 30*time.Second, cfg.DownloadTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SyncInterval)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_ZeroDownloadTimeoutAllowed(t *testing.T) {
	setRequired(t)
	t.Setenv("DOWNLOAD_TIMEOUT", "0s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.DownloadTimeout)
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("BLOB_SAS", "sig=abc")
	t.Setenv("IMERG_USERNAME", "user")
	t.Setenv("IMERG_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMERG_PASSWORD")
}

func TestLoad_MissingSAS(t *testing.T) {
	t.Setenv("IMERG_USERNAME", "user")
	t.Setenv("IMERG_PASSWORD", "pw")
	t.Setenv("BLOB_SAS", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BLOB_SAS")
}

func TestLoad_InvalidRun(t *testing.T) {
	setRequired(t)
	t.Setenv("IMERG_RUN", "X")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMERG_RUN")
}

func TestLoad_InvalidVersion(t *testing.T) {
	setRequired(t)
	t.Setenv("IMERG_VERSION", "zero")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMERG_VERSION")
}

func TestLoad_InvalidStartDate(t *testing.T) {
	setRequired(t)
	t.Setenv("START_DATE", "June 1st")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "START_DATE")
}

func TestLoad_NegativeDownloadTimeout(t *testing.T) {
	setRequired(t)
	t.Setenv("DOWNLOAD_TIMEOUT", "-1s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOWNLOAD_TIMEOUT")
}

func TestLoad_S3Backend(t *testing.T) {
	t.Setenv("IMERG_USERNAME", "user")
	t.Setenv("IMERG_PASSWORD", "pw")
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("S3_ENDPOINT", "localhost:9000")
	t.Setenv("S3_ACCESS_KEY", "a")
	t.Setenv("S3_SECRET_KEY", "s")
	t.Setenv("S3_BUCKET", "rasters")
	t.Setenv("S3_USE_SSL", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendS3, cfg.StorageBackend)
	assert.False(t, cfg.S3UseSSL)
}

func TestLoad_S3BackendMissingSettings(t *testing.T) {
	t.Setenv("IMERG_USERNAME", "user")
	t.Setenv("IMERG_PASSWORD", "pw")
	t.Setenv("STORAGE_BACKEND", "s3")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_ENDPOINT")
}

func TestLoad_UnknownBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_BACKEND", "ftp")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_BACKEND")
}
