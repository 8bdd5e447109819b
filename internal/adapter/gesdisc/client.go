// Package gesdisc downloads IMERG granules from the NASA GES DISC archive.
package gesdisc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/chd-rasters/imerg-sync/internal/domain"
)

// DefaultBaseURL is the GES DISC HTTPS data root.
const DefaultBaseURL = "https://gpm1.gesdisc.eosdis.nasa.gov/data"

// Client fetches daily granules over HTTPS and stages them on local disk.
// It implements pipeline.Fetcher.
type Client struct {
	httpClient *http.Client
	baseURL    string
	run        domain.Run
	version    int
	savePath   string
	logger     *slog.Logger
}

// NewClient creates a GES DISC client. httpClient must be able to complete
// the Earthdata login redirect (see the earthdata package). savePath is the
// reusable local staging path for raw granules.
func NewClient(httpClient *http.Client, run domain.Run, version int, savePath string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    DefaultBaseURL,
		run:        run,
		version:    version,
		savePath:   savePath,
		logger:     logger,
	}
}

// DownloadURL builds the deterministic granule URL for a date. Version 7
// granules carry the "B" revision letter; other versions carry none.
func (c *Client) DownloadURL(date time.Time) string {
	return fmt.Sprintf(
		"%s/GPM_L3/GPM_3IMERGD%s.0%d/%04d/%02d/3B-DAY-%s.MS.MRG.3IMERG.%s-S000000-E235959.V0%d%s.nc4",
		c.baseURL, c.run, c.version,
		date.Year(), int(date.Month()),
		c.run, date.Format("20060102"),
		c.version, domain.VersionLetter(c.version),
	)
}

// Fetch downloads the granule for date to the staging path, replacing any
// previous file there, and returns the local path. Any non-success HTTP
// status is a hard failure; the client never retries.
func (c *Client) Fetch(ctx context.Context, date time.Time) (string, error) {
	if err := os.Remove(c.savePath); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("remove stale granule %s: %w", c.savePath, err)
	}

	url := c.DownloadURL(date)
	c.logger.Debug("downloading granule", "url", url, "save_path", c.savePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download granule: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("gesdisc returned status %d for %s: %s", resp.StatusCode, url, body)
	}

	if err := os.MkdirAll(filepath.Dir(c.savePath), 0o755); err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}

	f, err := os.Create(c.savePath)
	if err != nil {
		return "", fmt.Errorf("create granule file: %w", err)
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write granule file: %w", err)
	}

	c.logger.Debug("granule downloaded", "bytes", n, "save_path", c.savePath)
	return c.savePath, nil
}
