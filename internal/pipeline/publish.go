package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/chd-rasters/imerg-sync/internal/domain"
)

// RasterEncoder serializes a grid to a raster file on local disk.
type RasterEncoder interface {
	Encode(grid *domain.Grid, path string) error
}

// BlobPublisher implements Publisher: it renders the grid into a fresh
// temporary file and uploads the bytes, overwriting any existing blob.
type BlobPublisher struct {
	encoder RasterEncoder
	store   Storage
	logger  *slog.Logger
}

// NewPublisher creates a BlobPublisher.
func NewPublisher(encoder RasterEncoder, store Storage, logger *slog.Logger) *BlobPublisher {
	return &BlobPublisher{encoder: encoder, store: store, logger: logger}
}

func (p *BlobPublisher) Publish(ctx context.Context, grid *domain.Grid, name string) error {
	f, err := os.CreateTemp("", "imerg-*.tif")
	if err != nil {
		return fmt.Errorf("create raster temp file: %w", err)
	}
	tmp := f.Name()
	// The encoder recreates the file; only the unique name is needed here.
	if err := f.Close(); err != nil {
		return fmt.Errorf("close raster temp file: %w", err)
	}
	defer os.Remove(tmp)

	if err := p.encoder.Encode(grid, tmp); err != nil {
		return fmt.Errorf("encode raster: %w", err)
	}

	data, err := os.ReadFile(tmp)
	if err != nil {
		return fmt.Errorf("read raster: %w", err)
	}

	if err := p.store.Upload(ctx, name, data); err != nil {
		return fmt.Errorf("upload artifact: %w", err)
	}

	p.logger.Debug("artifact uploaded", "blob", name, "bytes", len(data))
	return nil
}
