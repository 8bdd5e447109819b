package pipeline

import (
	"log/slog"

	"github.com/chd-rasters/imerg-sync/internal/dataset"
	"github.com/chd-rasters/imerg-sync/internal/domain"
)

// GranuleTransformer implements Transformer by decoding staged NetCDF
// granules with the dataset package.
type GranuleTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates a GranuleTransformer.
func NewTransformer(logger *slog.Logger) *GranuleTransformer {
	return &GranuleTransformer{logger: logger}
}

func (t *GranuleTransformer) Transform(path string) (*domain.Grid, error) {
	grid, err := dataset.Read(path)
	if err != nil {
		return nil, err
	}

	nx, ny := grid.Dims()
	t.logger.Debug("granule decoded",
		"variable", grid.Variable,
		"nx", nx,
		"ny", ny,
		"time", grid.Time.Format("2006-01-02"),
	)
	return grid, nil
}
