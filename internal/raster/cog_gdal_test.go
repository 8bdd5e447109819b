//go:build gdal

package raster

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/chd-rasters/imerg-sync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Round-trip test against a real GDAL install.
// Run with: go test -tags=gdal ./internal/raster/ -v

func TestEncode_RoundTrip(t *testing.T) {
	grid := &domain.Grid{
		Variable:  "precipitation",
		X:         []float64{10.05, 10.15, 10.25},
		Y:         []float64{-0.05, 0.05},
		Values:    []float32{1, 2, 3, 4, 5, 6},
		Time:      time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		FillValue: -9999.9,
		HasFill:   true,
	}

	path := filepath.Join(t.TempDir(), "imerg.tif")
	require.NoError(t, COG{}.Encode(grid, path))

	ds, err := godal.Open(path)
	require.NoError(t, err)
	defer ds.Close()

	structure := ds.Structure()
	assert.Equal(t, 3, structure.SizeX)
	assert.Equal(t, 2, structure.SizeY)
	assert.Equal(t, 1, structure.NBands)

	gt, err := ds.GeoTransform()
	require.NoError(t, err)
	assert.InDelta(t, 10.0, gt[0], 1e-9)
	assert.InDelta(t, -0.1, gt[5], 1e-9)

	nodata, ok := ds.Bands()[0].NoData()
	require.True(t, ok)
	assert.InDelta(t, -9999.9, nodata, 1e-3)

	// Row 0 must be the northern row after the flip.
	buf := make([]float32, 6)
	require.NoError(t, ds.Bands()[0].Read(0, 0, buf, 3, 2))
	assert.Equal(t, []float32{4, 5, 6, 1, 2, 3}, buf)
}
