// Package raster encodes grids as cloud-optimized GeoTIFFs via GDAL.
package raster

import (
	"fmt"
	"math"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/chd-rasters/imerg-sync/internal/domain"
)

var registerOnce sync.Once

// COG encodes grids with the GDAL COG driver.
// It implements pipeline.RasterEncoder.
type COG struct{}

// Encode writes grid as a cloud-optimized GeoTIFF (EPSG:4326, single
// Float32 band, deflate-compressed) at path.
func (COG) Encode(grid *domain.Grid, path string) error {
	registerOnce.Do(godal.RegisterAll)

	if err := grid.Validate(); err != nil {
		return err
	}
	gt, flip, err := geoTransform(grid.X, grid.Y)
	if err != nil {
		return err
	}

	nx, ny := grid.Dims()
	mem, err := godal.Create(godal.Memory, "", 1, godal.Float32, nx, ny)
	if err != nil {
		return fmt.Errorf("create raster: %w", err)
	}
	defer mem.Close()

	sr, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		return fmt.Errorf("create spatial ref: %w", err)
	}
	defer sr.Close()
	if err := mem.SetSpatialRef(sr); err != nil {
		return fmt.Errorf("set spatial ref: %w", err)
	}
	if err := mem.SetGeoTransform(gt); err != nil {
		return fmt.Errorf("set geotransform: %w", err)
	}

	band := mem.Bands()[0]
	if grid.HasFill {
		if err := band.SetNoData(float64(grid.FillValue)); err != nil {
			return fmt.Errorf("set nodata: %w", err)
		}
	}
	if err := band.Write(0, 0, northUp(grid, flip), nx, ny); err != nil {
		return fmt.Errorf("write band: %w", err)
	}

	// The COG driver is copy-only, hence the in-memory dataset + translate.
	cog, err := mem.Translate(path, []string{"-of", "COG", "-co", "COMPRESS=DEFLATE"})
	if err != nil {
		return fmt.Errorf("translate to COG: %w", err)
	}
	return cog.Close()
}

// geoTransform derives the GDAL affine transform from cell-centered
// coordinate arrays and reports whether rows must be flipped so that row 0
// is the northernmost (GeoTIFF convention).
func geoTransform(x, y []float64) ([6]float64, bool, error) {
	if len(x) < 2 || len(y) < 2 {
		return [6]float64{}, false, fmt.Errorf("cannot derive pixel size from %dx%d coordinates", len(x), len(y))
	}
	dx := x[1] - x[0]
	if dx <= 0 {
		return [6]float64{}, false, fmt.Errorf("x coordinates must be ascending (dx=%g)", dx)
	}
	dy := y[1] - y[0]
	if dy == 0 {
		return [6]float64{}, false, fmt.Errorf("y coordinates are degenerate")
	}

	flip := dy > 0 // ascending latitudes: row 0 is the southernmost
	top := math.Max(y[0], y[len(y)-1]) + math.Abs(dy)/2
	gt := [6]float64{x[0] - dx/2, dx, 0, top, 0, -math.Abs(dy)}
	return gt, flip, nil
}

// northUp returns the grid values with row order matching the geotransform,
// reversing the rows when the source latitudes ascend.
func northUp(grid *domain.Grid, flip bool) []float32 {
	if !flip {
		return grid.Values
	}
	nx, ny := grid.Dims()
	out := make([]float32, len(grid.Values))
	for iy := 0; iy < ny; iy++ {
		copy(out[iy*nx:(iy+1)*nx], grid.Values[(ny-1-iy)*nx:(ny-iy)*nx])
	}
	return out
}
