package domain

import (
	"fmt"
	"time"
)

// Grid is a decoded precipitation field for one granule: a 2-D labeled array
// with generic position axes. X holds the horizontal (longitude) coordinate
// values and Y the vertical (latitude) values; Values is row-major with
// len(Y) rows of len(X) samples each. All singleton dimensions of the source
// dataset (time, vertex bounds) have been squeezed away by the time a Grid
// exists.
type Grid struct {
	// Variable is the source dataset variable the field was read from.
	Variable string

	X []float64
	Y []float64

	// Values is the flattened [y][x] sample matrix.
	Values []float32

	// Time is the granule's calendar date at UTC midnight.
	Time time.Time

	Units string

	// FillValue is the dataset's missing-data sentinel, valid when HasFill.
	FillValue float32
	HasFill   bool
}

// Dims returns the grid extent as (nx, ny).
func (g *Grid) Dims() (nx, ny int) {
	return len(g.X), len(g.Y)
}

// At returns the sample at column ix, row iy.
func (g *Grid) At(ix, iy int) float32 {
	return g.Values[iy*len(g.X)+ix]
}

// Validate checks the structural invariant between axes and values.
func (g *Grid) Validate() error {
	if len(g.X) == 0 || len(g.Y) == 0 {
		return fmt.Errorf("grid %q: empty axis (nx=%d ny=%d)", g.Variable, len(g.X), len(g.Y))
	}
	if want := len(g.X) * len(g.Y); len(g.Values) != want {
		return fmt.Errorf("grid %q: %d values for %dx%d axes", g.Variable, len(g.Values), len(g.X), len(g.Y))
	}
	return nil
}
