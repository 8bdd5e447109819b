// Package dataset decodes IMERG NetCDF granules into domain grids.
//
// Granules are multi-dimensional labeled datasets. The precipitation
// variable arrives with its axes in whatever order the product version
// chose (typically time, lon, lat); decoding reorders them to the canonical
// (y, x) layout, squeezes singleton dimensions, and normalizes the time
// coordinate to a bare UTC calendar date.
package dataset

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/chd-rasters/imerg-sync/internal/domain"
)

// ErrNoPrecipitationVariable is returned when a granule contains neither the
// calibrated nor the uncalibrated precipitation variable.
var ErrNoPrecipitationVariable = errors.New("dataset: no precipitationCal or precipitation variable")

// Variable names in preference order: the gauge-calibrated field wins when
// both are present.
var precipitationVariables = []string{"precipitationCal", "precipitation"}

const (
	dimLon  = "lon"
	dimLat  = "lat"
	dimTime = "time"
)

// Read opens the granule at path and decodes its precipitation field.
func Read(path string) (*domain.Grid, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open granule %s: %w", path, err)
	}
	defer nc.Close()

	name, err := pickVariable(nc)
	if err != nil {
		return nil, fmt.Errorf("%w in %s", err, path)
	}

	vr, err := nc.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("read variable %s: %w", name, err)
	}

	x, err := readCoord(nc, dimLon)
	if err != nil {
		return nil, err
	}
	y, err := readCoord(nc, dimLat)
	if err != nil {
		return nil, err
	}

	values, err := toPlane(vr, len(x), len(y))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	ts, err := readTime(nc)
	if err != nil {
		return nil, err
	}

	grid := &domain.Grid{
		Variable: name,
		X:        x,
		Y:        y,
		Values:   values,
		Time:     ts,
		Units:    attrString(vr.Attributes, "units"),
	}
	if fill, ok := attrFloat32(vr.Attributes, "_FillValue"); ok {
		grid.FillValue = fill
		grid.HasFill = true
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	return grid, nil
}

// pickVariable returns the first known precipitation variable present in the
// dataset, or ErrNoPrecipitationVariable.
func pickVariable(nc api.Group) (string, error) {
	present := make(map[string]bool)
	for _, v := range nc.ListVariables() {
		present[v] = true
	}
	for _, name := range precipitationVariables {
		if present[name] {
			return name, nil
		}
	}
	return "", ErrNoPrecipitationVariable
}

// readCoord reads a 1-D coordinate variable as float64 regardless of its
// on-disk width.
func readCoord(nc api.Group, name string) ([]float64, error) {
	vr, err := nc.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("read coordinate %s: %w", name, err)
	}
	out, err := flattenFloat64(vr.Values)
	if err != nil {
		return nil, fmt.Errorf("coordinate %s: %w", name, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("coordinate %s is empty", name)
	}
	return out, nil
}

// toPlane reorders the variable's values to a row-major [y][x] plane,
// squeezing every other dimension. Dimensions besides lon and lat must be
// singletons.
func toPlane(vr *api.Variable, nx, ny int) ([]float32, error) {
	shape := shapeOf(vr.Values)
	if len(shape) != len(vr.Dimensions) {
		return nil, fmt.Errorf("shape %v does not match dimensions %v", shape, vr.Dimensions)
	}

	lonAxis, latAxis := -1, -1
	for i, d := range vr.Dimensions {
		switch d {
		case dimLon:
			lonAxis = i
		case dimLat:
			latAxis = i
		default:
			if shape[i] != 1 {
				return nil, fmt.Errorf("dimension %s has extent %d, cannot squeeze", d, shape[i])
			}
		}
	}
	if lonAxis < 0 || latAxis < 0 {
		return nil, fmt.Errorf("missing lon/lat dimensions in %v", vr.Dimensions)
	}
	if shape[lonAxis] != nx || shape[latAxis] != ny {
		return nil, fmt.Errorf("data extent %dx%d does not match coordinates %dx%d",
			shape[lonAxis], shape[latAxis], nx, ny)
	}

	flat, err := flattenFloat32(vr.Values)
	if err != nil {
		return nil, err
	}

	// Row-major strides of the source layout. Singleton axes always index 0
	// and contribute nothing.
	strides := make([]int, len(shape))
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= shape[i]
	}

	out := make([]float32, nx*ny)
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			out[iy*nx+ix] = flat[ix*strides[lonAxis]+iy*strides[latAxis]]
		}
	}
	return out, nil
}

// shapeOf walks nested slices to determine the array extents.
func shapeOf(v any) []int {
	shape := []int{}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Slice {
		shape = append(shape, rv.Len())
		if rv.Len() == 0 {
			break
		}
		rv = rv.Index(0)
	}
	return shape
}

func flattenFloat32(v any) ([]float32, error) {
	// Fast path for the common on-disk type.
	if f, ok := v.([]float32); ok {
		return f, nil
	}
	f64, err := appendNumeric(nil, reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(f64))
	for i, f := range f64 {
		out[i] = float32(f)
	}
	return out, nil
}

func flattenFloat64(v any) ([]float64, error) {
	if f, ok := v.([]float64); ok {
		return f, nil
	}
	f64, err := appendNumeric(nil, reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}
	return f64, nil
}

func appendNumeric(dst []float64, rv reflect.Value) ([]float64, error) {
	switch rv.Kind() {
	case reflect.Slice:
		var err error
		for i := 0; i < rv.Len(); i++ {
			if dst, err = appendNumeric(dst, rv.Index(i)); err != nil {
				return nil, err
			}
		}
		return dst, nil
	case reflect.Float32, reflect.Float64:
		return append(dst, rv.Float()), nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return append(dst, float64(rv.Int())), nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return append(dst, float64(rv.Uint())), nil
	default:
		return nil, fmt.Errorf("unsupported value kind %s", rv.Kind())
	}
}

// cfUnitsRe matches CF time units such as "days since 2024-06-01 00:00:00".
var cfUnitsRe = regexp.MustCompile(`(?i)^\s*(day|hour|minute|second)s?\s+since\s+(.+?)\s*$`)

var epochLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// readTime decodes the granule's time coordinate and truncates it to the
// calendar date. Both string-typed and CF numeric encodings occur in the
// wild; either way only the date survives.
func readTime(nc api.Group) (time.Time, error) {
	vr, err := nc.GetVariable(dimTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("read coordinate time: %w", err)
	}

	switch vals := vr.Values.(type) {
	case string:
		return parseTimeString(vals)
	case []string:
		if len(vals) == 0 {
			return time.Time{}, errors.New("time coordinate is empty")
		}
		return parseTimeString(vals[0])
	}

	nums, err := flattenFloat64(vr.Values)
	if err != nil {
		return time.Time{}, fmt.Errorf("time coordinate: %w", err)
	}
	if len(nums) == 0 {
		return time.Time{}, errors.New("time coordinate is empty")
	}

	units := attrString(vr.Attributes, "units")
	m := cfUnitsRe.FindStringSubmatch(units)
	if m == nil {
		return time.Time{}, fmt.Errorf("time coordinate has unsupported units %q", units)
	}
	epoch, err := parseEpoch(m[2])
	if err != nil {
		return time.Time{}, err
	}

	var unit time.Duration
	switch strings.ToLower(m[1]) {
	case "day":
		unit = 24 * time.Hour
	case "hour":
		unit = time.Hour
	case "minute":
		unit = time.Minute
	case "second":
		unit = time.Second
	}
	return domain.Date(epoch.Add(time.Duration(nums[0] * float64(unit)))), nil
}

func parseTimeString(s string) (time.Time, error) {
	t, err := parseEpoch(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("time coordinate: %w", err)
	}
	return domain.Date(t), nil
}

func parseEpoch(s string) (time.Time, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), " UTC")
	for _, layout := range epochLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

func attrString(attrs api.AttributeMap, key string) string {
	if attrs == nil {
		return ""
	}
	v, has := attrs.Get(key)
	if !has {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []string:
		if len(s) > 0 {
			return s[0]
		}
	}
	return ""
}

func attrFloat32(attrs api.AttributeMap, key string) (float32, bool) {
	if attrs == nil {
		return 0, false
	}
	v, has := attrs.Get(key)
	if !has {
		return 0, false
	}
	// Attributes arrive as scalars or single-element slices depending on the
	// writer; appendNumeric handles both.
	nums, err := appendNumeric(nil, reflect.ValueOf(v))
	if err != nil || len(nums) == 0 {
		return 0, false
	}
	return float32(nums[0]), true
}
