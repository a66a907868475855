package jointset

import (
	"fmt"
	"math"
)

// Format selects the column order of an input orientation table.
type Format int

const (
	FormatDipDirectionDip Format = 1 // planes: dip direction, dip
	FormatDipDipDirection Format = 2 // planes: dip, dip direction
	FormatTrendPlunge     Format = 3 // lines: trend, plunge
	FormatPlungeTrend     Format = 4 // lines: plunge, trend
)

// IsPlane reports whether records in this format describe planes.
func (f Format) IsPlane() bool {
	return f == FormatDipDirectionDip || f == FormatDipDipDirection
}

// Valid reports whether f is one of the four recognized format codes.
func (f Format) Valid() bool {
	return f >= FormatDipDirectionDip && f <= FormatPlungeTrend
}

// Columns returns the names of the two input columns in order.
func (f Format) Columns() [2]string {
	switch f {
	case FormatDipDirectionDip:
		return [2]string{"dip_direction", "dip"}
	case FormatDipDipDirection:
		return [2]string{"dip", "dip_direction"}
	case FormatTrendPlunge:
		return [2]string{"trend", "plunge"}
	case FormatPlungeTrend:
		return [2]string{"plunge", "trend"}
	}
	return [2]string{"a", "b"}
}

func (f Format) String() string {
	c := f.Columns()
	return c[0] + "/" + c[1]
}

// Record is one measured planar or linear feature. Exactly one of the
// dip/dip-direction and trend/plunge pairs came from the input; the other is
// derived from it.
type Record struct {
	DipDirection float64
	Dip          float64
	Trend        float64
	Plunge       float64
	// Strike follows the right-hand rule (dip direction - 90) and is only
	// meaningful when HasStrike is set, i.e. the record came from a plane.
	Strike    float64
	HasStrike bool
	// Source holds the two values exactly as they appeared in the input.
	Source [2]float64
}

// NormalizeAzimuth maps an angle in degrees onto [0, 360).
func NormalizeAzimuth(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	// math.Mod(-1e-15, 360) + 360 rounds to 360.
	if a >= 360 {
		a = 0
	}
	return a
}

// PlaneToPole converts a plane's dip direction and dip into the trend and
// plunge of its (lower hemisphere) pole.
func PlaneToPole(dipDirection, dip float64) (trend, plunge float64) {
	return NormalizeAzimuth(dipDirection + 180), 90 - dip
}

// PoleToPlane is the inverse of PlaneToPole.
func PoleToPlane(trend, plunge float64) (dipDirection, dip float64) {
	return NormalizeAzimuth(trend + 180), 90 - plunge
}

// NewRecord builds a Record from one row of a table in the given format.
// row is used to label validation errors.
func NewRecord(row int, values [2]float64, f Format) (Record, error) {
	if !f.Valid() {
		return Record{}, &ValidationError{Row: -1, Field: "format", Value: float64(f), Err: ErrUnknownFormat}
	}

	r := Record{Source: values}
	switch f {
	case FormatDipDirectionDip:
		r.DipDirection, r.Dip = values[0], values[1]
	case FormatDipDipDirection:
		r.Dip, r.DipDirection = values[0], values[1]
	case FormatTrendPlunge:
		r.Trend, r.Plunge = values[0], values[1]
	case FormatPlungeTrend:
		r.Plunge, r.Trend = values[0], values[1]
	}

	if f.IsPlane() {
		if err := checkRange(row, "dip_direction", r.DipDirection, 360); err != nil {
			return Record{}, err
		}
		if err := checkRange(row, "dip", r.Dip, 90); err != nil {
			return Record{}, err
		}
		r.Trend, r.Plunge = PlaneToPole(r.DipDirection, r.Dip)
		r.Strike = NormalizeAzimuth(r.DipDirection - 90)
		r.HasStrike = true
	} else {
		if err := checkRange(row, "trend", r.Trend, 360); err != nil {
			return Record{}, err
		}
		if err := checkRange(row, "plunge", r.Plunge, 90); err != nil {
			return Record{}, err
		}
		r.DipDirection, r.Dip = PoleToPlane(r.Trend, r.Plunge)
	}
	return r, nil
}

// NewRecords validates a two-column table and converts every row. The first
// invalid row aborts the conversion.
func NewRecords(table [][2]float64, f Format) ([]Record, error) {
	if !f.Valid() {
		return nil, &ValidationError{Row: -1, Field: "format", Value: float64(f), Err: ErrUnknownFormat}
	}
	if len(table) == 0 {
		return nil, ErrEmptyInput
	}
	records := make([]Record, len(table))
	for i, row := range table {
		r, err := NewRecord(i, row, f)
		if err != nil {
			return nil, err
		}
		records[i] = r
	}
	return records, nil
}

func checkRange(row int, field string, v, upper float64) error {
	if math.IsNaN(v) || v < 0 || v > upper {
		return &ValidationError{
			Row:   row,
			Field: field,
			Value: v,
			Err:   fmt.Errorf("must be in [0, %g]", upper),
		}
	}
	return nil
}
