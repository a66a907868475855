package jointset

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vector is a direction cosine triple: X is north (L), Y is east (M) and Z
// is up (N), so a downward plunge has negative Z.
type Vector = r3.Vec

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

// FromTrendPlunge returns the unit vector for a line with the given trend
// and plunge in degrees.
func FromTrendPlunge(trend, plunge float64) Vector {
	t, p := trend*deg2rad, plunge*deg2rad
	return Vector{
		X: math.Cos(p) * math.Cos(t),
		Y: math.Cos(p) * math.Sin(t),
		Z: -math.Sin(p),
	}
}

// TrendPlunge converts a vector to trend and plunge in degrees. A vector in
// the upper hemisphere yields a negative plunge. v need not be unit length.
func TrendPlunge(v Vector) (trend, plunge float64) {
	n := r3.Norm(v)
	if n == 0 {
		return 0, 0
	}
	z := -v.Z / n
	z = math.Max(-1, math.Min(1, z))
	plunge = math.Asin(z) * rad2deg
	trend = NormalizeAzimuth(math.Atan2(v.Y, v.X) * rad2deg)
	return trend, plunge
}

// AngleBetween returns the angle between a and b in degrees.
func AngleBetween(a, b Vector) float64 {
	return math.Atan2(r3.Norm(r3.Cross(a, b)), r3.Dot(a, b)) * rad2deg
}

// Seed is a user supplied direction used to initialize manual clustering.
type Seed struct {
	Plunge float64 `json:"plunge"`
	Trend  float64 `json:"trend"`
}

// Vector returns the seed's unit vector.
func (s Seed) Vector() Vector { return FromTrendPlunge(s.Trend, s.Plunge) }

// ProjectEqualArea returns the lower hemisphere equal-area (Schmidt)
// projection of v onto the unit primitive circle. Upper hemisphere vectors
// are projected through their antipode.
func ProjectEqualArea(v Vector) (x, y float64) {
	if v.Z > 0 {
		v = r3.Scale(-1, v)
	}
	trend, plunge := TrendPlunge(v)
	r := math.Sqrt2 * math.Sin((90-plunge)*deg2rad/2)
	return r * math.Sin(trend*deg2rad), r * math.Cos(trend*deg2rad)
}

// primitiveTolerance absorbs rounding in picked points lying on the primitive.
const primitiveTolerance = 1e-9

// SeedFromProjection converts a point picked on the equal-area projection
// into a plunge/trend seed.
func SeedFromProjection(x, y float64) (Seed, error) {
	r := math.Hypot(x, y)
	if math.IsNaN(r) || r > 1+primitiveTolerance {
		return Seed{}, &ValidationError{
			Row:   -1,
			Field: "projection radius",
			Value: r,
			Err:   fmt.Errorf("point (%g, %g) lies outside the primitive circle", x, y),
		}
	}
	r = math.Min(r, 1)
	return Seed{
		Trend:  NormalizeAzimuth(math.Atan2(x, y) * rad2deg),
		Plunge: 90 - 2*math.Asin(r/math.Sqrt2)*rad2deg,
	}, nil
}

// DualSet is the symmetric working set: for each of the N input records,
// index i holds its vector and index i+N its reflection. Records are
// duplicated unchanged so both halves index the same measurement.
type DualSet struct {
	N       int
	Records []Record
	Vectors []Vector
}

// NewDualSet builds the 2N element dual-hemisphere set for records.
func NewDualSet(records []Record) *DualSet {
	n := len(records)
	ds := &DualSet{
		N:       n,
		Records: make([]Record, 2*n),
		Vectors: make([]Vector, 2*n),
	}
	copy(ds.Records, records)
	copy(ds.Records[n:], records)
	for i, r := range records {
		v := FromTrendPlunge(r.Trend, r.Plunge)
		ds.Vectors[i] = v
		ds.Vectors[i+n] = r3.Scale(-1, v)
	}
	return ds
}

// Original returns the index of the input record behind dual index i.
func (ds *DualSet) Original(i int) int {
	if i >= ds.N {
		return i - ds.N
	}
	return i
}

// Antipode returns the dual index of the reflection of dual index i.
func (ds *DualSet) Antipode(i int) int {
	if i >= ds.N {
		return i - ds.N
	}
	return i + ds.N
}

// Primary returns the N unreflected vectors.
func (ds *DualSet) Primary() []Vector { return ds.Vectors[:ds.N] }
