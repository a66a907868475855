package jointset

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// VerticalPole is the reference pole for the radial and azimuthal tests.
	VerticalPole = Vector{Z: 1}
	// HorizontalPole is the reference for the secondary normal test: the
	// vertical pole tilted 90° onto north.
	HorizontalPole = Vector{X: 1}
)

// ErrZeroDirection is returned when a rotation is requested for a zero
// length direction.
var ErrZeroDirection = errors.New("zero length direction")

// AlignRotation returns the rotation carrying from onto to, about the axis
// from×to by the angle between them. Parallel inputs give the identity and
// antiparallel inputs a half turn about an axis perpendicular to from.
func AlignRotation(from, to Vector) (r3.Rotation, error) {
	nf, nt := r3.Norm(from), r3.Norm(to)
	if nf == 0 || nt == 0 || math.IsNaN(nf) || math.IsNaN(nt) {
		return r3.Rotation{}, ErrZeroDirection
	}
	from, to = r3.Scale(1/nf, from), r3.Scale(1/nt, to)

	axis := r3.Cross(from, to)
	sin := r3.Norm(axis)
	cos := r3.Dot(from, to)
	if sin < 1e-12 {
		if cos > 0 {
			return r3.NewRotation(0, VerticalPole), nil
		}
		return r3.NewRotation(math.Pi, perpendicular(from)), nil
	}
	return r3.NewRotation(math.Atan2(sin, cos), axis), nil
}

// perpendicular returns a unit vector orthogonal to v, built from the
// coordinate axis v is least aligned with.
func perpendicular(v Vector) Vector {
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	ref := Vector{Z: 1}
	switch {
	case ax <= ay && ax <= az:
		ref = Vector{X: 1}
	case ay <= az:
		ref = Vector{Y: 1}
	}
	return r3.Unit(r3.Cross(v, ref))
}

// Spherical returns the colatitude θ (angle from +Z) and azimuth φ
// (counterclockwise from +X toward +Y, in (-π, π]) of v in radians.
func Spherical(v Vector) (theta, phi float64) {
	n := r3.Norm(v)
	if n == 0 {
		return 0, 0
	}
	z := math.Max(-1, math.Min(1, v.Z/n))
	return math.Acos(z), math.Atan2(v.Y, v.X)
}

// rotateAll applies rot to every vector and returns the (θ, φ) pairs.
func rotateAll(rot r3.Rotation, vectors []Vector) (theta, phi []float64) {
	theta = make([]float64, len(vectors))
	phi = make([]float64, len(vectors))
	for i, v := range vectors {
		theta[i], phi[i] = Spherical(rot.Rotate(v))
	}
	return theta, phi
}
