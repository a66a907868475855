package jointset

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DistanceMetric measures separation between two unit vectors. The reduced
// distance must be monotone in the distance and is used wherever only the
// ordering matters (nearest medoid assignment).
type DistanceMetric interface {
	Distance(a, b Vector) float64
	ReducedDistance(a, b Vector) float64
}

// ChordMetric is the Euclidean (chordal) distance in (L, M, N) space. For
// unit vectors it orders pairs exactly like the great-circle angle.
// ReducedDistance returns the squared chord, skipping the sqrt.
type ChordMetric struct{}

func (ChordMetric) Distance(a, b Vector) float64 {
	return math.Sqrt(r3.Norm2(r3.Sub(a, b)))
}

func (ChordMetric) ReducedDistance(a, b Vector) float64 {
	return r3.Norm2(r3.Sub(a, b))
}

// AngularMetric is the great-circle distance in radians.
// ReducedDistance returns 1 - cos(angle).
type AngularMetric struct{}

func (AngularMetric) Distance(a, b Vector) float64 {
	return math.Atan2(r3.Norm(r3.Cross(a, b)), r3.Dot(a, b))
}

func (AngularMetric) ReducedDistance(a, b Vector) float64 {
	return 1 - r3.Dot(a, b)
}

// ChordToAngle converts a chord length between unit vectors into the
// subtended angle in radians.
func ChordToAngle(chord float64) float64 {
	half := chord / 2
	if half > 1 {
		half = 1
	}
	return 2 * math.Asin(half)
}

// AngleToChord converts an angle in radians into the chord length between
// the two unit vectors it separates.
func AngleToChord(angle float64) float64 {
	return 2 * math.Sin(angle/2)
}

// ComputePairwiseDistances computes the full n×n distance matrix for
// vectors, flat and row-major.
func ComputePairwiseDistances(vectors []Vector, metric DistanceMetric) []float64 {
	n := len(vectors)
	result := make([]float64, n*n)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := metric.Distance(vectors[i], vectors[j])
			result[i*n+j] = d
			result[j*n+i] = d
		}
	}

	return result
}
