package jointset

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const floatTol = 1e-10

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// angleDiff returns the smallest difference between two azimuths in degrees.
func angleDiff(a, b float64) float64 {
	d := math.Abs(NormalizeAzimuth(a) - NormalizeAzimuth(b))
	return math.Min(d, 360-d)
}

func assertVector(t *testing.T, name string, got, want Vector, tol float64) {
	t.Helper()
	if r3.Norm(r3.Sub(got, want)) > tol {
		t.Errorf("%s: got %+v, want %+v", name, got, want)
	}
}

func newTestRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

// fisherLattice returns n deterministic directions about mean whose
// colatitudes sit on the quantiles of a Fisher distribution with
// concentration k and whose azimuths follow a golden-ratio sequence. It
// behaves like an ideal Fisher sample without any sampling noise.
func fisherLattice(mean Vector, k float64, n int) []Vector {
	rot, err := AlignRotation(VerticalPole, mean)
	if err != nil {
		panic(err)
	}
	const golden = 0.6180339887498949
	out := make([]Vector, n)
	for i := range out {
		u := (float64(i) + 0.5) / float64(n)
		x := -math.Log1p(-u*(1-math.Exp(-2*k))) / k
		w := 1 - x
		s := math.Sqrt(math.Max(0, 1-w*w))
		_, frac := math.Modf(float64(i) * golden)
		phi := 2 * math.Pi * frac
		out[i] = rot.Rotate(Vector{X: s * math.Cos(phi), Y: s * math.Sin(phi), Z: w})
	}
	return out
}

// sampleFisher draws n directions from a von Mises–Fisher distribution on
// the sphere about mean with concentration k (Wood's method for 3-D).
func sampleFisher(rng *rand.Rand, mean Vector, k float64, n int) []Vector {
	rot, err := AlignRotation(VerticalPole, mean)
	if err != nil {
		panic(err)
	}
	out := make([]Vector, n)
	for i := range out {
		u := rng.Float64()
		w := 1 + math.Log(u+(1-u)*math.Exp(-2*k))/k
		s := math.Sqrt(math.Max(0, 1-w*w))
		phi := 2 * math.Pi * rng.Float64()
		out[i] = rot.Rotate(Vector{X: s * math.Cos(phi), Y: s * math.Sin(phi), Z: w})
	}
	return out
}

// jitteredPlanes returns n dip-direction/dip rows uniformly jittered by up to
// ±jitter degrees around (dipDirection, dip), with dip kept in [0, 90].
func jitteredPlanes(rng *rand.Rand, dipDirection, dip, jitter float64, n int) [][2]float64 {
	rows := make([][2]float64, n)
	for i := range rows {
		dd := NormalizeAzimuth(dipDirection + (2*rng.Float64()-1)*jitter)
		d := math.Max(0, math.Min(90, dip+(2*rng.Float64()-1)*jitter))
		rows[i] = [2]float64{dd, d}
	}
	return rows
}

// randomLines returns n trend/plunge rows spread uniformly over trend and
// plunge.
func randomLines(rng *rand.Rand, n int) [][2]float64 {
	rows := make([][2]float64, n)
	for i := range rows {
		rows[i] = [2]float64{rng.Float64() * 360, rng.Float64() * 90}
	}
	return rows
}
