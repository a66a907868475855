package jointset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestAlignRotation_MapsFromOntoTo(t *testing.T) {
	rng := newTestRNG(13)
	for i := 0; i < 100; i++ {
		from := FromTrendPlunge(rng.Float64()*360, rng.Float64()*180-90)
		to := FromTrendPlunge(rng.Float64()*360, rng.Float64()*180-90)
		rot, err := AlignRotation(from, to)
		require.NoError(t, err)
		assertVector(t, "rotated", rot.Rotate(from), to, 1e-9)

		other := FromTrendPlunge(rng.Float64()*360, rng.Float64()*90)
		assert.InDelta(t, 1, r3.Norm(rot.Rotate(other)), 1e-12, "rotation preserves length")
		assert.InDelta(t, AngleBetween(from, other), AngleBetween(to, rot.Rotate(other)), 1e-7, "rotation preserves angles")
	}
}

func TestAlignRotation_ScalesInputs(t *testing.T) {
	rot, err := AlignRotation(Vector{X: 3}, Vector{Z: 0.5})
	require.NoError(t, err)
	assertVector(t, "rotated", rot.Rotate(Vector{X: 1}), Vector{Z: 1}, 1e-12)
}

func TestAlignRotation_Parallel(t *testing.T) {
	v := FromTrendPlunge(75, 20)
	rot, err := AlignRotation(v, v)
	require.NoError(t, err)
	w := FromTrendPlunge(300, 70)
	assertVector(t, "identity", rot.Rotate(w), w, 1e-12)
}

func TestAlignRotation_Antiparallel(t *testing.T) {
	for _, v := range []Vector{{Z: -1}, {X: 1}, {Y: -1}, FromTrendPlunge(33, 44)} {
		rot, err := AlignRotation(v, r3.Scale(-1, v))
		require.NoError(t, err)
		assertVector(t, "half turn", rot.Rotate(v), r3.Scale(-1, v), 1e-12)
	}
	rot, err := AlignRotation(Vector{Z: -1}, VerticalPole)
	require.NoError(t, err)
	assertVector(t, "down onto up", rot.Rotate(Vector{Z: -1}), VerticalPole, 1e-12)
}

func TestAlignRotation_ZeroDirection(t *testing.T) {
	_, err := AlignRotation(Vector{}, VerticalPole)
	assert.ErrorIs(t, err, ErrZeroDirection)
	_, err = AlignRotation(VerticalPole, Vector{X: math.NaN()})
	assert.ErrorIs(t, err, ErrZeroDirection)
}

func TestSpherical(t *testing.T) {
	tests := []struct {
		name       string
		v          Vector
		theta, phi float64
	}{
		{"up", Vector{Z: 1}, 0, 0},
		{"down", Vector{Z: -1}, math.Pi, 0},
		{"x", Vector{X: 1}, math.Pi / 2, 0},
		{"y", Vector{Y: 2}, math.Pi / 2, math.Pi / 2},
		{"-y", Vector{Y: -1}, math.Pi / 2, -math.Pi / 2},
		{"zero", Vector{}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theta, phi := Spherical(tt.v)
			assert.InDelta(t, tt.theta, theta, 1e-12)
			assert.InDelta(t, tt.phi, phi, 1e-12)
		})
	}
}
