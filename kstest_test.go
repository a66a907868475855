package jointset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestKolmogorovQ(t *testing.T) {
	assert.InDelta(t, 0.0495, kolmogorovQ(1.36), 5e-4)
	assert.InDelta(t, 0.9639, kolmogorovQ(0.5), 5e-4)
	assert.InDelta(t, 0.00067, kolmogorovQ(2), 1e-5)
	assert.InDelta(t, 1, kolmogorovQ(0.05), 1e-9)
	assert.InDelta(t, 0, kolmogorovQ(10), 1e-12)
}

func TestKuiperQ(t *testing.T) {
	assert.InDelta(t, 0.0501, kuiperQ(1.747), 5e-4)
	assert.InDelta(t, 0.822, kuiperQ(1.0), 5e-4)
	assert.InDelta(t, 0.00018, kuiperQ(2.5), 1e-5)
	assert.InDelta(t, 1, kuiperQ(0.5), 1e-5, "leading term vanishes at λ = 0.5")
	assert.Equal(t, 1.0, kuiperQ(0.1))
}

func uniformQuantiles(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = (float64(i) + 0.5) / float64(n)
	}
	return x
}

func TestKolmogorovSmirnov_Uniform(t *testing.T) {
	x := uniformQuantiles(100)
	d, p, err := KolmogorovSmirnov(x, distuv.UnitUniform.CDF)
	require.NoError(t, err)
	assert.InDelta(t, 0.005, d, 1e-12)
	assert.Greater(t, p, 0.99)

	// Everything piled at one end is rejected.
	for i := range x {
		x[i] = 0.01 * x[i]
	}
	_, p, err = KolmogorovSmirnov(x, distuv.UnitUniform.CDF)
	require.NoError(t, err)
	assert.Less(t, p, 1e-6)
}

func TestKolmogorovSmirnov_DoesNotModifyInput(t *testing.T) {
	x := []float64{0.9, 0.1, 0.5}
	_, _, err := KolmogorovSmirnov(x, distuv.UnitUniform.CDF)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9, 0.1, 0.5}, x)
}

func TestKuiper_CircularShiftInvariant(t *testing.T) {
	rng := newTestRNG(4)
	x := make([]float64, 80)
	for i := range x {
		x[i] = math.Mod(rng.NormFloat64()*0.6+math.Pi, 2*math.Pi)
		if x[i] < 0 {
			x[i] += 2 * math.Pi
		}
	}
	cdf := distuv.Uniform{Min: 0, Max: 2 * math.Pi}.CDF
	v1, p1, err := Kuiper(x, cdf)
	require.NoError(t, err)

	shifted := make([]float64, len(x))
	for i, v := range x {
		shifted[i] = math.Mod(v+2.1, 2*math.Pi)
	}
	v2, p2, err := Kuiper(shifted, cdf)
	require.NoError(t, err)

	assert.InDelta(t, v1, v2, 1e-9)
	assert.InDelta(t, p1, p2, 1e-9)
	assert.Less(t, p1, 0.01, "concentrated angles are not uniform")
}

func TestGoodnessTests_EmptySample(t *testing.T) {
	_, _, err := KolmogorovSmirnov(nil, distuv.UnitUniform.CDF)
	assert.Error(t, err)
	_, _, err = Kuiper(nil, distuv.UnitUniform.CDF)
	assert.Error(t, err)
	_, _, err = KolmogorovSmirnov([]float64{1}, func(float64) float64 { return math.NaN() })
	assert.Error(t, err)
}
