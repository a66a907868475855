package jointset

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// minGoodnessOfFitMembers is the smallest class the tests are run on.
const minGoodnessOfFitMembers = 3

// TestResult is the outcome of one hypothesis test.
type TestResult struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	// Accept is true when the null hypothesis is not rejected at the
	// configured significance level.
	Accept bool `json:"accept"`
}

// GoodnessOfFit holds the three tests of a class against the Fisher model.
type GoodnessOfFit struct {
	// Radial tests 1 - cos θ (colatitude about the mean) against an
	// exponential distribution with rate K (KS test).
	Radial TestResult `json:"radial"`
	// Azimuthal tests the azimuth about the mean against Uniform(0, 2π)
	// (Kuiper test).
	Azimuthal TestResult `json:"azimuthal"`
	// Normal tests φ₂·√(sin θ₂), with the mean rotated onto the horizon,
	// against a zero-mean normal whose standard deviation is estimated
	// from the same sample (KS test). Because the variance is fitted to
	// the data under test, this is a self-consistency check and is biased
	// toward acceptance.
	Normal TestResult `json:"normal"`

	Significance float64 `json:"significance"`
}

// Accepted reports whether all three tests accept the Fisher model.
func (g *GoodnessOfFit) Accepted() bool {
	return g.Radial.Accept && g.Azimuthal.Accept && g.Normal.Accept
}

// FitFisher tests whether the class members follow a Fisher distribution
// with mean direction mean and concentration k. Any failure is returned as a
// *GoodnessOfFitError naming the stage.
func FitFisher(class int, vectors []Vector, mean Vector, k, significance float64) (*GoodnessOfFit, error) {
	fail := func(stage string, err error) (*GoodnessOfFit, error) {
		return nil, &GoodnessOfFitError{Class: class, Stage: stage, Err: err}
	}

	if len(vectors) < minGoodnessOfFitMembers {
		return fail("sample size", fmt.Errorf("need at least %d members, have %d", minGoodnessOfFitMembers, len(vectors)))
	}
	if math.IsNaN(k) || k <= 0 || k >= MaxConcentration {
		return fail("concentration", fmt.Errorf("K=%g is undefined or capped", k))
	}

	rot1, err := AlignRotation(mean, VerticalPole)
	if err != nil {
		return fail("rotation 1", err)
	}
	rot2, err := AlignRotation(mean, HorizontalPole)
	if err != nil {
		return fail("rotation 2", err)
	}

	theta1, phi1 := rotateAll(rot1, vectors)
	theta2, phi2 := rotateAll(rot2, vectors)

	g := &GoodnessOfFit{Significance: significance}
	accept := func(p float64) bool { return p >= significance }

	xa := make([]float64, len(theta1))
	for i, t := range theta1 {
		xa[i] = 1 - math.Cos(t)
	}
	d, p, err := KolmogorovSmirnov(xa, distuv.Exponential{Rate: k}.CDF)
	if err != nil {
		return fail("radial test", err)
	}
	g.Radial = TestResult{Statistic: d, PValue: p, Accept: accept(p)}

	az := make([]float64, len(phi1))
	for i, ph := range phi1 {
		az[i] = math.Mod(ph+2*math.Pi, 2*math.Pi)
	}
	v, p, err := Kuiper(az, distuv.Uniform{Min: 0, Max: 2 * math.Pi}.CDF)
	if err != nil {
		return fail("azimuthal test", err)
	}
	g.Azimuthal = TestResult{Statistic: v, PValue: p, Accept: accept(p)}

	xc := make([]float64, len(theta2))
	for i := range theta2 {
		xc[i] = phi2[i] * math.Sqrt(math.Sin(theta2[i]))
	}
	sd := stat.StdDev(xc, nil)
	if !(sd > 0) {
		return fail("normal test", errors.New("sample standard deviation is zero"))
	}
	d, p, err = KolmogorovSmirnov(xc, distuv.Normal{Mu: 0, Sigma: sd}.CDF)
	if err != nil {
		return fail("normal test", err)
	}
	g.Normal = TestResult{Statistic: d, PValue: p, Accept: accept(p)}

	return g, nil
}
