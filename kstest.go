package jointset

import (
	"errors"
	"math"
	"slices"
)

var errEmptySample = errors.New("empty sample")

// KolmogorovSmirnov runs a one-sample Kolmogorov–Smirnov test of x against
// the continuous distribution with the given CDF. It returns the statistic
// D = sup|F_n - F| and its asymptotic p-value with Stephens' small-sample
// correction.
func KolmogorovSmirnov(x []float64, cdf func(float64) float64) (d, p float64, err error) {
	n := len(x)
	if n == 0 {
		return 0, 0, errEmptySample
	}
	sorted := slices.Clone(x)
	slices.Sort(sorted)

	nf := float64(n)
	for i, v := range sorted {
		f := cdf(v)
		if math.IsNaN(f) {
			return 0, 0, errors.New("CDF returned NaN")
		}
		d = max(d, float64(i+1)/nf-f, f-float64(i)/nf)
	}

	sn := math.Sqrt(nf)
	return d, kolmogorovQ((sn + 0.12 + 0.11/sn) * d), nil
}

// Kuiper runs a one-sample Kuiper test of x against the continuous
// distribution with the given CDF. The statistic V = D+ + D- does not depend
// on where a circular distribution's origin is placed.
func Kuiper(x []float64, cdf func(float64) float64) (v, p float64, err error) {
	n := len(x)
	if n == 0 {
		return 0, 0, errEmptySample
	}
	sorted := slices.Clone(x)
	slices.Sort(sorted)

	nf := float64(n)
	var dPlus, dMinus float64
	for i, s := range sorted {
		f := cdf(s)
		if math.IsNaN(f) {
			return 0, 0, errors.New("CDF returned NaN")
		}
		dPlus = max(dPlus, float64(i+1)/nf-f)
		dMinus = max(dMinus, f-float64(i)/nf)
	}
	v = dPlus + dMinus

	sn := math.Sqrt(nf)
	return v, kuiperQ((sn + 0.155 + 0.24/sn) * v), nil
}

// Series convergence limits for the tail probabilities.
const (
	seriesRelTerm = 0.001
	seriesRelSum  = 1e-8
	seriesTerms   = 100
)

// kolmogorovQ is the Kolmogorov distribution tail
// Q(λ) = 2 Σ (-1)^(j-1) exp(-2 j² λ²).
func kolmogorovQ(lambda float64) float64 {
	a2 := -2 * lambda * lambda
	fac, sum, prev := 2.0, 0.0, 0.0
	for j := 1; j <= seriesTerms; j++ {
		term := fac * math.Exp(a2*float64(j*j))
		sum += term
		if math.Abs(term) <= seriesRelTerm*prev || math.Abs(term) <= seriesRelSum*sum {
			return clamp01(sum)
		}
		fac = -fac
		prev = math.Abs(term)
	}
	// No convergence means λ is tiny: the fit is as good as it gets.
	return 1
}

// kuiperQ is the Kuiper distribution tail
// Q(λ) = 2 Σ (4 j² λ² - 1) exp(-2 j² λ²).
func kuiperQ(lambda float64) float64 {
	if lambda < 0.4 {
		return 1
	}
	l2 := lambda * lambda
	sum, prev := 0.0, 0.0
	for j := 1; j <= seriesTerms; j++ {
		j2 := float64(j * j)
		term := 2 * (4*j2*l2 - 1) * math.Exp(-2*j2*l2)
		sum += term
		// The first term vanishes at λ = 0.5, so it never ends the series.
		if j > 1 && (math.Abs(term) <= seriesRelTerm*prev || math.Abs(term) <= seriesRelSum*sum) {
			return clamp01(sum)
		}
		prev = math.Abs(term)
	}
	return 1
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
