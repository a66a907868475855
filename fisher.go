package jointset

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// MaxConcentration caps K when n - R vanishes (all members parallel).
	MaxConcentration = 1e10

	// smallSampleLimit is the member count below which K uses the
	// small-sample correction.
	smallSampleLimit = 16

	// confidenceComplement is 1/p for the 99% confidence cone (p = 0.01).
	confidenceComplement = 100

	// degenerateSpread is the n - R below which members are treated as
	// exactly parallel.
	degenerateSpread = 1e-9
)

// ErrUndefinedMean is returned when the resultant of a class vanishes, so
// the class has no mean direction.
var ErrUndefinedMean = errors.New("jointset: resultant length is zero; mean direction undefined")

// FisherSummary holds the Fisher spherical statistics of one class.
type FisherSummary struct {
	// Mean is the unit resultant (sumLR, sumMR, sumNR).
	Mean Vector `json:"mean"`
	// R is the resultant length of the member vectors.
	R float64 `json:"r"`

	MeanTrend        float64 `json:"mean_trend"`
	MeanPlunge       float64 `json:"mean_plunge"`
	MeanDipDirection float64 `json:"mean_dip_direction"`
	MeanDip          float64 `json:"mean_dip"`

	// K is the concentration parameter; larger means tighter. Capped at
	// MaxConcentration when the members are parallel.
	K float64 `json:"k"`
	// ConfidenceCone is the 99% confidence cone half-angle in degrees.
	ConfidenceCone float64 `json:"confidence_cone"`
	// Aperture is the angular standard deviation (spherical aperture at
	// 68.26% probability) in degrees.
	Aperture float64 `json:"aperture"`

	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
	// Capped reports that K hit MaxConcentration.
	Capped bool `json:"capped"`
}

// Fisher computes Fisher statistics for a class of unit vectors. count is
// the number of distinct records the class represents and total the size of
// the non-duplicated dataset; both only feed Count and Percent. class tags
// the returned issues.
//
// A vanishing resultant returns ErrUndefinedMean. Degenerate but usable
// classes produce issues and sentinel values instead of NaN or Inf.
func Fisher(vectors []Vector, count, total, class int) (FisherSummary, []Issue, error) {
	n := len(vectors)
	if n == 0 {
		return FisherSummary{}, nil, fmt.Errorf("jointset: class %d has no members", class)
	}

	var sum Vector
	for _, v := range vectors {
		sum = r3.Add(sum, v)
	}
	R := r3.Norm(sum)
	if R <= degenerateSpread {
		return FisherSummary{}, nil, fmt.Errorf("class %d: %w", class, ErrUndefinedMean)
	}

	fs := FisherSummary{
		Mean:  r3.Scale(1/R, sum),
		R:     R,
		Count: count,
	}
	if total > 0 {
		fs.Percent = 100 * float64(count) / float64(total)
	}
	fs.MeanTrend, fs.MeanPlunge = TrendPlunge(fs.Mean)
	fs.MeanDipDirection, fs.MeanDip = PoleToPlane(fs.MeanTrend, fs.MeanPlunge)

	var issues []Issue
	nf := float64(n)
	spread := nf - R
	switch {
	case spread <= degenerateSpread:
		fs.K = MaxConcentration
		fs.Capped = true
		issues = append(issues, Issue{
			Kind:   IssueDegenerateClass,
			Class:  class,
			Detail: fmt.Sprintf("members are parallel (n-R=%.3g); K capped at %g", spread, MaxConcentration),
		})
	case n >= smallSampleLimit:
		fs.K = (nf - 1) / spread
	default:
		fs.K = nf / spread * (1 - 1/nf) * (1 - 1/nf)
	}
	if fs.K > MaxConcentration {
		fs.K = MaxConcentration
		fs.Capped = true
	}

	if n < 2 {
		fs.ConfidenceCone = 180
		issues = append(issues, Issue{
			Kind:   IssueDegenerateClass,
			Class:  class,
			Detail: "fewer than 2 members; confidence cone undefined",
		})
	} else {
		cosA := 1 - math.Max(spread, 0)/R*(math.Pow(confidenceComplement, 1/(nf-1))-1)
		if cosA < -1 {
			issues = append(issues, Issue{
				Kind:   IssueDegenerateClass,
				Class:  class,
				Detail: "dispersion too large for a 99% confidence cone; clamped to 180°",
			})
			cosA = -1
		}
		fs.ConfidenceCone = math.Acos(math.Min(cosA, 1)) * rad2deg
	}

	if fs.K > 0 {
		s := math.Sqrt(2 * (1 - 1/nf) / fs.K)
		fs.Aperture = math.Asin(math.Min(s, 1)) * rad2deg
	}
	return fs, issues, nil
}

// horizontalTolerance treats means this close to horizontal as horizontal.
const horizontalTolerance = 1e-12

// UpperHemisphere reports whether a class mean points upward (dip > 90° in
// dip/dip-direction form), in which case its antipodal class carries the
// same features and the class is pruned. Exactly horizontal means are
// split deterministically so that one of each antipodal pair survives.
func UpperHemisphere(mean Vector) bool {
	switch {
	case mean.Z > horizontalTolerance:
		return true
	case mean.Z < -horizontalTolerance:
		return false
	case mean.X < -horizontalTolerance:
		return true
	case mean.X > horizontalTolerance:
		return false
	}
	return mean.Y < 0
}
