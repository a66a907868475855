package jointset

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// Clustering is the output of medoid clustering over a dual set.
type Clustering struct {
	// Labels assigns each vector a class label in 1..len(Medoids).
	Labels []int `json:"labels"`
	// Medoids[c-1] is the vector index representing class c.
	Medoids []int `json:"medoids"`
	// Iterations counts alternate-phase passes plus PAM swaps.
	Iterations int  `json:"iterations"`
	Converged  bool `json:"converged"`
	// Cost is the summed distance of every vector to its medoid.
	Cost float64 `json:"cost"`
}

// ManualMedoids turns user seeds into 2k initial medoids: the k seeds
// followed by their k reflections, each snapped to the nearest data vector.
// Equidistant vectors resolve to the first one. With no seeds a single seed
// at plunge 0, trend 0 is used.
func ManualMedoids(vectors []Vector, seeds []Seed) []int {
	if len(seeds) == 0 {
		seeds = []Seed{{Plunge: 0, Trend: 0}}
	}
	tree := NewKDTree(vectors, 0)
	k := len(seeds)
	medoids := make([]int, 2*k)
	for i, s := range seeds {
		v := s.Vector()
		medoids[i], _ = tree.Nearest(v)
		medoids[i+k], _ = tree.Nearest(Vector{X: -v.X, Y: -v.Y, Z: -v.Z})
	}
	return medoids
}

// AutoMedoids picks 2k initial medoids from the dual set with a symmetric,
// greedy k-means++ heuristic: each chosen vector brings its reflection
// along, and every step draws a few candidates with probability
// proportional to their squared chord to the nearest chosen vector, keeping
// the candidate that lowers the total the most. The first k entries are the
// drawn vectors, the last k their reflections. k is clamped to [1, ds.N].
func AutoMedoids(ds *DualSet, k int, rng *rand.Rand) []int {
	k = min(max(k, 1), ds.N)
	n := len(ds.Vectors)
	medoids := make([]int, 0, 2*k)
	if n == 0 {
		return medoids
	}

	chosen := make(map[int]bool, 2*k)
	d2 := make([]float64, n)
	for i := range d2 {
		d2[i] = math.Inf(1)
	}
	// potential returns the summed squared chord after adding m and its
	// reflection, writing the new per-vector minimum into dst if non-nil.
	potential := func(m int, dst []float64) float64 {
		a, b := ds.Vectors[m], ds.Vectors[ds.Antipode(m)]
		var total float64
		for i, v := range ds.Vectors {
			d := min(d2[i], (ChordMetric{}).ReducedDistance(v, a), (ChordMetric{}).ReducedDistance(v, b))
			if dst != nil {
				dst[i] = d
			}
			total += d
		}
		return total
	}
	add := func(m int) {
		medoids = append(medoids, m)
		chosen[m] = true
		chosen[ds.Antipode(m)] = true
		potential(m, d2)
	}

	add(rng.IntN(n))

	trials := 2 + int(math.Log(float64(k)))
	for len(medoids) < k {
		var total float64
		for _, d := range d2 {
			total += d
		}

		next := -1
		if total > 0 {
			bestPot := math.Inf(1)
			for t := 0; t < trials; t++ {
				c := sampleWeighted(d2, total, rng)
				if pot := potential(c, nil); pot < bestPot {
					next, bestPot = c, pot
				}
			}
		}
		if next < 0 {
			// Every vector coincides with a chosen one; fall back to the
			// first unused index and let clustering report the duplicate.
			for i := 0; i < n; i++ {
				if !chosen[i] {
					next = i
					break
				}
			}
		}
		if next < 0 {
			next = medoids[len(medoids)-1]
		}
		add(next)
	}

	for i := 0; i < k; i++ {
		medoids = append(medoids, ds.Antipode(medoids[i]))
	}
	return medoids
}

// sampleWeighted draws an index with probability weights[i]/total.
func sampleWeighted(weights []float64, total float64, rng *rand.Rand) int {
	target := rng.Float64() * total
	var acc float64
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		last = i
		if acc >= target {
			return i
		}
	}
	return last
}

// ClusterMedoids refines the initial medoids and labels every vector.
// Medoids are vector indices. The returned issues describe degeneracies that
// were guarded against rather than failed on.
func ClusterMedoids(vectors []Vector, medoids []int, cfg Config) (*Clustering, []Issue, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, nil, err
	}
	if len(vectors) == 0 {
		return &Clustering{Converged: true}, nil, nil
	}
	if len(medoids) == 0 {
		return nil, nil, fmt.Errorf("jointset: at least one initial medoid is required")
	}
	for _, m := range medoids {
		if m < 0 || m >= len(vectors) {
			return nil, nil, fmt.Errorf("jointset: medoid index %d out of range [0, %d)", m, len(vectors))
		}
	}

	meds := make([]int, len(medoids))
	copy(meds, medoids)

	var issues []Issue
	for i := range meds {
		for j := 0; j < i; j++ {
			if vectors[meds[i]] == vectors[meds[j]] {
				issues = append(issues, Issue{
					Kind:   IssueClusteringDegeneracy,
					Class:  i + 1,
					Detail: fmt.Sprintf("initial medoid duplicates class %d; fewer distinct directions than classes", j+1),
				})
				break
			}
		}
	}

	c := &Clustering{}
	assign := assignNearest(vectors, meds, cfg.Metric, cfg.Workers)
	for c.Iterations < cfg.MaxIterations {
		c.Iterations++
		changed := updateMedoids(vectors, assign, meds, cfg.Metric, cfg.Workers)
		next := assignNearest(vectors, meds, cfg.Metric, cfg.Workers)
		if !changed && slices.Equal(assign, next) {
			c.Converged = true
			assign = next
			break
		}
		assign = next
	}

	if cfg.Algorithm == AlgorithmPAM {
		swaps := pamSwap(vectors, meds, cfg)
		c.Iterations += swaps
		assign = assignNearest(vectors, meds, cfg.Metric, cfg.Workers)
	}

	c.Medoids = meds
	c.Labels = make([]int, len(vectors))
	sizes := make([]int, len(meds))
	for i, a := range assign {
		c.Labels[i] = a + 1
		sizes[a]++
		c.Cost += cfg.Metric.Distance(vectors[i], vectors[meds[a]])
	}
	for m, size := range sizes {
		if size == 0 {
			issues = append(issues, Issue{
				Kind:   IssueClusteringDegeneracy,
				Class:  m + 1,
				Detail: "class has no members",
			})
		}
	}
	return c, issues, nil
}

// updateMedoids moves every medoid to the member of its cluster with the
// smallest summed distance to the other members. The current medoid is kept
// on ties. It reports whether any medoid moved.
func updateMedoids(vectors []Vector, assign, meds []int, metric DistanceMetric, workers int) bool {
	members := make([][]int, len(meds))
	for i, a := range assign {
		members[a] = append(members[a], i)
	}

	changed := false
	for c, mem := range members {
		if len(mem) < 2 {
			continue
		}
		cost := make([]float64, len(mem))
		parallelRows(len(mem), workers, func(start, end int) {
			for j := start; j < end; j++ {
				var sum float64
				for _, i := range mem {
					sum += metric.Distance(vectors[i], vectors[mem[j]])
				}
				cost[j] = sum
			}
		})

		best, bestCost := -1, math.Inf(1)
		for j, m := range mem {
			if m == meds[c] {
				best, bestCost = m, cost[j]
				break
			}
		}
		for j, m := range mem {
			if cost[j] < bestCost {
				best, bestCost = m, cost[j]
			}
		}
		if best >= 0 && best != meds[c] {
			meds[c] = best
			changed = true
		}
	}
	return changed
}

// medoidTwins pairs every medoid position with the position holding its
// reflection when vectors form a dual set (second half the negation of the
// first) and the medoids are closed under reflection. It returns nil
// otherwise.
func medoidTwins(vectors []Vector, meds []int) []int {
	n := len(vectors)
	if n == 0 || n%2 != 0 || len(meds)%2 != 0 {
		return nil
	}
	half := n / 2
	for i := 0; i < half; i++ {
		if vectors[i+half] != r3.Scale(-1, vectors[i]) {
			return nil
		}
	}

	twin := make([]int, len(meds))
	for i := range twin {
		twin[i] = -1
	}
	for p, m := range meds {
		if twin[p] >= 0 {
			continue
		}
		anti := (m + half) % n
		for q := p + 1; q < len(meds); q++ {
			if twin[q] < 0 && meds[q] == anti {
				twin[p], twin[q] = q, p
				break
			}
		}
		if twin[p] < 0 {
			return nil
		}
	}
	return twin
}

// pamNearest is the number of closest medoids tracked per vector: enough to
// find the nearest survivor when a medoid and its twin leave together.
const pamNearest = 3

// pamSwap performs best-improvement PAM swaps between medoids and
// non-medoids until no swap lowers the total cost or MaxIterations swaps
// have been made. On a dual set a medoid and its reflection are swapped
// together for a candidate and its reflection, so every class keeps its
// antipodal twin. It returns the number of swaps applied.
func pamSwap(vectors []Vector, meds []int, cfg Config) int {
	n := len(vectors)
	dist := ComputePairwiseDistancesParallel(vectors, cfg.Metric, cfg.Workers)

	twin := medoidTwins(vectors, meds)
	partner := func(p int) int {
		if twin == nil {
			return p
		}
		return twin[p]
	}
	reflect := func(o int) int {
		if twin == nil {
			return o
		}
		return (o + n/2) % n
	}

	isMedoid := make([]bool, n)
	for _, m := range meds {
		isMedoid[m] = true
	}

	near := make([][pamNearest]int, n)
	nd := make([][pamNearest]float64, n)
	refresh := func() {
		for i := 0; i < n; i++ {
			for j := range pamNearest {
				near[i][j], nd[i][j] = -1, math.Inf(1)
			}
			for p, m := range meds {
				d := dist[i*n+m]
				for j := range pamNearest {
					if d < nd[i][j] {
						copy(near[i][j+1:], near[i][j:pamNearest-1])
						copy(nd[i][j+1:], nd[i][j:pamNearest-1])
						near[i][j], nd[i][j] = p, d
						break
					}
				}
			}
		}
	}

	// Deltas below this are rounding noise and would cycle forever.
	const minGain = 1e-12

	swaps := 0
	for swaps < cfg.MaxIterations {
		refresh()
		bestDelta := make([]float64, n)
		bestPos := make([]int, n)
		parallelRows(n, cfg.Workers, func(start, end int) {
			for o := start; o < end; o++ {
				bestDelta[o], bestPos[o] = 0, -1
				ro := reflect(o)
				if isMedoid[o] || isMedoid[ro] {
					continue
				}
				for p := range meds {
					q := partner(p)
					if q < p {
						continue
					}
					var delta float64
					for i := 0; i < n; i++ {
						rest := math.Inf(1)
						for j := range pamNearest {
							if near[i][j] != p && near[i][j] != q {
								rest = nd[i][j]
								break
							}
						}
						d := min(rest, dist[i*n+o], dist[i*n+ro])
						delta += d - nd[i][0]
					}
					if delta < bestDelta[o] {
						bestDelta[o], bestPos[o] = delta, p
					}
				}
			}
		})

		bestO, delta := -1, -minGain
		for o := 0; o < n; o++ {
			if bestPos[o] >= 0 && bestDelta[o] < delta {
				bestO, delta = o, bestDelta[o]
			}
		}
		if bestO < 0 {
			break
		}
		p, q := bestPos[bestO], partner(bestPos[bestO])
		meds[p] = bestO
		if q != p {
			meds[q] = reflect(bestO)
		}
		clear(isMedoid)
		for _, m := range meds {
			isMedoid[m] = true
		}
		swaps++
	}
	return swaps
}
