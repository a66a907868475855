package jointset

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// CountingConeDeg is the half-angle of the counting cone in degrees. A cap of
// this size covers 1% of a hemisphere (1 - cos α = 0.01).
const CountingConeDeg = 8.1096144559941786958201832872484

const (
	// GridRings is the number of concentric rings around the grid pole.
	GridRings = 10
	// GridNodes is the total node count: the pole plus 6i nodes on ring i.
	GridNodes = 1 + 3*GridRings*(GridRings+1)
)

// DensityNode is one query direction of the contouring grid.
type DensityNode struct {
	X, Y   float64 // equal-area projection coordinates, unit primitive
	Trend  float64
	Plunge float64
	Vector Vector
}

var grid = buildGrid()

// buildGrid lays out the pole and rings i = 1..GridRings, ring i holding 6i
// nodes evenly spaced at projection radius i/GridRings.
func buildGrid() []DensityNode {
	nodes := make([]DensityNode, 0, GridNodes)
	for ring := 0; ring <= GridRings; ring++ {
		count := 6 * ring
		if ring == 0 {
			count = 1
		}
		r := float64(ring) / GridRings
		for j := 0; j < count; j++ {
			phi := 2 * math.Pi * float64(j) / float64(count)
			x, y := r*math.Sin(phi), r*math.Cos(phi)
			// The projection inverse cannot fail inside the primitive.
			s, _ := SeedFromProjection(x, y)
			nodes = append(nodes, DensityNode{
				X:      x,
				Y:      y,
				Trend:  s.Trend,
				Plunge: s.Plunge,
				Vector: s.Vector(),
			})
		}
	}
	return nodes
}

// Grid returns the fixed contouring grid. The slice is shared and must not
// be modified.
func Grid() []DensityNode { return grid }

// DensityResult holds per-node concentrations for one vector set.
type DensityResult struct {
	// Values[i] is the percentage of vectors whose axis falls inside the
	// counting cone of Grid()[i], in [0, 100].
	Values []float64 `json:"values"`
	// Max is the maximum concentration per unit area.
	Max     float64 `json:"max"`
	MaxNode int     `json:"max_node"`
	Count   int     `json:"count"`
}

// Density computes the counting-cone concentration of vectors at every grid
// node. Vectors are treated as axes: a vector counts toward a node when it or
// its reflection lies within the cone, so each vector counts at most once per
// node. Nodes are split across workers.
func Density(vectors []Vector, workers int) DensityResult {
	res := DensityResult{Values: make([]float64, GridNodes), Count: len(vectors)}
	if len(vectors) == 0 {
		return res
	}

	tree := NewKDTree(vectors, 0)
	radius := AngleToChord(CountingConeDeg * deg2rad)
	scale := 100 / float64(len(vectors))

	parallelRows(GridNodes, workers, func(start, end int) {
		for i := start; i < end; i++ {
			q := grid[i].Vector
			c := tree.CountWithin(q, radius) + tree.CountWithin(r3.Scale(-1, q), radius)
			res.Values[i] = math.Min(100, float64(c)*scale)
		}
	})

	res.MaxNode = floats.MaxIdx(res.Values)
	res.Max = res.Values[res.MaxNode]
	return res
}

// DensityAt returns the counting-cone concentration of vectors around an
// arbitrary direction, using the same axial counting as Density.
func DensityAt(dir Vector, vectors []Vector) float64 {
	if len(vectors) == 0 {
		return 0
	}
	cosCone := math.Cos(CountingConeDeg * deg2rad)
	u := r3.Unit(dir)
	c := 0
	for _, v := range vectors {
		if math.Abs(r3.Dot(u, v)) >= cosCone {
			c++
		}
	}
	return 100 * float64(c) / float64(len(vectors))
}
