package jointset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// kdNode describes a single node in the KD-tree.
type kdNode struct {
	idxStart, idxEnd int
	isLeaf           bool
	min, max         Vector // axis-aligned bounds of the node's points
}

// KDTree is a three dimensional KD-tree over unit vectors, used for
// counting-cone queries and nearest-vector lookups. Points stay in the
// caller's order; the tree permutes an index array instead.
//
// The tree is stored as a complete binary tree in array form:
// node i has children at 2*i+1 and 2*i+2.
type KDTree struct {
	points   []Vector
	leafSize int
	idxArray []int // permutation: tree-order position → original index
	nodes    []kdNode
}

const defaultLeafSize = 16

// NewKDTree builds a KD-tree over points. leafSize controls the max points
// per leaf node; values < 1 select the default.
func NewKDTree(points []Vector, leafSize int) *KDTree {
	if leafSize < 1 {
		leafSize = defaultLeafSize
	}
	idxArray := make([]int, len(points))
	for i := range idxArray {
		idxArray[i] = i
	}
	t := &KDTree{
		points:   points,
		leafSize: leafSize,
		idxArray: idxArray,
		nodes:    make([]kdNode, kdMaxNodes(len(points), leafSize)),
	}
	if len(points) > 0 {
		t.buildNode(0, 0, len(points))
	}
	return t
}

// kdMaxNodes returns an upper bound on the number of nodes needed for a
// binary tree with n points and the given leaf size.
func kdMaxNodes(n, leafSize int) int {
	if n == 0 {
		return 1
	}
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	v := 1
	for v < leaves {
		v *= 2
		depth++
	}
	return (1 << (depth + 1)) - 1 + 2
}

// buildNode recursively builds the tree for points in idxArray[start:end].
func (t *KDTree) buildNode(nodeID, start, end int) {
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, kdNode{})
	}

	lo := Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, idx := range t.idxArray[start:end] {
		p := t.points[idx]
		lo = Vector{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = Vector{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}

	count := end - start
	if count <= t.leafSize {
		t.nodes[nodeID] = kdNode{idxStart: start, idxEnd: end, isLeaf: true, min: lo, max: hi}
		return
	}

	// Split on the axis with greatest spread, at the median.
	spread := r3.Sub(hi, lo)
	axis := 0
	if spread.Y > spread.X {
		axis = 1
	}
	if spread.Z > math.Max(spread.X, spread.Y) {
		axis = 2
	}
	sub := t.idxArray[start:end]
	sort.Slice(sub, func(i, j int) bool {
		return component(t.points[sub[i]], axis) < component(t.points[sub[j]], axis)
	})
	mid := start + count/2

	t.nodes[nodeID] = kdNode{idxStart: start, idxEnd: end, min: lo, max: hi}
	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

func component(v Vector, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

// minRdist returns the squared distance from q to the node's bounding box.
func (t *KDTree) minRdist(nodeID int, q Vector) float64 {
	n := &t.nodes[nodeID]
	var rdist float64
	for axis := 0; axis < 3; axis++ {
		v := component(q, axis)
		lo, hi := component(n.min, axis), component(n.max, axis)
		var d float64
		switch {
		case v < lo:
			d = lo - v
		case v > hi:
			d = v - hi
		}
		rdist += d * d
	}
	return rdist
}

// maxRdist returns the squared distance from q to the farthest box corner.
func (t *KDTree) maxRdist(nodeID int, q Vector) float64 {
	n := &t.nodes[nodeID]
	var rdist float64
	for axis := 0; axis < 3; axis++ {
		v := component(q, axis)
		d := math.Max(math.Abs(v-component(n.min, axis)), math.Abs(v-component(n.max, axis)))
		rdist += d * d
	}
	return rdist
}

// Len returns the number of points in the tree.
func (t *KDTree) Len() int { return len(t.points) }

// CountWithin returns how many points lie within Euclidean distance radius
// of q (inclusive).
func (t *KDTree) CountWithin(q Vector, radius float64) int {
	if len(t.points) == 0 {
		return 0
	}
	return t.countWithin(0, q, radius*radius)
}

func (t *KDTree) countWithin(nodeID int, q Vector, r2 float64) int {
	if t.minRdist(nodeID, q) > r2 {
		return 0
	}
	n := &t.nodes[nodeID]
	if t.maxRdist(nodeID, q) <= r2 {
		return n.idxEnd - n.idxStart
	}
	if n.isLeaf {
		count := 0
		for _, idx := range t.idxArray[n.idxStart:n.idxEnd] {
			if r3.Norm2(r3.Sub(t.points[idx], q)) <= r2 {
				count++
			}
		}
		return count
	}
	return t.countWithin(2*nodeID+1, q, r2) + t.countWithin(2*nodeID+2, q, r2)
}

// Nearest returns the index of the point closest to q and its Euclidean
// distance. Equidistant points resolve to the lowest index. It returns -1
// for an empty tree.
func (t *KDTree) Nearest(q Vector) (int, float64) {
	if len(t.points) == 0 {
		return -1, math.Inf(1)
	}
	best, bestR := -1, math.Inf(1)
	t.nearest(0, q, &best, &bestR)
	return best, math.Sqrt(bestR)
}

func (t *KDTree) nearest(nodeID int, q Vector, best *int, bestR *float64) {
	// Equal bounds may still hide a lower-index tie, so prune strictly.
	if t.minRdist(nodeID, q) > *bestR {
		return
	}
	n := &t.nodes[nodeID]
	if n.isLeaf {
		for _, idx := range t.idxArray[n.idxStart:n.idxEnd] {
			d := r3.Norm2(r3.Sub(t.points[idx], q))
			if d < *bestR || (d == *bestR && idx < *best) {
				*best, *bestR = idx, d
			}
		}
		return
	}

	// Visit the closer child first for better pruning.
	left, right := 2*nodeID+1, 2*nodeID+2
	if t.minRdist(right, q) < t.minRdist(left, q) {
		left, right = right, left
	}
	t.nearest(left, q, best, bestR)
	t.nearest(right, q, best, bestR)
}
