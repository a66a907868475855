package jointset

import "sync"

// parallelRows splits [0, n) into contiguous row ranges and runs fn on each
// range in its own goroutine. fn must only write to output slots inside its
// own range, so no synchronization is needed beyond the final wait. With
// workers <= 1 fn runs once on the whole range in the calling goroutine.
func parallelRows(n, workers int, fn func(start, end int)) {
	if workers <= 1 || n <= 1 {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	rowsPerWorker := (n + workers - 1) / workers

	for w := 0; w < workers; w++ {
		startRow := w * rowsPerWorker
		endRow := startRow + rowsPerWorker
		if endRow > n {
			endRow = n
		}
		if startRow >= n {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(startRow, endRow)
	}

	wg.Wait()
}

// ComputePairwiseDistancesParallel computes the full n×n distance matrix
// using multiple goroutines. Each worker owns a contiguous block of source
// rows and fills dist(i,j) and dist(j,i) for j > i, so writes never overlap.
//
// The result is bitwise identical to ComputePairwiseDistances.
func ComputePairwiseDistancesParallel(vectors []Vector, metric DistanceMetric, workers int) []float64 {
	n := len(vectors)
	if workers <= 1 || n <= 1 {
		return ComputePairwiseDistances(vectors, metric)
	}

	result := make([]float64, n*n)
	parallelRows(n, workers, func(start, end int) {
		for i := start; i < end; i++ {
			for j := i + 1; j < n; j++ {
				d := metric.Distance(vectors[i], vectors[j])
				result[i*n+j] = d
				result[j*n+i] = d
			}
		}
	})
	return result
}

// assignNearest labels every vector with the index (into medoids) of its
// nearest medoid under metric's reduced distance. Ties go to the earlier
// medoid. The returned slice holds positions in medoids, not vector indices.
func assignNearest(vectors []Vector, medoids []int, metric DistanceMetric, workers int) []int {
	assign := make([]int, len(vectors))
	parallelRows(len(vectors), workers, func(start, end int) {
		for i := start; i < end; i++ {
			best, bestD := 0, metric.ReducedDistance(vectors[i], vectors[medoids[0]])
			for m := 1; m < len(medoids); m++ {
				if d := metric.ReducedDistance(vectors[i], vectors[medoids[m]]); d < bestD {
					best, bestD = m, d
				}
			}
			assign[i] = best
		}
	})
	return assign
}
