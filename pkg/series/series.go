// Package series evaluates partial sums of the Gregory-Leibniz series
// Σ (-1)^i / (2i+1), which converges to π/4.
package series

// Sum returns the partial sum of the series over the half-open index
// range [start, end), accumulated in index order as plain float64.
// Callers must pass 0 <= start <= end.
func Sum(start, end int64) float64 {
	var sum float64
	for i := start; i < end; i++ {
		term := 1.0 / float64(2*i+1)
		if i&1 == 1 {
			sum -= term
		} else {
			sum += term
		}
	}
	return sum
}
