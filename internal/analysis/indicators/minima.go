package indicators

// LocalMinima returns the indices of local minima in values. A point is a
// local minimum iff no neighbor within +/- window positions has a strictly
// lower value. Window edges are clamped so series boundaries still yield
// minima.
func LocalMinima(values []float64, window int) []int {
	if window <= 0 || len(values) == 0 {
		return nil
	}

	var minima []int
	for i := range values {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window
		if hi > len(values)-1 {
			hi = len(values) - 1
		}

		isMin := true
		for j := lo; j <= hi; j++ {
			if values[j] < values[i] {
				isMin = false
				break
			}
		}
		if isMin {
			minima = append(minima, i)
		}
	}

	return minima
}
