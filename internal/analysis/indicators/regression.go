package indicators

// Regression holds the result of an ordinary least squares fit.
type Regression struct {
	Slope     float64
	Intercept float64
	R2        float64
}

// FitLine fits y = slope*x + intercept over the given points using
// ordinary least squares and computes the coefficient of determination.
// At least two points are required.
func FitLine(xs, ys []float64) (Regression, error) {
	n := len(xs)
	if n < 2 || len(ys) != n {
		return Regression{}, ErrInsufficientData
	}

	var sumX, sumY, sumXY, sumXX float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return Regression{}, ErrInsufficientData
	}

	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn

	meanY := sumY / fn
	var ssRes, ssTot float64
	for i := 0; i < n; i++ {
		predicted := slope*xs[i] + intercept
		ssRes += (ys[i] - predicted) * (ys[i] - predicted)
		ssTot += (ys[i] - meanY) * (ys[i] - meanY)
	}

	// A flat series fitted exactly has no variance to explain
	r2 := 1.0
	if ssTot != 0 {
		r2 = 1 - ssRes/ssTot
	}

	return Regression{
		Slope:     slope,
		Intercept: intercept,
		R2:        r2,
	}, nil
}

// ValueAt evaluates the fitted line at x.
func (r Regression) ValueAt(x float64) float64 {
	return r.Slope*x + r.Intercept
}
