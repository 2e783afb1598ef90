package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"nepse-scanner/internal/models"
)

// recordSliceGen generates a series of valid daily records with realistic
// OHLCV values and ascending dates.
func recordSliceGen(minLen, maxLen int) gopter.Gen {
	return gen.SliceOfN(maxLen, gen.Float64Range(100.0, 1000.0)).Map(func(closes []float64) models.SymbolSeries {
		if len(closes) < minLen {
			for len(closes) < minLen {
				closes = append(closes, closes[len(closes)-1])
			}
		}
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		series := make(models.SymbolSeries, len(closes))
		for i, c := range closes {
			if c <= 0 {
				c = 100.0
			}
			series[i] = models.DailyRecord{
				Symbol: "PROP",
				Date:   base.AddDate(0, 0, i),
				Open:   c,
				High:   c + 2,
				Low:    c - 2,
				Close:  c,
				Volume: 10000,
			}
		}
		return series
	})
}

func TestProperty_RSIWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("RSI values are within [0, 100]", prop.ForAll(
		func(series models.SymbolSeries) bool {
			rsi := NewRSI(14)
			values, err := rsi.Calculate(series)
			if err != nil {
				// Insufficient data is acceptable
				return true
			}
			for i := rsi.Period(); i < len(values); i++ {
				if values[i] < 0 || values[i] > 100 {
					return false
				}
			}
			return true
		},
		recordSliceGen(20, 100),
	))

	properties.TestingRun(t)
}

func TestProperty_RegressionR2Bounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("R2 never exceeds 1", prop.ForAll(
		func(ys []float64) bool {
			xs := make([]float64, len(ys))
			for i := range xs {
				xs[i] = float64(i)
			}
			reg, err := FitLine(xs, ys)
			if err != nil {
				return true
			}
			return reg.R2 <= 1+1e-9 && !math.IsNaN(reg.R2)
		},
		gen.SliceOfN(30, gen.Float64Range(1.0, 5000.0)),
	))

	properties.TestingRun(t)
}

func TestProperty_LocalMinimaAreMinimal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("no neighbor within the window is lower than a reported minimum", prop.ForAll(
		func(values []float64) bool {
			const window = 5
			for _, idx := range LocalMinima(values, window) {
				lo := idx - window
				if lo < 0 {
					lo = 0
				}
				hi := idx + window
				if hi > len(values)-1 {
					hi = len(values) - 1
				}
				for j := lo; j <= hi; j++ {
					if values[j] < values[idx] {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOfN(60, gen.Float64Range(10.0, 2000.0)),
	))

	properties.TestingRun(t)
}

func TestProperty_GlobalMinimumAlwaysDetected(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("the global minimum of a series is always a local minimum", prop.ForAll(
		func(values []float64) bool {
			minIdx := 0
			for i, v := range values {
				if v < values[minIdx] {
					minIdx = i
				}
			}
			for _, idx := range LocalMinima(values, 5) {
				if idx == minIdx {
					return true
				}
			}
			return false
		},
		gen.SliceOfN(40, gen.Float64Range(10.0, 2000.0)),
	))

	properties.TestingRun(t)
}
