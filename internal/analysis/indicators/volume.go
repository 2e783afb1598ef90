package indicators

import (
	"nepse-scanner/internal/models"
)

// OBV calculates On-Balance Volume.
type OBV struct{}

// NewOBV creates a new OBV indicator.
func NewOBV() *OBV {
	return &OBV{}
}

func (o *OBV) Name() string {
	return "OBV"
}

func (o *OBV) Period() int {
	return 1
}

func (o *OBV) Calculate(series models.SymbolSeries) ([]float64, error) {
	if len(series) == 0 {
		return nil, ErrInsufficientData
	}

	n := len(series)
	result := make([]float64, n)

	for i := 1; i < n; i++ {
		if series[i].Close > series[i-1].Close {
			result[i] = result[i-1] + float64(series[i].Volume)
		} else if series[i].Close < series[i-1].Close {
			result[i] = result[i-1] - float64(series[i].Volume)
		} else {
			result[i] = result[i-1]
		}
	}

	return result, nil
}

// Latest returns the cumulative OBV for the series, starting from zero.
func (o *OBV) Latest(series models.SymbolSeries) (float64, error) {
	values, err := o.Calculate(series)
	if err != nil {
		return 0, err
	}
	return values[len(values)-1], nil
}

// MeanVolume returns the average volume over the series.
func MeanVolume(series models.SymbolSeries) float64 {
	if len(series) == 0 {
		return 0
	}
	var total float64
	for _, r := range series {
		total += float64(r.Volume)
	}
	return total / float64(len(series))
}
