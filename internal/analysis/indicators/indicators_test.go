package indicators

import (
	"math"
	"testing"
	"time"

	"nepse-scanner/internal/models"
)

func series(closes []float64, volumes []int64) models.SymbolSeries {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(models.SymbolSeries, len(closes))
	for i, c := range closes {
		var v int64 = 10000
		if volumes != nil {
			v = volumes[i]
		}
		s[i] = models.DailyRecord{
			Symbol: "TEST",
			Date:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: v,
		}
	}
	return s
}

func TestRSIAllGains(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)*2
	}

	rsi := NewRSI(14)
	value, err := rsi.Latest(series(closes, nil))
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if value != 100 {
		t.Errorf("expected RSI 100 for monotonically rising closes, got %.2f", value)
	}
}

func TestRSIAllLosses(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 200 - float64(i)*2
	}

	rsi := NewRSI(14)
	value, err := rsi.Latest(series(closes, nil))
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if value != 0 {
		t.Errorf("expected RSI 0 for monotonically falling closes, got %.2f", value)
	}
}

func TestRSIInsufficientData(t *testing.T) {
	rsi := NewRSI(14)
	if _, err := rsi.Calculate(series([]float64{100, 101, 102}, nil)); err == nil {
		t.Error("expected error for series shorter than period+1")
	}
}

func TestFitLineExact(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{10, 12, 14, 16, 18}

	reg, err := FitLine(xs, ys)
	if err != nil {
		t.Fatalf("FitLine failed: %v", err)
	}
	if math.Abs(reg.Slope-2) > 1e-9 {
		t.Errorf("expected slope 2, got %v", reg.Slope)
	}
	if math.Abs(reg.Intercept-10) > 1e-9 {
		t.Errorf("expected intercept 10, got %v", reg.Intercept)
	}
	if math.Abs(reg.R2-1) > 1e-9 {
		t.Errorf("expected R2 1 for exact line, got %v", reg.R2)
	}
	if got := reg.ValueAt(10); math.Abs(got-30) > 1e-9 {
		t.Errorf("expected ValueAt(10) = 30, got %v", got)
	}
}

func TestFitLineFlat(t *testing.T) {
	xs := []float64{0, 1, 2, 3}
	ys := []float64{50, 50, 50, 50}

	reg, err := FitLine(xs, ys)
	if err != nil {
		t.Fatalf("FitLine failed: %v", err)
	}
	if reg.Slope != 0 {
		t.Errorf("expected slope 0 for flat data, got %v", reg.Slope)
	}
	if reg.R2 != 1 {
		t.Errorf("expected R2 1 for flat data, got %v", reg.R2)
	}
}

func TestFitLineDegenerate(t *testing.T) {
	// All xs identical, slope undefined
	if _, err := FitLine([]float64{2, 2, 2}, []float64{1, 2, 3}); err == nil {
		t.Error("expected error for identical x values")
	}
	if _, err := FitLine([]float64{1}, []float64{1}); err == nil {
		t.Error("expected error for a single point")
	}
}

func TestLocalMinima(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		window int
		want   []int
	}{
		{
			name:   "single valley",
			values: []float64{5, 4, 3, 2, 3, 4, 5},
			window: 2,
			want:   []int{3},
		},
		{
			name:   "two valleys",
			values: []float64{5, 2, 5, 6, 5, 1, 5, 6},
			window: 1,
			want:   []int{1, 5},
		},
		{
			name:   "monotonic has no interior minimum",
			values: []float64{1, 2, 3, 4, 5},
			window: 1,
			want:   []int{0},
		},
		{
			name:   "flat series ties everywhere",
			values: []float64{3, 3, 3, 3, 3},
			window: 1,
			want:   []int{0, 1, 2, 3, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LocalMinima(tt.values, tt.window)
			if len(got) != len(tt.want) {
				t.Fatalf("expected minima %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("expected minima %v, got %v", tt.want, got)
					break
				}
			}
		})
	}
}

func TestOBV(t *testing.T) {
	closes := []float64{100, 102, 101, 101, 103}
	volumes := []int64{1000, 2000, 1500, 800, 1200}

	obv := NewOBV()
	values, err := obv.Calculate(series(closes, volumes))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	// up +2000, down -1500, flat 0, up +1200
	want := []float64{0, 2000, 500, 500, 1700}
	if len(values) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(values))
	}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], values[i])
		}
	}
}

func TestOBVFlatSeries(t *testing.T) {
	closes := []float64{100, 100, 100, 100}
	volumes := []int64{1000, 1000, 1000, 1000}

	obv := NewOBV()
	value, err := obv.Latest(series(closes, volumes))
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if value != 0 {
		t.Errorf("expected OBV 0 for flat closes, got %v", value)
	}
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		first, last, want float64
	}{
		{100, 110, 10},
		{100, 90, -10},
		{100, 100, 0},
		{0, 50, 0},
	}
	for _, tt := range tests {
		if got := PercentChange(tt.first, tt.last); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("PercentChange(%v, %v) = %v, want %v", tt.first, tt.last, got, tt.want)
		}
	}
}

func TestMeanVolume(t *testing.T) {
	s := series([]float64{100, 100, 100}, []int64{1000, 2000, 3000})
	if got := MeanVolume(s); got != 2000 {
		t.Errorf("expected mean volume 2000, got %v", got)
	}
}

func TestHighestLowest(t *testing.T) {
	values := []float64{103, 98, 110, 101}
	if got := Highest(values); got != 110 {
		t.Errorf("expected highest 110, got %v", got)
	}
	if got := Lowest(values); got != 98 {
		t.Errorf("expected lowest 98, got %v", got)
	}
	if Highest(nil) != 0 || Lowest(nil) != 0 {
		t.Error("empty input must yield 0")
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(1.7, 0, 1); got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
	if got := Clamp(-0.3, 0, 1); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
	if got := Clamp(0.4, 0, 1); got != 0.4 {
		t.Errorf("expected 0.4, got %v", got)
	}
}
