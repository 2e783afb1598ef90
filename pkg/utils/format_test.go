package utils

import "testing"

func TestFormatRupees(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "Rs 0.00"},
		{950, "Rs 950.00"},
		{1250.5, "Rs 1,250.50"},
		{100000, "Rs 1,00,000.00"},
		{12345678.9, "Rs 1,23,45,678.90"},
		{-4500, "-Rs 4,500.00"},
	}
	for _, tt := range tests {
		if got := FormatRupees(tt.amount); got != tt.want {
			t.Errorf("FormatRupees(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{5, "+5.00%"},
		{-3.25, "-3.25%"},
		{0, "0.00%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.value); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFormatQuantity(t *testing.T) {
	tests := []struct {
		qty  int64
		want string
	}{
		{999, "999"},
		{45000, "45,000"},
		{4500000, "45,00,000"},
	}
	for _, tt := range tests {
		if got := FormatQuantity(tt.qty); got != tt.want {
			t.Errorf("FormatQuantity(%d) = %q, want %q", tt.qty, got, tt.want)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{50000, "50000.00"},
		{250000, "2.50 L"},
		{25000000, "2.50 Cr"},
	}
	for _, tt := range tests {
		if got := FormatCompact(tt.amount); got != tt.want {
			t.Errorf("FormatCompact(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}
