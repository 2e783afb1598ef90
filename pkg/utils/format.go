// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strings"
)

// FormatRupees formats a number in Nepali rupee format (lakhs, crores).
func FormatRupees(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	// Format with 2 decimal places
	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	intPart := parts[0]
	decPart := parts[1]

	formatted := formatLakhNumber(intPart)

	result := "Rs " + formatted + "." + decPart
	if negative {
		result = "-" + result
	}
	return result
}

// formatLakhNumber groups an integer string in the lakh/crore system:
// 1,00,00,000 rather than 10,000,000.
func formatLakhNumber(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	// First group of 3 from right
	result := s[n-3:]
	s = s[:n-3]

	// Then groups of 2
	for len(s) > 0 {
		if len(s) >= 2 {
			result = s[len(s)-2:] + "," + result
			s = s[:len(s)-2]
		} else {
			result = s + "," + result
			s = ""
		}
	}

	return result
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatVolume formats a share volume with lakh/crore grouping.
func FormatVolume(volume float64) string {
	return formatLakhNumber(fmt.Sprintf("%.0f", volume))
}

// FormatQuantity formats a quantity with commas.
func FormatQuantity(qty int64) string {
	return formatLakhNumber(fmt.Sprintf("%d", qty))
}

// FormatCompact formats a number in compact form (L/Cr).
func FormatCompact(amount float64) string {
	absAmount := amount
	if absAmount < 0 {
		absAmount = -absAmount
	}

	if absAmount >= 10000000 {
		return fmt.Sprintf("%.2f Cr", amount/10000000)
	} else if absAmount >= 100000 {
		return fmt.Sprintf("%.2f L", amount/100000)
	}
	return fmt.Sprintf("%.2f", amount)
}
