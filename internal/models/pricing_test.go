package models

import (
	"math"
	"testing"
)

func TestParsePriceString(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"$75", 75.0},
		{"$50 - $100", 75.0},          // range yields its midpoint
		{"$1,234.50", 1234.5},         // comma separator stripped
		{"$1,234.50 - $1,500", 1367.25},
		{"N/A", 0},
		{"Price unavailable", 0},
		{"", 0},
		{"75", 75.0},
		{"$10 - $20 - $30", 20.0}, // more than two numbers are all averaged
		{"$25.99 USD", 25.99},
		{"around $5", 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParsePriceString(tt.input)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ParsePriceString(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFormatUSD(t *testing.T) {
	if got := FormatUSD(4.5); got != "$4.50" {
		t.Errorf("FormatUSD(4.5) = %q, want %q", got, "$4.50")
	}
	if got := FormatUSDRange(10, 25.5); got != "$10.00 - $25.50" {
		t.Errorf("FormatUSDRange(10, 25.5) = %q, want %q", got, "$10.00 - $25.50")
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	// A formatted single value must parse back to itself.
	if got := ParsePriceString(FormatUSD(123.45)); got != 123.45 {
		t.Errorf("round trip of 123.45 = %v", got)
	}
	// A formatted range must parse to its midpoint.
	if got := ParsePriceString(FormatUSDRange(100, 200)); got != 150 {
		t.Errorf("round trip of $100-$200 range = %v, want 150", got)
	}
}
