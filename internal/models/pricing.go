package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var priceNumberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParsePriceString extracts a numeric value from a human-readable price
// expression such as "$75", "$50 - $100" or "$1,234.50 USD". Every numeric
// substring is collected after stripping comma separators, and their mean is
// returned, so a range yields its midpoint. Returns 0 when the string
// contains no number.
func ParsePriceString(display string) float64 {
	cleaned := strings.ReplaceAll(display, ",", "")
	matches := priceNumberPattern.FindAllString(cleaned, -1)
	if len(matches) == 0 {
		return 0
	}

	var sum float64
	for _, m := range matches {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		sum += v
	}
	return sum / float64(len(matches))
}

// FormatUSD renders a price the way the pricing API displays single values.
func FormatUSD(value float64) string {
	return fmt.Sprintf("$%.2f", value)
}

// FormatUSDRange renders a low/high pair as "$low - $high".
func FormatUSDRange(low, high float64) string {
	return fmt.Sprintf("$%.2f - $%.2f", low, high)
}
