package models

import (
	"math"
)

// OverallGrade returns the mean of the present sub-scores rounded to one
// decimal place, or nil when no sub-score contributes. A score of exactly 0
// is treated as absent rather than as a valid bottom grade; the vision
// service reports 0 when it could not assess that aspect of the card.
func OverallGrade(scores ...*float64) *float64 {
	var sum float64
	count := 0
	for _, s := range scores {
		if s == nil || *s == 0 {
			continue
		}
		sum += *s
		count++
	}
	if count == 0 {
		return nil
	}

	grade := math.Round(sum/float64(count)*10) / 10
	return &grade
}
