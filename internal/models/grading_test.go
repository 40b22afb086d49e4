package models

import (
	"testing"
)

func f(v float64) *float64 { return &v }

func TestOverallGrade(t *testing.T) {
	tests := []struct {
		name     string
		scores   []*float64
		expected *float64
	}{
		{"all four present", []*float64{f(9.5), f(9.0), f(9.5), f(8.0)}, f(9.0)},
		{"single score", []*float64{f(8.5), nil, nil, nil}, f(8.5)},
		{"two scores rounding", []*float64{f(9.0), f(8.5), nil, nil}, f(8.8)}, // 8.75 rounds to 8.8
		{"none present", []*float64{nil, nil, nil, nil}, nil},
		{"no scores at all", nil, nil},
		{"zero treated as absent", []*float64{f(0), f(8.0), nil, nil}, f(8.0)},
		{"all zero", []*float64{f(0), f(0), f(0), f(0)}, nil},
		{"mixed presence", []*float64{f(10), nil, f(9.0), f(8.0)}, f(9.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := OverallGrade(tt.scores...)
			switch {
			case tt.expected == nil && result != nil:
				t.Errorf("OverallGrade = %v, want nil", *result)
			case tt.expected != nil && result == nil:
				t.Errorf("OverallGrade = nil, want %v", *tt.expected)
			case tt.expected != nil && result != nil && *result != *tt.expected:
				t.Errorf("OverallGrade = %v, want %v", *result, *tt.expected)
			}
		})
	}
}
