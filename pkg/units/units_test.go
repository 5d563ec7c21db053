package units

import (
	"math"
	"testing"
)

func TestIceToFreshwater(t *testing.T) {
	tests := []struct {
		name     string
		iceKm3   float64
		opts     []Option
		expected float64
	}{
		{
			name:     "one cubic kilometer with default densities",
			iceKm3:   1,
			expected: 0.9e12,
		},
		{
			name:     "zero volume",
			iceKm3:   0,
			expected: 0,
		},
		{
			name:     "custom ice density",
			iceKm3:   2,
			opts:     []Option{WithIceDensity(917)},
			expected: 2 * 0.917 * 1e12,
		},
		{
			name:     "custom water density",
			iceKm3:   1,
			opts:     []Option{WithWaterDensity(1025)},
			expected: 900.0 / 1025.0 * 1e12,
		},
		{
			name:     "negative density is not validated",
			iceKm3:   1,
			opts:     []Option{WithIceDensity(-900)},
			expected: -0.9e12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IceToFreshwater(tt.iceKm3, tt.opts...)
			if !closeTo(got, tt.expected) {
				t.Errorf("expected %g liters, got %g", tt.expected, got)
			}
		})
	}
}

func TestIceToFreshwaterScaling(t *testing.T) {
	base := IceToFreshwater(1)

	if got := IceToFreshwater(3.5); !closeTo(got, 3.5*base) {
		t.Errorf("volume scaling: expected %g, got %g", 3.5*base, got)
	}

	if got := IceToFreshwater(1, WithIceDensity(2*DefaultIceDensity)); !closeTo(got, 2*base) {
		t.Errorf("ice density scaling: expected %g, got %g", 2*base, got)
	}

	if got := IceToFreshwater(1, WithWaterDensity(2*DefaultWaterDensity)); !closeTo(got, base/2) {
		t.Errorf("water density scaling: expected %g, got %g", base/2, got)
	}
}

func TestIceToFreshwaterZeroWaterDensity(t *testing.T) {
	got := IceToFreshwater(1, WithWaterDensity(0))
	if !math.IsInf(got, 1) {
		t.Errorf("expected +Inf for zero water density, got %g", got)
	}
}

func TestFreshwaterRatio(t *testing.T) {
	if got := FreshwaterRatio(); got != 0.9 {
		t.Errorf("expected default ratio 0.9, got %g", got)
	}
	if got := FreshwaterRatio(WithIceDensity(500), WithWaterDensity(1000)); got != 0.5 {
		t.Errorf("expected ratio 0.5, got %g", got)
	}
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}
