package reports

import "testing"

func TestGrowthPct(t *testing.T) {
	cases := []struct {
		name     string
		current  float64
		previous float64
		want     float64
	}{
		{"increase", 150, 100, 50},
		{"decrease", 50, 100, -50},
		{"flat", 100, 100, 0},
		{"zero baseline reads as zero growth", 500, 0, 0},
		{"both zero", 0, 0, 0},
		{"drop to zero", 0, 80, -100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := growthPct(tc.current, tc.previous); got != tc.want {
				t.Fatalf("growthPct(%v, %v) = %v, want %v", tc.current, tc.previous, got, tc.want)
			}
		})
	}
}
