package geo

import (
	"math"
	"testing"
)

func TestHaversineMeters(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want, tolerance        float64
	}{
		{"same point", 51.09, 71.39, 51.09, 71.39, 0, 0},
		{"ninety millidegrees of latitude", 0, 0, 0.0009, 0, 100.075, 0.01},
		{"one degree of longitude on the equator", 0, 0, 0, 1, 111195, 1},
		{"antipodes", 0, 0, 0, 180, math.Pi * EarthRadiusMeters, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineMeters(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Fatalf("distance = %f, want %f±%f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestHaversineSymmetric(t *testing.T) {
	if HaversineMeters(51.09052, 71.39810, 51.08921, 71.40102) != HaversineMeters(51.08921, 71.40102, 51.09052, 71.39810) {
		t.Fatalf("distance is not symmetric")
	}
}

func TestValidCoordinates(t *testing.T) {
	tests := []struct {
		lat, lon float64
		want     bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{90.0001, 0, false},
		{0, -180.5, false},
		{math.NaN(), 0, false},
		{0, math.Inf(1), false},
	}
	for _, tt := range tests {
		if got := ValidCoordinates(tt.lat, tt.lon); got != tt.want {
			t.Fatalf("ValidCoordinates(%v, %v) = %v, want %v", tt.lat, tt.lon, got, tt.want)
		}
	}
}

func TestMetersToDegrees(t *testing.T) {
	if d := MetersToLatDegrees(111195); math.Abs(d-1) > 1e-3 {
		t.Fatalf("lat degrees = %f", d)
	}
	if d := MetersToLonDegrees(111195, 60); math.Abs(d-2) > 1e-2 {
		t.Fatalf("lon degrees at 60N = %f", d)
	}
	if d := MetersToLonDegrees(1, 90); d != 360 {
		t.Fatalf("lon degrees at the pole = %f", d)
	}
}

func BenchmarkHaversineMeters(b *testing.B) {
	for i := 0; i < b.N; i++ {
		HaversineMeters(51.09052, 71.39810, 51.08921, 71.40102)
	}
}
