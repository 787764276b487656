package geo_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/modsentry/modsentry/internal/geo"
)

var (
	sanFrancisco = geo.Point{Lat: 37.7749, Long: -122.4194}
	losAngeles   = geo.Point{Lat: 34.0522, Long: -118.2437}
)

func TestDistanceMiles_identityIsZero(t *testing.T) {
	points := []geo.Point{
		{},
		sanFrancisco,
		{Lat: -89.9, Long: 179.9},
	}
	for _, p := range points {
		if d := geo.DistanceMiles(p, p); d != 0 {
			t.Errorf("DistanceMiles(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistanceMiles_symmetry(t *testing.T) {
	ab := geo.DistanceMiles(sanFrancisco, losAngeles)
	ba := geo.DistanceMiles(losAngeles, sanFrancisco)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", ab, ba)
	}
}

func TestDistanceMiles_knownDistance(t *testing.T) {
	// SF to LA is roughly 347 miles great-circle.
	d := geo.DistanceMiles(sanFrancisco, losAngeles)
	if d < 340 || d > 355 {
		t.Errorf("SF-LA distance = %v, want ~347", d)
	}
}

func TestStaticResolver(t *testing.T) {
	r := geo.NewStaticResolver(map[string]geo.Point{
		"10.0.0.1": sanFrancisco,
	})

	p, err := r.ResolveLocation(context.Background(), "10.0.0.1")
	if err != nil {
		t.Fatal(err)
	}
	if p != sanFrancisco {
		t.Errorf("got %v, want %v", p, sanFrancisco)
	}

	_, err = r.ResolveLocation(context.Background(), "10.0.0.2")
	var resErr *geo.ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
	if resErr.IP != "10.0.0.2" {
		t.Errorf("ResolutionError.IP = %q, want %q", resErr.IP, "10.0.0.2")
	}
}
