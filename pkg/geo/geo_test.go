package geo

import (
	"math"
	"testing"

	"github.com/kisanlink/agrimandi/internal/model"
)

func TestHaversineKm_SamePoint(t *testing.T) {
	loc := model.Location{Lat: 30.9010, Lon: 75.8573} // Ludhiana
	got := HaversineKm(loc, loc)
	if got != 0 {
		t.Errorf("HaversineKm(same point) = %v, want 0", got)
	}
}

func TestHaversineKm_Symmetry(t *testing.T) {
	ludhiana := model.Location{Lat: 30.9010, Lon: 75.8573}
	khanna := model.Location{Lat: 30.7057, Lon: 76.2221}
	ab := HaversineKm(ludhiana, khanna)
	ba := HaversineKm(khanna, ludhiana)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("HaversineKm not symmetric: A→B=%v B→A=%v", ab, ba)
	}
}

func TestHaversineKm_KnownDistance(t *testing.T) {
	// Ludhiana to Khanna mandi (~40 km by crow flight)
	ludhiana := model.Location{Lat: 30.9010, Lon: 75.8573}
	khanna := model.Location{Lat: 30.7057, Lon: 76.2221}
	got := HaversineKm(ludhiana, khanna)
	wantMin, wantMax := 35.0, 45.0
	if got < wantMin || got > wantMax {
		t.Errorf("HaversineKm(Ludhiana→Khanna) = %.2f km, want between %.1f and %.1f", got, wantMin, wantMax)
	}
}

func TestDistanceKm_MissingDestination(t *testing.T) {
	src := model.Location{Lat: 30.9010, Lon: 75.8573}
	if _, ok := DistanceKm(src, nil); ok {
		t.Error("DistanceKm(src, nil) reported a known distance, want unknown")
	}
}

func TestDistanceKm_KnownDestination(t *testing.T) {
	src := model.Location{Lat: 30.9010, Lon: 75.8573}
	dst := model.Location{Lat: 30.7057, Lon: 76.2221}
	got, ok := DistanceKm(src, &dst)
	if !ok {
		t.Fatal("DistanceKm reported unknown distance for a geocoded destination")
	}
	if got != HaversineKm(src, dst) {
		t.Errorf("DistanceKm = %v, want HaversineKm = %v", got, HaversineKm(src, dst))
	}
}

func TestHaversineM(t *testing.T) {
	a := model.Location{Lat: 0, Lon: 0}
	b := model.Location{Lat: 0.001, Lon: 0}
	km := HaversineKm(a, b)
	m := HaversineM(a, b)
	if math.Abs(m-km*1000) > 0.01 {
		t.Errorf("HaversineM = %v, want HaversineKm*1000 = %v", m, km*1000)
	}
}
