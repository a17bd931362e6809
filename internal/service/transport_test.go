package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kisanlink/agrimandi/internal/model"
)

// ─── Fakes ──────────────────────────────────────────────────

type fakeDirectory struct {
	markets  []model.Market
	resolved *model.Location
}

func (f *fakeDirectory) ListActiveMarkets(context.Context) ([]model.Market, error) {
	return f.markets, nil
}

func (f *fakeDirectory) ResolveDistrictLocation(_ context.Context, state, district string) (*model.Location, error) {
	if f.resolved == nil {
		return nil, errors.New("no geocoded market in district")
	}
	return f.resolved, nil
}

type fakeLookup struct {
	commodities map[string]*model.Commodity
	prices      map[int64]float64
}

func (f *fakeLookup) GetCommodityByName(_ context.Context, name string) (*model.Commodity, error) {
	c, ok := f.commodities[name]
	if !ok {
		return nil, errors.New("no rows")
	}
	return c, nil
}

func (f *fakeLookup) GetLatestPricesByCommodity(context.Context, int64) (map[int64]float64, error) {
	return f.prices, nil
}

// ─── Fixtures ───────────────────────────────────────────────

func punjabMarkets() []model.Market {
	return []model.Market{
		{ID: 1, Name: "Khanna", District: "Ludhiana", State: "Punjab", Active: true,
			Location: &model.Location{Lat: 30.7057, Lon: 76.2221}},
		{ID: 2, Name: "Jagraon", District: "Ludhiana", State: "Punjab", Active: true,
			Location: &model.Location{Lat: 30.7860, Lon: 75.4736}},
		{ID: 3, Name: "Moga", District: "Moga", State: "Punjab", Active: true,
			Location: &model.Location{Lat: 30.8165, Lon: 75.1717}},
		{ID: 4, Name: "Ungeolocated", District: "Patiala", State: "Punjab", Active: true},
	}
}

func wheatFixture() (*fakeDirectory, *fakeLookup) {
	dir := &fakeDirectory{
		markets:  punjabMarkets(),
		resolved: &model.Location{Lat: 30.9010, Lon: 75.8573}, // Ludhiana
	}
	lookup := &fakeLookup{
		commodities: map[string]*model.Commodity{"Wheat": {ID: 7, Name: "Wheat"}},
		prices:      map[int64]float64{1: 22.50, 2: 24.10, 3: 21.75},
	}
	return dir, lookup
}

// ─── Tests ──────────────────────────────────────────────────

func TestCompare_LudhianaWheat(t *testing.T) {
	dir, lookup := wheatFixture()
	svc := NewTransportService(dir, lookup)

	cmp, err := svc.Compare(context.Background(), CompareInput{
		Commodity:  "Wheat",
		QuantityKg: 5000,
		State:      "Punjab",
		District:   "Ludhiana",
	})
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}

	if len(cmp.Results) == 0 {
		t.Fatal("comparisons list is empty, want at least one priced market")
	}
	for _, r := range cmp.Results {
		switch r.VehicleType {
		case "light", "medium", "heavy":
		default:
			t.Errorf("vehicle_type = %q, want one of the fixed tier names", r.VehicleType)
		}
	}
	if cmp.Best == nil || cmp.Best.MarketID != cmp.Results[0].MarketID {
		t.Error("best_mandi does not equal comparisons[0]")
	}
	for _, r := range cmp.Results {
		if r.MarketID == 4 {
			t.Error("market without coordinates appeared in the ranking")
		}
	}
}

func TestCompare_ExplicitSourceSkipsResolution(t *testing.T) {
	dir, lookup := wheatFixture()
	dir.resolved = nil // resolution would fail; explicit coordinates must not need it
	svc := NewTransportService(dir, lookup)

	cmp, err := svc.Compare(context.Background(), CompareInput{
		Commodity:  "Wheat",
		QuantityKg: 1200,
		Source:     &model.Location{Lat: 30.9010, Lon: 75.8573},
	})
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if cmp.Best == nil {
		t.Fatal("Best is nil, want a ranked market")
	}
}

func TestCompare_UnknownCommodity(t *testing.T) {
	dir, lookup := wheatFixture()
	svc := NewTransportService(dir, lookup)

	_, err := svc.Compare(context.Background(), CompareInput{
		Commodity:  "Saffron",
		QuantityKg: 100,
		State:      "Punjab",
		District:   "Ludhiana",
	})
	if !errors.Is(err, ErrCommodityNotFound) {
		t.Errorf("err = %v, want ErrCommodityNotFound", err)
	}
}

func TestCompare_UnresolvableDistrict(t *testing.T) {
	dir, lookup := wheatFixture()
	dir.resolved = nil
	svc := NewTransportService(dir, lookup)

	_, err := svc.Compare(context.Background(), CompareInput{
		Commodity:  "Wheat",
		QuantityKg: 100,
		State:      "Punjab",
		District:   "Nowhere",
	})
	if !errors.Is(err, ErrSourceUnknown) {
		t.Errorf("err = %v, want ErrSourceUnknown", err)
	}
}

func TestCompare_NoPricedMarketsIsValid(t *testing.T) {
	dir, lookup := wheatFixture()
	lookup.prices = map[int64]float64{} // feed has nothing for this commodity yet
	svc := NewTransportService(dir, lookup)

	cmp, err := svc.Compare(context.Background(), CompareInput{
		Commodity:  "Wheat",
		QuantityKg: 500,
		State:      "Punjab",
		District:   "Ludhiana",
	})
	if err != nil {
		t.Fatalf("Compare returned error: %v, want empty result", err)
	}
	if len(cmp.Results) != 0 || cmp.Best != nil {
		t.Error("want empty comparisons and nil best when no market has a price")
	}
}
