package compare

import (
	"math"
	"testing"

	"github.com/kisanlink/agrimandi/internal/model"
)

var ludhiana = model.Location{Lat: 30.9010, Lon: 75.8573}

func price(v float64) *float64 { return &v }

func snapshot(id int64, name string, loc *model.Location, pricePerKg *float64) model.MarketSnapshot {
	return model.MarketSnapshot{
		MarketID:   id,
		Name:       name,
		District:   "Ludhiana",
		State:      "Punjab",
		Location:   loc,
		PricePerKg: pricePerKg,
	}
}

func TestSelectVehicle_SmallestCoveringTier(t *testing.T) {
	cases := []struct {
		qtyKg float64
		want  string
	}{
		{1, "light"},
		{1_500, "light"}, // exactly at capacity still fits
		{1_501, "medium"},
		{5_000, "medium"},
		{5_001, "heavy"},
		{16_000, "heavy"},
	}
	for _, c := range cases {
		if got := SelectVehicle(c.qtyKg); got.Name != c.want {
			t.Errorf("SelectVehicle(%v) = %s, want %s", c.qtyKg, got.Name, c.want)
		}
	}
}

func TestSelectVehicle_OversizedUsesLargest(t *testing.T) {
	got := SelectVehicle(50_000)
	if got.Name != "heavy" {
		t.Errorf("SelectVehicle(50000) = %s, want heavy (largest available, never an error)", got.Name)
	}
}

func TestRank_ProfitNonIncreasing(t *testing.T) {
	markets := []model.MarketSnapshot{
		snapshot(1, "Khanna", &model.Location{Lat: 30.7057, Lon: 76.2221}, price(22.50)),
		snapshot(2, "Jagraon", &model.Location{Lat: 30.7860, Lon: 75.4736}, price(24.10)),
		snapshot(3, "Moga", &model.Location{Lat: 30.8165, Lon: 75.1717}, price(21.75)),
		snapshot(4, "Samrala", &model.Location{Lat: 30.8360, Lon: 76.1932}, price(23.00)),
	}

	cmp := Rank(ludhiana, 5000, markets)
	if len(cmp.Results) != 4 {
		t.Fatalf("got %d results, want 4", len(cmp.Results))
	}
	for i := 1; i < len(cmp.Results); i++ {
		if cmp.Results[i].NetProfit > cmp.Results[i-1].NetProfit {
			t.Errorf("net profit increased at index %d: %.2f > %.2f",
				i, cmp.Results[i].NetProfit, cmp.Results[i-1].NetProfit)
		}
	}
}

func TestRank_BestIsFirstResult(t *testing.T) {
	markets := []model.MarketSnapshot{
		snapshot(1, "Khanna", &model.Location{Lat: 30.7057, Lon: 76.2221}, price(22.50)),
		snapshot(2, "Jagraon", &model.Location{Lat: 30.7860, Lon: 75.4736}, price(24.10)),
	}

	cmp := Rank(ludhiana, 5000, markets)
	if cmp.Best == nil {
		t.Fatal("Best is nil, want the top-ranked market")
	}
	if cmp.Best.MarketID != cmp.Results[0].MarketID {
		t.Errorf("Best = market %d, want comparisons[0] = market %d",
			cmp.Best.MarketID, cmp.Results[0].MarketID)
	}
}

func TestRank_MissingPriceExcluded(t *testing.T) {
	markets := []model.MarketSnapshot{
		snapshot(1, "Khanna", &model.Location{Lat: 30.7057, Lon: 76.2221}, price(22.50)),
		snapshot(2, "NoPrice", &model.Location{Lat: 30.8360, Lon: 76.1932}, nil),
	}

	cmp := Rank(ludhiana, 1000, markets)
	if len(cmp.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(cmp.Results))
	}
	if cmp.Results[0].MarketID == 2 {
		t.Error("market with no recorded price appeared in the ranking")
	}
}

func TestRank_MissingCoordinatesExcluded(t *testing.T) {
	markets := []model.MarketSnapshot{
		snapshot(1, "Khanna", &model.Location{Lat: 30.7057, Lon: 76.2221}, price(22.50)),
		snapshot(2, "Ungeolocated", nil, price(30.00)),
	}

	cmp := Rank(ludhiana, 1000, markets)
	if len(cmp.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(cmp.Results))
	}
	if cmp.Results[0].MarketID == 2 {
		t.Error("market without coordinates appeared in the ranking")
	}
}

func TestRank_NoUsableMarkets(t *testing.T) {
	markets := []model.MarketSnapshot{
		snapshot(1, "Ungeolocated", nil, price(30.00)),
		snapshot(2, "NoPrice", &model.Location{Lat: 30.8360, Lon: 76.1932}, nil),
	}

	cmp := Rank(ludhiana, 1000, markets)
	if len(cmp.Results) != 0 {
		t.Errorf("got %d results, want 0", len(cmp.Results))
	}
	if cmp.Best != nil {
		t.Error("Best should be nil when no market has usable data")
	}
}

func TestRank_TieBrokenByShorterDistance(t *testing.T) {
	// Two markets at the same coordinates and price tie exactly on profit.
	near := model.Location{Lat: 30.95, Lon: 75.90}
	far := model.Location{Lat: 31.30, Lon: 76.50}

	markets := []model.MarketSnapshot{
		snapshot(1, "FarTwin", &far, price(20)),
		snapshot(2, "NearTwin", &near, price(20)),
		snapshot(3, "NearTwinB", &near, price(20)),
	}

	cmp := Rank(ludhiana, 1000, markets)
	if len(cmp.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(cmp.Results))
	}
	// NearTwin and NearTwinB tie exactly; both must precede FarTwin (higher
	// profit via lower transport) and keep distance order between themselves.
	if cmp.Results[0].DistanceKm > cmp.Results[1].DistanceKm {
		t.Error("equal-profit markets not ordered by shorter distance first")
	}
	if cmp.Results[2].MarketName != "FarTwin" {
		t.Errorf("lowest-profit market = %s, want FarTwin last", cmp.Results[2].MarketName)
	}
}

func TestRank_CostArithmetic(t *testing.T) {
	dst := model.Location{Lat: 30.7057, Lon: 76.2221}
	markets := []model.MarketSnapshot{
		snapshot(1, "Khanna", &dst, price(22.50)),
	}
	qty := 5000.0

	cmp := Rank(ludhiana, qty, markets)
	if len(cmp.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(cmp.Results))
	}
	r := cmp.Results[0]

	if r.VehicleType != "medium" {
		t.Errorf("vehicle_type = %s, want medium for 5000 kg", r.VehicleType)
	}

	wantGross := qty * 22.50
	if math.Abs(r.Breakdown.GrossRevenue-wantGross) > 0.01 {
		t.Errorf("gross_revenue = %.2f, want %.2f", r.Breakdown.GrossRevenue, wantGross)
	}

	wantProfit := r.Breakdown.GrossRevenue - r.Breakdown.TransportCost
	if math.Abs(r.NetProfit-wantProfit) > 0.011 {
		t.Errorf("net_profit = %.2f, want gross−transport = %.2f", r.NetProfit, wantProfit)
	}
}

func TestRank_RoundsToTwoDecimals(t *testing.T) {
	dst := model.Location{Lat: 30.7057, Lon: 76.2221}
	markets := []model.MarketSnapshot{
		snapshot(1, "Khanna", &dst, price(22.333)),
	}

	cmp := Rank(ludhiana, 777, markets)
	r := cmp.Results[0]
	for name, v := range map[string]float64{
		"distance_km":    r.DistanceKm,
		"transport_cost": r.Breakdown.TransportCost,
		"gross_revenue":  r.Breakdown.GrossRevenue,
		"net_profit":     r.NetProfit,
	} {
		if math.Abs(v*100-math.Round(v*100)) > 1e-9 {
			t.Errorf("%s = %v, want value rounded to 2 decimals", name, v)
		}
	}
}
