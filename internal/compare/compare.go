// Package compare implements the transport cost comparator: given a source
// location, a shipment quantity, and a snapshot of markets with their
// current prices, it ranks the markets by net profit after transport.
//
// The package is pure — no database, no clock, no network. The calling
// service loads and validates everything first; one invocation is one
// single-pass computation over its inputs.
package compare

import (
	"math"
	"sort"

	"github.com/kisanlink/agrimandi/internal/model"
	"github.com/kisanlink/agrimandi/pkg/geo"
)

// CostBreakdown itemizes the money side of one market option.
type CostBreakdown struct {
	TransportCost float64 `json:"transport_cost"`
	GrossRevenue  float64 `json:"gross_revenue"`
}

// Result is the per-market comparison row. Monetary fields and the distance
// are rounded to 2 decimals for presentation; ordering is decided on the
// unrounded values.
type Result struct {
	MarketID    int64         `json:"market_id"`
	MarketName  string        `json:"market_name"`
	District    string        `json:"district"`
	State       string        `json:"state"`
	DistanceKm  float64       `json:"distance_km"`
	VehicleType string        `json:"vehicle_type"`
	Breakdown   CostBreakdown `json:"cost_breakdown"`
	NetProfit   float64       `json:"net_profit"`
}

// Comparison is the ranked outcome. Best is nil when no market had both a
// geocode and a price — a valid empty result, not an error.
type Comparison struct {
	Best    *Result  `json:"best_mandi"`
	Results []Result `json:"comparisons"`
}

// scored carries the unrounded numbers through sorting.
type scored struct {
	snap       model.MarketSnapshot
	distanceKm float64
	tier       VehicleTier
	transport  float64
	gross      float64
	profit     float64
}

// Rank computes the comparison for every market in the snapshot and orders
// the usable ones by net profit descending, ties broken by shorter distance.
//
// Markets without coordinates or without a recorded price are excluded from
// the ranking entirely — they never show up with a zero or negative profit.
//
// quantityKg must be positive; the HTTP layer rejects anything else before
// this function runs.
func Rank(source model.Location, quantityKg float64, markets []model.MarketSnapshot) Comparison {
	tier := SelectVehicle(quantityKg)

	rows := make([]scored, 0, len(markets))
	for _, m := range markets {
		distanceKm, ok := geo.DistanceKm(source, m.Location)
		if !ok {
			continue // no geocode, excluded
		}
		if m.PricePerKg == nil {
			continue // no current price, excluded
		}

		transport := distanceKm * tier.CostPerKm
		gross := quantityKg * *m.PricePerKg

		rows = append(rows, scored{
			snap:       m,
			distanceKm: distanceKm,
			tier:       tier,
			transport:  transport,
			gross:      gross,
			profit:     gross - transport,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].profit != rows[j].profit {
			return rows[i].profit > rows[j].profit
		}
		return rows[i].distanceKm < rows[j].distanceKm
	})

	results := make([]Result, len(rows))
	for i, r := range rows {
		results[i] = Result{
			MarketID:    r.snap.MarketID,
			MarketName:  r.snap.Name,
			District:    r.snap.District,
			State:       r.snap.State,
			DistanceKm:  round2(r.distanceKm),
			VehicleType: r.tier.Name,
			Breakdown: CostBreakdown{
				TransportCost: round2(r.transport),
				GrossRevenue:  round2(r.gross),
			},
			NetProfit: round2(r.profit),
		}
	}

	cmp := Comparison{Results: results}
	if len(results) > 0 {
		cmp.Best = &results[0]
	}
	return cmp
}

// round2 rounds to 2 decimal places for currency presentation. Applied only
// to final output values so intermediate arithmetic never compounds error.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
