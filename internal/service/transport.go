// Package service contains the core business logic for the agri-market
// platform: transport comparison, OTP authentication, and alert fan-out.
package service

import (
	"context"
	"errors"
	"log"

	"github.com/kisanlink/agrimandi/internal/compare"
	"github.com/kisanlink/agrimandi/internal/model"
)

// ─── Errors ─────────────────────────────────────────────────

var (
	ErrCommodityNotFound = errors.New("commodity not found")
	ErrSourceUnknown     = errors.New("source location could not be resolved")
)

// ─── Collaborator contracts ─────────────────────────────────

// MarketDirectory is the market lookup the comparator consumes.
// Implemented by repository.MarketRepository.
type MarketDirectory interface {
	ListActiveMarkets(ctx context.Context) ([]model.Market, error)
	ResolveDistrictLocation(ctx context.Context, state, district string) (*model.Location, error)
}

// PriceLookup is the price lookup the comparator consumes.
// Implemented by repository.PriceRepository.
type PriceLookup interface {
	GetCommodityByName(ctx context.Context, name string) (*model.Commodity, error)
	GetLatestPricesByCommodity(ctx context.Context, commodityID int64) (map[int64]float64, error)
}

// ─── TransportService ───────────────────────────────────────

// CompareInput is the pre-validated request for a transport comparison.
// Either Source is set, or State+District identify where the shipment
// starts (resolved to the district's reference market).
type CompareInput struct {
	Commodity  string
	QuantityKg float64
	Source     *model.Location
	State      string
	District   string
}

// TransportService loads the market/price snapshot and runs the comparator.
//
// The computation itself lives in internal/compare and is pure; this service
// only resolves the source location and assembles the immutable snapshot.
// Concurrent requests never interact — each call works on its own snapshot.
type TransportService struct {
	markets MarketDirectory
	prices  PriceLookup
}

// NewTransportService creates a transport service over the given lookups.
func NewTransportService(markets MarketDirectory, prices PriceLookup) *TransportService {
	return &TransportService{markets: markets, prices: prices}
}

// Compare ranks every active market by net profit for the given shipment.
//
// Markets without coordinates or without a current price for the commodity
// are excluded from the ranking — an all-excluded snapshot yields an empty
// comparison with a nil best market, which is a valid outcome.
//
// The handler guarantees QuantityKg > 0 before calling.
func (s *TransportService) Compare(ctx context.Context, in CompareInput) (*compare.Comparison, error) {
	// ── Step 0: Resolve the source location ─────────────
	source := in.Source
	if source == nil {
		loc, err := s.markets.ResolveDistrictLocation(ctx, in.State, in.District)
		if err != nil {
			log.Printf("[transport] cannot resolve %s/%s: %v", in.State, in.District, err)
			return nil, ErrSourceUnknown
		}
		source = loc
	}

	// ── Step 1: Commodity and prices ────────────────────
	commodity, err := s.prices.GetCommodityByName(ctx, in.Commodity)
	if err != nil {
		return nil, ErrCommodityNotFound
	}

	prices, err := s.prices.GetLatestPricesByCommodity(ctx, commodity.ID)
	if err != nil {
		return nil, err
	}

	// ── Step 2: Market directory ────────────────────────
	markets, err := s.markets.ListActiveMarkets(ctx)
	if err != nil {
		return nil, err
	}

	log.Printf("[transport] %s %.0fkg from (%.4f,%.4f): %d markets, %d priced",
		commodity.Name, in.QuantityKg, source.Lat, source.Lon, len(markets), len(prices))

	// ── Step 3: Snapshot + rank ─────────────────────────
	snapshots := make([]model.MarketSnapshot, 0, len(markets))
	for _, m := range markets {
		snap := model.MarketSnapshot{
			MarketID: m.ID,
			Name:     m.Name,
			District: m.District,
			State:    m.State,
			Location: m.Location,
		}
		if p, ok := prices[m.ID]; ok {
			price := p
			snap.PricePerKg = &price
		}
		snapshots = append(snapshots, snap)
	}

	cmp := compare.Rank(*source, in.QuantityKg, snapshots)

	if cmp.Best != nil {
		log.Printf("[transport] best: %s (%.1f km, %s, net ₹%.2f)",
			cmp.Best.MarketName, cmp.Best.DistanceKm, cmp.Best.VehicleType, cmp.Best.NetProfit)
	} else {
		log.Printf("[transport] no market with usable data")
	}

	return &cmp, nil
}
