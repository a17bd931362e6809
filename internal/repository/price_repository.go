package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/kisanlink/agrimandi/internal/model"
)

// PriceRepository provides commodity price data with a Redis fast path
// for the latest modal price per (commodity, market).
type PriceRepository struct {
	pool  *pgxpool.Pool
	redis *redis.Client
}

// NewPriceRepository creates a new price repository.
func NewPriceRepository(pool *pgxpool.Pool, redis *redis.Client) *PriceRepository {
	return &PriceRepository{pool: pool, redis: redis}
}

// ─── Redis-backed fast path ─────────────────────────────────

const (
	redisLatestPriceKeyPrefix = "price:latest:"
	redisPriceCacheTTL        = 30 * time.Second // feed updates at most daily; 30s keeps reads off PG
)

func latestPriceKey(commodityID, marketID int64) string {
	return fmt.Sprintf("%s%d:%d", redisLatestPriceKeyPrefix, commodityID, marketID)
}

// GetCommodityByName looks up a commodity by name (case-insensitive).
func (r *PriceRepository) GetCommodityByName(ctx context.Context, name string) (*model.Commodity, error) {
	query := `SELECT id, name, COALESCE(category, '') FROM commodities WHERE LOWER(name) = LOWER($1)`

	c := &model.Commodity{}
	err := r.pool.QueryRow(ctx, query, name).Scan(&c.ID, &c.Name, &c.Category)
	if err != nil {
		return nil, fmt.Errorf("get commodity %q: %w", name, err)
	}
	return c, nil
}

// UpsertCommodity inserts a commodity if it doesn't exist and returns its ID.
func (r *PriceRepository) UpsertCommodity(ctx context.Context, name, category string) (int64, error) {
	query := `
		INSERT INTO commodities (name, category)
		VALUES ($1, NULLIF($2, ''))
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query, name, category).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert commodity %q: %w", name, err)
	}
	return id, nil
}

// GetLatestPrice returns the most recent modal price for a commodity at a
// market, in rupees per kg.
//
// Strategy:
//  1. Try Redis cache first (fast path, <1ms).
//  2. On cache miss, query PostgreSQL, then cache in Redis.
func (r *PriceRepository) GetLatestPrice(
	ctx context.Context,
	commodityID, marketID int64,
) (float64, error) {

	cacheKey := latestPriceKey(commodityID, marketID)

	// ── Fast path: Redis cache ──────────────────────────
	if cached, err := r.redis.Get(ctx, cacheKey).Float64(); err == nil {
		return cached, nil
	}

	// ── Slow path: PostgreSQL ───────────────────────────
	query := `
		SELECT modal_price, unit
		FROM commodity_prices
		WHERE commodity_id = $1 AND market_id = $2
		ORDER BY reported_at DESC
		LIMIT 1
	`

	var modal float64
	var unit model.PriceUnit
	err := r.pool.QueryRow(ctx, query, commodityID, marketID).Scan(&modal, &unit)
	if err != nil {
		return 0, fmt.Errorf("get latest price c=%d m=%d: %w", commodityID, marketID, err)
	}

	perKg := PricePerKg(modal, unit)

	// Cache the result in Redis (fire-and-forget, don't block on errors).
	_ = r.redis.Set(ctx, cacheKey, strconv.FormatFloat(perKg, 'f', -1, 64), redisPriceCacheTTL).Err()

	return perKg, nil
}

// GetLatestPricesByCommodity returns the most recent per-kg price for the
// commodity at every market that has one, keyed by market ID. One query —
// this is the bulk load behind the transport comparator.
func (r *PriceRepository) GetLatestPricesByCommodity(
	ctx context.Context,
	commodityID int64,
) (map[int64]float64, error) {

	query := `
		SELECT DISTINCT ON (market_id) market_id, modal_price, unit
		FROM commodity_prices
		WHERE commodity_id = $1
		ORDER BY market_id, reported_at DESC
	`

	rows, err := r.pool.Query(ctx, query, commodityID)
	if err != nil {
		return nil, fmt.Errorf("latest prices for commodity %d: %w", commodityID, err)
	}
	defer rows.Close()

	prices := make(map[int64]float64)
	for rows.Next() {
		var marketID int64
		var modal float64
		var unit model.PriceUnit
		if err := rows.Scan(&marketID, &modal, &unit); err != nil {
			return nil, fmt.Errorf("scan latest price: %w", err)
		}
		prices[marketID] = PricePerKg(modal, unit)
	}
	return prices, rows.Err()
}

// GetPriceHistory returns up to `days` days of price rows for a commodity
// at a market, newest first.
func (r *PriceRepository) GetPriceHistory(
	ctx context.Context,
	commodityID, marketID int64,
	days int,
) ([]model.CommodityPrice, error) {

	query := `
		SELECT id, commodity_id, market_id, modal_price,
		       COALESCE(min_price, 0), COALESCE(max_price, 0), unit, reported_at
		FROM commodity_prices
		WHERE commodity_id = $1
		  AND market_id = $2
		  AND reported_at >= NOW() - make_interval(days => $3)
		ORDER BY reported_at DESC
	`

	rows, err := r.pool.Query(ctx, query, commodityID, marketID, days)
	if err != nil {
		return nil, fmt.Errorf("price history c=%d m=%d: %w", commodityID, marketID, err)
	}
	defer rows.Close()

	var history []model.CommodityPrice
	for rows.Next() {
		var p model.CommodityPrice
		if err := rows.Scan(
			&p.ID, &p.CommodityID, &p.MarketID, &p.ModalPrice,
			&p.MinPrice, &p.MaxPrice, &p.Unit, &p.ReportedAt,
		); err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		history = append(history, p)
	}
	return history, rows.Err()
}

// UpsertPrice inserts or refreshes the price row for
// (commodity, market, reported day) and invalidates the cached latest price.
func (r *PriceRepository) UpsertPrice(ctx context.Context, p *model.CommodityPrice) error {
	query := `
		INSERT INTO commodity_prices
			(commodity_id, market_id, modal_price, min_price, max_price, unit, reported_at)
		VALUES ($1, $2, $3, NULLIF($4, 0), NULLIF($5, 0), $6, $7)
		ON CONFLICT (commodity_id, market_id, reported_at)
		DO UPDATE SET modal_price = EXCLUDED.modal_price,
		              min_price   = EXCLUDED.min_price,
		              max_price   = EXCLUDED.max_price
	`

	_, err := r.pool.Exec(ctx, query,
		p.CommodityID, p.MarketID, p.ModalPrice, p.MinPrice, p.MaxPrice, p.Unit, p.ReportedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert price c=%d m=%d: %w", p.CommodityID, p.MarketID, err)
	}

	r.InvalidateLatestPrice(ctx, p.CommodityID, p.MarketID)
	return nil
}

// InvalidateLatestPrice clears the cached latest price for a pair.
// Call after every write so readers never see a stale quote past the TTL.
func (r *PriceRepository) InvalidateLatestPrice(ctx context.Context, commodityID, marketID int64) {
	_ = r.redis.Del(ctx, latestPriceKey(commodityID, marketID)).Err()
}

// PricePerKg normalizes a modal price to rupees per kilogram.
// The data.gov.in feed quotes per quintal (100 kg).
func PricePerKg(modal float64, unit model.PriceUnit) float64 {
	if unit == model.UnitPerQuintal {
		return modal / 100.0
	}
	return modal
}
