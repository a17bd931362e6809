// Package repository provides database access for the agri-market platform.
//
// All queries run against the schema in migrations/001_create_schema.up.sql
// through a shared pgx connection pool.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kisanlink/agrimandi/internal/model"
)

// MarketRepository provides access to the mandi directory.
type MarketRepository struct {
	pool *pgxpool.Pool
}

// NewMarketRepository creates a new repository backed by the given PG pool.
func NewMarketRepository(pool *pgxpool.Pool) *MarketRepository {
	return &MarketRepository{pool: pool}
}

const marketColumns = `
	id, name, district, state, latitude, longitude, active, created_at, updated_at`

func scanMarket(row pgx.Row) (*model.Market, error) {
	m := &model.Market{}
	var lat, lon *float64

	err := row.Scan(
		&m.ID, &m.Name, &m.District, &m.State,
		&lat, &lon, &m.Active, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Both coordinates or neither; a half-geocoded row counts as missing.
	if lat != nil && lon != nil {
		m.Location = &model.Location{Lat: *lat, Lon: *lon}
	}
	return m, nil
}

// GetMarketByID fetches a single market by ID.
func (r *MarketRepository) GetMarketByID(ctx context.Context, id int64) (*model.Market, error) {
	query := `SELECT` + marketColumns + ` FROM markets WHERE id = $1`

	m, err := scanMarket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get market %d: %w", id, err)
	}
	return m, nil
}

// ListMarkets returns active markets, optionally filtered by state and/or
// district (case-insensitive). Inactive markets are returned only when
// includeInactive is set.
func (r *MarketRepository) ListMarkets(
	ctx context.Context,
	state, district string,
	includeInactive bool,
) ([]model.Market, error) {

	query := `
		SELECT` + marketColumns + `
		FROM markets
		WHERE ($1 = '' OR LOWER(state) = LOWER($1))
		  AND ($2 = '' OR LOWER(district) = LOWER($2))
		  AND (active OR $3)
		ORDER BY state, district, name
	`

	rows, err := r.pool.Query(ctx, query, state, district, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}
	defer rows.Close()

	var markets []model.Market
	for rows.Next() {
		m, err := scanMarket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan market: %w", err)
		}
		markets = append(markets, *m)
	}
	return markets, rows.Err()
}

// ListActiveMarkets returns every active market in the directory.
// Used by the transport comparator to build its snapshot.
func (r *MarketRepository) ListActiveMarkets(ctx context.Context) ([]model.Market, error) {
	return r.ListMarkets(ctx, "", "", false)
}

// ResolveDistrictLocation returns the coordinates of the given district's
// reference point: the first geocoded active market in that district.
// Returns pgx.ErrNoRows (wrapped) when no geocoded market exists there.
func (r *MarketRepository) ResolveDistrictLocation(
	ctx context.Context,
	state, district string,
) (*model.Location, error) {

	query := `
		SELECT latitude, longitude
		FROM markets
		WHERE LOWER(state) = LOWER($1)
		  AND LOWER(district) = LOWER($2)
		  AND active
		  AND latitude IS NOT NULL
		  AND longitude IS NOT NULL
		ORDER BY id
		LIMIT 1
	`

	loc := &model.Location{}
	err := r.pool.QueryRow(ctx, query, state, district).Scan(&loc.Lat, &loc.Lon)
	if err != nil {
		return nil, fmt.Errorf("resolve district %s/%s: %w", state, district, err)
	}
	return loc, nil
}

// UpsertMarket inserts a market or refreshes its directory fields, keyed by
// (name, district, state). Used by the price sync job, which discovers
// markets from feed records.
func (r *MarketRepository) UpsertMarket(ctx context.Context, m *model.Market) (int64, error) {
	query := `
		INSERT INTO markets (name, district, state, active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (name, district, state)
		DO UPDATE SET updated_at = NOW()
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query, m.Name, m.District, m.State).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert market %q: %w", m.Name, err)
	}
	return id, nil
}
