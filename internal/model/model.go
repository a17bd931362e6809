// Package model contains domain models for the agri-market platform.
// These structs map to the PostgreSQL schema defined in migrations/001_create_schema.up.sql.
package model

import "time"

// ─── Enums ──────────────────────────────────────────────────

type UserRole string

const (
	RoleFarmer UserRole = "farmer"
	RoleTrader UserRole = "trader"
	RoleAdmin  UserRole = "admin"
)

type PostCategory string

const (
	PostGeneral  PostCategory = "general"
	PostQuestion PostCategory = "question"
	PostAlert    PostCategory = "alert"
)

// PriceUnit is the unit the feed quotes modal prices in.
// data.gov.in quotes per quintal (100 kg).
type PriceUnit string

const (
	UnitPerQuintal PriceUnit = "per_quintal"
	UnitPerKg      PriceUnit = "per_kg"
)

// ─── Location ───────────────────────────────────────────────

// Location represents a WGS-84 geographic point (EPSG:4326).
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ─── Domain Models ──────────────────────────────────────────

// User maps to the `users` table. Accounts are phone-first: a row is
// created the first time an OTP verification succeeds for a number.
type User struct {
	ID        int64     `json:"id"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name,omitempty"`
	District  string    `json:"district,omitempty"`
	State     string    `json:"state,omitempty"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Market maps to the `markets` table (a mandi in the APMC directory).
// Coordinates are optional: many directory entries are imported without
// a geocode and stay that way until the geocoding job fills them in.
type Market struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	District  string    `json:"district"`
	State     string    `json:"state"`
	Location  *Location `json:"location,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Commodity maps to the `commodities` table.
type Commodity struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// CommodityPrice maps to the `commodity_prices` table: one row per
// commodity per market per reported day.
type CommodityPrice struct {
	ID          int64     `json:"id"`
	CommodityID int64     `json:"commodity_id"`
	MarketID    int64     `json:"market_id"`
	ModalPrice  float64   `json:"modal_price"`
	MinPrice    float64   `json:"min_price,omitempty"`
	MaxPrice    float64   `json:"max_price,omitempty"`
	Unit        PriceUnit `json:"unit"`
	ReportedAt  time.Time `json:"reported_at"`
}

// Post maps to the `posts` table (community posts and alerts).
type Post struct {
	ID        string       `json:"id"`
	UserID    int64        `json:"user_id"`
	Category  PostCategory `json:"category"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	District  string       `json:"district"`
	State     string       `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
}

// DistrictAlert maps to the `district_alerts` table: one row per district
// a post was fanned out to. Readers in that district see the alert.
type DistrictAlert struct {
	ID        int64     `json:"id"`
	PostID    string    `json:"post_id"`
	District  string    `json:"district"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// InventoryItem maps to the `inventory_items` table.
type InventoryItem struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	CommodityID int64     `json:"commodity_id"`
	Commodity   string    `json:"commodity"`
	QuantityKg  float64   `json:"quantity_kg"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SaleRecord maps to the `sale_records` table.
type SaleRecord struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	CommodityID int64     `json:"commodity_id"`
	Commodity   string    `json:"commodity"`
	MarketID    *int64    `json:"market_id,omitempty"`
	QuantityKg  float64   `json:"quantity_kg"`
	PricePerKg  float64   `json:"price_per_kg"`
	SoldAt      time.Time `json:"sold_at"`
}

// SalesSummary is the aggregate returned by GET /api/v1/sales/summary.
type SalesSummary struct {
	Commodity       string  `json:"commodity"`
	TotalQuantityKg float64 `json:"total_quantity_kg"`
	TotalRevenue    float64 `json:"total_revenue"`
	SaleCount       int     `json:"sale_count"`
}

// ─── Comparator snapshot ────────────────────────────────────

// MarketSnapshot is the immutable per-market input to the transport
// comparator: directory data plus the current modal price, already
// converted to per-kg. PricePerKg is nil when no price is recorded.
type MarketSnapshot struct {
	MarketID   int64
	Name       string
	District   string
	State      string
	Location   *Location
	PricePerKg *float64
}
