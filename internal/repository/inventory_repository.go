package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kisanlink/agrimandi/internal/model"
)

// ErrInsufficientStock is returned when a sale would take an inventory
// line below zero.
var ErrInsufficientStock = errors.New("not enough stock on hand for this sale")

// InventoryRepository provides stock and sales bookkeeping per user.
type InventoryRepository struct {
	pool *pgxpool.Pool
}

// NewInventoryRepository creates a new inventory repository.
func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

// AddStock adds quantityKg to the user's inventory line for a commodity,
// creating the line if needed, and returns the updated item.
func (r *InventoryRepository) AddStock(
	ctx context.Context,
	userID, commodityID int64,
	quantityKg float64,
) (*model.InventoryItem, error) {

	query := `
		INSERT INTO inventory_items (user_id, commodity_id, quantity_kg)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, commodity_id)
		DO UPDATE SET quantity_kg = inventory_items.quantity_kg + EXCLUDED.quantity_kg,
		              updated_at  = NOW()
		RETURNING id, user_id, commodity_id, quantity_kg, created_at, updated_at
	`

	item := &model.InventoryItem{}
	err := r.pool.QueryRow(ctx, query, userID, commodityID, quantityKg).Scan(
		&item.ID, &item.UserID, &item.CommodityID, &item.QuantityKg,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("add stock u=%d c=%d: %w", userID, commodityID, err)
	}
	return item, nil
}

// ListInventory returns the user's inventory lines with commodity names.
func (r *InventoryRepository) ListInventory(ctx context.Context, userID int64) ([]model.InventoryItem, error) {
	query := `
		SELECT i.id, i.user_id, i.commodity_id, c.name, i.quantity_kg, i.created_at, i.updated_at
		FROM inventory_items i
		JOIN commodities c ON c.id = i.commodity_id
		WHERE i.user_id = $1
		ORDER BY c.name
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list inventory u=%d: %w", userID, err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		var it model.InventoryItem
		if err := rows.Scan(
			&it.ID, &it.UserID, &it.CommodityID, &it.Commodity,
			&it.QuantityKg, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// RecordSale deducts stock and inserts the sale row in one transaction.
// The deduction uses a guarded UPDATE so two concurrent sales can't drive
// the line negative; if the guard matches no row the sale is rejected with
// ErrInsufficientStock.
func (r *InventoryRepository) RecordSale(ctx context.Context, sale *model.SaleRecord) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin sale tx: %w", err)
	}
	defer tx.Rollback(ctx)

	deduct := `
		UPDATE inventory_items
		SET quantity_kg = quantity_kg - $3, updated_at = NOW()
		WHERE user_id = $1 AND commodity_id = $2 AND quantity_kg >= $3
	`

	tag, err := tx.Exec(ctx, deduct, sale.UserID, sale.CommodityID, sale.QuantityKg)
	if err != nil {
		return fmt.Errorf("deduct stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}

	insert := `
		INSERT INTO sale_records (user_id, commodity_id, market_id, quantity_kg, price_per_kg, sold_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err = tx.QueryRow(ctx, insert,
		sale.UserID, sale.CommodityID, sale.MarketID,
		sale.QuantityKg, sale.PricePerKg, sale.SoldAt,
	).Scan(&sale.ID)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit sale tx: %w", err)
	}
	return nil
}

// SalesSummary aggregates the user's sales per commodity.
func (r *InventoryRepository) SalesSummary(ctx context.Context, userID int64) ([]model.SalesSummary, error) {
	query := `
		SELECT c.name,
		       SUM(s.quantity_kg),
		       SUM(s.quantity_kg * s.price_per_kg),
		       COUNT(*)::int
		FROM sale_records s
		JOIN commodities c ON c.id = s.commodity_id
		WHERE s.user_id = $1
		GROUP BY c.name
		ORDER BY c.name
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("sales summary u=%d: %w", userID, err)
	}
	defer rows.Close()

	var summaries []model.SalesSummary
	for rows.Next() {
		var s model.SalesSummary
		if err := rows.Scan(&s.Commodity, &s.TotalQuantityKg, &s.TotalRevenue, &s.SaleCount); err != nil {
			return nil, fmt.Errorf("scan sales summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
