package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/kisanlink/agrimandi/internal/middleware"
	"github.com/kisanlink/agrimandi/internal/model"
	"github.com/kisanlink/agrimandi/internal/repository"
)

// AddStockBody is the JSON body for POST /api/v1/inventory.
type AddStockBody struct {
	Commodity  string  `json:"commodity"`
	QuantityKg float64 `json:"quantity_kg"`
}

// RecordSaleBody is the JSON body for POST /api/v1/sales.
type RecordSaleBody struct {
	Commodity  string  `json:"commodity"`
	MarketID   *int64  `json:"market_id,omitempty"`
	QuantityKg float64 `json:"quantity_kg"`
	PricePerKg float64 `json:"price_per_kg"`
	SoldAt     string  `json:"sold_at,omitempty"` // RFC 3339; defaults to now
}

// InventoryHandler handles stock and sales bookkeeping HTTP requests.
// All routes are authenticated; rows are scoped to the caller.
type InventoryHandler struct {
	inventory *repository.InventoryRepository
	prices    *repository.PriceRepository
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(inventory *repository.InventoryRepository, prices *repository.PriceRepository) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, prices: prices}
}

// AddStock handles POST /api/v1/inventory
func (h *InventoryHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	var body AddStockBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if body.Commodity == "" || body.QuantityKg <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "commodity and a positive quantity_kg are required",
		})
		return
	}

	// New commodity names are allowed here — bookkeeping shouldn't force
	// farmers to wait for the feed to know their crop.
	commodityID, err := h.prices.UpsertCommodity(r.Context(), body.Commodity, "")
	if err != nil {
		log.Printf("[handler] upsert commodity error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}

	item, err := h.inventory.AddStock(r.Context(), userID, commodityID, body.QuantityKg)
	if err != nil {
		log.Printf("[handler] add stock error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add stock"})
		return
	}
	item.Commodity = body.Commodity

	writeJSON(w, http.StatusCreated, item)
}

// ListInventory handles GET /api/v1/inventory
func (h *InventoryHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	items, err := h.inventory.ListInventory(r.Context(), userID)
	if err != nil {
		log.Printf("[handler] list inventory error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list inventory"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(items),
		"items": items,
	})
}

// RecordSale handles POST /api/v1/sales
//
// Deducts the sold quantity from the caller's inventory and records the
// sale. Selling more than on hand is rejected with 409.
func (h *InventoryHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	var body RecordSaleBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if body.Commodity == "" || body.QuantityKg <= 0 || body.PricePerKg <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "commodity, positive quantity_kg, and positive price_per_kg are required",
		})
		return
	}

	soldAt := time.Now()
	if body.SoldAt != "" {
		parsed, err := time.Parse(time.RFC3339, body.SoldAt)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "sold_at must be RFC 3339",
			})
			return
		}
		soldAt = parsed
	}

	commodity, err := h.prices.GetCommodityByName(r.Context(), body.Commodity)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "commodity not found"})
		return
	}

	sale := &model.SaleRecord{
		UserID:      userID,
		CommodityID: commodity.ID,
		Commodity:   commodity.Name,
		MarketID:    body.MarketID,
		QuantityKg:  body.QuantityKg,
		PricePerKg:  body.PricePerKg,
		SoldAt:      soldAt,
	}

	if err := h.inventory.RecordSale(r.Context(), sale); err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientStock):
			writeJSON(w, http.StatusConflict, map[string]string{
				"error":   "insufficient_stock",
				"message": "Not enough stock on hand for this sale.",
			})
		default:
			log.Printf("[handler] record sale error: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to record sale"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, sale)
}

// SalesSummary handles GET /api/v1/sales/summary
func (h *InventoryHandler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	summaries, err := h.inventory.SalesSummary(r.Context(), userID)
	if err != nil {
		log.Printf("[handler] sales summary error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load summary"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(summaries),
		"summaries": summaries,
	})
}
