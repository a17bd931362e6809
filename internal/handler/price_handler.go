package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/kisanlink/agrimandi/internal/repository"
)

// PriceHandler handles commodity price HTTP requests.
type PriceHandler struct {
	prices *repository.PriceRepository
}

// NewPriceHandler creates a new price handler.
func NewPriceHandler(prices *repository.PriceRepository) *PriceHandler {
	return &PriceHandler{prices: prices}
}

// LatestPrice handles GET /api/v1/prices/latest?commodity=Wheat&market_id=3
//
// Returns the most recent modal price normalized to rupees per kg.
// Served Redis-first with a Postgres fallback.
func (h *PriceHandler) LatestPrice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	commodityName := q.Get("commodity")
	marketID, err := strconv.ParseInt(q.Get("market_id"), 10, 64)
	if commodityName == "" || err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "commodity and market_id are required",
		})
		return
	}

	commodity, err := h.prices.GetCommodityByName(r.Context(), commodityName)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "commodity not found",
		})
		return
	}

	price, err := h.prices.GetLatestPrice(r.Context(), commodity.ID, marketID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "no_price",
			"message": "No price recorded for this commodity at this market.",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"commodity":    commodity.Name,
		"market_id":    marketID,
		"price_per_kg": price,
	})
}

// PriceHistory handles GET /api/v1/prices/history?commodity=Wheat&market_id=3&days=30
func (h *PriceHandler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	commodityName := q.Get("commodity")
	marketID, err := strconv.ParseInt(q.Get("market_id"), 10, 64)
	if commodityName == "" || err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "commodity and market_id are required",
		})
		return
	}

	days, err := strconv.Atoi(q.Get("days"))
	if err != nil || days <= 0 {
		days = 30
	}

	commodity, err := h.prices.GetCommodityByName(r.Context(), commodityName)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "commodity not found",
		})
		return
	}

	history, err := h.prices.GetPriceHistory(r.Context(), commodity.ID, marketID, days)
	if err != nil {
		log.Printf("[handler] price history error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load price history",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"commodity": commodity.Name,
		"market_id": marketID,
		"days":      days,
		"count":     len(history),
		"prices":    history,
	})
}
