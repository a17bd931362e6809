package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kisanlink/agrimandi/internal/repository"
)

// MarketHandler handles mandi directory HTTP requests.
type MarketHandler struct {
	repo *repository.MarketRepository
}

// NewMarketHandler creates a new market handler.
func NewMarketHandler(repo *repository.MarketRepository) *MarketHandler {
	return &MarketHandler{repo: repo}
}

// ListMarkets handles GET /api/v1/markets?state=&district=&include_inactive=
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	includeInactive := q.Get("include_inactive") == "true"

	markets, err := h.repo.ListMarkets(r.Context(), q.Get("state"), q.Get("district"), includeInactive)
	if err != nil {
		log.Printf("[handler] list markets error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list markets",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(markets),
		"markets": markets,
	})
}

// GetMarket handles GET /api/v1/markets/{id}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid market id",
		})
		return
	}

	market, err := h.repo.GetMarketByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "market not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, market)
}
