package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/kisanlink/agrimandi/internal/compare"
	"github.com/kisanlink/agrimandi/internal/model"
	"github.com/kisanlink/agrimandi/internal/service"
)

// CompareRequest is the JSON body for POST /api/v1/transport/compare.
// The source is either explicit coordinates or a state+district pair.
type CompareRequest struct {
	Commodity  string   `json:"commodity"`
	QuantityKg float64  `json:"quantity_kg"`
	SourceLat  *float64 `json:"source_lat,omitempty"`
	SourceLon  *float64 `json:"source_lon,omitempty"`
	State      string   `json:"state,omitempty"`
	District   string   `json:"district,omitempty"`
}

// TransportHandler handles transport cost comparison HTTP requests.
type TransportHandler struct {
	transportSvc *service.TransportService
}

// NewTransportHandler creates a new transport handler.
func NewTransportHandler(transportSvc *service.TransportService) *TransportHandler {
	return &TransportHandler{transportSvc: transportSvc}
}

// CompareMarkets handles POST /api/v1/transport/compare
//
// Request body:
//
//	{
//	  "commodity": "Wheat", "quantity_kg": 5000,
//	  "state": "Punjab", "district": "Ludhiana"
//	}
//
// or with explicit coordinates instead of state/district.
//
// Response codes:
//
//	200 — Ranked comparison (possibly empty with null best_mandi)
//	404 — Unknown commodity
//	422 — Invalid quantity, missing commodity, or unusable source location
func (h *TransportHandler) CompareMarkets(w http.ResponseWriter, r *http.Request) {
	var body CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON body",
		})
		return
	}

	// Validation happens here — the comparator itself assumes positive,
	// pre-validated inputs and is never called otherwise.
	if body.Commodity == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": "commodity is required",
		})
		return
	}
	if body.QuantityKg <= 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": "quantity_kg must be greater than zero",
		})
		return
	}

	in := service.CompareInput{
		Commodity:  body.Commodity,
		QuantityKg: body.QuantityKg,
		State:      body.State,
		District:   body.District,
	}
	switch {
	case body.SourceLat != nil && body.SourceLon != nil:
		in.Source = &model.Location{Lat: *body.SourceLat, Lon: *body.SourceLon}
	case body.State != "" && body.District != "":
		// resolved by the service
	default:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": "either source_lat/source_lon or state and district are required",
		})
		return
	}

	cmp, err := h.transportSvc.Compare(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommodityNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error":   "commodity_not_found",
				"message": "No such commodity in the directory.",
			})
		case errors.Is(err, service.ErrSourceUnknown):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error":   "source_unknown",
				"message": "No geocoded market found for that district; supply coordinates.",
			})
		default:
			log.Printf("[handler] compare error: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "internal_error",
			})
		}
		return
	}

	writeJSON(w, http.StatusOK, cmp)
}

// ListVehicles handles GET /api/v1/transport/vehicles
//
// Returns the fixed vehicle tier set so clients can show capacities and
// per-km rates without hardcoding them.
func (h *TransportHandler) ListVehicles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"vehicles": compare.Tiers(),
	})
}
