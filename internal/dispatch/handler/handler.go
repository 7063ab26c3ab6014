package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shaikfardeenhussain/fixroute/internal/common/apperr"
	"github.com/shaikfardeenhussain/fixroute/internal/dispatch/service"
	"github.com/shaikfardeenhussain/fixroute/internal/geo"
)

type RecommendHandler struct {
	Service *service.RecommendService
}

func NewRecommendHandler(svc *service.RecommendService) *RecommendHandler {
	return &RecommendHandler{Service: svc}
}

type recommendRequest struct {
	Lat           *float64 `json:"lat"`
	Lng           *float64 `json:"lng"`
	ServiceType   string   `json:"service_type"`
	MaxDistanceKm float64  `json:"max_distance_km"`
}

func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Lat == nil || req.Lng == nil {
		http.Error(w, "lat and lng required", http.StatusBadRequest)
		return
	}

	results, err := h.Service.Recommend(r.Context(),
		geo.Position{Lat: *req.Lat, Lng: *req.Lng}, req.ServiceType, req.MaxDistanceKm)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
}
