package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shaikfardeenhussain/fixroute/internal/common/apperr"
	"github.com/shaikfardeenhussain/fixroute/internal/common/auth"
	"github.com/shaikfardeenhussain/fixroute/internal/worker/service"
)

type ServicemanHandler struct {
	Service *service.ServicemanService
}

func NewServicemanHandler(svc *service.ServicemanService) *ServicemanHandler {
	return &ServicemanHandler{Service: svc}
}

type locationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (h *ServicemanHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Lat == nil || req.Lng == nil {
		http.Error(w, "lat and lng required", http.StatusBadRequest)
		return
	}

	claims := auth.FromContext(r)
	sm, err := h.Service.UpdateLocation(r.Context(), claims.UserID, *req.Lat, *req.Lng)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "serviceman": sm})
}

func (h *ServicemanHandler) ClearLocation(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r)
	sm, err := h.Service.ClearLocation(r.Context(), claims.UserID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "serviceman": sm})
}
