package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shaikfardeenhussain/fixroute/internal/booking/model"
	"github.com/shaikfardeenhussain/fixroute/internal/booking/service"
	"github.com/shaikfardeenhussain/fixroute/internal/common/apperr"
	"github.com/shaikfardeenhussain/fixroute/internal/common/auth"
)

type BookingHandler struct {
	Lifecycle *service.LifecycleService
}

func NewBookingHandler(lifecycle *service.LifecycleService) *BookingHandler {
	return &BookingHandler{Lifecycle: lifecycle}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req service.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	claims := auth.FromContext(r)
	b, err := h.Lifecycle.Create(r.Context(), claims.UserID, req)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "booking": b})
}

func (h *BookingHandler) ListUserBookings(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r)
	bookings, err := h.Lifecycle.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "bookings": bookings})
}

type statusUpdateRequest struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.BookingID == "" || req.Status == "" {
		http.Error(w, "booking_id and status required", http.StatusBadRequest)
		return
	}

	claims := auth.FromContext(r)
	b, err := h.Lifecycle.UpdateStatus(r.Context(), claims.UserID, req.BookingID, model.BookingStatus(req.Status))
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "booking": b})
}

func (h *BookingHandler) ListWorkerRequests(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r)
	bookings, err := h.Lifecycle.ListForServiceman(r.Context(), claims.UserID, nil)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "requests": bookings})
}

func (h *BookingHandler) ListWorkerAccepted(w http.ResponseWriter, r *http.Request) {
	accepted := model.StatusAccepted
	claims := auth.FromContext(r)
	bookings, err := h.Lifecycle.ListForServiceman(r.Context(), claims.UserID, &accepted)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "requests": bookings})
}
