package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	gorilla "github.com/gorilla/websocket"

	"github.com/shaikfardeenhussain/fixroute/internal/common/apperr"
	"github.com/shaikfardeenhussain/fixroute/internal/common/auth"
	"github.com/shaikfardeenhussain/fixroute/internal/common/logger"
	"github.com/shaikfardeenhussain/fixroute/internal/common/websocket"
	"github.com/shaikfardeenhussain/fixroute/internal/tracking/service"
)

var upgrader = gorilla.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type TrackingHandler struct {
	Relay *service.RelayService
	Hub   *websocket.Hub
	log   logger.Logger
}

func NewTrackingHandler(relay *service.RelayService, hub *websocket.Hub, log logger.Logger) *TrackingHandler {
	return &TrackingHandler{Relay: relay, Hub: hub, log: log}
}

type pushRequest struct {
	BookingID string   `json:"booking_id"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
}

func (h *TrackingHandler) PushLocation(w http.ResponseWriter, r *http.Request) {
	var req pushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.BookingID == "" || req.Lat == nil || req.Lng == nil {
		http.Error(w, "booking_id, lat and lng required", http.StatusBadRequest)
		return
	}

	claims := auth.FromContext(r)
	if err := h.Relay.Push(r.Context(), claims.UserID, req.BookingID, *req.Lat, *req.Lng); err != nil {
		apperr.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
}

// ReadTracking serves GET /api/live-tracking/{booking_id}. Tracking links
// are shareable, so there is no authentication here.
func (h *TrackingHandler) ReadTracking(w http.ResponseWriter, r *http.Request) {
	bookingID := strings.TrimPrefix(r.URL.Path, "/api/live-tracking/")
	if bookingID == "" {
		http.Error(w, "booking_id required", http.StatusBadRequest)
		return
	}

	view, err := h.Relay.Read(r.Context(), bookingID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":  true,
		"user_lat": view.UserLat,
		"user_lng": view.UserLng,
		"tech_lat": view.TechLat,
		"tech_lng": view.TechLng,
		"status":   view.Status,
	})
}

// TrackWS serves GET /ws/track/{booking_id}: upgrades the connection and
// streams every live push for the booking until the peer goes away.
func (h *TrackingHandler) TrackWS(w http.ResponseWriter, r *http.Request) {
	bookingID := strings.TrimPrefix(r.URL.Path, "/ws/track/")
	if bookingID == "" {
		http.Error(w, "booking_id required", http.StatusBadRequest)
		return
	}

	if _, err := h.Relay.Read(r.Context(), bookingID); err != nil {
		apperr.WriteError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("ws upgrade failed for booking %s: %v", bookingID, err)
		return
	}

	client := websocket.NewClient(conn)
	h.Hub.Subscribe(bookingID, client)
	h.log.Debugw("tracker subscribed", map[string]any{"booking_id": bookingID})

	go client.WritePump()

	// Reads are discarded; a read error means the tracker left.
	go func() {
		defer func() {
			h.Hub.Unsubscribe(bookingID, client)
			client.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
