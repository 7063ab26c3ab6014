package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shaikfardeenhussain/fixroute/internal/booking/model"
	"github.com/shaikfardeenhussain/fixroute/internal/common/logger"
	"github.com/shaikfardeenhussain/fixroute/internal/common/websocket"
)

type BookingLocationRepository interface {
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	UpdateLiveLocation(ctx context.Context, bookingID, servicemanID string, lat, lng float64) (*model.Booking, error)
}

// RelayService is the live-location surface: workers push positions for
// their accepted booking, anyone with the booking id reads them.
type RelayService struct {
	repo BookingLocationRepository
	hub  *websocket.Hub
	log  logger.Logger
}

func NewRelayService(repo BookingLocationRepository, hub *websocket.Hub, log logger.Logger) *RelayService {
	return &RelayService{repo: repo, hub: hub, log: log}
}

// TrackingView is the unauthenticated read model for a tracking link.
// TechLat/Lng resolve the live position when one has been pushed, fall
// back to the snapshot taken at acceptance, and stay null before either.
type TrackingView struct {
	UserLat float64             `json:"user_lat"`
	UserLng float64             `json:"user_lng"`
	TechLat *float64            `json:"tech_lat"`
	TechLng *float64            `json:"tech_lng"`
	Status  model.BookingStatus `json:"status"`
}

type livePush struct {
	BookingID string  `json:"booking_id"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

// Push records the worker's position on the booking and fans it out to WS
// subscribers of that booking.
func (s *RelayService) Push(ctx context.Context, servicemanID, bookingID string, lat, lng float64) error {
	if _, err := s.repo.UpdateLiveLocation(ctx, bookingID, servicemanID, lat, lng); err != nil {
		return fmt.Errorf("live location push failed: %w", err)
	}

	msg, _ := json.Marshal(livePush{BookingID: bookingID, Lat: lat, Lng: lng})
	s.hub.Publish(bookingID, msg)

	s.log.Debugw("live location pushed", map[string]any{"booking_id": bookingID})
	return nil
}

func (s *RelayService) Read(ctx context.Context, bookingID string) (*TrackingView, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	view := &TrackingView{
		UserLat: b.Lat,
		UserLng: b.Lng,
		Status:  b.Status,
	}
	switch {
	case b.LiveLat != nil && b.LiveLng != nil:
		view.TechLat, view.TechLng = b.LiveLat, b.LiveLng
	case b.ServicemanLat != nil && b.ServicemanLng != nil:
		view.TechLat, view.TechLng = b.ServicemanLat, b.ServicemanLng
	}
	return view, nil
}
