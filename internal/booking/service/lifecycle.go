package service

import (
	"context"
	"fmt"

	"github.com/shaikfardeenhussain/fixroute/internal/booking/model"
	"github.com/shaikfardeenhussain/fixroute/internal/booking/rmq"
	"github.com/shaikfardeenhussain/fixroute/internal/common/apperr"
	"github.com/shaikfardeenhussain/fixroute/internal/common/logger"
	"github.com/shaikfardeenhussain/fixroute/internal/common/metrics"
	"github.com/shaikfardeenhussain/fixroute/internal/identity"
	workermodel "github.com/shaikfardeenhussain/fixroute/internal/worker/model"
)

type BookingRepository interface {
	Create(ctx context.Context, b model.Booking) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByServiceman(ctx context.Context, servicemanID string, status *model.BookingStatus) ([]model.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
	UpdateStatusByWorker(ctx context.Context, bookingID, servicemanID string, from, to model.BookingStatus, smLat, smLng *float64) (*model.Booking, error)
}

type WorkerLocator interface {
	GetByID(ctx context.Context, id string) (*workermodel.Serviceman, error)
}

type IdentityStore interface {
	FindRequester(ctx context.Context, id string) (*identity.Account, error)
	FindWorker(ctx context.Context, id string) (*identity.Account, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event rmq.BookingEvent)
}

// LifecycleService owns the booking status state machine.
type LifecycleService struct {
	repo     BookingRepository
	workers  WorkerLocator
	identity IdentityStore
	events   EventPublisher
	metrics  *metrics.Metrics
	log      logger.Logger
}

func NewLifecycleService(repo BookingRepository, workers WorkerLocator, ids IdentityStore, events EventPublisher, m *metrics.Metrics, log logger.Logger) *LifecycleService {
	return &LifecycleService{repo: repo, workers: workers, identity: ids, events: events, metrics: m, log: log}
}

type CreateBookingRequest struct {
	ServicemanID string   `json:"serviceman_id"`
	ServiceType  string   `json:"service_type"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	ETAPredicted *float64 `json:"eta_predicted"`
	FuelType     *string  `json:"fuel_type"`
	FuelLiters   *float64 `json:"fuel_liters"`
}

// Create opens a pending booking for the requester.
func (s *LifecycleService) Create(ctx context.Context, userID string, req CreateBookingRequest) (*model.Booking, error) {
	if req.ServicemanID == "" || req.Lat == nil || req.Lng == nil {
		return nil, fmt.Errorf("%w: serviceman_id, lat and lng are required", apperr.ErrInvalidBookingRequest)
	}

	b, err := s.repo.Create(ctx, model.Booking{
		UserID:       userID,
		ServicemanID: req.ServicemanID,
		ServiceType:  req.ServiceType,
		Lat:          *req.Lat,
		Lng:          *req.Lng,
		ETAPredicted: req.ETAPredicted,
		FuelType:     req.FuelType,
		FuelLiters:   req.FuelLiters,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.metrics.BookingsCreated.Inc()
	s.events.Publish(ctx, rmq.BookingEvent{
		Type:         model.EventBookingCreated,
		BookingID:    b.ID,
		UserID:       b.UserID,
		ServicemanID: b.ServicemanID,
		Status:       b.Status,
	})
	s.log.Infof("booking %s created for user %s", b.ID, userID)
	return b, nil
}

// UpdateStatus applies a worker decision on a pending booking. On
// acceptance the worker's declared position is snapshotted onto the
// booking; a worker without a position still accepts, the snapshot is
// simply omitted.
func (s *LifecycleService) UpdateStatus(ctx context.Context, servicemanID, bookingID string, to model.BookingStatus) (*model.BookingWithCounterparty, error) {
	if !model.CanTransition(model.StatusPending, to) {
		return nil, fmt.Errorf("%w: pending bookings cannot move to %s", apperr.ErrIllegalTransition, to)
	}
	if to != model.StatusAccepted && to != model.StatusRejected {
		return nil, fmt.Errorf("%w: workers may only accept or reject", apperr.ErrIllegalTransition)
	}

	var smLat, smLng *float64
	if to == model.StatusAccepted {
		sm, err := s.workers.GetByID(ctx, servicemanID)
		if err != nil {
			s.log.Warnf("could not fetch serviceman %s location for snapshot: %v", servicemanID, err)
		} else if sm.LocationLat != nil && sm.LocationLng != nil {
			smLat, smLng = sm.LocationLat, sm.LocationLng
		}
	}

	b, err := s.repo.UpdateStatusByWorker(ctx, bookingID, servicemanID, model.StatusPending, to, smLat, smLng)
	if err != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(to), "denied").Inc()
		return nil, err
	}

	s.metrics.StatusTransitions.WithLabelValues(string(to), "applied").Inc()
	eventType := model.EventBookingAccepted
	if to == model.StatusRejected {
		eventType = model.EventBookingRejected
	}
	s.events.Publish(ctx, rmq.BookingEvent{
		Type:         eventType,
		BookingID:    b.ID,
		UserID:       b.UserID,
		ServicemanID: b.ServicemanID,
		Status:       b.Status,
	})

	return s.withRequester(ctx, *b), nil
}

// ListForServiceman returns the worker's bookings, newest first, each with
// the requester summary attached.
func (s *LifecycleService) ListForServiceman(ctx context.Context, servicemanID string, status *model.BookingStatus) ([]model.BookingWithCounterparty, error) {
	bookings, err := s.repo.ListByServiceman(ctx, servicemanID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	out := make([]model.BookingWithCounterparty, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, *s.withRequester(ctx, b))
	}
	return out, nil
}

// ListForUser returns the requester's bookings with the worker summary
// attached.
func (s *LifecycleService) ListForUser(ctx context.Context, userID string) ([]model.BookingWithCounterparty, error) {
	bookings, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	out := make([]model.BookingWithCounterparty, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, *s.withWorker(ctx, b))
	}
	return out, nil
}

// withRequester attaches the requester account to the booking. The lookup
// is best effort: on failure the counterparty stays null and the caller
// still gets the booking.
func (s *LifecycleService) withRequester(ctx context.Context, b model.Booking) *model.BookingWithCounterparty {
	account, err := s.identity.FindRequester(ctx, b.UserID)
	if err != nil {
		s.log.Warnf("counterparty lookup failed for user %s: %v", b.UserID, err)
		account = nil
	}
	return &model.BookingWithCounterparty{Booking: b, Counterparty: account}
}

func (s *LifecycleService) withWorker(ctx context.Context, b model.Booking) *model.BookingWithCounterparty {
	account, err := s.identity.FindWorker(ctx, b.ServicemanID)
	if err != nil {
		s.log.Warnf("counterparty lookup failed for serviceman %s: %v", b.ServicemanID, err)
		account = nil
	}
	return &model.BookingWithCounterparty{Booking: b, Counterparty: account}
}
