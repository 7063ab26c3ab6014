package service

import (
	"context"
	"fmt"
	"math"

	"github.com/shaikfardeenhussain/fixroute/internal/billing/gateway"
	"github.com/shaikfardeenhussain/fixroute/internal/billing/model"
	bookingmodel "github.com/shaikfardeenhussain/fixroute/internal/booking/model"
	"github.com/shaikfardeenhussain/fixroute/internal/booking/rmq"
	"github.com/shaikfardeenhussain/fixroute/internal/common/apperr"
	"github.com/shaikfardeenhussain/fixroute/internal/common/logger"
	"github.com/shaikfardeenhussain/fixroute/internal/common/metrics"
)

type BillRepository interface {
	CreateForBooking(ctx context.Context, bill model.Bill) (*model.Bill, error)
	GetByID(ctx context.Context, id string) (*model.Bill, error)
	ListByBooking(ctx context.Context, bookingID string) ([]model.Bill, error)
	MarkPaid(ctx context.Context, billID string) (bool, error)
	CloseBooking(ctx context.Context, bookingID string) error
}

type BookingGetter interface {
	GetByID(ctx context.Context, id string) (*bookingmodel.Booking, error)
}

type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, receipt string) (*gateway.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

type EventPublisher interface {
	Publish(ctx context.Context, event rmq.BookingEvent)
}

// BillingService runs the settlement sequence that closes a booking.
type BillingService struct {
	bills    BillRepository
	bookings BookingGetter
	gateway  PaymentGateway
	events   EventPublisher
	metrics  *metrics.Metrics
	log      logger.Logger
}

func NewBillingService(bills BillRepository, bookings BookingGetter, gw PaymentGateway, events EventPublisher, m *metrics.Metrics, log logger.Logger) *BillingService {
	return &BillingService{bills: bills, bookings: bookings, gateway: gw, events: events, metrics: m, log: log}
}

type CreateBillRequest struct {
	BookingID      string   `json:"booking_id"`
	FinalPrice     *float64 `json:"final_price"`
	SparePartPrice float64  `json:"spare_part_price"`
	Description    string   `json:"description"`
}

// CreateBill prices the booking's settlement document and advances the
// booking to completed. The computed-price component is final minus spare
// part, never re-derived from a pricing model here.
func (s *BillingService) CreateBill(ctx context.Context, servicemanID string, req CreateBillRequest) (*model.Bill, error) {
	if req.BookingID == "" || req.FinalPrice == nil {
		return nil, fmt.Errorf("%w: booking_id and final_price are required", apperr.ErrInvalidBookingRequest)
	}
	if req.SparePartPrice < 0 || *req.FinalPrice < req.SparePartPrice {
		return nil, fmt.Errorf("%w: spare_part_price must be between 0 and final_price", apperr.ErrInvalidBookingRequest)
	}

	booking, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.ServicemanID != servicemanID {
		return nil, apperr.ErrForbidden
	}

	description := req.Description
	if description == "" {
		description = "AI generated bill"
	}

	bill, err := s.bills.CreateForBooking(ctx, model.Bill{
		BookingID:      booking.ID,
		UserID:         booking.UserID,
		ServicemanID:   servicemanID,
		Amount:         *req.FinalPrice,
		SparePartPrice: req.SparePartPrice,
		AIPrice:        *req.FinalPrice - req.SparePartPrice,
		Description:    description,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.BillsCreated.Inc()
	s.metrics.StatusTransitions.WithLabelValues(string(bookingmodel.StatusCompleted), "applied").Inc()
	s.events.Publish(ctx, rmq.BookingEvent{
		Type:         bookingmodel.EventBillSent,
		BookingID:    booking.ID,
		UserID:       booking.UserID,
		ServicemanID: servicemanID,
		Status:       bookingmodel.StatusCompleted,
	})
	s.log.Infof("bill %s sent for booking %s", bill.ID, booking.ID)
	return bill, nil
}

// PaymentIntent is what the payer's client needs to complete checkout.
// The gateway secret is deliberately absent.
type PaymentIntent struct {
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
	Key     string `json:"key"`
	BillID  string `json:"bill_id"`
}

// receiptMaxBillChars keeps "rcpt_"+id under the gateway's 40-character
// receipt limit.
const receiptMaxBillChars = 10

// CreatePayment opens a gateway order for the bill amount, in the
// smallest currency unit.
func (s *BillingService) CreatePayment(ctx context.Context, userID, billID string) (*PaymentIntent, error) {
	bill, err := s.bills.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.UserID != userID {
		return nil, apperr.ErrForbidden
	}

	receiptID := bill.ID
	if len(receiptID) > receiptMaxBillChars {
		receiptID = receiptID[:receiptMaxBillChars]
	}

	amount := int64(math.Round(bill.Amount * 100))
	order, err := s.gateway.CreateOrder(ctx, amount, "rcpt_"+receiptID)
	if err != nil {
		return nil, err
	}

	s.log.Infof("payment order %s created for bill %s", order.ID, bill.ID)
	return &PaymentIntent{
		OrderID: order.ID,
		Amount:  amount,
		Key:     s.gateway.KeyID(),
		BillID:  bill.ID,
	}, nil
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
	BillID    string `json:"bill_id"`
}

// VerifyPayment checks the gateway's settlement signature and, on match,
// marks the bill paid and the booking closed. The sequence is replay
// safe: a second verification with the same inputs re-asserts the closed
// booking and reports success without further effect.
func (s *BillingService) VerifyPayment(ctx context.Context, userID string, req VerifyPaymentRequest) error {
	bill, err := s.bills.GetByID(ctx, req.BillID)
	if err != nil {
		return err
	}
	if bill.UserID != userID {
		return apperr.ErrForbidden
	}

	if !s.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		s.metrics.SignatureMismatches.Inc()
		s.log.Warnf("signature mismatch for bill %s, order %s", bill.ID, req.OrderID)
		return apperr.ErrSignatureMismatch
	}

	changed, err := s.bills.MarkPaid(ctx, bill.ID)
	if err != nil {
		return err
	}

	// Runs on replays too, recovering a bill-paid/booking-open partial
	// failure from an earlier attempt.
	if err := s.bills.CloseBooking(ctx, bill.BookingID); err != nil {
		return err
	}

	if changed {
		s.metrics.PaymentsVerified.Inc()
		s.metrics.StatusTransitions.WithLabelValues(string(bookingmodel.StatusClosed), "applied").Inc()
		s.events.Publish(ctx, rmq.BookingEvent{
			Type:         bookingmodel.EventBookingClosed,
			BookingID:    bill.BookingID,
			UserID:       bill.UserID,
			ServicemanID: bill.ServicemanID,
			Status:       bookingmodel.StatusClosed,
		})
		s.log.Infof("payment verified for bill %s, booking %s closed", bill.ID, bill.BookingID)
	}
	return nil
}

// GetBill returns the bill when principalID is a party to it.
func (s *BillingService) GetBill(ctx context.Context, principalID, billID string) (*model.Bill, error) {
	bill, err := s.bills.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if !bill.VisibleTo(principalID) {
		return nil, apperr.ErrForbidden
	}
	return bill, nil
}

// ListBills returns the booking's bills when principalID is a party.
func (s *BillingService) ListBills(ctx context.Context, principalID, bookingID string) ([]model.Bill, error) {
	bills, err := s.bills.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if len(bills) == 0 {
		return nil, apperr.ErrNotFound
	}
	if !bills[0].VisibleTo(principalID) {
		return nil, apperr.ErrForbidden
	}
	return bills, nil
}
