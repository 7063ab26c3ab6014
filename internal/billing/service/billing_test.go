package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaikfardeenhussain/fixroute/internal/billing/gateway"
	"github.com/shaikfardeenhussain/fixroute/internal/billing/model"
	bookingmodel "github.com/shaikfardeenhussain/fixroute/internal/booking/model"
	"github.com/shaikfardeenhussain/fixroute/internal/booking/rmq"
	"github.com/shaikfardeenhussain/fixroute/internal/common/apperr"
	"github.com/shaikfardeenhussain/fixroute/internal/common/logger"
	"github.com/shaikfardeenhussain/fixroute/internal/common/metrics"
)

type fakeBillRepo struct {
	bills          map[string]*model.Bill
	bookingsClosed map[string]int
}

func newFakeBillRepo(bills ...*model.Bill) *fakeBillRepo {
	r := &fakeBillRepo{bills: map[string]*model.Bill{}, bookingsClosed: map[string]int{}}
	for _, b := range bills {
		r.bills[b.ID] = b
	}
	return r
}

func (r *fakeBillRepo) CreateForBooking(_ context.Context, bill model.Bill) (*model.Bill, error) {
	for _, existing := range r.bills {
		if existing.BookingID == bill.BookingID {
			return nil, apperr.ErrBillExists
		}
	}
	bill.ID = "bill-new"
	bill.Status = model.BillSent
	r.bills[bill.ID] = &bill
	return &bill, nil
}

func (r *fakeBillRepo) GetByID(_ context.Context, id string) (*model.Bill, error) {
	b, ok := r.bills[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return b, nil
}

func (r *fakeBillRepo) ListByBooking(_ context.Context, bookingID string) ([]model.Bill, error) {
	var out []model.Bill
	for _, b := range r.bills {
		if b.BookingID == bookingID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBillRepo) MarkPaid(_ context.Context, billID string) (bool, error) {
	b, ok := r.bills[billID]
	if !ok {
		return false, apperr.ErrNotFound
	}
	if b.Status == model.BillPaid {
		return false, nil
	}
	b.Status = model.BillPaid
	return true, nil
}

func (r *fakeBillRepo) CloseBooking(_ context.Context, bookingID string) error {
	r.bookingsClosed[bookingID]++
	return nil
}

type fakeBookingGetter struct {
	bookings map[string]*bookingmodel.Booking
}

func (f *fakeBookingGetter) GetByID(_ context.Context, id string) (*bookingmodel.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, apperr.ErrBookingNotFound
	}
	return b, nil
}

type fakeGateway struct {
	orders    []gateway.Order
	validSigs map[string]bool
	orderErr  error
}

func (f *fakeGateway) CreateOrder(_ context.Context, amount int64, receipt string) (*gateway.Order, error) {
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	order := gateway.Order{ID: "order_1", Amount: amount, Currency: "INR", Receipt: receipt, Status: "created"}
	f.orders = append(f.orders, order)
	return &order, nil
}

func (f *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return f.validSigs[orderID+"|"+paymentID+"|"+signature]
}

func (f *fakeGateway) KeyID() string { return "key_abc" }

type capturedEvents struct {
	events []rmq.BookingEvent
}

func (c *capturedEvents) Publish(_ context.Context, event rmq.BookingEvent) {
	c.events = append(c.events, event)
}

func ptr[T any](v T) *T { return &v }

func newBilling(bills *fakeBillRepo, bookings *fakeBookingGetter, gw *fakeGateway) (*BillingService, *capturedEvents) {
	if bookings == nil {
		bookings = &fakeBookingGetter{bookings: map[string]*bookingmodel.Booking{}}
	}
	if gw == nil {
		gw = &fakeGateway{validSigs: map[string]bool{}}
	}
	events := &capturedEvents{}
	return NewBillingService(bills, bookings, gw, events, metrics.NewNop(), logger.Nop{}), events
}

func acceptedBooking() *bookingmodel.Booking {
	return &bookingmodel.Booking{
		ID: "bk-1", UserID: "u-1", ServicemanID: "sm-1", Status: bookingmodel.StatusAccepted,
	}
}

func TestCreateBillComputesPriceSplit(t *testing.T) {
	bills := newFakeBillRepo()
	bookings := &fakeBookingGetter{bookings: map[string]*bookingmodel.Booking{"bk-1": acceptedBooking()}}
	svc, events := newBilling(bills, bookings, nil)

	bill, err := svc.CreateBill(context.Background(), "sm-1", CreateBillRequest{
		BookingID:      "bk-1",
		FinalPrice:     ptr(500.0),
		SparePartPrice: 150,
	})
	require.NoError(t, err)

	assert.Equal(t, 500.0, bill.Amount)
	assert.Equal(t, 150.0, bill.SparePartPrice)
	assert.Equal(t, 350.0, bill.AIPrice)
	assert.Equal(t, bill.Amount, bill.AIPrice+bill.SparePartPrice)
	assert.Equal(t, model.BillSent, bill.Status)
	assert.Equal(t, "AI generated bill", bill.Description)

	require.Len(t, events.events, 1)
	assert.Equal(t, bookingmodel.EventBillSent, events.events[0].Type)
}

func TestCreateBillValidation(t *testing.T) {
	bookings := &fakeBookingGetter{bookings: map[string]*bookingmodel.Booking{"bk-1": acceptedBooking()}}
	svc, _ := newBilling(newFakeBillRepo(), bookings, nil)

	cases := []CreateBillRequest{
		{FinalPrice: ptr(500.0)},
		{BookingID: "bk-1"},
		{BookingID: "bk-1", FinalPrice: ptr(500.0), SparePartPrice: -1},
		{BookingID: "bk-1", FinalPrice: ptr(100.0), SparePartPrice: 150},
	}
	for _, req := range cases {
		_, err := svc.CreateBill(context.Background(), "sm-1", req)
		assert.ErrorIs(t, err, apperr.ErrInvalidBookingRequest)
	}
}

func TestCreateBillWrongWorkerForbidden(t *testing.T) {
	bookings := &fakeBookingGetter{bookings: map[string]*bookingmodel.Booking{"bk-1": acceptedBooking()}}
	svc, _ := newBilling(newFakeBillRepo(), bookings, nil)

	_, err := svc.CreateBill(context.Background(), "sm-other", CreateBillRequest{
		BookingID: "bk-1", FinalPrice: ptr(500.0),
	})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestCreateBillDuplicateRejected(t *testing.T) {
	bills := newFakeBillRepo(&model.Bill{
		ID: "bill-1", BookingID: "bk-1", UserID: "u-1", ServicemanID: "sm-1", Status: model.BillSent,
	})
	bookings := &fakeBookingGetter{bookings: map[string]*bookingmodel.Booking{"bk-1": acceptedBooking()}}
	svc, _ := newBilling(bills, bookings, nil)

	_, err := svc.CreateBill(context.Background(), "sm-1", CreateBillRequest{
		BookingID: "bk-1", FinalPrice: ptr(500.0),
	})
	assert.ErrorIs(t, err, apperr.ErrBillExists)
}

func TestCreatePaymentBuildsIntent(t *testing.T) {
	bills := newFakeBillRepo(&model.Bill{
		ID: "0123456789abcdef", BookingID: "bk-1", UserID: "u-1", ServicemanID: "sm-1",
		Amount: 500.50, Status: model.BillSent,
	})
	gw := &fakeGateway{validSigs: map[string]bool{}}
	svc, _ := newBilling(bills, nil, gw)

	intent, err := svc.CreatePayment(context.Background(), "u-1", "0123456789abcdef")
	require.NoError(t, err)

	assert.Equal(t, "order_1", intent.OrderID)
	assert.Equal(t, int64(50050), intent.Amount)
	assert.Equal(t, "key_abc", intent.Key)
	assert.Equal(t, "0123456789abcdef", intent.BillID)

	require.Len(t, gw.orders, 1)
	assert.Equal(t, "rcpt_0123456789", gw.orders[0].Receipt)
	assert.LessOrEqual(t, len(gw.orders[0].Receipt), 40)
}

func TestCreatePaymentOnlyForBilledUser(t *testing.T) {
	bills := newFakeBillRepo(&model.Bill{
		ID: "bill-1", BookingID: "bk-1", UserID: "u-1", ServicemanID: "sm-1", Amount: 100,
	})
	svc, _ := newBilling(bills, nil, nil)

	_, err := svc.CreatePayment(context.Background(), "u-other", "bill-1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestCreatePaymentGatewayDown(t *testing.T) {
	bills := newFakeBillRepo(&model.Bill{
		ID: "bill-1", BookingID: "bk-1", UserID: "u-1", ServicemanID: "sm-1", Amount: 100,
	})
	gw := &fakeGateway{orderErr: apperr.ErrGatewayUnavailable}
	svc, _ := newBilling(bills, nil, gw)

	_, err := svc.CreatePayment(context.Background(), "u-1", "bill-1")
	assert.ErrorIs(t, err, apperr.ErrGatewayUnavailable)
}

func TestVerifyPaymentSettlesAndCloses(t *testing.T) {
	bills := newFakeBillRepo(&model.Bill{
		ID: "bill-1", BookingID: "bk-1", UserID: "u-1", ServicemanID: "sm-1",
		Amount: 500, Status: model.BillSent,
	})
	gw := &fakeGateway{validSigs: map[string]bool{"order_1|pay_1|sig": true}}
	svc, events := newBilling(bills, nil, gw)

	err := svc.VerifyPayment(context.Background(), "u-1", VerifyPaymentRequest{
		OrderID: "order_1", PaymentID: "pay_1", Signature: "sig", BillID: "bill-1",
	})
	require.NoError(t, err)

	assert.Equal(t, model.BillPaid, bills.bills["bill-1"].Status)
	assert.Equal(t, 1, bills.bookingsClosed["bk-1"])

	require.Len(t, events.events, 1)
	assert.Equal(t, bookingmodel.EventBookingClosed, events.events[0].Type)
}

func TestVerifyPaymentSignatureMismatchLeavesState(t *testing.T) {
	bills := newFakeBillRepo(&model.Bill{
		ID: "bill-1", BookingID: "bk-1", UserID: "u-1", ServicemanID: "sm-1",
		Amount: 500, Status: model.BillSent,
	})
	gw := &fakeGateway{validSigs: map[string]bool{}}
	svc, events := newBilling(bills, nil, gw)

	err := svc.VerifyPayment(context.Background(), "u-1", VerifyPaymentRequest{
		OrderID: "order_1", PaymentID: "pay_1", Signature: "forged", BillID: "bill-1",
	})
	assert.ErrorIs(t, err, apperr.ErrSignatureMismatch)

	assert.Equal(t, model.BillSent, bills.bills["bill-1"].Status)
	assert.Zero(t, bills.bookingsClosed["bk-1"])
	assert.Empty(t, events.events)
}

func TestVerifyPaymentReplayIsIdempotent(t *testing.T) {
	bills := newFakeBillRepo(&model.Bill{
		ID: "bill-1", BookingID: "bk-1", UserID: "u-1", ServicemanID: "sm-1",
		Amount: 500, Status: model.BillSent,
	})
	gw := &fakeGateway{validSigs: map[string]bool{"order_1|pay_1|sig": true}}
	svc, events := newBilling(bills, nil, gw)

	req := VerifyPaymentRequest{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig", BillID: "bill-1"}
	require.NoError(t, svc.VerifyPayment(context.Background(), "u-1", req))
	require.NoError(t, svc.VerifyPayment(context.Background(), "u-1", req))

	assert.Equal(t, model.BillPaid, bills.bills["bill-1"].Status)
	// Closing re-runs on the replay, events do not.
	assert.Equal(t, 2, bills.bookingsClosed["bk-1"])
	assert.Len(t, events.events, 1)
}

func TestVerifyPaymentOnlyForBilledUser(t *testing.T) {
	bills := newFakeBillRepo(&model.Bill{
		ID: "bill-1", BookingID: "bk-1", UserID: "u-1", ServicemanID: "sm-1",
		Amount: 500, Status: model.BillSent,
	})
	gw := &fakeGateway{validSigs: map[string]bool{"order_1|pay_1|sig": true}}
	svc, _ := newBilling(bills, nil, gw)

	err := svc.VerifyPayment(context.Background(), "u-other", VerifyPaymentRequest{
		OrderID: "order_1", PaymentID: "pay_1", Signature: "sig", BillID: "bill-1",
	})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, model.BillSent, bills.bills["bill-1"].Status)
}

func TestGetBillVisibility(t *testing.T) {
	bills := newFakeBillRepo(&model.Bill{
		ID: "bill-1", BookingID: "bk-1", UserID: "u-1", ServicemanID: "sm-1",
	})
	svc, _ := newBilling(bills, nil, nil)

	for _, principal := range []string{"u-1", "sm-1"} {
		bill, err := svc.GetBill(context.Background(), principal, "bill-1")
		require.NoError(t, err)
		assert.Equal(t, "bill-1", bill.ID)
	}

	_, err := svc.GetBill(context.Background(), "stranger", "bill-1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.GetBill(context.Background(), "u-1", "bill-missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListBillsVisibility(t *testing.T) {
	bills := newFakeBillRepo(&model.Bill{
		ID: "bill-1", BookingID: "bk-1", UserID: "u-1", ServicemanID: "sm-1",
	})
	svc, _ := newBilling(bills, nil, nil)

	out, err := svc.ListBills(context.Background(), "u-1", "bk-1")
	require.NoError(t, err)
	assert.Len(t, out, 1)

	_, err = svc.ListBills(context.Background(), "stranger", "bk-1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.ListBills(context.Background(), "u-1", "bk-unbilled")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
