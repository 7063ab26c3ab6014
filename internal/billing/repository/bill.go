package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaikfardeenhussain/fixroute/internal/billing/model"
	bookingmodel "github.com/shaikfardeenhussain/fixroute/internal/booking/model"
	"github.com/shaikfardeenhussain/fixroute/internal/common/apperr"
)

type BillRepository struct {
	DB *pgxpool.Pool
}

func NewBillRepository(database *pgxpool.Pool) *BillRepository {
	return &BillRepository{DB: database}
}

const billColumns = `id, booking_id, user_id, serviceman_id, amount,
	spare_part_price, ai_price, description, status, created_at`

func scanBill(row pgx.Row) (*model.Bill, error) {
	var b model.Bill
	err := row.Scan(&b.ID, &b.BookingID, &b.UserID, &b.ServicemanID, &b.Amount,
		&b.SparePartPrice, &b.AIPrice, &b.Description, &b.Status, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan bill: %w", err)
	}
	return &b, nil
}

// CreateForBooking inserts the bill and advances the booking to completed
// in one transaction, so a bill never exists for a booking that did not
// move. The booking update is conditional on status=accepted and on the
// acting worker; the bills.booking_id unique index enforces one bill per
// booking.
func (r *BillRepository) CreateForBooking(ctx context.Context, bill model.Bill) (*model.Bill, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	insert := `
		INSERT INTO bills (
			id, booking_id, user_id, serviceman_id, amount,
			spare_part_price, ai_price, description, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (booking_id) DO NOTHING
		RETURNING ` + billColumns

	created, err := scanBill(tx.QueryRow(ctx, insert,
		uuid.NewString(), bill.BookingID, bill.UserID, bill.ServicemanID, bill.Amount,
		bill.SparePartPrice, bill.AIPrice, bill.Description, model.BillSent))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrBillExists
		}
		return nil, err
	}

	update := `
		UPDATE bookings
		SET status = $1
		WHERE id = $2 AND serviceman_id = $3 AND status = $4
	`
	tag, err := tx.Exec(ctx, update,
		bookingmodel.StatusCompleted, bill.BookingID, bill.ServicemanID, bookingmodel.StatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to complete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: booking %s is not accepted by this worker",
			apperr.ErrIllegalTransition, bill.BookingID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit bill: %w", err)
	}
	return created, nil
}

func (r *BillRepository) GetByID(ctx context.Context, id string) (*model.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = $1`
	return scanBill(r.DB.QueryRow(ctx, query, id))
}

func (r *BillRepository) ListByBooking(ctx context.Context, bookingID string) ([]model.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE booking_id = $1`

	rows, err := r.DB.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer rows.Close()

	var bills []model.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, *b)
	}
	return bills, rows.Err()
}

// MarkPaid applies sent→paid conditionally. It returns (false, nil) when
// the bill was already paid, letting verification replays stay no-ops.
func (r *BillRepository) MarkPaid(ctx context.Context, billID string) (bool, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE bills SET status = $1 WHERE id = $2 AND status = $3`,
		model.BillPaid, billID, model.BillSent)
	if err != nil {
		return false, fmt.Errorf("failed to mark bill paid: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	bill, err := r.GetByID(ctx, billID)
	if err != nil {
		return false, err
	}
	if bill.Status == model.BillPaid {
		return false, nil
	}
	return false, fmt.Errorf("%w: bill %s is %s", apperr.ErrIllegalTransition, billID, bill.Status)
}

// CloseBooking drives completed→closed. Already-closed bookings are fine:
// the settle sequence re-runs this after a partial failure.
func (r *BillRepository) CloseBooking(ctx context.Context, bookingID string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE bookings SET status = $1 WHERE id = $2 AND status = $3`,
		bookingmodel.StatusClosed, bookingID, bookingmodel.StatusCompleted)
	if err != nil {
		return fmt.Errorf("failed to close booking: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var status bookingmodel.BookingStatus
	err = r.DB.QueryRow(ctx, `SELECT status FROM bookings WHERE id = $1`, bookingID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.ErrBookingNotFound
		}
		return fmt.Errorf("failed to check booking status: %w", err)
	}
	if status == bookingmodel.StatusClosed {
		return nil
	}
	return fmt.Errorf("%w: booking %s is %s", apperr.ErrIllegalTransition, bookingID, status)
}
