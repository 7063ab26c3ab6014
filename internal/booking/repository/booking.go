package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaikfardeenhussain/fixroute/internal/booking/model"
	"github.com/shaikfardeenhussain/fixroute/internal/common/apperr"
)

type BookingRepository struct {
	DB *pgxpool.Pool
}

func NewBookingRepository(database *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{DB: database}
}

const bookingColumns = `id, user_id, serviceman_id, service_type, lat, lng,
	eta_predicted, fuel_type, fuel_liters, status,
	serviceman_lat, serviceman_lng, live_lat, live_lng, created_at`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.ServicemanID, &b.ServiceType, &b.Lat, &b.Lng,
		&b.ETAPredicted, &b.FuelType, &b.FuelLiters, &b.Status,
		&b.ServicemanLat, &b.ServicemanLng, &b.LiveLat, &b.LiveLng, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}
	return &b, nil
}

func (r *BookingRepository) Create(ctx context.Context, b model.Booking) (*model.Booking, error) {
	query := `
		INSERT INTO bookings (
			id, user_id, serviceman_id, service_type, lat, lng,
			eta_predicted, fuel_type, fuel_liters, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + bookingColumns

	return scanBooking(r.DB.QueryRow(ctx, query,
		uuid.NewString(), b.UserID, b.ServicemanID, b.ServiceType, b.Lat, b.Lng,
		b.ETAPredicted, b.FuelType, b.FuelLiters, model.StatusPending))
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBooking(r.DB.QueryRow(ctx, query, id))
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]model.Booking, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *BookingRepository) ListByServiceman(ctx context.Context, servicemanID string, status *model.BookingStatus) ([]model.Booking, error) {
	if status != nil {
		query := `SELECT ` + bookingColumns + `
			FROM bookings WHERE serviceman_id = $1 AND status = $2
			ORDER BY created_at DESC`
		return r.list(ctx, query, servicemanID, *status)
	}
	query := `SELECT ` + bookingColumns + `
		FROM bookings WHERE serviceman_id = $1
		ORDER BY created_at DESC`
	return r.list(ctx, query, servicemanID)
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings WHERE user_id = $1
		ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// UpdateStatusByWorker applies from→to scoped by booking id, acting worker
// id and the expected current status. The status predicate is the
// concurrency token: of two concurrent transition attempts only one can
// match, the other observes zero rows and gets a classified error.
func (r *BookingRepository) UpdateStatusByWorker(ctx context.Context, bookingID, servicemanID string, from, to model.BookingStatus, smLat, smLng *float64) (*model.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $1,
			serviceman_lat = COALESCE($2, serviceman_lat),
			serviceman_lng = COALESCE($3, serviceman_lng)
		WHERE id = $4 AND serviceman_id = $5 AND status = $6
		RETURNING ` + bookingColumns

	b, err := scanBooking(r.DB.QueryRow(ctx, query, to, smLat, smLng, bookingID, servicemanID, from))
	if err != nil {
		if errors.Is(err, apperr.ErrBookingNotFound) {
			return nil, r.classifyMiss(ctx, bookingID, servicemanID)
		}
		return nil, err
	}
	return b, nil
}

// UpdateLiveLocation overwrites the live position while the booking is
// accepted. Deliberately last-writer-wins: concurrent pushes are not
// ordered or versioned, only the latest position is ever read.
func (r *BookingRepository) UpdateLiveLocation(ctx context.Context, bookingID, servicemanID string, lat, lng float64) (*model.Booking, error) {
	query := `
		UPDATE bookings
		SET live_lat = $1, live_lng = $2
		WHERE id = $3 AND serviceman_id = $4 AND status = $5
		RETURNING ` + bookingColumns

	b, err := scanBooking(r.DB.QueryRow(ctx, query, lat, lng, bookingID, servicemanID, model.StatusAccepted))
	if err != nil {
		if errors.Is(err, apperr.ErrBookingNotFound) {
			return nil, r.classifyMiss(ctx, bookingID, servicemanID)
		}
		return nil, err
	}
	return b, nil
}

// classifyMiss turns a zero-row conditional update into the precise error
// kind: missing booking, wrong worker, or a status precondition failure.
func (r *BookingRepository) classifyMiss(ctx context.Context, bookingID, servicemanID string) error {
	b, err := r.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.ServicemanID != servicemanID {
		return apperr.ErrForbidden
	}
	return fmt.Errorf("%w: booking %s is %s", apperr.ErrIllegalTransition, bookingID, b.Status)
}
