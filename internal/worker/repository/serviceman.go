package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaikfardeenhussain/fixroute/internal/common/apperr"
	"github.com/shaikfardeenhussain/fixroute/internal/worker/model"
)

type ServicemanRepository struct {
	DB *pgxpool.Pool
}

func NewServicemanRepository(database *pgxpool.Pool) *ServicemanRepository {
	return &ServicemanRepository{DB: database}
}

const servicemanColumns = `id, full_name, phone, email, base_cost, rating, is_available, location_lat, location_lng`

func scanServiceman(row pgx.Row) (*model.Serviceman, error) {
	var s model.Serviceman
	err := row.Scan(&s.ID, &s.FullName, &s.Phone, &s.Email,
		&s.BaseCost, &s.Rating, &s.IsAvailable, &s.LocationLat, &s.LocationLng)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan serviceman: %w", err)
	}
	return &s, nil
}

func (r *ServicemanRepository) GetByID(ctx context.Context, id string) (*model.Serviceman, error) {
	query := `SELECT ` + servicemanColumns + ` FROM servicemen WHERE id = $1`
	return scanServiceman(r.DB.QueryRow(ctx, query, id))
}

// ListAvailable returns every worker currently flagged available, whether
// or not they are broadcasting a position. The geo filter deals with the
// missing-position case.
func (r *ServicemanRepository) ListAvailable(ctx context.Context) ([]model.Serviceman, error) {
	query := `SELECT ` + servicemanColumns + ` FROM servicemen WHERE is_available = true`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query available servicemen: %w", err)
	}
	defer rows.Close()

	var servicemen []model.Serviceman
	for rows.Next() {
		s, err := scanServiceman(rows)
		if err != nil {
			return nil, err
		}
		servicemen = append(servicemen, *s)
	}
	return servicemen, rows.Err()
}

func (r *ServicemanRepository) UpdateLocation(ctx context.Context, id string, lat, lng float64) (*model.Serviceman, error) {
	query := `
		UPDATE servicemen
		SET location_lat = $1, location_lng = $2
		WHERE id = $3
		RETURNING ` + servicemanColumns
	return scanServiceman(r.DB.QueryRow(ctx, query, lat, lng, id))
}

// ClearLocation stops the worker from broadcasting: a null position means
// "not reachable" to the dispatcher.
func (r *ServicemanRepository) ClearLocation(ctx context.Context, id string) (*model.Serviceman, error) {
	query := `
		UPDATE servicemen
		SET location_lat = NULL, location_lng = NULL
		WHERE id = $1
		RETURNING ` + servicemanColumns
	return scanServiceman(r.DB.QueryRow(ctx, query, id))
}
