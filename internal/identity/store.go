// Package identity is the read-side boundary to the account store. The
// engine only needs enough of a principal to denormalize a counterparty
// onto responses; account creation and credential checks live elsewhere.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaikfardeenhussain/fixroute/internal/common/apperr"
	"github.com/shaikfardeenhussain/fixroute/internal/common/auth"
)

// Account is the denormalized summary attached to booking responses.
type Account struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(database *pgxpool.Pool) *Store {
	return &Store{DB: database}
}

func (s *Store) FindRequester(ctx context.Context, id string) (*Account, error) {
	return s.find(ctx, "users", id)
}

func (s *Store) FindWorker(ctx context.Context, id string) (*Account, error) {
	return s.find(ctx, "servicemen", id)
}

// FindByKind resolves an account through the typed accessor for its kind.
// Kinds without an account surface here are rejected instead of being
// looked up in a caller-chosen table.
func (s *Store) FindByKind(ctx context.Context, kind auth.PrincipalKind, id string) (*Account, error) {
	switch kind {
	case auth.KindRequester:
		return s.FindRequester(ctx, id)
	case auth.KindWorker:
		return s.FindWorker(ctx, id)
	default:
		return nil, fmt.Errorf("no account lookup for principal kind %q", kind)
	}
}

func (s *Store) find(ctx context.Context, table, id string) (*Account, error) {
	// table is one of two compile-time constants, never caller input.
	query := `SELECT id, full_name, phone FROM ` + table + ` WHERE id = $1`

	var a Account
	err := s.DB.QueryRow(ctx, query, id).Scan(&a.ID, &a.FullName, &a.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return &a, nil
}
