package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Sentinel errors for the stable failure kinds the API exposes. Services
// return these (usually wrapped with context) and handlers translate them
// to HTTP statuses with WriteError.
var (
	ErrInvalidBookingRequest = errors.New("invalid booking request")
	ErrIllegalTransition     = errors.New("illegal status transition")
	ErrForbidden             = errors.New("forbidden")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrNotFound              = errors.New("not found")
	ErrRankingUnavailable    = errors.New("ranking service unavailable")
	ErrGatewayUnavailable    = errors.New("payment gateway unavailable")
	ErrSignatureMismatch     = errors.New("signature mismatch")

	// ErrBillExists guards the one-bill-per-booking rule.
	ErrBillExists = errors.New("bill already exists for this booking")
)

// Kind returns the stable machine-readable name for err, or "internal"
// when the error does not map to a known kind.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidBookingRequest):
		return "invalid_booking_request"
	case errors.Is(err, ErrIllegalTransition):
		return "illegal_transition"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrBookingNotFound):
		return "booking_not_found"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRankingUnavailable):
		return "ranking_unavailable"
	case errors.Is(err, ErrGatewayUnavailable):
		return "gateway_unavailable"
	case errors.Is(err, ErrSignatureMismatch):
		return "signature_mismatch"
	case errors.Is(err, ErrBillExists):
		return "bill_exists"
	default:
		return "internal"
	}
}

// HTTPStatus maps err to the response status for its kind.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidBookingRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrSignatureMismatch):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrIllegalTransition), errors.Is(err, ErrBillExists):
		return http.StatusConflict
	case errors.Is(err, ErrRankingUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrGatewayUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// WriteError writes the JSON error envelope for err.
func WriteError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(errorBody{Kind: Kind(err), Error: err.Error()})
}
