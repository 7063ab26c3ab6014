package auth

import "fmt"

// PrincipalKind is the closed set of actor types the API knows about.
type PrincipalKind string

const (
	KindRequester PrincipalKind = "user"
	KindWorker    PrincipalKind = "serviceman"
	KindDealer    PrincipalKind = "dealer"
	KindAdmin     PrincipalKind = "admin"
)

// ParseKind maps a role string from a token or request to a PrincipalKind.
// Anything outside the closed set is rejected here rather than leaking into
// handlers as a free-form string.
func ParseKind(s string) (PrincipalKind, error) {
	switch PrincipalKind(s) {
	case KindRequester, KindWorker, KindDealer, KindAdmin:
		return PrincipalKind(s), nil
	default:
		return "", fmt.Errorf("unknown principal kind %q", s)
	}
}
