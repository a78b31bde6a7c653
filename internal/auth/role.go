package auth

import "github.com/agrohub/farm_market/internal/apperr"

// Role is the fixed capability class of an identity. It is resolved once when
// the session token is issued and never re-read from mutable storage.
type Role int

const (
	RoleFarmer Role = iota
	RoleCustomer
)

func (r Role) String() string {
	switch r {
	case RoleFarmer:
		return "farmer"
	case RoleCustomer:
		return "customer"
	}
	return "unknown"
}

func ParseRole(s string) (Role, error) {
	switch s {
	case "farmer":
		return RoleFarmer, nil
	case "customer":
		return RoleCustomer, nil
	}
	return 0, apperr.Invalid("unknown role %q", s)
}
