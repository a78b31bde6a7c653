package auth

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/agrohub/farm_market/internal/apperr"
)

// Session is the authenticated caller: identity plus its role for the
// session's lifetime. Every service operation receives it explicitly.
type Session struct {
	UserID uuid.UUID
	Role   Role
}

type Action int

const (
	ActionCreateProduct Action = iota
	ActionMutateProduct
	ActionDeleteProduct
	ActionMutateCart
	ActionPlaceOrder
)

func (a Action) String() string {
	switch a {
	case ActionCreateProduct:
		return "create_product"
	case ActionMutateProduct:
		return "mutate_product"
	case ActionDeleteProduct:
		return "delete_product"
	case ActionMutateCart:
		return "mutate_cart"
	case ActionPlaceOrder:
		return "place_order"
	}
	return "unknown"
}

// Authorize is the role gate: a pure decision over (role, ownership), no store
// access. resourceOwner is ignored for actions without an ownership requirement.
func Authorize(s Session, action Action, resourceOwner uuid.UUID) error {
	switch action {
	case ActionCreateProduct:
		if s.Role != RoleFarmer {
			return deny(action, "farmer role required")
		}
	case ActionMutateProduct, ActionDeleteProduct:
		if s.Role != RoleFarmer {
			return deny(action, "farmer role required")
		}
		if resourceOwner != s.UserID {
			return deny(action, "not the owning farmer")
		}
	case ActionMutateCart:
		if s.Role != RoleCustomer {
			return deny(action, "customer role required")
		}
		if resourceOwner != s.UserID {
			return deny(action, "not the cart owner")
		}
	case ActionPlaceOrder:
		if s.Role != RoleCustomer {
			return deny(action, "customer role required")
		}
	default:
		return deny(action, "unknown action")
	}
	return nil
}

func deny(action Action, reason string) error {
	return fmt.Errorf("%w: %s: %s", apperr.ErrForbidden, action, reason)
}
