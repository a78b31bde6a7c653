package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/agrohub/farm_market/internal/apperr"
	"github.com/agrohub/farm_market/internal/auth"
	"github.com/agrohub/farm_market/internal/events"
	"github.com/agrohub/farm_market/internal/logging"
	"github.com/agrohub/farm_market/internal/models"
	"github.com/agrohub/farm_market/internal/service/cart"
)

// Store is the slice of the record store the checkout engine touches.
type Store interface {
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderBatch(ctx context.Context, orders []models.Order) error
	FindOrdersByToken(ctx context.Context, ownerID, token uuid.UUID) ([]models.Order, error)
	ListOrders(ctx context.Context, ownerID uuid.UUID) ([]models.Order, error)
	ClearCartLines(ctx context.Context, ownerID uuid.UUID, productIDs []uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Result reports one checkout attempt. CartClearFailed is a warning: the
// orders stand, but the cart could not be emptied and the client should
// refresh rather than re-submit blindly.
type Result struct {
	Orders          []models.Order `json:"orders"`
	OrdersPlaced    int            `json:"orders_placed"`
	TotalPrice      float64        `json:"total_price"`
	CartClearFailed bool           `json:"cart_clear_failed,omitempty"`
}

type CheckoutService struct {
	Store    Store
	Cart     *cart.CartService
	Producer events.Publisher
}

// Checkout converts the caller's cart into pending orders and empties the
// cart. Order insertion is one all-or-nothing batch: if it fails the cart is
// untouched and the same token can be retried; if only the cart clear fails,
// the orders stand and the result carries a warning. The token makes retries
// idempotent — a second call with a token whose batch already landed returns
// that batch instead of inserting again.
func (s *CheckoutService) Checkout(ctx context.Context, sess auth.Session, token uuid.UUID) (*Result, error) {
	if err := auth.Authorize(sess, auth.ActionPlaceOrder, sess.UserID); err != nil {
		return nil, err
	}
	if token == uuid.Nil {
		return nil, apperr.Invalid("checkout token is required")
	}

	prior, err := s.Store.FindOrdersByToken(ctx, sess.UserID, token)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if len(prior) > 0 {
		return s.replay(ctx, sess, prior)
	}

	lines, err := s.Cart.ListCart(ctx, sess)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return &Result{Orders: []models.Order{}}, nil
	}

	orders := make([]models.Order, 0, len(lines))
	for _, l := range lines {
		orders = append(orders, models.Order{
			OwnerID:       sess.UserID,
			ProductID:     l.Item.ProductID,
			Quantity:      l.Item.Quantity,
			UnitPrice:     l.Product.Price,
			Status:        models.OrderStatusPending,
			CheckoutToken: token,
		})
	}

	if err := s.Store.CreateOrderBatch(ctx, orders); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrCheckoutFailed, err)
	}

	result := &Result{
		Orders:       orders,
		OrdersPlaced: len(orders),
		TotalPrice:   cart.TotalPrice(lines),
	}

	if err := s.Store.ClearCartLines(ctx, sess.UserID, orderedProducts(orders)); err != nil {
		logging.FromContext(ctx).Warn("cart clear failed after order batch",
			"owner_id", sess.UserID, "token", token, "error", err)
		result.CartClearFailed = true
	}

	s.publish(ctx, sess.UserID, map[string]any{
		"type":          events.TypeOrderBatchPlaced,
		"owner_id":      sess.UserID.String(),
		"orders_placed": result.OrdersPlaced,
		"total_price":   result.TotalPrice,
	})
	return result, nil
}

// replay rebuilds the result of a batch that already landed and retries the
// cart clear a previous attempt may have left behind. Only the lines the
// batch ordered are cleared: anything added to the cart since the batch was
// confirmed stays put, visibly un-ordered, rather than being silently lost.
// Totals come from the unit prices recorded on the orders, so a catalog price
// change between attempts cannot change the reported result.
func (s *CheckoutService) replay(ctx context.Context, sess auth.Session, prior []models.Order) (*Result, error) {
	var total float64
	for _, o := range prior {
		total += float64(o.Quantity) * o.UnitPrice
	}

	result := &Result{
		Orders:       prior,
		OrdersPlaced: len(prior),
		TotalPrice:   total,
	}
	if err := s.Store.ClearCartLines(ctx, sess.UserID, orderedProducts(prior)); err != nil {
		result.CartClearFailed = true
	}
	return result, nil
}

func orderedProducts(orders []models.Order) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ProductID)
	}
	return ids
}

// BuyNow places a single pending order of quantity one, bypassing the cart.
// A delivery address is required.
func (s *CheckoutService) BuyNow(ctx context.Context, sess auth.Session, productID uuid.UUID, address string) (*models.Order, error) {
	if err := auth.Authorize(sess, auth.ActionPlaceOrder, sess.UserID); err != nil {
		return nil, err
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, apperr.Invalid("delivery address is required")
	}

	prod, err := s.Store.GetProduct(ctx, productID)
	if err != nil {
		return nil, apperr.Store(err)
	}

	order := &models.Order{
		OwnerID:   sess.UserID,
		ProductID: productID,
		Quantity:  1,
		UnitPrice: prod.Price,
		Status:    models.OrderStatusPending,
		Address:   address,
	}
	if _, err := s.Store.CreateOrder(ctx, order); err != nil {
		return nil, apperr.Store(err)
	}

	s.publish(ctx, sess.UserID, map[string]any{
		"type":          events.TypeOrderBatchPlaced,
		"owner_id":      sess.UserID.String(),
		"orders_placed": 1,
	})
	return order, nil
}

func (s *CheckoutService) ListOrders(ctx context.Context, sess auth.Session) ([]models.Order, error) {
	orders, err := s.Store.ListOrders(ctx, sess.UserID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	return orders, nil
}

func (s *CheckoutService) publish(ctx context.Context, key uuid.UUID, event map[string]any) {
	if s.Producer == nil {
		return
	}
	if err := s.Producer.Publish(ctx, key.String(), event); err != nil {
		logging.FromContext(ctx).Warn("event publish failed", "type", event["type"], "error", err)
	}
}
