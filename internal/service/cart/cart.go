package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrohub/farm_market/internal/apperr"
	"github.com/agrohub/farm_market/internal/auth"
	"github.com/agrohub/farm_market/internal/models"
	"github.com/agrohub/farm_market/internal/repo"
)

// Line is one resolved cart entry: the stored item joined with its product.
type Line struct {
	Item    models.CartItem `json:"item"`
	Product models.Product  `json:"product"`
}

type CartService struct {
	Repo *repo.GormRepo
}

// AddToCart adds one unit of the product to the caller's cart, consolidating
// into an existing line when there is one. The repo increment is atomic, so
// concurrent adds for the same (customer, product) never fork into two lines
// or drop an increment.
func (s *CartService) AddToCart(ctx context.Context, sess auth.Session, productID uuid.UUID) (*models.CartItem, error) {
	if err := auth.Authorize(sess, auth.ActionMutateCart, sess.UserID); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, apperr.Invalid("product id is required")
	}

	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		return nil, apperr.Store(err)
	}

	item, err := s.Repo.UpsertIncrement(ctx, sess.UserID, productID, 1)
	if err != nil {
		return nil, apperr.Store(err)
	}
	return item, nil
}

// SetQuantity updates a line's quantity; zero or less removes the line.
func (s *CartService) SetQuantity(ctx context.Context, sess auth.Session, itemID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, sess, itemID)
	}

	item, err := s.Repo.GetCartItem(ctx, itemID)
	if err != nil {
		return apperr.Store(err)
	}
	if err := auth.Authorize(sess, auth.ActionMutateCart, item.OwnerID); err != nil {
		return err
	}

	if err := s.Repo.SetCartItemQuantity(ctx, itemID, uint(quantity)); err != nil {
		return apperr.Store(err)
	}
	return nil
}

// RemoveItem deletes a line. Removal is idempotent: an id that is already gone
// is a success, not an error.
func (s *CartService) RemoveItem(ctx context.Context, sess auth.Session, itemID uuid.UUID) error {
	item, err := s.Repo.GetCartItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperr.Store(err)
	}
	if err := auth.Authorize(sess, auth.ActionMutateCart, item.OwnerID); err != nil {
		return err
	}

	if err := s.Repo.DeleteCartItem(ctx, itemID); err != nil {
		return apperr.Store(err)
	}
	return nil
}

// ListCart resolves the caller's cart against the catalog. Lines whose product
// has been deleted are skipped; the read never mutates the store.
func (s *CartService) ListCart(ctx context.Context, sess auth.Session) ([]Line, error) {
	items, err := s.Repo.GetCart(ctx, sess.UserID)
	if err != nil {
		return nil, apperr.Store(err)
	}

	lines := make([]Line, 0, len(items))
	for _, item := range items {
		prod, err := s.Repo.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, apperr.Store(err)
		}
		lines = append(lines, Line{Item: item, Product: *prod})
	}
	return lines, nil
}

func TotalPrice(lines []Line) float64 {
	var total float64
	for _, l := range lines {
		total += float64(l.Item.Quantity) * l.Product.Price
	}
	return total
}

func TotalQuantity(lines []Line) uint {
	var total uint
	for _, l := range lines {
		total += l.Item.Quantity
	}
	return total
}
