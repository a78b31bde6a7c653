package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agrohub/farm_market/internal/models"
)

func (r *GormRepo) GetCart(ctx context.Context, ownerID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetCartItem(ctx context.Context, id uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpsertIncrement consolidates an add-to-cart in one statement: insert the
// line, or on an (owner, product) conflict increment the existing quantity
// relative to its stored value. Concurrent adds for the same pair therefore
// never fork into two lines and never drop an increment.
func (r *GormRepo) UpsertIncrement(ctx context.Context, ownerID, productID uuid.UUID, n uint) (*models.CartItem, error) {
	item := models.CartItem{OwnerID: ownerID, ProductID: productID, Quantity: n}
	if err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{"quantity": gorm.Expr("quantity + ?", n)}),
		}).
		Create(&item).Error; err != nil {
		return nil, err
	}

	// re-read: on conflict the stored row keeps its original id
	if err := r.DB.WithContext(ctx).
		Where("owner_id = ? AND product_id = ?", ownerID, productID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) SetCartItemQuantity(ctx context.Context, id uuid.UUID, quantity uint) error {
	res := r.DB.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", id).Error
}

func (r *GormRepo) ClearCart(ctx context.Context, ownerID uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&models.CartItem{}).Error
}

// ClearCartLines removes only the given products' lines from the owner's
// cart. Lines added after a checkout snapshot was taken are left alone.
func (r *GormRepo) ClearCartLines(ctx context.Context, ownerID uuid.UUID, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).
		Where("owner_id = ? AND product_id IN ?", ownerID, productIDs).
		Delete(&models.CartItem{}).Error
}
