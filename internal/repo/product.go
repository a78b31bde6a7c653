package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrohub/farm_market/internal/models"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product := models.Product{}
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return nil, err
	}
	return prod, nil
}

func (r *GormRepo) SaveProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Save(prod).Error
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountProductRefs reports how many cart lines and pending orders still point
// at the product. Deletion is refused while either count is non-zero.
func (r *GormRepo) CountProductRefs(ctx context.Context, id uuid.UUID) (cartRefs, orderRefs int64, err error) {
	if err = r.DB.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("product_id = ?", id).
		Count(&cartRefs).Error; err != nil {
		return 0, 0, err
	}
	if err = r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("product_id = ? AND status = ?", id, models.OrderStatusPending).
		Count(&orderRefs).Error; err != nil {
		return 0, 0, err
	}
	return cartRefs, orderRefs, nil
}
