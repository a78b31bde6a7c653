package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/agrohub/farm_market/internal/models"
)

func (r *GormRepo) GetProfile(ctx context.Context, ownerID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.DB.WithContext(ctx).Where("owner_id = ?", ownerID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
