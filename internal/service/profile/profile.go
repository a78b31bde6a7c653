package profile

import (
	"context"

	"github.com/agrohub/farm_market/internal/apperr"
	"github.com/agrohub/farm_market/internal/auth"
	"github.com/agrohub/farm_market/internal/models"
	"github.com/agrohub/farm_market/internal/repo"
)

// ProfileService is read-only: profiles are written by the identity provider,
// this core only displays them.
type ProfileService struct {
	Repo *repo.GormRepo
}

func (s *ProfileService) Get(ctx context.Context, sess auth.Session) (*models.Profile, error) {
	p, err := s.Repo.GetProfile(ctx, sess.UserID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	return p, nil
}
