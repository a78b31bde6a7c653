package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrohub/farm_market/internal/auth"
	"github.com/agrohub/farm_market/internal/service/profile"
)

type ProfileHTTP struct {
	Svc *profile.ProfileService
}

func (h *ProfileHTTP) GetMe(c echo.Context) error {
	ctx := c.Request().Context()

	sess, err := auth.SessionFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	p, err := h.Svc.Get(ctx, sess)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}
