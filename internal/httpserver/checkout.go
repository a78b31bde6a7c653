package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/agrohub/farm_market/internal/auth"
	"github.com/agrohub/farm_market/internal/logging"
	"github.com/agrohub/farm_market/internal/service/checkout"
	"github.com/agrohub/farm_market/internal/transport"
)

type CheckoutHTTP struct {
	Svc *checkout.CheckoutService
}

func (h *CheckoutHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.checkout")

	sess, err := auth.SessionFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Token == uuid.Nil {
		req.Token = uuid.New()
	}

	result, err := h.Svc.Checkout(ctx, sess, req.Token)
	if err != nil {
		return httpError(err)
	}

	l.Info("checkout_success",
		"orders_placed", result.OrdersPlaced,
		"cart_clear_failed", result.CartClearFailed)
	return c.JSON(http.StatusCreated, result)
}

func (h *CheckoutHTTP) BuyNow(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.buy_now")

	sess, err := auth.SessionFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.BuyNowRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("buy_now_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.BuyNow(ctx, sess, req.ProductID, req.Address)
	if err != nil {
		return httpError(err)
	}

	l.Info("buy_now_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}

func (h *CheckoutHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()

	sess, err := auth.SessionFrom(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	orders, err := h.Svc.ListOrders(ctx, sess)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}
