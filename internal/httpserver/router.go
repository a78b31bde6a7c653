package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrohub/farm_market/internal/auth"
)

type Deps struct {
	Catalog   *CatalogHTTP
	Cart      *CartHTTP
	Checkout  *CheckoutHTTP
	Profile   *ProfileHTTP
	JWTSecret []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	sessionMW := auth.RequireSession(d.JWTSecret)

	products := e.Group("/products")
	products.GET("", d.Catalog.GetProducts)
	products.GET("/search", d.Catalog.SearchProducts)
	products.GET("/:id", d.Catalog.GetProduct)

	managed := products.Group("", sessionMW)
	managed.POST("", d.Catalog.CreateProduct)
	managed.PATCH("/:id", d.Catalog.UpdateProduct)
	managed.DELETE("/:id", d.Catalog.DeleteProduct)

	cart := e.Group("/cart", sessionMW)
	cart.GET("", d.Cart.GetCart)
	cart.POST("", d.Cart.AddToCart)
	cart.PATCH("/:id", d.Cart.SetQuantity)
	cart.DELETE("/:id", d.Cart.RemoveItem)

	orders := e.Group("/orders", sessionMW)
	orders.GET("", d.Checkout.GetOrders)
	orders.POST("", d.Checkout.BuyNow)
	orders.POST("/checkout", d.Checkout.Checkout)

	e.GET("/me", d.Profile.GetMe, sessionMW)
}
