package transport

import "github.com/google/uuid"

type ProductRequest struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
	ImageURL string `json:"image_url"`
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CheckoutRequest struct {
	// Token is the client's idempotency key for this checkout attempt; the
	// handler generates one when it is absent.
	Token uuid.UUID `json:"token"`
}

type BuyNowRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Address   string    `json:"address"`
}
