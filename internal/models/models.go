package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const OrderStatusPending = "pending"

type Product struct {
	ID        uuid.UUID `gorm:"primaryKey"                 json:"id"`
	Name      string    `gorm:"not null"                   json:"name"`
	Price     float64   `gorm:"not null;check:price>0"     json:"price"`
	Quantity  uint      `gorm:"not null"                   json:"quantity"`
	ImageURL  string    `json:"image_url,omitempty"`
	OwnerID   uuid.UUID `gorm:"index;not null"             json:"owner_id"`
	CreatedAt time.Time `gorm:"index"                      json:"created_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Product) TableName() string { return "products" }

type CartItem struct {
	ID        uuid.UUID `gorm:"primaryKey"                             json:"id"`
	OwnerID   uuid.UUID `gorm:"uniqueIndex:idx_owner_product;not null" json:"owner_id"`
	ProductID uuid.UUID `gorm:"uniqueIndex:idx_owner_product;not null" json:"product_id"`
	Quantity  uint      `gorm:"default:1;check:quantity>0"             json:"quantity"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string { return "cart_items" }

type Order struct {
	ID        uuid.UUID `gorm:"primaryKey"                  json:"id"`
	OwnerID   uuid.UUID `gorm:"index;not null"              json:"owner_id"`
	ProductID uuid.UUID `gorm:"not null"                    json:"product_id"`
	Quantity  uint      `gorm:"default:1;check:quantity>0"  json:"quantity"`
	// UnitPrice is the product price at the moment the order was placed, so
	// later catalog price changes do not rewrite order history.
	UnitPrice float64 `gorm:"not null"                      json:"unit_price"`
	Status    string  `gorm:"not null"                      json:"status"`
	Address   string  `json:"address,omitempty"`
	// CheckoutToken groups the orders of one checkout attempt; a retry with the
	// same token must find this batch instead of inserting a second one.
	CheckoutToken uuid.UUID `gorm:"index:idx_owner_token"   json:"checkout_token,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (Order) TableName() string { return "orders" }

type Profile struct {
	OwnerID     uuid.UUID `gorm:"primaryKey" json:"owner_id"`
	DisplayName string    `gorm:"not null"   json:"display_name"`
	Role        string    `gorm:"not null"   json:"role"`
}

func (Profile) TableName() string { return "profiles" }
