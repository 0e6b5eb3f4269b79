package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPlaced     OrderStatus = "placed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ParseOrderStatus accepts the canonical names and the legacy "pending" alias of placed.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case OrderStatusPlaced, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return st, true
	case "pending":
		return OrderStatusPlaced, true
	}
	return "", false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type ShippingInfo struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// PaymentInfo never holds the card number or CVV.
type PaymentInfo struct {
	Method     string `json:"method"`
	Cardholder string `json:"cardholder,omitempty"`
	Last4      string `json:"last4,omitempty"`
	Expiry     string `json:"expiry,omitempty"`
	Token      string `json:"token,omitempty"`
}

type Order struct {
	ID           uuid.UUID                        `gorm:"type:uuid;primaryKey"         json:"id"`
	UserID       uuid.UUID                        `gorm:"type:uuid;index;not null"     json:"user_id"`
	TotalPrice   decimal.Decimal                  `gorm:"type:decimal(10,2);not null"  json:"total_price"`
	Status       OrderStatus                      `gorm:"type:varchar(16);not null"    json:"status"`
	ShippingInfo datatypes.JSONType[ShippingInfo] `json:"shipping_info"`
	PaymentInfo  datatypes.JSONType[PaymentInfo]  `json:"payment_info"`
	Items        []OrderItem                      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"  json:"items"`
	CreatedAt    time.Time                        `gorm:"index"                        json:"created_at"`
	UpdatedAt    time.Time                        `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem references exactly one of a product or a build.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"         json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"     json:"order_id"`
	ProductID *uuid.UUID      `gorm:"type:uuid;index"              json:"product_id"`
	Product   *Product        `json:"product,omitempty"`
	BuildID   *uuid.UUID      `gorm:"type:uuid;index"              json:"build_id"`
	Build     *PCBuild        `json:"build,omitempty"`
	Quantity  int             `gorm:"not null;check:quantity>0"    json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"  json:"unit_price"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"  json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (OrderItem) TableName() string {
	return "order_items"
}
