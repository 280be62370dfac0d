package model

import (
	"time"
)

type OrderStatus string
type DeliveryZone string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusReturned   OrderStatus = "returned"

	ZoneInsideCity  DeliveryZone = "inside_city"
	ZoneOutsideCity DeliveryZone = "outside_city"

	PaymentCashOnDelivery = "cash_on_delivery"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
}

// OrderStatuses lists every status an admin may assign.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(orderStatuses))
	copy(out, orderStatuses)
	return out
}

func (s OrderStatus) Valid() bool {
	for _, known := range orderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (z DeliveryZone) Valid() bool {
	return z == ZoneInsideCity || z == ZoneOutsideCity
}

type Order struct {
	ID              uint         `gorm:"primarykey" json:"id"`
	OrderNumber     string       `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_number"`
	CustomerName    string       `gorm:"not null" json:"customer_name"`
	CustomerPhone   string       `gorm:"type:varchar(32);not null;index" json:"customer_phone"`
	CustomerEmail   *string      `json:"customer_email,omitempty"`
	CustomerAddress string       `gorm:"type:text;not null" json:"customer_address"`
	Notes           *string      `gorm:"type:text" json:"notes,omitempty"`
	InternalNotes   *string      `gorm:"type:text" json:"internal_notes,omitempty"`
	DeliveryZone    DeliveryZone `gorm:"type:varchar(20);not null" json:"delivery_zone"`
	Status          OrderStatus  `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Subtotal        float64      `gorm:"not null" json:"subtotal"`
	DeliveryCharge  float64      `gorm:"not null" json:"delivery_charge"`
	Total           float64      `gorm:"not null" json:"total"`
	PaymentMethod   string       `gorm:"type:varchar(32);not null" json:"payment_method"`
	CreatedAt       time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`

	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// Public strips admin-only fields before the order leaves a storefront endpoint.
func (o Order) Public() Order {
	o.InternalNotes = nil
	return o
}

// OrderItem snapshots what was bought. Rows are never rewritten after insert,
// and ProductID is informational: the product may since have been deleted.
type OrderItem struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	OrderID       uint      `gorm:"not null;index" json:"order_id"`
	ProductID     *uint     `gorm:"index" json:"product_id,omitempty"`
	TitleSnapshot string    `gorm:"not null" json:"title_snapshot"`
	PriceSnapshot float64   `gorm:"not null" json:"price_snapshot"`
	ImageSnapshot *string   `json:"image_snapshot,omitempty"`
	Qty           int       `gorm:"not null" json:"qty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i OrderItem) LineTotal() float64 {
	return i.PriceSnapshot * float64(i.Qty)
}
