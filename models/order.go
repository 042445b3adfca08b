package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Order types supported by the kitchen
const (
	OrderTypeDineIn       = "dine-in"
	OrderTypeHomeDelivery = "home-delivery"
)

// Order statuses
const (
	StatusPending        = "pending"
	StatusPreparing      = "preparing"
	StatusReady          = "ready"
	StatusServed         = "served"
	StatusOutForDelivery = "out-for-delivery"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

// ValidStatuses lists every status an order may hold. The backend does
// not enforce transition ordering between them; the admin UI disables
// buttons for earlier statuses once a later one is reached.
var ValidStatuses = []string{
	StatusPending,
	StatusPreparing,
	StatusReady,
	StatusServed,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
}

// IsValidStatus reports whether s is a known order status
func IsValidStatus(s string) bool {
	for _, valid := range ValidStatuses {
		if s == valid {
			return true
		}
	}
	return false
}

// IsValidOrderType reports whether t is a known order type
func IsValidOrderType(t string) bool {
	return t == OrderTypeDineIn || t == OrderTypeHomeDelivery
}

// OrderItem is a snapshot of a menu item at order time. Name and price
// are copied from the menu so later menu edits or deletions never
// change what a historical order shows.
type OrderItem struct {
	MenuItemID uint    `json:"menuItem,omitempty"` // weak reference to the menu item
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Qty        int     `json:"qty"`
}

// Order represents a customer order, dine-in or home-delivery
type Order struct {
	ID              uint                           `gorm:"primaryKey" json:"id"`
	TrackingID      string                         `gorm:"uniqueIndex;not null" json:"trackingId"` // 4-digit public tracking code, immutable
	OrderType       string                         `gorm:"not null;default:'dine-in'" json:"orderType"`
	TableNumber     *string                        `json:"tableNumber"` // dine-in only
	WhatsappNumber  string                         `gorm:"not null" json:"whatsappNumber"`
	CustomerName    *string                        `json:"customerName"`    // home-delivery only
	CustomerPhone   *string                        `json:"customerPhone"`   // home-delivery only
	DeliveryAddress *string                        `json:"deliveryAddress"` // home-delivery only
	Items           datatypes.JSONSlice[OrderItem] `gorm:"not null" json:"items"`
	Total           float64                        `gorm:"not null" json:"total"`
	Status          string                         `gorm:"not null;default:'pending'" json:"status"`
	Paid            bool                           `gorm:"not null;default:false" json:"paid"`
	CreatedAt       time.Time                      `json:"createdAt"`
	UpdatedAt       time.Time                      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt                 `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// ItemsTotal recomputes the order total from the item snapshots
func (o *Order) ItemsTotal() float64 {
	var sum float64
	for _, item := range o.Items {
		sum += item.Price * float64(item.Qty)
	}
	return sum
}
