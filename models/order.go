package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the order lifecycle state. The ordinals are part of the API:
// clients send and receive the integer values.
type OrderStatus int

const (
	StatusPending   OrderStatus = 0
	StatusDelivered OrderStatus = 1
)

func (s OrderStatus) Valid() bool {
	return s == StatusPending || s == StatusDelivered
}

func (s OrderStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusDelivered:
		return "DELIVERED"
	}
	return "UNKNOWN"
}

// Order is created only by converting a cart; Total is fixed at that moment
// and never recomputed. The only mutable fields are DeliveryCrewID and Status.
type Order struct {
	ID             uint                 `json:"id" gorm:"primaryKey"`
	UserID         uint                 `json:"user_id" gorm:"not null;index"`
	User           User                 `json:"user,omitempty" gorm:"foreignKey:UserID"`
	DeliveryCrewID *uint                `json:"delivery_crew_id" gorm:"index"`
	DeliveryCrew   *User                `json:"delivery_crew,omitempty" gorm:"foreignKey:DeliveryCrewID"`
	Status         OrderStatus          `json:"status" gorm:"not null;default:0"`
	Total          decimal.Decimal      `json:"total" gorm:"type:decimal(10,2);not null"`
	Date           time.Time            `json:"date" gorm:"not null"`
	Items          []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory  []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// OrderItem is an immutable snapshot of one cart line at conversion time.
type OrderItem struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	OrderID    uint            `json:"order_id" gorm:"not null;index"`
	MenuItemID uint            `json:"menu_item_id" gorm:"not null"`
	MenuItem   MenuItem        `json:"menu_item,omitempty" gorm:"foreignKey:MenuItemID"`
	Quantity   int             `json:"quantity" gorm:"not null"`
	UnitPrice  decimal.Decimal `json:"unit_price" gorm:"type:decimal(8,2);not null"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(8,2);not null"`
}

// OrderStatusHistory records every status change for auditing.
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"`
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
