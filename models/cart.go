package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is one pending line in a customer's cart. The composite unique index
// is the authority on the one-line-per-(user, menu item) rule; application
// code only pre-checks it as a fast path.
//
// UnitPrice is the menu item's price captured at add time. Later price
// changes on the menu item never touch existing cart lines.
type Cart struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	UserID     uint            `json:"user_id" gorm:"not null;uniqueIndex:idx_cart_user_item"`
	MenuItemID uint            `json:"menu_item_id" gorm:"not null;uniqueIndex:idx_cart_user_item"`
	MenuItem   MenuItem        `json:"menu_item,omitempty" gorm:"foreignKey:MenuItemID"`
	Quantity   int             `json:"quantity" gorm:"not null"`
	UnitPrice  decimal.Decimal `json:"unit_price" gorm:"type:decimal(8,2);not null"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(8,2);not null"`
	CreatedAt  time.Time       `json:"created_at"`
}
