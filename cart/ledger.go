// Package cart is the per-customer cart ledger: pending lines that exist
// only between adding a menu item and converting the cart into an order.
package cart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"little-lemon-api/errs"
	"little-lemon-api/models"
)

type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// List returns the customer's cart lines, oldest first.
func (l *Ledger) List(userID uint) ([]models.Cart, error) {
	var lines []models.Cart
	err := l.db.Preload("MenuItem").
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("list cart for user %d: %w", userID, err)
	}
	return lines, nil
}

// Add creates a new cart line, snapshotting the menu item's current price.
// A second add of the same item is rejected, not merged. The duplicate
// pre-check is a fast path only; the (user_id, menu_item_id) unique index is
// what actually guarantees the invariant under concurrent adds.
func (l *Ledger) Add(userID, menuItemID uint, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", errs.ErrInvalidInput)
	}

	var item models.MenuItem
	if err := l.db.First(&item, menuItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: menu item %d", errs.ErrNotFound, menuItemID)
		}
		return nil, err
	}

	var count int64
	if err := l.db.Model(&models.Cart{}).
		Where("user_id = ? AND menu_item_id = ?", userID, menuItemID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errs.ErrDuplicateItem
	}

	line := models.Cart{
		UserID:     userID,
		MenuItemID: menuItemID,
		Quantity:   quantity,
		UnitPrice:  item.Price,
		Price:      item.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
	if err := l.db.Create(&line).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, errs.ErrDuplicateItem
		}
		return nil, fmt.Errorf("add cart line: %w", err)
	}

	line.MenuItem = item
	return &line, nil
}

// Remove deletes a single cart line owned by the customer.
func (l *Ledger) Remove(userID, menuItemID uint) error {
	res := l.db.Where("user_id = ? AND menu_item_id = ?", userID, menuItemID).
		Delete(&models.Cart{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: cart line for menu item %d", errs.ErrNotFound, menuItemID)
	}
	return nil
}

// Clear deletes all of the customer's cart lines. Clearing an empty cart
// succeeds with no effect.
func (l *Ledger) Clear(userID uint) error {
	return l.db.Where("user_id = ?", userID).Delete(&models.Cart{}).Error
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Not every driver translates to gorm.ErrDuplicatedKey.
	msg := strings.ToUpper(err.Error())
	return strings.Contains(msg, "UNIQUE") || strings.Contains(msg, "DUPLICATE")
}
