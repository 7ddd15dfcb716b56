package orders

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"little-lemon-api/errs"
	"little-lemon-api/models"
)

// Place converts the customer's entire cart into a new order inside one
// transaction: aggregate the lines, create the order and one immutable item
// snapshot per line, then delete the lines. Either everything commits or
// nothing does.
//
// The cart is read inside the transaction, so a concurrent add either lands
// before the read (and is included in the order) or after the delete (and
// stays in the cart). No line is ever silently lost.
func (s *Service) Place(userID uint) (*models.Order, error) {
	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var lines []models.Cart
		if err := tx.Where("user_id = ?", userID).Find(&lines).Error; err != nil {
			return fmt.Errorf("read cart: %w", err)
		}
		if len(lines) == 0 {
			return errs.ErrEmptyCart
		}

		total := decimal.Zero
		lineIDs := make([]uint, 0, len(lines))
		for _, line := range lines {
			total = total.Add(line.Price)
			lineIDs = append(lineIDs, line.ID)
		}

		order = models.Order{
			UserID: userID,
			Status: models.StatusPending,
			Total:  total,
			Date:   time.Now().UTC().Truncate(24 * time.Hour),
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, line := range lines {
			item := models.OrderItem{
				OrderID:    order.ID,
				MenuItemID: line.MenuItemID,
				Quantity:   line.Quantity,
				UnitPrice:  line.UnitPrice,
				Price:      line.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
			order.Items = append(order.Items, item)
		}

		history := models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			ChangedBy: userID,
			Note:      "order placed from cart",
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("record status history: %w", err)
		}

		// delete exactly the lines consumed above, not whatever the cart
		// holds by now: a line added since the read must survive
		if err := tx.Where("id IN ?", lineIDs).Delete(&models.Cart{}).Error; err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
