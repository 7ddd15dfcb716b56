// Package orders holds the order lifecycle: conversion of a cart into an
// order, role-filtered listing, and the status/assignment mutations gated by
// the state machine.
package orders

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"little-lemon-api/errs"
	"little-lemon-api/models"
	"little-lemon-api/roles"
	"little-lemon-api/statemachine"
)

type Service struct {
	db       *gorm.DB
	registry *roles.Registry
}

func NewService(db *gorm.DB, registry *roles.Registry) *Service {
	return &Service{db: db, registry: registry}
}

// ListFor returns the orders visible to the principal: managers see all,
// delivery crew see orders assigned to them, customers see their own.
func (s *Service) ListFor(p roles.Principal) ([]models.Order, error) {
	query := s.db.Preload("Items.MenuItem").Preload("DeliveryCrew")

	switch {
	case p.Roles.Has(roles.Manager):
		// no filter
	case p.Roles.Has(roles.DeliveryCrew):
		query = query.Where("delivery_crew_id = ?", p.UserID)
	default:
		query = query.Where("user_id = ?", p.UserID)
	}

	var out []models.Order
	if err := query.Order("created_at desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

// Get returns a single order. Only the owning customer may read an order's
// detail; everyone else, managers included, gets ErrForbidden.
func (s *Service) Get(p roles.Principal, orderID uint) (*models.Order, error) {
	order, err := s.load(orderID, true)
	if err != nil {
		return nil, err
	}
	if order.UserID != p.UserID {
		return nil, fmt.Errorf("%w: order %d belongs to another customer", errs.ErrForbidden, orderID)
	}
	return order, nil
}

// ReplaceRequest is the full-update payload. Only the order's two mutable
// fields are replaceable; total, items and owner are fixed at creation.
type ReplaceRequest struct {
	DeliveryCrewID *uint              `json:"delivery_crew"`
	Status         models.OrderStatus `json:"status"`
}

// Replace is the manager-only full update: it may assign or unassign a
// delivery crew member and set the status to any valid value, bypassing the
// single-field restriction that applies to partial updates.
func (s *Service) Replace(p roles.Principal, orderID uint, req ReplaceRequest) (*models.Order, error) {
	if !req.Status.Valid() {
		return nil, fmt.Errorf("%w: %d is not a valid status", errs.ErrInvalidInput, req.Status)
	}
	if req.DeliveryCrewID != nil {
		crewRoles, err := s.registry.RolesOf(*req.DeliveryCrewID)
		if err != nil {
			return nil, err
		}
		if !crewRoles.Has(roles.DeliveryCrew) {
			return nil, fmt.Errorf("%w: user %d is not delivery crew", errs.ErrInvalidInput, *req.DeliveryCrewID)
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, orderID, false)
		if err != nil {
			return err
		}
		prevStatus := order.Status

		updates := map[string]any{
			"delivery_crew_id": req.DeliveryCrewID,
			"status":           req.Status,
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, prevStatus).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("replace order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %d was updated concurrently", errs.ErrInvalidInput, orderID)
		}
		if prevStatus != req.Status {
			return appendHistory(tx, orderID, prevStatus, req.Status, p.UserID, "full update by manager")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.load(orderID, true)
}

// PatchStatus is the partial update open to managers and delivery crew. The
// request must touch exactly the status field; any extra field is rejected
// before anything is read or written.
//
// TODO: crew members can currently patch orders not assigned to them; product
// has to decide whether to scope this to delivery_crew_id = caller.
func (s *Service) PatchStatus(p roles.Principal, orderID uint, fields map[string]json.RawMessage) (*models.Order, error) {
	raw, ok := fields["status"]
	if !ok || len(fields) != 1 {
		return nil, fmt.Errorf("%w: partial update must contain exactly the status field", errs.ErrInvalidInput)
	}
	var status models.OrderStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("%w: status must be an integer", errs.ErrInvalidInput)
	}

	// read, validate and write inside one transaction so the history row's
	// FromStatus is the status actually replaced, not a stale earlier read
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, orderID, false)
		if err != nil {
			return err
		}
		prevStatus := order.Status
		if err := statemachine.CanTransition(prevStatus, status, p.Roles); err != nil {
			return err
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, prevStatus).
			Update("status", status)
		if res.Error != nil {
			return fmt.Errorf("update status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %d was updated concurrently", errs.ErrInvalidInput, orderID)
		}
		if prevStatus != status {
			return appendHistory(tx, orderID, prevStatus, status, p.UserID, "status update")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.load(orderID, true)
}

// Delete removes the order together with its item snapshots and history.
func (s *Service) Delete(orderID uint) error {
	order, err := s.load(orderID, false)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderStatusHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(order).Error
	})
}

func (s *Service) load(orderID uint, full bool) (*models.Order, error) {
	return loadOrder(s.db, orderID, full)
}

func loadOrder(db *gorm.DB, orderID uint, full bool) (*models.Order, error) {
	query := db
	if full {
		query = query.Preload("Items.MenuItem").Preload("DeliveryCrew").Preload("StatusHistory")
	}
	var order models.Order
	if err := query.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", errs.ErrNotFound, orderID)
		}
		return nil, err
	}
	return &order, nil
}

func appendHistory(tx *gorm.DB, orderID uint, from, to models.OrderStatus, by uint, note string) error {
	history := models.OrderStatusHistory{
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		ChangedBy:  by,
		Note:       note,
	}
	if err := tx.Create(&history).Error; err != nil {
		return fmt.Errorf("record status history: %w", err)
	}
	return nil
}
