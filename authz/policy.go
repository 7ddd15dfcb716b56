// Package authz is the role-based authorization policy: a pure decision
// function over a principal's role set and the attempted action. It performs
// no I/O; instance-level ownership checks (e.g. reading someone else's order)
// live with the services that already hold the resource.
package authz

import (
	"little-lemon-api/errs"
	"little-lemon-api/roles"
)

// Action is a verb-and-resource pair the API supports.
type Action int

const (
	MenuRead Action = iota
	MenuWrite
	GroupRead
	GroupAdd
	GroupRemove
	CartRead
	CartAdd
	CartClear
	OrderList
	OrderPlace
	OrderReplace
	OrderPatchStatus
	OrderDelete
)

// Authorize decides whether a principal holding the given role set may
// perform the action. It returns nil on allow and errs.ErrUnauthorized on
// deny. Any authenticated principal may read the menu or list orders (the
// result set is filtered by role elsewhere).
//
// Menu writes are allowed by exclusion: a principal holding neither Customer
// nor DeliveryCrew may write, which in practice means Manager.
func Authorize(set roles.Set, action Action) error {
	allowed := false

	switch action {
	case MenuRead, OrderList:
		allowed = true
	case MenuWrite:
		allowed = !set.Has(roles.Customer) && !set.Has(roles.DeliveryCrew)
	case GroupRead, GroupAdd, GroupRemove, OrderReplace, OrderDelete:
		allowed = set.Has(roles.Manager)
	case CartRead, CartAdd, CartClear, OrderPlace:
		allowed = set.Has(roles.Customer)
	case OrderPatchStatus:
		allowed = set.Has(roles.Manager) || set.Has(roles.DeliveryCrew)
	}

	if !allowed {
		return errs.ErrUnauthorized
	}
	return nil
}
