// Package statemachine defines the legal order status transitions and which
// role may perform each one.
package statemachine

import (
	"fmt"

	"little-lemon-api/errs"
	"little-lemon-api/models"
	"little-lemon-api/roles"
)

// Transition defines a valid state change and the role allowed to perform it.
type Transition struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor roles.Role
}

// validTransitions is the authoritative state machine definition. The
// customer appears nowhere: after placement the customer is read-only with
// respect to order state.
var validTransitions = []Transition{
	{From: models.StatusPending, To: models.StatusDelivered, Actor: roles.Manager},
	{From: models.StatusPending, To: models.StatusDelivered, Actor: roles.DeliveryCrew},
}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor roles.Role
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all states reachable from the given state,
// regardless of actor.
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks whether any of the caller's roles permits moving the
// order from one status to another. A same-status "transition" is allowed as
// a no-op so that re-sending the current status stays idempotent.
func CanTransition(from, to models.OrderStatus, set roles.Set) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %d is not a valid status", errs.ErrInvalidInput, to)
	}
	if from == to {
		return nil
	}
	for role := range set {
		if transitionMap[transitionKey{From: from, To: to, Actor: role}] {
			return nil
		}
	}
	return fmt.Errorf("%w: transition %s -> %s is not permitted", errs.ErrInvalidInput, from, to)
}

// GetAllTransitions returns the full state machine for documentation.
func GetAllTransitions() []Transition {
	return validTransitions
}
