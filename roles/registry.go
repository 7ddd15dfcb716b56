// Package roles resolves a user's group memberships into a set of role tags.
// The registry is queried once per request (in the auth middleware) so that
// the authorization policy can stay a pure function over the resulting set.
package roles

import (
	"fmt"

	"gorm.io/gorm"

	"little-lemon-api/models"
)

// Role is one of the three role tags. Roles are not exclusive; a principal
// holds a set of them.
type Role string

const (
	Customer     Role = "Customer"
	DeliveryCrew Role = "Delivery crew"
	Manager      Role = "Manager"
)

// All lists every role group seeded into the store.
func All() []Role {
	return []Role{Customer, DeliveryCrew, Manager}
}

// Set is the role memberships of one principal.
type Set map[Role]bool

func NewSet(rs ...Role) Set {
	s := make(Set, len(rs))
	for _, r := range rs {
		s[r] = true
	}
	return s
}

func (s Set) Has(r Role) bool { return s[r] }

// Registry looks up role sets from the group-membership tables.
type Registry struct {
	db *gorm.DB
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// RolesOf returns the role set for a user id. A user in no groups gets an
// empty set, not an error.
func (r *Registry) RolesOf(userID uint) (Set, error) {
	var names []string
	err := r.db.Table("groups").
		Joins("JOIN user_groups ON user_groups.group_id = groups.id").
		Where("user_groups.user_id = ?", userID).
		Pluck("groups.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("load roles for user %d: %w", userID, err)
	}

	set := make(Set, len(names))
	for _, n := range names {
		set[Role(n)] = true
	}
	return set, nil
}

// Members lists the users belonging to a role group.
func (r *Registry) Members(role Role) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Joins("JOIN user_groups ON user_groups.user_id = users.id").
		Joins("JOIN groups ON groups.id = user_groups.group_id").
		Where("groups.name = ?", string(role)).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list %s members: %w", role, err)
	}
	return users, nil
}

// Grant adds a user to a role group. Adding an existing member is a no-op.
func (r *Registry) Grant(userID uint, role Role) error {
	group, err := r.group(role)
	if err != nil {
		return err
	}
	var user models.User
	if err := r.db.First(&user, userID).Error; err != nil {
		return err
	}
	return r.db.Model(&user).Association("Groups").Append(group)
}

// Revoke removes a user from a role group. Idempotent: revoking a membership
// that does not exist succeeds with no effect.
func (r *Registry) Revoke(userID uint, role Role) error {
	group, err := r.group(role)
	if err != nil {
		return err
	}
	var user models.User
	if err := r.db.First(&user, userID).Error; err != nil {
		return err
	}
	return r.db.Model(&user).Association("Groups").Delete(group)
}

func (r *Registry) group(role Role) (*models.Group, error) {
	var group models.Group
	if err := r.db.Where("name = ?", string(role)).First(&group).Error; err != nil {
		return nil, fmt.Errorf("group %q: %w", role, err)
	}
	return &group, nil
}
