// Package handlers contains the thin HTTP adapters: they resolve the
// principal, ask the authorization policy, delegate to a service and map the
// resulting error kind to a status code. No business rules live here.
package handlers

import (
	"github.com/gin-gonic/gin"

	"little-lemon-api/authz"
	"little-lemon-api/errs"
	"little-lemon-api/middleware"
	"little-lemon-api/roles"
)

func fail(c *gin.Context, err error) {
	c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
}

// authorized gates a handler on the policy decision for one action. The
// policy runs before the handler reads or mutates anything.
func authorized(c *gin.Context, action authz.Action) (roles.Principal, bool) {
	p := middleware.GetPrincipal(c)
	if err := authz.Authorize(p.Roles, action); err != nil {
		fail(c, err)
		c.Abort()
		return p, false
	}
	return p, true
}
