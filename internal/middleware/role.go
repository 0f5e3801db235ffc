package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/Adira-Medica/inventory-app/internal/auth"
)

// RequireRole returns a middleware function that enforces that the
// authenticated user currently holds one of the specified roles.  The role
// embedded in the token is treated as a hint only: the effective role is
// re-read through the resolver on every request, so a demotion or
// deactivation takes effect immediately rather than at token expiry.  It
// assumes JWTAuth has already stored "user_id" in the context.
func RequireRole(resolver auth.PrincipalResolver, roles ...string) echo.MiddlewareFunc {
	// Build a set of allowed roles for constant-time lookups.
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := c.Get("user_id").(uint64)
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			p, err := resolver.ResolvePrincipal(c.Request().Context(), id)
			if err != nil || !p.Active || !allowed[p.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			// Refresh the context with the authoritative role so handlers
			// never act on a stale claim.
			c.Set("role", p.Role)
			c.Set("username", p.Username)
			return next(c)
		}
	}
}
