package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/Adira-Medica/inventory-app/internal/auth"
	"github.com/Adira-Medica/inventory-app/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects its claims into the request context.  The provided secret must
// match the one used when issuing tokens, and the blacklist is consulted so
// that revoked tokens are rejected even before their expiry.  Protected
// handlers read the authenticated identity via `c.Get("user_id")`,
// `c.Get("username")`, `c.Get("role")` and `c.Get("jti")`.
func JWTAuth(secret string, blacklist auth.TokenBlacklist) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header starts with "Bearer " followed by the JWT.  If it
			// doesn't, respond with 401 Unauthorized.
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			// A token that was signed out is dead regardless of its exp.
			if blacklist != nil && blacklist.IsRevoked(c.Request().Context(), claims.JTI) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token has been revoked"})
			}

			// Store the identity claims in the context for handlers and
			// downstream middleware.
			c.Set("user_id", claims.UserID)
			c.Set("username", claims.Username)
			c.Set("role", claims.Role)
			c.Set("jti", claims.JTI)
			c.Set("exp", claims.Exp)
			return next(c)
		}
	}
}
