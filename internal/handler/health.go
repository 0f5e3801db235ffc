package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports service liveness plus database reachability.
type HealthHandler struct {
	DB  *sql.DB
	Env string
}

func NewHealthHandler(db *sql.DB, env string) *HealthHandler {
	return &HealthHandler{DB: db, Env: env}
}

func (h *HealthHandler) Check(c echo.Context) error {
	dbStatus := "ok"
	status := http.StatusOK
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			dbStatus = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}
	return c.JSON(status, echo.Map{
		"status":      "up",
		"environment": h.Env,
		"database":    dbStatus,
		"time":        time.Now().Format(time.RFC3339),
	})
}
