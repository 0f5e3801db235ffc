package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework for routing

	"github.com/Adira-Medica/inventory-app/internal/auth"
	"github.com/Adira-Medica/inventory-app/internal/handler"
	"github.com/Adira-Medica/inventory-app/internal/middleware"
)

// Deps carries everything route registration needs.  The resolver
// re-reads roles from the database on each guarded request; the rate
// limiter applies only to login.
type Deps struct {
	JWTSecret string
	Resolver  auth.PrincipalResolver
	Blacklist auth.TokenBlacklist
	RateLimit echo.MiddlewareFunc

	Auth      *handler.AuthHandler
	Items     *handler.ItemHandler
	Receiving *handler.ReceivingHandler
	Admin     *handler.AdminHandler
	Forms     *handler.FormHandler
	Health    *handler.HealthHandler
}

// Register wires all routes onto the Echo instance.
func Register(e *echo.Echo, d Deps) {
	// Health checks are unauthenticated so load balancers can probe them.
	e.GET("/health", d.Health.Check)
	e.GET("/api/health", d.Health.Check)

	jwtAuth := middleware.JWTAuth(d.JWTSecret, d.Blacklist)
	adminOnly := middleware.RequireRole(d.Resolver, "admin")
	adminOrManager := middleware.RequireRole(d.Resolver, "admin", "manager")

	// Authentication endpoints.  Login is rate limited; logout stays
	// open so an expired session can still be ended cleanly.
	authGroup := e.Group("/api/auth")
	if d.RateLimit != nil {
		authGroup.POST("/login", d.Auth.Login, d.RateLimit)
	} else {
		authGroup.POST("/login", d.Auth.Login)
	}
	authGroup.POST("/register", d.Auth.Register)
	authGroup.POST("/logout", d.Auth.Logout)
	authGroup.GET("/profile", d.Auth.Profile, jwtAuth)
	authGroup.POST("/change-password", d.Auth.ChangePassword, jwtAuth)
	authGroup.POST("/extend-session", d.Auth.ExtendSession, jwtAuth)

	// Item master.  Reads are open; writes are admin only, so managers
	// get read access and nothing more.  Path names follow the legacy
	// clients verbatim.
	items := e.Group("/api/item")
	items.GET("/get", d.Items.List)
	items.GET("/get/:id", d.Items.Get)
	items.GET("/numbers", d.Items.Numbers)
	items.POST("/create", d.Items.Create, jwtAuth, adminOnly)
	items.PUT("/update/:id", d.Items.Update, jwtAuth, adminOnly)
	items.PUT("/:id/toggle-obsolete", d.Items.ToggleObsolete, jwtAuth, adminOnly)
	items.DELETE("/delete/:id", d.Items.Delete, jwtAuth, adminOnly)

	// Receiving records.  Managers handle day-to-day receiving, so both
	// admin and manager may write.
	recv := e.Group("/api/receiving")
	recv.GET("/get", d.Receiving.List)
	recv.GET("/get/:id", d.Receiving.Get)
	recv.GET("/numbers", d.Receiving.Numbers)
	recv.POST("/create", d.Receiving.Create, jwtAuth, adminOrManager)
	recv.PUT("/update/:id", d.Receiving.Update, jwtAuth, adminOrManager)
	recv.PUT("/:id/toggle-obsolete", d.Receiving.ToggleObsolete, jwtAuth, adminOrManager)
	recv.DELETE("/delete/:id", d.Receiving.Delete, jwtAuth, adminOnly)

	// Form generation is available to every authenticated role.
	forms := e.Group("/api/form", jwtAuth)
	forms.POST("/generate-pdf/:type", d.Forms.GeneratePDF)

	// Administration.
	admin := e.Group("/api/admin", jwtAuth, adminOnly)
	admin.GET("/users", d.Admin.ListUsers)
	admin.GET("/users/pending", d.Admin.PendingUsers)
	admin.POST("/users", d.Admin.CreateUser)
	admin.PUT("/users/:id", d.Admin.UpdateUser)
	admin.PUT("/users/:id/approve", d.Admin.Approve)
	admin.PUT("/users/:id/reject", d.Admin.Reject)
	admin.PUT("/users/:id/toggle-status", d.Admin.ToggleStatus)
	admin.GET("/settings", d.Admin.GetSettings)
	admin.PUT("/settings", d.Admin.PutSettings)
	admin.GET("/audit-logs", d.Admin.AuditLogs)
	admin.GET("/audit-logs/export", d.Admin.ExportAuditLogs)
	admin.POST("/audit-logs/clear", d.Admin.ClearAuditLogs)
	admin.GET("/statistics", d.Admin.Statistics)
	admin.POST("/create-backup", d.Admin.CreateBackup)
}
