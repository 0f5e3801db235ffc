package main // Entry point package

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Adira-Medica/inventory-app/internal/audit"
	"github.com/Adira-Medica/inventory-app/internal/auth"
	"github.com/Adira-Medica/inventory-app/internal/config"
	"github.com/Adira-Medica/inventory-app/internal/database"
	"github.com/Adira-Medica/inventory-app/internal/form"
	"github.com/Adira-Medica/inventory-app/internal/handler"
	"github.com/Adira-Medica/inventory-app/internal/middleware"
	"github.com/Adira-Medica/inventory-app/internal/queue"
	"github.com/Adira-Medica/inventory-app/internal/repository"
	"github.com/Adira-Medica/inventory-app/internal/router"
	queue_publisher "github.com/Adira-Medica/inventory-app/internal/service"
	"github.com/Adira-Medica/inventory-app/internal/settings"
	"github.com/Adira-Medica/inventory-app/internal/utils"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	cfg := config.Load()

	var logger *zap.Logger
	var err error
	if cfg.Env == config.EnvProduction {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.DSN)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		logger.Fatal("migrations failed", zap.Error(err))
	}
	// The built-in admin account is only seeded when an initial password
	// is provisioned; an empty production database stays locked otherwise.
	if pw := os.Getenv("ADMIN_INITIAL_PASSWORD"); pw != "" {
		hash, err := utils.HashPassword(pw, cfg.BcryptCost)
		if err != nil {
			cancel()
			logger.Fatal("admin seed failed", zap.Error(err))
		}
		domain := "adiramedica.com"
		if len(cfg.AllowedEmailDomains) > 0 {
			domain = cfg.AllowedEmailDomains[0]
		}
		email := "admin@" + domain
		if err := database.SeedAdmin(ctx, db, email, hash); err != nil {
			cancel()
			logger.Fatal("admin seed failed", zap.Error(err))
		}
	}
	cancel()

	// Redis is optional infrastructure: without it token revocation falls
	// back to the in-process blacklist and the login rate limiter turns
	// into a pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable; using in-memory token blacklist")
	}
	blacklist := auth.NewBlacklist(rdb)

	auditStore := audit.NewStore(cfg.LogDir, logger)
	auditStore.Publish = func(ev queue.ActivityEvent) {
		// Mirroring to the broker is fire and forget; a broker outage
		// must never slow a request down.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = queue_publisher.PublishActivity(ctx, ev)
		}()
	}
	go queue.StartActivityConsumer(cfg.LogDir, logger)

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	items := repository.NewItemRepo(db)
	receiving := repository.NewReceivingRepo(db)
	settingsStore := settings.NewStore(cfg.SettingsPath, cfg.GeneratedDir)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))

	router.Register(e, router.Deps{
		JWTSecret: cfg.JWTSecret,
		Resolver:  users,
		Blacklist: blacklist,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Auth:      handler.NewAuthHandler(cfg, users, roles, blacklist, auditStore),
		Items:     handler.NewItemHandler(items, auditStore),
		Receiving: handler.NewReceivingHandler(receiving, auditStore),
		Admin:     handler.NewAdminHandler(cfg, users, roles, items, receiving, auditStore, settingsStore),
		Forms:     handler.NewFormHandler(form.NewGenerator(), auditStore, logger),
		Health:    handler.NewHealthHandler(db, cfg.Env),
	})

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
