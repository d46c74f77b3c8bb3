package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/hormatech/blockplant/internal/auth"
	"github.com/hormatech/blockplant/internal/background"
	"github.com/hormatech/blockplant/internal/config"
	"github.com/hormatech/blockplant/internal/database"
	"github.com/hormatech/blockplant/internal/handlers"
	"github.com/hormatech/blockplant/internal/middleware"
	"github.com/hormatech/blockplant/internal/models"
	"github.com/hormatech/blockplant/internal/repositories"
	"github.com/hormatech/blockplant/internal/routes"
	"github.com/hormatech/blockplant/internal/services"
	pkgauth "github.com/hormatech/blockplant/pkg/auth"
	pkghttp "github.com/hormatech/blockplant/pkg/http"
	pkglogger "github.com/hormatech/blockplant/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if migrate, _ := strconv.ParseBool(os.Getenv("MIGRATE_ON_START")); migrate {
		if err := database.Migrate(db.Pool, logger); err != nil {
			logger.Error("failed to run migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	throttleRepo := repositories.NewThrottleRepository(db)
	orderRepo := repositories.NewProductionOrderRepository(db)
	materialRepo := repositories.NewMaterialRepository(db)
	equipmentRepo := repositories.NewEquipmentRepository(db)

	// Auth plumbing
	sessions := auth.NewSessionManager(cfg.Auth.JWTSecret, cfg.Auth.SessionExpiry)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Auth.TimingDelayBaseMs,
		RandomDelayMs: cfg.Auth.TimingDelayRandomMs,
	})
	auditLogger := pkglogger.NewAuditLogger(logger)

	rateLimitService := services.NewRateLimitService(throttleRepo, logger)
	lockoutService := services.NewLockoutService(throttleRepo, services.LockoutConfig{
		MaxFailures:   cfg.Auth.MaxFailedLogins,
		FailureWindow: cfg.Auth.FailedLoginWindow,
		LockDuration:  cfg.Auth.LockDuration,
	}, logger)

	var notifier services.Notifier = services.NoopNotifier{}
	if cfg.Email.Enabled {
		sesNotifier, err := services.NewSESNotifier(cfg.Email.AWSRegion, cfg.Email.FromAddress, logger)
		if err != nil {
			logger.Error("failed to initialize email notifier", slog.Any("error", err))
			os.Exit(1)
		}
		notifier = sesNotifier
	}

	// Services
	authService := services.NewAuthService(userRepo, rateLimitService, lockoutService, sessions, timingDelay, notifier, logger, auditLogger, cfg.Auth)
	userService := services.NewUserService(userRepo, logger)
	orderService := services.NewOrderService(orderRepo, logger)
	materialService := services.NewMaterialService(materialRepo, logger)
	equipmentService := services.NewEquipmentService(equipmentRepo, logger)

	// Handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	cookieConfig := auth.DefaultCookieConfig(cfg.Server.Env)
	authHandler := handlers.NewAuthHandler(authService, sessions, ipConfig, cookieConfig)
	userHandler := handlers.NewUserHandler(userService)
	orderHandler := handlers.NewOrderHandler(orderService)
	materialHandler := handlers.NewMaterialHandler(materialService)
	equipmentHandler := handlers.NewEquipmentHandler(equipmentService)
	healthHandler := handlers.NewHealthHandler(db)

	// Bootstrap first admin user if configured
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminUser(bootCtx, userRepo, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	bootCancel()

	// Router
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.SecurityHeaders)
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middleware.RequestLogger(logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, authHandler, userHandler, orderHandler, materialHandler, equipmentHandler, healthHandler, sessions)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Background sweep of expired throttle rows
	reaper := background.NewThrottleReaper(throttleRepo, cfg.Auth.ReaperInterval, logger)
	reaperCtx, reaperCancel := context.WithCancel(context.Background())
	defer reaperCancel()
	go reaper.Run(reaperCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	reaperCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// ensureAdminUser creates the first admin account if ADMIN_EMAIL and
// ADMIN_PASSWORD are set and no such account exists yet.
func ensureAdminUser(ctx context.Context, userRepo *repositories.UserRepository, logger *slog.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping admin user creation")
		return nil
	}

	_, err := userRepo.GetByEmail(ctx, adminEmail)
	if err == nil {
		logger.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	_, err = userRepo.Create(ctx, &models.User{
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		Name:         "Admin",
		Role:         "admin",
		Active:       true,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("admin user created")
	return nil
}
