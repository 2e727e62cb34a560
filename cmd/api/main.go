package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/natebrowery/stockroom-backend/api/routes"
	"github.com/natebrowery/stockroom-backend/internal/auth"
	"github.com/natebrowery/stockroom-backend/internal/inventory"
	"github.com/natebrowery/stockroom-backend/internal/media"
	"github.com/natebrowery/stockroom-backend/internal/notifications"
	"github.com/natebrowery/stockroom-backend/internal/orders"
	"github.com/natebrowery/stockroom-backend/internal/products"
	"github.com/natebrowery/stockroom-backend/internal/reports"
	"github.com/natebrowery/stockroom-backend/internal/scanner"
	"github.com/natebrowery/stockroom-backend/internal/users"
	"github.com/natebrowery/stockroom-backend/pkg/auth/session"
	"github.com/natebrowery/stockroom-backend/pkg/config"
	"github.com/natebrowery/stockroom-backend/pkg/db"
	"github.com/natebrowery/stockroom-backend/pkg/logger"
	"github.com/natebrowery/stockroom-backend/pkg/migrate"
	"github.com/natebrowery/stockroom-backend/pkg/redis"
	"github.com/natebrowery/stockroom-backend/pkg/storage/s3"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	s3Client, err := s3.NewClient(context.Background(), cfg.S3, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	inventoryRepo := inventory.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())
	mediaRepo := media.NewRepository(dbClient.DB())
	reportRepo := reports.NewRepository(dbClient.DB())
	resetTokenRepo := auth.NewResetTokenRepository(dbClient.DB())
	adjuster := inventory.NewAdjuster()

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		ResetTokenRepo: resetTokenRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		ResetConfig:    cfg.PasswordReset,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(userRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(productRepo, dbClient, adjuster)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventoryRepo, adjuster, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notificationRepo, userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:     orderRepo,
		Tx:       dbClient,
		Adjuster: adjuster,
		Notifier: notificationService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	scannerService, err := scanner.NewService(orderRepo, productRepo, orderService, adjuster, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create scanner service", err)
		os.Exit(1)
	}

	reportService, err := reports.NewService(reportRepo, productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create report service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(mediaRepo, s3Client, cfg.S3.UploadURLExpiry, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, routes.Services{
			Auth:          authService,
			Users:         userService,
			Products:      productService,
			Inventory:     inventoryService,
			Orders:        orderService,
			Scanner:       scannerService,
			Notifications: notificationService,
			Reports:       reportService,
			Media:         mediaService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
