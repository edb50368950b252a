package main

import (
	"context"
	"fmt"
	"log"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"rentdesk/internal/caching"
	"rentdesk/internal/config"
	"rentdesk/internal/handlers"
	"rentdesk/internal/jobs/background"
	"rentdesk/internal/middleware"
	"rentdesk/internal/repositories"
	"rentdesk/internal/services"
	"rentdesk/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	pool, err := database.NewPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret")
	}

	// Cache service
	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	// Object storage
	minioSvc, err := services.NewMinioService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}

	// SMS transport
	var smsSender services.SMSSender
	if cfg.SMSGatewayURL != "" {
		smsSender = services.NewGatewaySMSSender(cfg.SMSGatewayURL, cfg.SMSAPIKey)
	} else {
		log.Printf("WARNING: SMS_GATEWAY_URL not set, verification codes will be logged")
		smsSender = services.NewLogSMSSender()
	}

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	otpRepo := repositories.NewOtpRepo(pool)
	roomRepo := repositories.NewRoomRepo(pool)
	rentRecordRepo := repositories.NewRentRecordRepo(pool)

	// Services
	authSvc := services.NewAuthService(otpRepo, userRepo, smsSender, jwtSecret)
	buildingSvc := services.NewBuildingService(pool)
	roomSvc := services.NewRoomService(pool, cacheSvc, minioSvc)
	ledgerSvc := services.NewLedgerService(rentRecordRepo, roomRepo, cacheSvc)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc)
	buildingHandlers := handlers.NewBuildingHandlers(buildingSvc)
	roomHandlers := handlers.NewRoomHandlers(roomSvc)
	rentHandlers := handlers.NewRentHandlers(ledgerSvc, minioSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, version)

	// Background jobs
	scheduler, err := background.NewJobScheduler(ledgerSvc)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
	}()

	// Make sure object storage buckets exist before serving uploads.
	for _, bucket := range []string{"rentdesk-images", "rentdesk-receipts"} {
		if err := minioSvc.EnsureBucketExists(context.Background(), bucket); err != nil {
			log.Printf("WARNING: could not ensure bucket %s: %v", bucket, err)
		}
	}

	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	v1 := e.Group("/v1")

	// Authentication routes (no JWT required)
	auth := v1.Group("/auth")
	auth.POST("/otp", authHandlers.SendOtp)
	auth.POST("/login", authHandlers.Login)

	// Protected routes
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(jwtSecret),
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(401, "Invalid token")
		},
	}))
	protected.Use(middleware.UserContext())

	// Profile routes
	protected.GET("/me", authHandlers.Me)
	protected.PUT("/me", authHandlers.UpdateProfile)

	// Building routes
	protected.GET("/buildings", buildingHandlers.ListBuildings)
	protected.POST("/buildings", buildingHandlers.CreateBuilding)
	protected.PUT("/buildings/:id", buildingHandlers.UpdateBuilding)
	protected.DELETE("/buildings/:id", buildingHandlers.DeleteBuilding)
	protected.POST("/buildings/:id/switch", buildingHandlers.SwitchBuilding)

	// Room routes
	protected.GET("/rooms", roomHandlers.ListRooms)
	protected.POST("/rooms", roomHandlers.CreateRoom)
	protected.GET("/rooms/:id", roomHandlers.GetRoom)
	protected.PUT("/rooms/:id", roomHandlers.UpdateRoom)
	protected.DELETE("/rooms/:id", roomHandlers.DeleteRoom)
	protected.POST("/rooms/:id/image", roomHandlers.UploadRoomImage)

	// Rent ledger routes
	protected.POST("/rent/generate", rentHandlers.GenerateMonthlyRent)
	protected.GET("/rent/history", rentHandlers.GetHistory)
	protected.GET("/rent/stats", rentHandlers.GetStats)
	protected.GET("/rent/pending", rentHandlers.GetPendingRent)
	protected.POST("/rent/:id/paid", rentHandlers.MarkPaid)
	protected.POST("/rent/:id/receipt", rentHandlers.GenerateReceipt)

	log.Printf("Rentdesk server v%s starting on port %d", version, cfg.Port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", cfg.Port)))
}
