package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Daniel-Osman/nfd-express/internal/clients/gcs"
	redisclient "github.com/Daniel-Osman/nfd-express/internal/clients/redis"
	"github.com/Daniel-Osman/nfd-express/internal/db"
	"github.com/Daniel-Osman/nfd-express/internal/handlers"
	"github.com/Daniel-Osman/nfd-express/internal/jobs"
	"github.com/Daniel-Osman/nfd-express/internal/logger"
	"github.com/Daniel-Osman/nfd-express/internal/middleware"
	"github.com/Daniel-Osman/nfd-express/internal/observability"
	"github.com/Daniel-Osman/nfd-express/internal/repos"
	"github.com/Daniel-Osman/nfd-express/internal/server"
	"github.com/Daniel-Osman/nfd-express/internal/services"
	"github.com/Daniel-Osman/nfd-express/internal/utils"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	ctx := context.Background()
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "nfd-express",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if otelShutdown != nil {
		defer otelShutdown(ctx)
	}

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	profileRepo := repos.NewProfileRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	shipmentRepo := repos.NewShipmentRepo(thePG, log)
	shipmentEventRepo := repos.NewShipmentEventRepo(thePG, log)

	// Clients
	log.Info("Setting up clients from main...")
	bucketService, err := gcs.NewBucketService(log)
	if err != nil {
		log.Warn("Could not init BucketService", "error", err)
	}
	trackingCache, err := redisclient.NewTrackingCache(log)
	if err != nil {
		log.Warn("Could not init TrackingCache", "error", err)
	}
	if trackingCache != nil {
		defer trackingCache.Close()
	}

	// Services
	log.Info("Setting up Services from main...")
	avatarService, err := services.NewAvatarService(thePG, log, bucketService)
	if err != nil {
		log.Warn("Could not init AvatarService", "error", err)
	}
	authService := services.NewAuthService(thePG, log, profileRepo, avatarService, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	profileService := services.NewProfileService(thePG, log, profileRepo)
	shipmentService := services.NewShipmentService(thePG, log, shipmentRepo, shipmentEventRepo, profileRepo, bucketService)
	consolidationService := services.NewConsolidationService(thePG, log, shipmentRepo, shipmentEventRepo)
	trackingService := services.NewTrackingService(thePG, log, shipmentRepo, shipmentEventRepo, profileRepo, trackingCache)
	statsService := services.NewStatsService(thePG, log, shipmentRepo, profileRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	profileHandler := handlers.NewProfileHandler(profileService)
	shipmentHandler := handlers.NewShipmentHandler(shipmentService, consolidationService)
	trackingHandler := handlers.NewTrackingHandler(trackingService)
	adminHandler := handlers.NewAdminHandler(profileService, statsService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Jobs
	tokenSweeper := jobs.NewTokenSweeper(userTokenRepo, log)
	if sweepCron, err := tokenSweeper.Start(ctx); err == nil {
		defer sweepCron.Stop()
	}

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:     authHandler,
		AuthMiddleware:  authMiddleware,
		ProfileHandler:  profileHandler,
		ShipmentHandler: shipmentHandler,
		TrackingHandler: trackingHandler,
		AdminHandler:    adminHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
