package main

import (
	"fmt"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"hospital-appointment-server/internal/booking"
	"hospital-appointment-server/internal/config"
	"hospital-appointment-server/internal/middleware"
	"hospital-appointment-server/internal/models"
	redisclient "hospital-appointment-server/internal/redis"
	"hospital-appointment-server/internal/routes"
)

func main() {
	// A missing .env file is fine; everything has env defaults.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.Environment == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		logger.Fatal().Err(err).Msg("error connecting to database")
	}

	rdb, err := redisclient.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password)
	if err != nil {
		logger.Fatal().Err(err).Msg("error connecting to redis")
	}
	locker := redisclient.NewRedisSlotLocker(rdb, cfg.SlotLockTTL)

	service := booking.NewService(db, locker, logger)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(logger), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, db, cfg, service)

	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info().Str("addr", addr).Msg("server listening")
	if err := router.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}
