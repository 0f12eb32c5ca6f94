package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"safecircle/backend/internal/api/handler"
	"safecircle/backend/internal/chathub"
	"safecircle/backend/internal/circles"
	"safecircle/backend/internal/config"
	"safecircle/backend/internal/metrics"
	"safecircle/backend/internal/models"
	"safecircle/backend/internal/notify"
	"safecircle/backend/internal/storage"
	"safecircle/backend/internal/trust"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupLogger(appEnv string) {
	level := zerolog.InfoLevel
	if appEnv == "dev" {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
}

func setupDependencies(cfg config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect PostgreSQL")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect Redis")
	}

	err = db.AutoMigrate(
		&models.Circle{},
		&models.CircleMember{},
		&models.CircleMessage{},
		&models.Reaction{},
		&models.TrustScore{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	log.Info().Msg("database and Redis connections established, migrations complete")
	return db, rdb
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file loaded")
	}

	cfg := config.Load()
	setupLogger(cfg.AppEnv)
	log.Info().Str("env", cfg.AppEnv).Msg("starting SafeCircle backend")

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	notifier, err := notify.NewNotifier(cfg.Telegram.Token, cfg.Telegram.ModeratorID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start moderation notifier")
	}

	circleService := circles.NewService(s)
	trustService := trust.NewService(s)

	hub := chathub.NewManagerService(s)
	gateway := chathub.NewGateway(hub, s, trustService, notifier)

	go hub.Run()
	hub.StartPubSubListener()

	if cfg.MetricsEnabled {
		metrics.Register()
	}

	r := gin.Default()
	h := handler.NewHandler(hub, gateway, circleService, trustService, cfg.JWTSecret)

	r.GET("/anonid", h.GetAnonID)
	r.GET("/ws", h.ServeWebSocket)

	api := r.Group("/api")
	{
		api.POST("/circles/match", h.MatchCircle)
		api.POST("/circles", h.CreateCircle)
		api.GET("/circles", h.ListCircles)
		api.GET("/circles/:id", h.GetCircle)
		api.POST("/circles/:id/join", h.JoinCircle)
		api.POST("/circles/:id/leave", h.LeaveCircle)
		api.GET("/circles/:id/messages", h.GetCircleMessages)

		api.GET("/trust/score", h.GetTrustScore)
		api.POST("/trust/report", h.ReportUser)
		api.POST("/trust/block", h.BlockUser)
		api.POST("/trust/mute", h.MuteUser)
		api.GET("/trust/suspicious", h.CheckSuspicious)
	}

	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Port),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}
