// Package main runs the RecePoint marathon-registration HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/recepoint/backend/config"
	"github.com/recepoint/backend/internal/auth"
	"github.com/recepoint/backend/internal/marathons"
	"github.com/recepoint/backend/internal/middleware"
	"github.com/recepoint/backend/internal/registrations"
	"github.com/recepoint/backend/pkg/database"
	"github.com/recepoint/backend/pkg/redis"
	"github.com/recepoint/backend/pkg/response"
	"github.com/recepoint/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("redis disabled, recent-list cache off", zap.Error(err))
			rdb = nil
		}
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ImagesBucket:         cfg.AWS.ImagesBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	tokenService := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpireDays)
	authHandler := auth.NewHandler(tokenService, cfg.Server.Production, logger)

	marathonRepo := marathons.NewRepository(pool)
	marathonCache := marathons.NewCache(rdb, logger)
	marathonHandler := marathons.NewHandler(marathonRepo, marathonCache, logger)

	registrationRepo := registrations.NewRepository(pool)
	registrationWorkflow := registrations.NewWorkflow(registrationRepo, marathonRepo, logger)
	registrationHandler := registrations.NewHandler(registrationRepo, registrationWorkflow, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Identity token (cookie) endpoints
	router.POST("/jwt", authHandler.IssueToken)
	router.GET("/logout", authHandler.Logout)

	// Public marathon and registration endpoints
	router.GET("/limitMarathons", marathonHandler.ListRecent)
	router.GET("/marathons/:id", marathonHandler.GetByID)
	router.POST("/registration", registrationHandler.Submit)
	router.DELETE("/marathon/:id", marathonHandler.Delete)
	router.DELETE("/registation/:id", registrationHandler.Delete)
	router.PUT("/marathonUpdate/:id", marathonHandler.Update)
	router.PUT("/registrationUpdate/:id", registrationHandler.Update)

	// Gated endpoints: the cookie token must verify, and each handler checks
	// resource ownership against the bound identity itself.
	gated := router.Group("")
	gated.Use(middleware.Auth(tokenService))
	{
		gated.GET("/marathons", marathonHandler.List)
		gated.GET("/marathonsSpecific/:email", marathonHandler.ListByCreator)
		gated.GET("/registationsSpecific/:email", registrationHandler.ListByRegistrant)
		gated.POST("/marathon", marathonHandler.Create)
		gated.POST("/marathonImageUploadUrl", marathonHandler.GenerateImageUploadURL(s3Client))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
