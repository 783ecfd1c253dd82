package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/ruwad-api/api/swagger"
	"github.com/noah-isme/ruwad-api/internal/handler"
	"github.com/noah-isme/ruwad-api/internal/middleware"
	"github.com/noah-isme/ruwad-api/internal/repository"
	"github.com/noah-isme/ruwad-api/internal/router"
	"github.com/noah-isme/ruwad-api/internal/service"
	"github.com/noah-isme/ruwad-api/pkg/cache"
	"github.com/noah-isme/ruwad-api/pkg/config"
	"github.com/noah-isme/ruwad-api/pkg/database"
	"github.com/noah-isme/ruwad-api/pkg/export"
	"github.com/noah-isme/ruwad-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/ruwad-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ruwad-api/pkg/middleware/requestid"
)

// @title Ruwad Behavior API
// @version 1.0.0
// @description Student behavior points, statistics and reports
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.Dashboard.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	validate := validator.New()
	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cacheRepo.Enabled())

	studentRepo := repository.NewStudentRepository(db, cfg.Students.IDPrefix, cfg.Students.IDPadding)
	behaviorRepo := repository.NewBehaviorRepository(db)
	statsRepo := repository.NewStatisticsRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	userRepo := repository.NewUserRepository(db)

	authSvc := service.NewAuthService(userRepo, studentRepo, validate, logr, metrics, service.AuthConfig{
		AccessTokenSecret:   cfg.JWT.Secret,
		AccessTokenExpiry:   cfg.JWT.Expiration,
		RememberTokenExpiry: cfg.JWT.RememberExpiration,
		Issuer:              cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, cacheSvc, metrics, validate, logr, service.StudentServiceConfig{
		MinNameRunes: cfg.Students.ImportMinNameRunes,
	})
	behaviorSvc := service.NewBehaviorService(behaviorRepo, cacheSvc, metrics, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, metrics, validate, logr)
	statsSvc := service.NewStatisticsService(statsRepo, cacheSvc, metrics, logr, service.StatisticsConfig{
		TopStudents: cfg.Dashboard.TopStudents,
		CacheTTL:    cfg.Dashboard.CacheTTL,
	})
	reportSvc := service.NewReportService(statsRepo, cacheSvc, logr, cfg.Dashboard.TopStudents, export.NewCSVExporter(), export.NewPDFExporter())

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	router.Register(r, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authSvc),
		StudentHandler:    handler.NewStudentHandler(studentSvc),
		BehaviorHandler:   handler.NewBehaviorHandler(behaviorSvc),
		TeacherHandler:    handler.NewTeacherHandler(teacherSvc),
		StatisticsHandler: handler.NewStatisticsHandler(statsSvc),
		ReportHandler:     handler.NewReportHandler(reportSvc),
		HealthHandler:     handler.NewHealthHandler(db, cacheRepo, metrics),
		Resolver:          authSvc,
		Policy:            service.NewAccessPolicy(),
		Audit:             userRepo,
		Logger:            logr,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
