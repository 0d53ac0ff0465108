package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/intervention-planner-api/api/swagger"
	"github.com/noah-isme/intervention-planner-api/internal/handler"
	"github.com/noah-isme/intervention-planner-api/internal/repository"
	"github.com/noah-isme/intervention-planner-api/internal/router"
	"github.com/noah-isme/intervention-planner-api/internal/service"
	"github.com/noah-isme/intervention-planner-api/pkg/cache"
	"github.com/noah-isme/intervention-planner-api/pkg/config"
	"github.com/noah-isme/intervention-planner-api/pkg/database"
	"github.com/noah-isme/intervention-planner-api/pkg/logger"
)

// @title Intervention Planner API
// @version 1.0.0
// @description Schedules intervention group sessions around availability, grade constraints and the school calendar.
// @BasePath /api/v1
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	checks := map[string]handler.Pinger{"postgres": db.PingContext}

	metrics := service.NewMetricsService()
	var cacheRepo service.CacheRepository
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, calendar cache disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		repo := repository.NewCacheRepository(redisClient, "intervention-planner:", logr)
		cacheRepo = repo
		checks["redis"] = repo.Ping
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Calendar.CacheTTL, logr, cacheRepo != nil)

	validate := validator.New()

	groupRepo := repository.NewGroupRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	interventionistRepo := repository.NewInterventionistRepository(db)
	constraintRepo := repository.NewGradeConstraintRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	cycleRepo := repository.NewCycleRepository(db)

	calendarSvc := service.NewCalendarService(calendarRepo, cacheSvc, validate, logr, service.CalendarConfig{
		CacheTTL:    cfg.Calendar.CacheTTL,
		ICSMaxBytes: cfg.Calendar.ICSMaxBytes,
	})
	schedulerSvc := service.NewSchedulerService(groupRepo, sessionRepo, interventionistRepo, constraintRepo, calendarSvc, cycleRepo,
		validate, metrics, logr, service.SchedulerConfig{
			DayStartHour:          cfg.Scheduler.DayStartHour,
			DayEndHour:            cfg.Scheduler.DayEndHour,
			SlotStepMinutes:       cfg.Scheduler.SlotStepMinutes,
			DefaultSessionMinutes: cfg.Scheduler.DefaultSessionMinutes,
			MaxSuggestions:        cfg.Scheduler.MaxSuggestionsReturned,
			Location:              cfg.Scheduler.Location(),
		})
	commitSvc := service.NewSessionCommitService(schedulerSvc, sessionRepo, metrics, logr, service.SessionCommitConfig{
		Workers:      cfg.Scheduler.CommitWorkers,
		MaxRetries:   cfg.Scheduler.CommitRetries,
		BufferSize:   cfg.Scheduler.CommitQueueBuffer,
		RetryDelay:   time.Second,
		JobTTL:       cfg.Scheduler.JobTTL,
		DefaultWeeks: cfg.Scheduler.DefaultCommitWeeks,
	})
	exportSvc := service.NewExportService(schedulerSvc, logr, cfg.Exports.Enabled)
	availabilitySvc := service.NewAvailabilityService(interventionistRepo, constraintRepo, validate, logr)
	authSvc := service.NewAuthService(service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Leeway: 30 * time.Second})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commitSvc.Start(ctx)
	defer commitSvc.Stop()

	r := router.New(router.Deps{
		Config:  cfg,
		Logger:  logr,
		Metrics: metrics,
		Tokens:  authSvc,
	}, router.Handlers{
		Scheduler:    handler.NewSchedulerHandler(schedulerSvc, commitSvc, exportSvc, cfg.APIPrefix),
		Calendar:     handler.NewCalendarHandler(calendarSvc),
		Availability: handler.NewAvailabilityHandler(availabilitySvc),
		Metrics:      handler.NewMetricsHandler(metrics, checks),
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
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
