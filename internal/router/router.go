// Package router assembles the HTTP surface.
package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/intervention-planner-api/internal/handler"
	"github.com/noah-isme/intervention-planner-api/internal/middleware"
	"github.com/noah-isme/intervention-planner-api/internal/service"
	"github.com/noah-isme/intervention-planner-api/pkg/config"
	"github.com/noah-isme/intervention-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/intervention-planner-api/pkg/middleware/cors"
	"github.com/noah-isme/intervention-planner-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/noah-isme/intervention-planner-api/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Scheduler    *handler.SchedulerHandler
	Calendar     *handler.CalendarHandler
	Availability *handler.AvailabilityHandler
	Metrics      *handler.MetricsHandler
}

// Deps carries the cross-cutting collaborators.
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *service.MetricsService
	Tokens  middleware.TokenValidator
}

// New builds the gin engine with every route registered.
func New(deps Deps, h Handlers) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix, middleware.WithResponseMeta(), middleware.JWT(deps.Tokens))

	writes := []gin.HandlerFunc{middleware.CanWrite()}
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, nil)
		writes = append(writes, limiter.Middleware())
	}
	write := func(action, resource string, fn gin.HandlerFunc) []gin.HandlerFunc {
		chain := append([]gin.HandlerFunc{}, writes...)
		return append(chain, middleware.Audit(log, action, resource), fn)
	}

	if cfg.Scheduler.Enabled {
		groups := api.Group("/groups/:id/schedule")
		groups.POST("/suggestions", h.Scheduler.Suggestions)
		groups.POST("/cycle", h.Scheduler.CyclePreview)
		if cfg.Exports.Enabled {
			groups.POST("/cycle/export", h.Scheduler.ExportCycle)
		}
		groups.POST("/cycle/commit", write("schedule.commit_cycle", "group", h.Scheduler.CommitCycle)...)
		groups.POST("/weekly/commit", write("schedule.commit_weekly", "group", h.Scheduler.CommitWeekly)...)
		api.GET("/schedule/jobs/:jobId", h.Scheduler.JobStatus)
	}

	calendar := api.Group("/calendar")
	calendar.GET("/events", h.Calendar.List)
	calendar.POST("/events", write("calendar.create", "calendar_event", h.Calendar.Create)...)
	calendar.DELETE("/events/:id", write("calendar.delete", "calendar_event", h.Calendar.Delete)...)
	calendar.POST("/import", write("calendar.import", "calendar_event", h.Calendar.Import)...)

	api.GET("/interventionists/:id/availability", h.Availability.GetAvailability)
	api.PUT("/interventionists/:id/availability", write("availability.replace", "interventionist", h.Availability.ReplaceAvailability)...)

	api.GET("/grade-constraints", h.Availability.ListConstraints)
	api.POST("/grade-constraints", write("grade_constraint.create", "grade_constraint", h.Availability.CreateConstraint)...)
	api.DELETE("/grade-constraints/:id", write("grade_constraint.delete", "grade_constraint", h.Availability.DeleteConstraint)...)

	return r
}
