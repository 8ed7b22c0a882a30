package router

import (
	"time"

	"tourdesk/internal/config"
	"tourdesk/internal/handler"
	"tourdesk/internal/middleware"
	"tourdesk/internal/repository"
	"tourdesk/internal/service"
	"tourdesk/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// New wires repositories, services and handlers and returns the engine.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	companyRepo := repository.NewCompanyRepository(db)
	guideRepo := repository.NewGuideRepository(db)
	tripRepo := repository.NewTripRepository(db)
	eventRepo := repository.NewEventRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	staffRepo := repository.NewStaffRepository(db)

	reputationSvc := service.NewReputationService(guideRepo, reviewRepo, rdb, dispatcher)
	companySvc := service.NewCompanyService(companyRepo)
	guideSvc := service.NewGuideService(guideRepo, companyRepo, reputationSvc, rdb)
	tripSvc := service.NewTripService(tripRepo, eventRepo, companyRepo)
	eventSvc := service.NewEventService(eventRepo, tripRepo, guideRepo)
	reviewSvc := service.NewReviewService(reviewRepo, eventRepo, reputationSvc, dispatcher, cfg.ModerationInbox)
	authSvc := service.NewAuthService(staffRepo, cfg)

	healthH := handler.NewHealthHandler(db, rdb)
	authH := handler.NewAuthHandler(authSvc)
	companyH := handler.NewCompanyHandler(companySvc)
	guideH := handler.NewGuideHandler(guideSvc, reputationSvc)
	tripH := handler.NewTripHandler(tripSvc)
	eventH := handler.NewEventHandler(eventSvc)
	reviewH := handler.NewReviewHandler(reviewSvc)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(),
		middleware.ErrorHandler(),
		middleware.RateLimiter(300, time.Minute),
	)

	r.GET("/health", healthH.Check)
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Review submission comes from the public booking site, no staff token.
	v1.POST("/reviews", reviewH.Submit)

	secured := v1.Group("", middleware.JWTAuth(cfg.JWTSecret))

	staff := secured.Group("/staff", middleware.RequireRole("admin"))
	{
		staff.POST("", authH.CreateStaff)
		staff.GET("", authH.ListStaff)
		staff.PUT("/:id", authH.UpdateStaff)
		staff.DELETE("/:id", authH.DeactivateStaff)
		staff.POST("/:id/reactivate", authH.ReactivateStaff)
	}

	companies := secured.Group("/companies")
	{
		companies.GET("", companyH.List)
		companies.GET("/:id", companyH.Get)
		ops := companies.Group("", middleware.RequireRole("operator", "admin"))
		ops.POST("", companyH.Create)
		ops.PUT("/:id", companyH.Update)
		ops.DELETE("/:id", companyH.Deactivate)
	}

	guides := secured.Group("/guides")
	{
		guides.GET("", guideH.List)
		guides.GET("/:id", guideH.Get)
		ops := guides.Group("", middleware.RequireRole("operator", "admin"))
		ops.POST("", guideH.Create)
		ops.PUT("/:id", guideH.Update)
		ops.DELETE("/:id", guideH.Delete)
		ops.PUT("/:id/star-status", guideH.SetStarStatus)
		ops.DELETE("/:id/star-status/override", guideH.ClearManualOverride)
		ops.POST("/:id/recompute", guideH.Recompute)
	}

	trips := secured.Group("/trips")
	{
		trips.GET("", tripH.List)
		trips.GET("/:id", tripH.Get)
		ops := trips.Group("", middleware.RequireRole("operator", "admin"))
		ops.POST("", tripH.Create)
		ops.PUT("/:id", tripH.Update)
		ops.POST("/:id/cascade", tripH.Cascade)
		ops.DELETE("/:id", tripH.Deactivate)
	}

	events := secured.Group("/events")
	{
		events.GET("", eventH.List)
		events.GET("/:id", eventH.Get)
		ops := events.Group("", middleware.RequireRole("operator", "admin"))
		ops.POST("", eventH.Create)
		ops.PUT("/:id", eventH.Update)
		ops.PUT("/:id/status", eventH.SetStatus)
	}

	reviews := secured.Group("/reviews")
	{
		reviews.GET("", reviewH.List)
		reviews.GET("/:id", reviewH.Get)
		mods := reviews.Group("", middleware.RequireRole("moderator", "admin"))
		mods.POST("/:id/approve", reviewH.Approve)
		mods.POST("/:id/reject", reviewH.Reject)
	}

	return r
}
