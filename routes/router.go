package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/focusdesk/ai"
	"github.com/cppla/focusdesk/config"
	"github.com/cppla/focusdesk/controllers"
	"github.com/cppla/focusdesk/events"
	"github.com/cppla/focusdesk/middleware"
	"github.com/cppla/focusdesk/services"
	"github.com/cppla/focusdesk/utils"
)

// Dependencies are the collaborators the HTTP layer is built from.
// Nil Cache, Blacklist, States, Signups, Generator and Publisher fall back to in-process defaults.
type Dependencies struct {
	Config    config.AppConfig
	DB        *gorm.DB
	Location  *time.Location
	Now       func() time.Time
	Cache     *utils.Cache
	Blacklist *utils.TokenBlacklist
	States    *utils.StateStore
	Signups   *utils.SignupGuard
	Generator ai.Generator
	Publisher events.Publisher
	AccessLog *zap.Logger
}

func (d *Dependencies) defaults() {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Cache == nil {
		d.Cache = utils.NewCache(nil)
	}
	if d.Blacklist == nil {
		d.Blacklist = utils.NewTokenBlacklist(nil)
	}
	if d.States == nil {
		d.States = utils.NewStateStore(nil)
	}
	if d.Signups == nil {
		d.Signups = utils.NewSignupGuard(nil, d.Config.SignupCooldown(), d.Config.SignupMaxPerIPPerDay)
	}
	if d.Generator == nil {
		d.Generator = ai.Unconfigured{}
	}
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}
	if d.AccessLog == nil {
		d.AccessLog = utils.Logger
	}
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Dependencies) *gin.Engine {
	deps.defaults()
	cfg := deps.Config

	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(utils.Ginzap(deps.AccessLog))
	r.Use(utils.RecoveryWithZap(deps.AccessLog, true))
	r.Use(middleware.Metrics())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		// credentials cannot be combined with a wildcard origin
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	issuer := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL())
	activity := services.NewActivityLogger(deps.DB, deps.Publisher, deps.Cache).WithClock(deps.Now)
	streaks := services.NewStreakService(deps.DB, activity, deps.Location, deps.Now)
	deepWork := services.NewDeepWorkService(deps.DB, activity)
	weekly := services.NewWeeklyService(deps.DB, deps.Cache, deps.Location, deps.Now)

	authController := controllers.NewAuthController(deps.DB, cfg, issuer, deps.Blacklist, deps.States, deps.Signups)
	streakController := controllers.NewStreakController(streaks)
	deepWorkController := controllers.NewDeepWorkController(deepWork)
	taskController := controllers.NewTaskController(deps.DB, activity, weekly, deps.Cache, deps.Location, deps.Now)
	scheduleController := controllers.NewScheduleController(deps.DB, activity, deps.Location, deps.Now)
	milestoneController := controllers.NewMilestoneController(deps.DB, activity)
	overviewController := controllers.NewOverviewController(deps.DB, activity)
	noteController := controllers.NewNoteController(deps.DB, deps.Generator, activity, deps.Now)
	aiController := controllers.NewAIController(deps.Generator)
	activityController := controllers.NewActivityController(activity)
	statsController := controllers.NewStatsController(deps.DB, deps.Location, deps.Now)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)
	authRequired := middleware.AuthRequired(cfg.JWTSecret, deps.Blacklist)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(limiter.Middleware())
	authGroup.POST("/signup", authController.Signup)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/google/login", authController.GoogleLogin)
	authGroup.GET("/google/callback", authController.GoogleCallback)
	authGroup.POST("/logout", authRequired, authController.Logout)
	authGroup.GET("/me", authRequired, authController.Me)

	protected := api.Group("")
	protected.Use(authRequired)

	protected.GET("/streak", streakController.Get)
	protected.POST("/streak/update", streakController.Update)

	protected.GET("/deepwork", deepWorkController.Get)
	protected.POST("/deepwork", deepWorkController.UpdateGoal)
	protected.POST("/deepwork/session", deepWorkController.LogSession)

	protected.GET("/activity", activityController.Recent)
	protected.GET("/stats", statsController.GetStats)

	protected.GET("/tasks", taskController.List)
	protected.GET("/tasks/week", taskController.Week)
	protected.GET("/tasks/pending-today", taskController.PendingToday)
	protected.POST("/tasks", taskController.Create)
	protected.PUT("/tasks/:id", taskController.Update)
	protected.DELETE("/tasks/:id", taskController.Delete)

	protected.GET("/schedules", scheduleController.List)
	protected.POST("/schedules", scheduleController.Create)
	protected.PUT("/schedules/:id", scheduleController.Update)
	protected.DELETE("/schedules/:id", scheduleController.Delete)

	protected.GET("/milestones", milestoneController.List)
	protected.POST("/milestones", milestoneController.Create)
	protected.PUT("/milestones/:id", milestoneController.Update)
	protected.DELETE("/milestones/:id", milestoneController.Delete)

	protected.GET("/overview", overviewController.List)
	protected.POST("/overview", overviewController.Create)
	protected.PUT("/overview/:id", overviewController.Update)
	protected.DELETE("/overview/:id", overviewController.Delete)

	protected.GET("/notes", noteController.List)
	protected.POST("/notes", noteController.Create)
	protected.GET("/notes/:id", noteController.Get)
	protected.PUT("/notes/:id", noteController.Update)
	protected.DELETE("/notes/:id", noteController.Delete)

	aiGroup := protected.Group("")
	aiGroup.Use(limiter.Middleware())
	aiGroup.POST("/notes/:id/summary", noteController.Summary)
	aiGroup.POST("/notes/:id/quiz", noteController.Quiz)
	aiGroup.POST("/ai/summarize", aiController.Summarize)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
