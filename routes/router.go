package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/serene/config"
	"github.com/cppla/serene/controllers"
	"github.com/cppla/serene/middleware"
	"github.com/cppla/serene/services"
	"github.com/cppla/serene/store"
	"github.com/cppla/serene/utils"
)

// Deps are the services the HTTP layer dispatches to.
type Deps struct {
	Stores   *store.Stores
	Auth     *services.AuthService
	Wellness *services.WellnessService
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, deps Deps) *gin.Engine {
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

	accessLog := utils.Logger
	if cfg.GinPath != "" {
		gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
		if err != nil {
			utils.Logger.Warn("gin access log unavailable, using application logger", zap.Error(err))
		} else {
			accessLog = gl
		}
	}
	r.Use(ginzap.GinzapWithConfig(accessLog, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/health"},
		Context:    middleware.AccessLogFields,
	}))
	r.Use(ginzap.RecoveryWithZap(accessLog, true))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		if err := deps.Stores.Ping(ctx.Request.Context()); err != nil {
			utils.Error(ctx, http.StatusServiceUnavailable, 50301, "database unavailable")
			return
		}
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(deps.Auth)
	profileController := controllers.NewProfileController(deps.Wellness)
	exerciseController := controllers.NewExerciseController(deps.Wellness)
	checkinController := controllers.NewCheckinController(deps.Wellness)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware("auth", cfg.RateLimitPerMinute))
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", authController.OAuthLogin)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	api.GET("/exercises", exerciseController.List)
	api.GET("/exercises/:slug", exerciseController.Get)
	api.GET("/moods", checkinController.Moods)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())
	protected.GET("/profile", profileController.Dashboard)
	protected.GET("/completions", exerciseController.Completions)
	protected.GET("/checkins/today", checkinController.Today)
	protected.GET("/checkins", checkinController.History)

	mutating := protected.Group("")
	mutating.Use(middleware.RateLimitMiddleware("write", cfg.RateLimitPerMinute))
	mutating.PATCH("/profile", profileController.Update)
	mutating.POST("/exercises/:slug/complete", exerciseController.Complete)
	mutating.POST("/checkins", checkinController.Submit)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
