package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-user-service/internal/container"
	handlers "github.com/oksasatya/go-ddd-user-service/internal/interface/http"
	"github.com/oksasatya/go-ddd-user-service/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-user-service/internal/router/modules"
	"github.com/oksasatya/go-ddd-user-service/pkg/validation"
)

const debugVarsPerMinute = 120

// NewEngine builds the gin engine with global middleware and every module.
// ErrorHandler is registered before the routes so it wraps all handlers.
func NewEngine(c *container.Container) *gin.Engine {
	validation.Init()
	cfg := c.Config
	production := cfg.IsProduction()

	r := gin.New()
	r.Use(middleware.Recovery(c.Logger, production))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	if cfg.MaxBodyBytes > 0 {
		r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	}
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
			ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(middleware.RequestLogger(c.Logger))
	}
	if cfg.DebugMetricsEnabled {
		r.Use(middleware.Metrics())
	}
	r.Use(middleware.ErrorHandler(c.Logger, production))

	r.NoRoute(middleware.NotFound())

	reg := NewRegistry(r, cfg.BasePath)
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}

// InitModules registers all feature modules with the registry.
func InitModules(r *Registry, c *container.Container) {
	cfg := c.Config

	var allow middleware.AllowFunc
	if cfg.RateLimitSkipPrivate {
		allow = middleware.AllowPrivateIP()
	}
	key := middleware.KeyByIP()
	if cfg.RateLimitPerMethod {
		key = middleware.KeyByIPAndMethod()
	}
	limiter := middleware.RateLimit(c.Redis, middleware.RateLimitOptions{
		Max:    cfg.RateLimitMax,
		Window: cfg.RateLimitWindow,
		Key:    key,
		Allow:  allow,
		Logger: c.Logger,
	})

	r.Add(modules.NewHealthModule(handlers.Health))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(c.UserService), limiter))
	if cfg.DebugMetricsEnabled {
		// separate bucket so scraping does not eat into the users quota
		debugKey := middleware.KeyByIP()
		debugLimiter := middleware.RateLimit(c.Redis, middleware.RateLimitOptions{
			Max:    debugVarsPerMinute,
			Window: time.Minute,
			Key:    func(gc *gin.Context) string { return "debug:" + debugKey(gc) },
			Logger: c.Logger,
		})
		r.Add(modules.NewDebugModule(debugLimiter))
	}
}
