package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	promhandler "github.com/labwise/lab-api/internal/handler/prometheus"
	"github.com/labwise/lab-api/internal/middleware"
	"github.com/labwise/lab-api/pkg/event"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type EventHandler interface {
	Handler
	RegisterRoutesWithEvents(*gin.RouterGroup, *event.EventTracker)
}

type Router struct {
	engine       *gin.Engine
	analysisH    EventHandler
	catalogH     Handler
	healthH      Handler
	prom         *promhandler.Handler
	eventTracker *event.EventTracker
}

type Config struct {
	RequestTimeout   time.Duration
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	CORSOrigins      []string
}

func NewRouter(
	analysisH EventHandler,
	catalogH Handler,
	healthH Handler,
	prom *promhandler.Handler,
	eventTracker *event.EventTracker,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	r := &Router{
		engine:       engine,
		analysisH:    analysisH,
		catalogH:     catalogH,
		healthH:      healthH,
		prom:         prom,
		eventTracker: eventTracker,
	}

	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	engine.Use(
		middleware.Recovery(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		prom.Middleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: timeout}),
		middleware.RequestID(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.SizeLimit(middleware.DefaultSizeLimitConfig()),
		middleware.Compress(middleware.DefaultCompressConfig()),
		middleware.Validation(middleware.DefaultValidationConfig()),
	)

	corsConfig := middleware.DefaultCORSConfig()
	if len(config.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = config.CORSOrigins
	}
	engine.Use(middleware.CORS(corsConfig))

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", r.prom.Handler())

	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.healthH.RegisterRoutes(api)

	catalogGroup := api.Group("")
	catalogGroup.Use(middleware.Cache(middleware.DefaultCacheConfig()))
	r.catalogH.RegisterRoutes(catalogGroup)

	r.analysisH.RegisterRoutesWithEvents(api, r.eventTracker)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) Use(middleware ...gin.HandlerFunc) {
	r.engine.Use(middleware...)
}
