package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/odontosys/clinic-api/internal/config"
	"github.com/odontosys/clinic-api/internal/handler/health"
	"github.com/odontosys/clinic-api/internal/middleware"
	"github.com/odontosys/clinic-api/pkg/metrics"
)

// Handler is anything that can mount its routes on the API group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine   *gin.Engine
	handlers []Handler
}

// NewRouter assembles the engine with the shared middleware chain. All
// business routes live under /api/v1 behind the API key; /health and /metrics
// stay open.
func NewRouter(cfg *config.Config, m *metrics.Metrics, handlers ...Handler) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger())
	engine.Use(middleware.Metrics(m))
	engine.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		})
		engine.Use(limiter.RateLimit())
	}

	health.NewHandler().RegisterRoutes(engine)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/v1")
	api.Use(middleware.APIKeyAuth(cfg.Auth.APIKey))
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}

	return &Router{engine: engine, handlers: handlers}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
