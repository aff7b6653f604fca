package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	auditHandler "github.com/healthflow/clinic-api/internal/handler/audit"
	clinicHandler "github.com/healthflow/clinic-api/internal/handler/clinic"
	healthHandler "github.com/healthflow/clinic-api/internal/handler/health"
	"github.com/healthflow/clinic-api/internal/middleware"
	"github.com/healthflow/clinic-api/pkg/metrics"
)

// Options bundles everything the router needs.
type Options struct {
	ClinicHandler *clinicHandler.Handler
	AuditHandler  *auditHandler.Handler
	HealthHandler *healthHandler.Handler
	AuthMW        *middleware.AuthMiddleware
	RateLimiter   *middleware.RateLimiter
	Timeout       middleware.TimeoutConfig
	CORS          middleware.CORSConfig
	Metrics       *metrics.Metrics
}

// New assembles the gin engine with the full middleware chain. Health and
// metrics endpoints stay outside the authenticated group.
func New(opts Options) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics(opts.Metrics))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORS(opts.CORS))

	opts.HealthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.Timeout(opts.Timeout))
	api.Use(opts.RateLimiter.RateLimit())
	api.Use(opts.AuthMW.Authenticate())

	opts.ClinicHandler.RegisterRoutes(api, opts.AuthMW)
	opts.AuditHandler.RegisterRoutes(api, opts.AuthMW)

	return r
}
