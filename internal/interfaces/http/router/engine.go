package router

import (
	"time"

	"github.com/garage/backend/internal/infrastructure/auth"
	"github.com/garage/backend/internal/infrastructure/config"
	"github.com/garage/backend/internal/infrastructure/logger"
	"github.com/garage/backend/internal/interfaces/http/handler"
	"github.com/garage/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies; the largest legitimate body is a batch of ids
const maxBodyBytes = 1 << 20

// EngineConfig carries what the middleware chain needs
type EngineConfig struct {
	HTTP           config.HTTPConfig
	ServiceName    string
	TracingEnabled bool
	// RequestTimeout bounds the request context; zero disables it
	RequestTimeout time.Duration
	// JWT is required when HTTP.AuthEnabled is set
	JWT    *auth.JWTService
	Logger *zap.Logger
	// Meter feeds the HTTP request metrics; nil disables them
	Meter            metric.Meter
	ProfilingEnabled bool
}

// NewEngine builds the gin engine with the middleware chain, the health probe and every API route
func NewEngine(cfg EngineConfig, handlers Handlers, health *handler.HealthHandler) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(cfg.Logger),
		middleware.Tracing(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.TracingEnabled}),
		middleware.HTTPMetrics(cfg.Meter),
		middleware.Profiling(cfg.ProfilingEnabled),
		logger.GinMiddleware(cfg.Logger),
		middleware.Secure(),
		middleware.CORS(middleware.CORSConfigFrom(cfg.HTTP)),
		middleware.BodyLimit(maxBodyBytes),
		middleware.Timeout(cfg.RequestTimeout),
	)
	if cfg.HTTP.AuthEnabled {
		engine.Use(middleware.JWTAuth(middleware.DefaultJWTConfig(cfg.JWT, cfg.Logger)))
	}
	engine.Use(middleware.SpanEnricher())

	if health != nil {
		RegisterHealth(engine, health)
	}
	r := NewRouter(engine)
	handlers.Register(r)
	r.Setup()
	return engine
}
