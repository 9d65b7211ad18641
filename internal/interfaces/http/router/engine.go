package router

import (
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/logger"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/interfaces/http/handler"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig assembles the HTTP surface of the service
type EngineConfig struct {
	ServiceName    string
	Logger         *zap.Logger
	Meter          metric.Meter // nil disables HTTP metrics
	TracingOptions []otelgin.Option
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	MaxBodySize    int64
	TrustedProxies []string
	Actor          middleware.ActorConfig
	System         *handler.SystemHandler
	Settlement     SettlementHandlers
}

// NewEngine builds the gin engine with the global middleware chain, the
// unauthenticated probes and the authenticated /api/v1 routes.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Tracing(cfg.ServiceName, cfg.TracingOptions...),
		middleware.SpanErrorMarker(),
		middleware.SecureWithConfig(cfg.Security),
		middleware.CORSWithConfig(cfg.CORS),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	if cfg.Meter != nil {
		engine.Use(middleware.HTTPMetrics(cfg.Meter, log))
	}

	if cfg.System != nil {
		engine.GET("/health", cfg.System.Health)
		engine.GET("/system/info", cfg.System.GetSystemInfo)
		engine.GET("/system/ping", cfg.System.Ping)
	}

	actorCfg := cfg.Actor
	if actorCfg.Logger == nil {
		actorCfg.Logger = log
	}
	NewRouter(engine).
		Use(middleware.Actor(actorCfg), middleware.SpanEnricher()).
		Register(SettlementRoutes(cfg.Settlement)).
		Setup()

	return engine, nil
}
