package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/bootstrap"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/config"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/logger"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/telemetry"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/interfaces/http/handler"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/interfaces/http/middleware"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title           Grower Payment Settlement API
// @version         1.0
// @description     Payment batch lifecycle, cross-batch distributions, cheques and advance deductions.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = baseLog.Sync()
	}()

	ctx := context.Background()
	telCfg := telemetryConfig(cfg)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telCfg, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telCfg, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telCfg, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log := loggerProvider.Bridge(baseLog, telCfg.ServiceName, logger.ParseLevel(cfg.Log.Level))

	log.Info("Starting grower payment settlement service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
		zap.String("port", cfg.App.Port),
	)

	meter := meterProvider.Meter("growerpay")
	rt, err := bootstrap.Open(ctx, cfg, log, bootstrap.Options{
		Meter:             meter,
		AllowLockFallback: !cfg.App.IsProduction(),
	})
	if err != nil {
		log.Fatal("Failed to initialize settlement runtime", zap.Error(err))
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	checks := make(map[string]handler.HealthCheck)
	for name, check := range rt.HealthChecks() {
		checks[name] = check
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.IsProduction()

	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:    telCfg.ServiceName,
		Logger:         log,
		Meter:          meter,
		CORS:           cors,
		Security:       security,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Actor: middleware.ActorConfig{
			Secret:           []byte(cfg.JWT.Secret),
			Issuer:           cfg.JWT.Issuer,
			AllowActorHeader: cfg.JWT.AllowActorHeader,
		},
		System: handler.NewSystemHandler(cfg.App.Name, cfg.App.Version, checks),
		Settlement: router.SettlementHandlers{
			Batches:            handler.NewBatchHandler(rt.Services.Batches),
			Distributions:      handler.NewDistributionHandler(rt.Services.Distributions),
			Cheques:            handler.NewChequeHandler(rt.Services.Cheques),
			ElectronicPayments: handler.NewElectronicPaymentHandler(rt.Services.ElectronicPayments),
			Advances:           handler.NewAdvanceHandler(rt.Services.Advances),
		},
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := rt.Close(shutdownCtx); err != nil {
		log.Error("Error releasing settlement runtime", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing traces", zap.Error(err))
	}
	log.Info("Server exited gracefully")
	_ = loggerProvider.Shutdown(shutdownCtx)
}

func telemetryConfig(cfg *config.Config) telemetry.Config {
	name := cfg.Telemetry.ServiceName
	if name == "" {
		name = cfg.App.Name
	}
	return telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       name,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}
}
