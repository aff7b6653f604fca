package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/healthflow/clinic-api/internal/config"
	"github.com/healthflow/clinic-api/internal/handler"
	auditHandler "github.com/healthflow/clinic-api/internal/handler/audit"
	clinicHandler "github.com/healthflow/clinic-api/internal/handler/clinic"
	healthHandler "github.com/healthflow/clinic-api/internal/handler/health"
	"github.com/healthflow/clinic-api/internal/middleware"
	"github.com/healthflow/clinic-api/internal/repository/postgres"
	"github.com/healthflow/clinic-api/internal/router"
	auditService "github.com/healthflow/clinic-api/internal/service/audit"
	clinicService "github.com/healthflow/clinic-api/internal/service/clinic"
	eventService "github.com/healthflow/clinic-api/internal/service/event"
	"github.com/healthflow/clinic-api/pkg/auth"
	"github.com/healthflow/clinic-api/pkg/cache"
	"github.com/healthflow/clinic-api/pkg/logger"
	"github.com/healthflow/clinic-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || cfg.Log.Level == "" {
		level = zerolog.InfoLevel
	}
	log := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Log.Pretty,
	})
	zlog.Logger = *log.Zerolog()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	m := metrics.NewMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)

	var cacheStore cache.Cache
	if cfg.Cache.Backend == "memory" {
		cacheStore = cache.NewMemoryCache(cfg.Cache.TTL(), 10*time.Minute)
	} else {
		cacheStore = cache.NewRedisCacheFromClient(redisClient)
	}
	cacheStore = cache.NewInstrumented(cacheStore, "clinic", m.CacheHits, m.CacheMisses)

	base := postgres.NewBaseRepository(db)
	clinicRepo := postgres.NewClinicRepository(base)
	roomRepo := postgres.NewRoomRepository(base)
	membershipRepo := postgres.NewMembershipRepository(base)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	doctorRepo := postgres.NewDoctorRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	auditRepo := postgres.NewAuditRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	auditor := auditService.NewService(auditRepo)
	publisher := eventService.NewService(outboxRepo)
	clinics := clinicService.NewService(
		clinicRepo, roomRepo, membershipRepo, appointmentRepo,
		doctorRepo, patientRepo, cacheStore, auditor, publisher, log,
	)

	jwtService := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authMW := middleware.NewAuthMiddleware(jwtService)

	handler.RegisterCustomValidators()

	engine := router.New(router.Options{
		ClinicHandler: clinicHandler.NewHandler(clinics),
		AuditHandler:  auditHandler.NewHandler(auditor),
		HealthHandler: healthHandler.NewHandler(db, redisClient),
		AuthMW:        authMW,
		RateLimiter:   middleware.NewRateLimiter(middleware.RateLimiterConfig(cfg.RateLimit)),
		Timeout:       middleware.TimeoutConfig{Duration: time.Duration(cfg.Server.TimeoutSeconds) * time.Second},
		CORS:          middleware.DefaultCORSConfig(),
		Metrics:       m,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "forced shutdown")
	}
}
