package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/cropdoctor/diagnosis-api/internal/config"
	"github.com/cropdoctor/diagnosis-api/internal/gateway/httpapi"
	"github.com/cropdoctor/diagnosis-api/internal/handler"
	alertHandler "github.com/cropdoctor/diagnosis-api/internal/handler/alert"
	diagnosisHandler "github.com/cropdoctor/diagnosis-api/internal/handler/diagnosis"
	"github.com/cropdoctor/diagnosis-api/internal/middleware"
	"github.com/cropdoctor/diagnosis-api/internal/repository"
	"github.com/cropdoctor/diagnosis-api/internal/repository/memory"
	"github.com/cropdoctor/diagnosis-api/internal/repository/postgres"
	"github.com/cropdoctor/diagnosis-api/internal/router"
	alertService "github.com/cropdoctor/diagnosis-api/internal/service/alert"
	diagnosisService "github.com/cropdoctor/diagnosis-api/internal/service/diagnosis"
	"github.com/cropdoctor/diagnosis-api/internal/triage"
	"github.com/cropdoctor/diagnosis-api/pkg/logger"
	"github.com/cropdoctor/diagnosis-api/pkg/messaging"
	redisbroker "github.com/cropdoctor/diagnosis-api/pkg/messaging/redis"
	"github.com/cropdoctor/diagnosis-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	// Local cache: postgres when configured, in-process otherwise.
	var store repository.RecordStore
	if cfg.Database.Host != "" {
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to cache database")
		}
		defer db.Close()
		store = postgres.NewDiagnosisStore(db)
	} else {
		store = memory.NewDiagnosisStore()
		appLogger.Info("no cache database configured, using in-memory store")
	}

	gatewayClient := httpapi.NewClient(httpapi.Config{
		BaseURL: cfg.Gateway.BaseURL,
		Timeout: time.Duration(cfg.Gateway.TimeoutSeconds) * time.Second,
	})

	// Change notifications are optional; without Redis the sync layer just
	// skips publishing.
	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redisbroker.NewRedisBroker(redisbroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   3,
			RetryBackoff: 100 * time.Millisecond,
			PoolSize:     10,
			MinIdleConns: 2,
		}, appLogger.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
	}

	m := metrics.NewMetrics("cropdoctor", "sync")
	classifier := triage.NewClassifier(cfg.Triage)

	diagnosisSvc := diagnosisService.NewService(gatewayClient, store, classifier, broker, m)
	alertSvc := alertService.NewService(alertService.StaticFeed())

	h := handler.NewHandler(func() error {
		_, err := store.Count(context.Background())
		return err
	})
	diagnosisH := diagnosisHandler.NewHandler(diagnosisSvc)
	alertH := alertHandler.NewHandler(alertSvc)

	r := router.NewRouter(diagnosisH, alertH, h, router.RouterConfig{
		RateLimit:     rate.Limit(cfg.Server.RateLimit),
		RateBurst:     cfg.Server.RateBurst,
		Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		CORSConfig:    middleware.DefaultCORSConfig(),
		MetricsPrefix: "cropdoctor_http",
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
