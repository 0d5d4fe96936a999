package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"echopub/internal/adapter/activity"
	"echopub/internal/adapter/campay"
	httpadapter "echopub/internal/adapter/http"
	"echopub/internal/adapter/memory"
	"echopub/internal/adapter/postgres"
	"echopub/internal/adapter/usecase"
	"echopub/internal/adapter/verifier"
	"echopub/internal/adapter/worker"
	"echopub/internal/config"
	"echopub/internal/core/port"
	"echopub/internal/db"
)

// main is the entry point of the echopub service. It loads configuration,
// wires storage, the payment gateway, the proof verifier and the use cases,
// starts the background workers and the HTTP server. On receiving a
// termination signal it gracefully shuts everything down.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		return
	}

	var logger *slog.Logger
	{
		var handler slog.Handler
		level := cfg.Log.SlogLevel()
		switch cfg.Log.SlogFormat() {
		case "json":
			handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		default:
			handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		}
		logger = slog.New(handler).With(slog.String("env", cfg.Env))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	clock := usecase.SystemClock{}
	var (
		repos port.Repositories
		sinks []activity.Sink
	)
	switch cfg.Storage {
	case config.StorageMemory:
		store := memory.New(memory.WithClock(clock))
		repos = store.Repositories()
		sinks = append(sinks, store)
		logger.Warn("using in-memory storage, data is lost on restart")
	case config.StoragePostgres:
		if cfg.Psql.RunMigrations {
			if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
				logger.Error("migration error", slog.Any("error", err))
				return
			}
			logger.Info("migrations applied successfully")
		}
		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			logger.Error("database connection error", slog.Any("error", err))
			return
		}
		defer pool.Close()
		if cfg.Psql.Seed {
			if err = db.Seed(ctx, pool, cfg.Pricing.CPV, cfg.Pricing.CPVAmbassador); err != nil {
				logger.Error("seed error", slog.Any("error", err))
				return
			}
		}
		repos = postgres.NewRepositories(pool)
		sinks = append(sinks, postgres.NewActivityRepository(pool))
	default:
		logger.Error("unknown storage driver", slog.String("storage", cfg.Storage))
		return
	}

	if len(cfg.Kafka.Brokers) > 0 {
		sink := activity.NewKafkaSink(activity.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Error("kafka writer close error", slog.Any("error", err))
			}
		}()
		sinks = append(sinks, sink)
	}

	dispatcher := activity.NewDispatcher(clock, cfg.Activity.BufferSize, cfg.Activity.WriteTimeout, logger, sinks...)

	var tokens campay.TokenStore = campay.NewMemoryTokenStore()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		tokens = campay.NewRedisTokenStore(rdb, cfg.Redis.Key)
	}
	gateway := campay.NewClient(campay.Config{
		BaseURL:           cfg.CamPay.BaseURL,
		Username:          cfg.CamPay.Username,
		Password:          cfg.CamPay.Password,
		Timeout:           cfg.CamPay.Timeout,
		RequestsPerSecond: cfg.CamPay.RequestsPerSecond,
		Burst:             cfg.CamPay.Burst,
	}, tokens, logger)

	proofs := verifier.New(verifier.Tesseract{
		Binary:    cfg.Verifier.Binary,
		Languages: cfg.Verifier.Languages,
	}, cfg.Verifier.Timeout, logger)

	pricing := usecase.Pricing{
		CPV:                   cfg.Pricing.CPV,
		CPVAmbassador:         cfg.Pricing.CPVAmbassador,
		OverDeliveryFactor:    cfg.Pricing.OverDeliveryFactor,
		ProofWindow:           cfg.Pricing.ProofWindow,
		BaselineTargetViews:   cfg.Pricing.BaselineTargetViews,
		HashDistanceThreshold: cfg.Pricing.HashDistance,
		Currency:              cfg.CamPay.Currency,
	}
	earnings := usecase.NewEarnings(pricing, repos.Publications, repos.Users, logger)
	campaigns := usecase.NewCampaignUseCase(repos.Campaigns, dispatcher, clock, pricing, cfg.Sweep.BatchSize, logger)
	publications := usecase.NewPublicationUseCase(repos, proofs, earnings, dispatcher, clock, pricing, logger)
	settlement := usecase.NewSettlementUseCase(usecase.SettlementDeps{
		Repos:     repos,
		Lifecycle: campaigns,
		Gateway:   gateway,
		Activity:  dispatcher,
		Clock:     clock,
		Sleeper:   usecase.TimerSleeper{},
		Retry:     usecase.RetryPolicy{Interval: cfg.CamPay.PollInterval, Budget: cfg.CamPay.PollBudget},
		Currency:  cfg.CamPay.Currency,
		Logger:    logger,
	})

	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		dispatcher.Run(ctx)
	}()
	go worker.Sweeper{
		Campaigns: campaigns,
		Interval:  cfg.Sweep.Interval,
		Logger:    logger,
	}.Run(ctx)

	handler := httpadapter.NewHandler(httpadapter.Deps{
		Campaigns:    campaigns,
		Publications: publications,
		Settlement:   settlement,
		Auth:         httpadapter.NewAuthenticator(cfg.Auth.Secret, cfg.Auth.Issuer),
		Uploads: httpadapter.Uploads{
			Dir:       cfg.HTTP.UploadDir,
			PublicURL: cfg.HTTP.PublicURL,
			MaxBytes:  cfg.HTTP.MaxUploadBytes,
		},
		WebhookKey: cfg.CamPay.WebhookKey,
		Currency:   cfg.CamPay.Currency,
		Logger:     logger,
	})
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()
	exitCode = 0

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
	<-dispatcherDone
}
