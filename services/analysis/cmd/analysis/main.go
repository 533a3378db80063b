package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"melify/internal/ratelimit"
	"melify/internal/util"
	"melify/services/analysis/internal/app"
	"melify/services/analysis/internal/config"
	"melify/services/analysis/internal/server"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.InitLogger(cfg.LogLevel)

	trusted, err := util.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		util.Fatal(logger, "invalid trusted proxies", "err", err)
	}

	appCore, err := app.New(app.Config{
		DatabaseURL:        cfg.DatabaseURL,
		StoreType:          cfg.Store,
		RedisAddr:          cfg.RedisAddr,
		RedisPassword:      cfg.RedisPassword,
		GenerationProvider: cfg.GenerationProvider,
		GenerationAPIKey:   cfg.GenerationAPIKey,
		GenerationModel:    cfg.GenerationModel,
		GenerationBaseURL:  cfg.GenerationBaseURL,
		GenerationTimeout:  time.Duration(cfg.GenerationTimeoutSeconds) * time.Second,
		Strategy:           cfg.Strategy,
		QueueName:          cfg.QueueName,
		QueueGroup:         cfg.QueueGroup,
		QueueConcurrency:   cfg.QueueConcurrency,
		QueueMaxRetries:    cfg.QueueMaxRetries,
		QueueRetryDelay:    time.Duration(cfg.QueueRetryDelaySeconds) * time.Second,
		LockTTL:            time.Duration(cfg.LockTTLSeconds) * time.Second,
		SweepSchedule:      cfg.SweepSchedule,
		SweepGrace:         time.Duration(cfg.SweepGraceMinutes) * time.Minute,
		SweepBatchSize:     cfg.SweepBatchSize,
		Logger:             logger,
	})
	if err != nil {
		util.Fatal(logger, "failed to init app", "err", err)
	}
	defer appCore.Close()

	var limiter *ratelimit.FixedWindowLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter, err = ratelimit.NewFixedWindowLimiter(appCore.Redis(), "melify:ratelimit:analysis", cfg.RateLimitPerMinute, time.Minute)
		if err != nil {
			util.Fatal(logger, "failed to init rate limiter", "err", err)
		}
	}

	httpServer := server.New(server.Config{
		App:            appCore,
		InternalToken:  cfg.InternalToken,
		Limiter:        limiter,
		TrustedProxies: trusted,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		// Synchronous runs make up to four generator calls.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("analysis server listening", "addr", addr, "strategy", cfg.Strategy, "store", cfg.Store)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
	}
}
