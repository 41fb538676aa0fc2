package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"washbay/internal/api"
	"washbay/internal/availability"
	"washbay/internal/calendar"
	"washbay/internal/config"
	"washbay/internal/db"
	"washbay/internal/events"
	"washbay/internal/metrics"
	"washbay/internal/model"
	"washbay/internal/recurrence"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("WASHBAY_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	loc, err := time.LoadLocation(cfg.Business.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Business.Timezone).Msg("invalid business timezone")
	}

	database, err := db.NewDB(cfg.Database.Path, loc, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.EnsureDefaultSettings(ctx); err != nil {
		logger.Fatal().Err(err).Msg("seed default settings")
	}

	metrics.Register()
	if cfg.Monitoring.PrometheusEnabled && cfg.Monitoring.PrometheusPort > 0 {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort)
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info().Str("addr", addr).Msg("prometheus metrics listening")
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	var locker recurrence.Locker = recurrence.NoopLocker{}
	if cfg.Redis.Address != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		locker = recurrence.NewRedisLocker(rdb, cfg.RedisLockTTL())
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis expansion lock enabled")
	}

	policy := calendar.NewPolicy(calendar.DanishHolidays(), database)
	calculator := availability.NewCalculator(policy, loc, nil)

	bus := events.NewEventBus()
	bus.Subscribe(events.TypeReservationGenerated, func(ev events.Event) error {
		if res, ok := ev.Payload.(*model.GeneratedReservation); ok {
			logger.Info().
				Int64("customer_id", res.CustomerID).
				Time("start", res.Interval.Start).
				Float64("total_price", res.TotalPrice).
				Msg("reservation generated from template")
		}
		return nil
	})

	expander := recurrence.NewExpander(recurrence.Options{
		Templates:    database,
		Reservations: database,
		Creator:      database,
		Settings:     database,
		Policy:       policy,
		Locker:       locker,
		Bus:          bus,
		Logger:       &logger,
		Location:     loc,
	})

	server := api.NewHTTPServer(api.Config{
		Addr:           cfg.Server.Addr,
		APIKey:         cfg.Server.APIKey,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		ReportDir:      cfg.Reports.Dir,
	}, database, calculator, expander, loc, &logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}
