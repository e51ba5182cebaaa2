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

	"golang.org/x/sync/errgroup"

	dirhandler "notify-gateway/internal/directory/handler"
	dirmetrics "notify-gateway/internal/directory/metrics"
	"notify-gateway/internal/directory/provider"
	dirservice "notify-gateway/internal/directory/service"
	notifyhandler "notify-gateway/internal/notification/handler"
	notifymetrics "notify-gateway/internal/notification/metrics"
	notifyservice "notify-gateway/internal/notification/service"
	"notify-gateway/internal/notification/sink"
	"notify-gateway/internal/platform/config"
	"notify-gateway/internal/platform/httpserver"
	"notify-gateway/internal/platform/kafka"
	"notify-gateway/internal/platform/logger"
	"notify-gateway/internal/platform/metrics"
	"notify-gateway/internal/platform/redis"
	httptransport "notify-gateway/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := metrics.NewRegistry()

	upstream := provider.NewHTTPProvider("supervisor-directory", cfg.Directory.URL, cfg.Directory.Timeout)
	directory := dirservice.New(upstream, log,
		dirservice.WithTimeout(cfg.Directory.Timeout),
		dirservice.WithMetrics(dirmetrics.New(reg)),
	)

	snk, health, closeSink, err := buildSink(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSink()

	opts := []notifyservice.Option{notifyservice.WithMetrics(notifymetrics.New(reg))}
	if cfg.Directory.ResolveSupervisor {
		opts = append(opts, notifyservice.WithResolver(directory))
	}
	submissions := notifyservice.New(snk, log, opts...)

	router := httptransport.NewRouter(log, reg.Handler(), health,
		dirhandler.New(directory, log, cfg.Directory.StrictStatus),
		notifyhandler.New(submissions, log),
	)
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting notify-gateway",
			"addr", cfg.Server.Addr,
			"sink", cfg.Sink.Kind,
			"resolve_supervisor", cfg.Directory.ResolveSupervisor,
			"strict_status", cfg.Directory.StrictStatus,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// buildSink returns the configured sink with the readiness check for its
// backing store. The log sink has nothing to check.
func buildSink(ctx context.Context, cfg config.Config, log *slog.Logger) (sink.Sink, httptransport.HealthCheck, func(), error) {
	switch cfg.Sink.Kind {
	case config.SinkRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		return sink.NewRedisSink(client, cfg.Redis.Stream, cfg.Redis.MaxLen), client.Health, func() { _ = client.Close() }, nil
	case config.SinkKafka:
		client, err := kafka.New(ctx, cfg.Kafka)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := kafka.EnsureTopic(ctx, client, cfg.Kafka.Topic, cfg.Kafka.Partitions); err != nil {
			client.Close()
			return nil, nil, nil, err
		}
		return sink.NewKafkaSink(client, cfg.Kafka.Topic), client.Ping, client.Close, nil
	default:
		return sink.NewLogSink(log), nil, func() {}, nil
	}
}
