// Package app runs the domain event dispatcher: a claim-and-dispatch
// loop over the annotation store's outbox plus a health gRPC server.
package app

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	annotationsqlite "github.com/vidmark/vidmark/internal/annotation/storage/sqlite"
	"github.com/vidmark/vidmark/internal/dispatcher/sink"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// RuntimeConfig controls dispatcher startup, dependencies, and loop
// behavior.
type RuntimeConfig struct {
	Port          int
	DBPath        string
	Consumer      string
	BatchSize     int
	PollInterval  time.Duration
	LeaseTTL      time.Duration
	MaxAttempts   int
	RetryBackoff  time.Duration
	RetryMaxDelay time.Duration
}

const (
	defaultDispatcherPort = 8093
	defaultDispatcherDB   = "data/annotation.db"
)

// Run starts dispatcher runtime dependencies and the background
// processing loop.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Port <= 0 {
		cfg.Port = defaultDispatcherPort
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultDispatcherDB
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dispatcher storage dir: %w", err)
		}
	}

	store, err := annotationsqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open annotation sqlite store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close annotation sqlite store: %v", closeErr)
		}
	}()

	loop := New(store, sink.LogSink{}, Config{
		Consumer:      cfg.Consumer,
		BatchSize:     cfg.BatchSize,
		PollInterval:  cfg.PollInterval,
		LeaseTTL:      cfg.LeaseTTL,
		MaxAttempts:   cfg.MaxAttempts,
		RetryBackoff:  cfg.RetryBackoff,
		RetryMaxDelay: cfg.RetryMaxDelay,
	}, nil)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on dispatcher port %d: %w", cfg.Port, err)
	}
	defer listener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("dispatcher.runtime", grpc_health_v1.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(listener)
	}()
	defer func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-serveErr
	}()

	log.Printf("dispatcher server listening at %v", listener.Addr())
	return loop.Run(ctx)
}
