package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/jusunglee/railmap-go/api/handlers"
	"github.com/jusunglee/railmap-go/internal/config"
	"github.com/jusunglee/railmap-go/pkg/railmap"
)

func main() {
	var (
		configFile   = flag.String("config", "", "YAML config file")
		port         = flag.Int("port", 0, "Server port (overrides config)")
		routeService = flag.String("route-service", "", "Route service base URL (overrides config)")
		networkFile  = flag.String("network", "", "Network YAML file (overrides config)")
		logLevel     = flag.String("log-level", "", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile, ".env", ".env.local")
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Flags win over file and environment
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *routeService != "" {
		cfg.RouteService.URL = *routeService
	}
	if *networkFile != "" {
		cfg.Network.File = *networkFile
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)

	clientConfig := railmap.ConfigFromApp(cfg)
	clientConfig.Logger = logger

	client, err := railmap.NewLocal(clientConfig)
	if err != nil {
		logger.Error("Failed to create railmap client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	// Create HTTP server
	r := mux.NewRouter()
	h := handlers.NewHandler(client)
	h.RegisterRoutes(r)

	// Add middleware
	r.Use(loggingMiddleware(logger))

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      corsHandler(cfg.Server.AllowedOrigins)(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RouteServiceTimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server starting", "port", cfg.Server.Port, "route_service", cfg.RouteService.URL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		// Graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		client.Close()
		os.Exit(1)
	}

	logger.Info("Server stopped")
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Location"},
		MaxAge:         300,
	})
}
