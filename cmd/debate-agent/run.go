package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/debateprogram/realtime/internal/config"
	"github.com/debateprogram/realtime/internal/connection"
	"github.com/debateprogram/realtime/internal/database"
	"github.com/debateprogram/realtime/internal/metrics"
	"github.com/debateprogram/realtime/internal/version"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to the debate server and hold the connection until stopped",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger := newLogger(os.Stdout, cfg.Log)
		slog.SetDefault(logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runAgent(ctx, cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// connectionConfig maps the realtime section onto connection settings.
func connectionConfig(rc config.RealtimeConfig) connection.Config {
	cfg := connection.DefaultConfig()
	cfg.Token = rc.Token
	if rc.PingInterval > 0 {
		cfg.PingInterval = rc.PingInterval
	}
	if rc.PingTimeout > 0 {
		cfg.PingTimeout = rc.PingTimeout
	}
	if rc.WriteTimeout > 0 {
		cfg.WriteTimeout = rc.WriteTimeout
	}
	if rc.BufferSize > 0 {
		cfg.BufferSize = rc.BufferSize
	}
	if rc.ReconnectBaseDelay > 0 {
		cfg.ReconnectBaseWait = rc.ReconnectBaseDelay
	}
	if rc.ReconnectMaxDelay > 0 {
		cfg.ReconnectMaxWait = rc.ReconnectMaxDelay
	}
	cfg.EmitRate = rc.EmitRate
	cfg.EmitBurst = rc.EmitBurst
	return cfg
}

func runAgent(ctx context.Context, cfg *config.AgentConfig, logger *slog.Logger) error {
	logger.Info("starting debate-agent",
		"version", version.Version,
		"commit", version.Commit,
		"instance_id", cfg.Instance.ID,
		"realtime_url", cfg.Realtime.URL,
	)

	m := metrics.New()
	connection.SetDefault(connection.NewRegistry(
		connectionConfig(cfg.Realtime),
		connection.WithLogger(logger),
		connection.WithMetrics(m),
	))

	handle := connection.Get(cfg.Realtime.URL)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := connection.Default().Close(shutdownCtx); err != nil {
			logger.Warn("realtime shutdown incomplete", "error", err)
		}
	}()

	var sockets *database.SocketStore
	var ping func(context.Context) error
	if cfg.Database.Postgres.Enabled() {
		logger.Info("connecting to database",
			"host", cfg.Database.Postgres.Host,
			"port", cfg.Database.Postgres.Port,
			"database", cfg.Database.Postgres.Name,
		)

		pool, err := database.Connect(ctx, cfg.Database.Postgres)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()

		sockets = database.NewSocketStore(pool, logger)
		ping = pool.Ping
	}

	if sockets != nil && cfg.Instance.UserCode > 0 {
		if err := sockets.RegisterSocketID(ctx, cfg.Instance.UserCode, handle.ID()); err != nil {
			return err
		}
		defer func() {
			clearCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := sockets.ClearSocketID(clearCtx, cfg.Instance.UserCode, handle.ID()); err != nil {
				logger.Warn("failed to clear socket id", "error", err)
			}
		}()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           newHealthHandler(handle, ping, m, cfg.Metrics.Path),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting health server", "port", cfg.Metrics.Port, "metrics_path", cfg.Metrics.Path)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	logger.Info("debate-agent running", "handle_id", handle.ID())

	consume(ctx, handle, logger)

	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)

	return nil
}

// consume logs inbound events and transport errors until ctx ends or the
// handle's channels close.
func consume(ctx context.Context, handle *connection.Handle, logger *slog.Logger) {
	events := handle.Events()
	errs := handle.Errors()

	for events != nil || errs != nil {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			logger.Info("event received",
				"event", ev.Name,
				"bytes", len(ev.Data),
				"received_at", ev.ReceivedAt,
			)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("realtime error", "error", err, "state", handle.State().String())
		}
	}
}

// newHealthHandler serves /health and the metrics endpoint.
func newHealthHandler(handle *connection.Handle, ping func(context.Context) error, m *metrics.Metrics, metricsPath string) http.Handler {
	mux := http.NewServeMux()

	mux.Handle(metricsPath, m.Handler())

	mux.HandleFunc(config.HealthPath, func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			HandleID   string         `json:"handle_id"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			HandleID:   handle.ID(),
			Components: make(map[string]any),
		}

		state := handle.State()
		health.Components["realtime"] = map[string]string{
			"address": handle.Address(),
			"state":   state.String(),
		}
		switch state {
		case connection.StateConnecting:
			health.Status = "degraded"
		case connection.StateFailed, connection.StateClosed:
			health.Status = "unhealthy"
		}

		if ping != nil {
			if err := ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components["postgres"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["postgres"] = "connected"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
