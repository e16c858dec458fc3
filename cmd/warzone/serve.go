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

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/warzone/internal/multiplayer"
	"github.com/vovakirdan/warzone/internal/platform/tui"
	"github.com/vovakirdan/warzone/internal/sim"
	"github.com/vovakirdan/warzone/internal/storage"
	"github.com/vovakirdan/warzone/internal/telemetry"
	"github.com/vovakirdan/warzone/internal/transport/ws"
)

var (
	flagAddr    string
	flagSSHAddr string
	flagNoSSH   bool
	flagHostKey string
	flagSeed    int64

	flagMetricsInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the match server",
	Long: `Run the authoritative match server.

Players connect over WebSocket and send JSON messages (JOIN_GAME, SPAWN_UNIT,
MOVE_UNIT, ...). Spectators connect over SSH and get a live dashboard.
Finished matches are written to the history database.

Metrics are served as JSON at /metrics on the WebSocket address.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.warzone/host_key

Examples:
  warzone serve                          # Listen on :3000 (ws) and :23235 (ssh)
  warzone serve --addr :8080             # WebSocket on port 8080
  warzone serve --no-ssh                 # No spectator server
  warzone serve --config ./warzone.yaml  # Custom ruleset
  warzone serve --metrics-interval 30s   # Periodic metrics on stdout

Spectators can connect with:
  ssh localhost -p 23235`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "WebSocket listen address (default: from config)")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH spectator address (default: from config)")
	serveCmd.Flags().BoolVar(&flagNoSSH, "no-ssh", false, "Disable the SSH spectator server")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = from config, then time based)")
	serveCmd.Flags().DurationVar(&flagMetricsInterval, "metrics-interval", 0, "Also dump metrics to stdout on this period (0 = off)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if flagAddr != "" {
		cfg.Server.Addr = flagAddr
	}
	if flagSSHAddr != "" {
		cfg.Server.SSHAddr = flagSSHAddr
	}
	if flagNoSSH {
		cfg.Server.SSHAddr = ""
	}
	if flagHostKey != "" {
		cfg.Server.HostKeyPath = flagHostKey
	}
	if flagSeed != 0 {
		cfg.Match.Seed = flagSeed
	}

	rules, err := sim.Compile(cfg)
	if err != nil {
		return fmt.Errorf("cannot compile ruleset: %w", err)
	}

	metrics, err := telemetry.New(telemetry.Config{
		ServiceName: "warzone",
		Interval:    flagMetricsInterval,
		Writer:      os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("cannot set up metrics: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics shutdown", "error", err)
		}
	}()

	coord, err := multiplayer.NewCoordinator(multiplayer.CoordinatorConfig{
		Rules:               rules,
		Seed:                cfg.Match.Seed,
		ResetOnFinishedJoin: cfg.Match.ResetOnFinishedJoin,
		ReattachOnReset:     cfg.Match.ReattachOnReset,
		MeterProvider:       metrics.MeterProvider(),
	}, multiplayer.NewSessionRegistry(), logger)
	if err != nil {
		return err
	}

	// History is optional; the server runs without it
	var history tui.HistorySource
	store, err := storage.Open(cfg.Server.DBPath)
	if err != nil {
		logger.Warn("match history disabled", "db", cfg.Server.DBPath, "error", err)
	} else {
		defer store.Close()
		coord.SetResultSaver(store)
		history = store
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return coord.Run(ctx)
	})

	wsServer := ws.NewServer(coord, ws.Config{
		Path:       cfg.Server.WSPath,
		SendBuffer: cfg.Server.SendBuffer,
		ReadLimit:  cfg.Server.ReadLimit,
	}, logger)
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", wsServer.Handler())
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Server.Addr, "path", cfg.Server.WSPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if cfg.Server.SSHAddr != "" {
		sshCfg := tui.DefaultSSHServerConfig()
		sshCfg.Address = cfg.Server.SSHAddr
		sshCfg.HostKeyPath = cfg.Server.HostKeyPath
		sshCfg.TickPeriod = rules.TickPeriod
		if cfg.Server.IdleTimeoutMinutes > 0 {
			sshCfg.IdleTimeout = time.Duration(cfg.Server.IdleTimeoutMinutes) * time.Minute
		}
		if cfg.Server.SendBuffer > 0 {
			sshCfg.SendBuffer = cfg.Server.SendBuffer
		}
		sshServer, err := tui.NewSSHServer(sshCfg, coord, history, logger)
		if err != nil {
			stop()
			_ = g.Wait()
			return err
		}
		g.Go(func() error {
			return sshServer.Run(ctx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
