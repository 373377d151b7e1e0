package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/supplyradar/supplyradar/internal/config"
	httpiface "github.com/supplyradar/supplyradar/internal/interfaces/http"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run periodic scans with health and metrics endpoints",
	Long: `Run a full risk scan on a fixed interval while serving /health and
/metrics for operational monitoring. Stops cleanly on SIGINT or SIGTERM.`,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	svc, m, cleanup, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := httpiface.NewServer(cfg.Monitor.ListenAddr, m, version)
	go func() {
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("monitor server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runOnce := func() {
		if _, err := svc.ComputeAllRiskScores(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled scan failed")
		}
	}

	log.Info().Dur("interval", cfg.Monitor.ScanInterval).Msg("monitor loop started")
	runOnce()

	ticker := time.NewTicker(cfg.Monitor.ScanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			runOnce()
		case <-ctx.Done():
			log.Info().Msg("shutting down monitor")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	}
}
