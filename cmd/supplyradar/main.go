package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/supplyradar/supplyradar/internal/application"
	"github.com/supplyradar/supplyradar/internal/config"
	"github.com/supplyradar/supplyradar/internal/domain/features"
	"github.com/supplyradar/supplyradar/internal/domain/scoring"
	"github.com/supplyradar/supplyradar/internal/metrics"
	"github.com/supplyradar/supplyradar/internal/ml"
	"github.com/supplyradar/supplyradar/internal/providers"
)

const version = "v1.0.0"

var (
	configPath string
	verbose    bool
)

// rootCmd is the base command for the SupplyRadar CLI.
var rootCmd = &cobra.Command{
	Use:   "supplyradar",
	Short: "SupplyRadar supply chain risk scanner",
	Long: `SupplyRadar scores Indian supply chain risk across procurement,
transport, and import/export segments by combining mandi and eNAM prices,
trade flows, weather disruption, and logistics corridor conditions.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("SupplyRadar %s\n", version)
		fmt.Println("Use 'supplyradar scan' for a full risk scan or 'supplyradar category <name>' for category analysis")
	},
}

func setupLogging() {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// buildService assembles the scan pipeline from configuration. The returned
// metrics instance backs the monitor endpoints.
func buildService(cfg *config.Config) (*application.Service, *metrics.Metrics, func(), error) {
	cache := providers.NewCache(cfg.Cache.RedisAddr)
	ttl := cfg.Cache.TTL

	provs := []providers.Provider{
		providers.NewMandiProvider(cfg.Providers.GovData, cache, ttl),
		providers.NewENAMProvider(cfg.Providers.GovData, cache, ttl),
		providers.NewTradeProvider(cfg.Providers.GovData, cache, ttl, nil),
		providers.NewWeatherProvider(cfg.Providers.Weather, cache, ttl, nil),
		providers.NewLogisticsProvider(cfg.Providers.Logistics, cache, ttl, nil),
	}

	model := ml.Train()
	scorer := scoring.NewScorer(model)
	m := metrics.New()

	var archiver application.Archiver
	cleanup := func() {}
	if cfg.Database.DSN != "" {
		store, err := openStore(cfg.Database.DSN)
		if err != nil {
			return nil, nil, nil, err
		}
		archiver = store
		cleanup = func() { store.Close() }
	}

	svc := application.NewService(provs, features.NewExtractor(nil), scorer, archiver, m, nil)
	return svc, m, cleanup, nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/supplyradar.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scanCmd, categoryCmd, monitorCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
