package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "pricescope",
		Short:        "PulseChain AMM pair price reconstruction",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	seriesCmd := &cobra.Command{
		Use:   "series",
		Short: "Reconstruct a bucketed price series for a pair",
		RunE:  runSeries,
	}

	seriesCmd.Flags().String("scan-url", "", "explorer API base URL")
	seriesCmd.Flags().String("rpc", "", "JSON-RPC URL (used when no explorer URL is set)")
	seriesCmd.Flags().String("pair", "", "pair contract address")
	seriesCmd.Flags().String("range", "1D", "time range (1H, 1D, 1W, 1M, 1Y, ALL)")
	seriesCmd.Flags().Int("page-size", 1000, "logs per page")
	seriesCmd.Flags().Int("max-pages", 10, "maximum log pages to scan")
	seriesCmd.Flags().Int("resolve-batch", 50, "concurrent block timestamp lookups per batch")
	seriesCmd.Flags().String("out", "", "optional JSONL output path")
	seriesCmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	seriesCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(seriesCmd)

	burnedCmd := &cobra.Command{
		Use:   "burned",
		Short: "Report a token's burned supply share",
		RunE:  runBurned,
	}

	burnedCmd.Flags().String("scan-url", "", "explorer API base URL")
	burnedCmd.Flags().String("rpc", "", "JSON-RPC URL (used when no explorer URL is set)")
	burnedCmd.Flags().String("token", "", "token contract address")
	burnedCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(burnedCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
