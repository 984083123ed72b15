package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pricescope/internal/chain"
	"pricescope/internal/config"
	"pricescope/internal/scan"
	"pricescope/internal/series"
	"pricescope/internal/storage"
	"pricescope/internal/storage/postgres"
)

func runSeries(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSeries(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Pair == "" {
		return fmt.Errorf("pair address is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway, closeGateway, err := newGateway(ctx, cfg.ScanURL, cfg.RPCURL, logger)
	if err != nil {
		return err
	}
	defer closeGateway()

	service, err := series.NewService(series.Config{
		PageSize:         cfg.PageSize,
		MaxPages:         cfg.MaxPages,
		ResolveBatchSize: cfg.ResolveBatch,
	}, gateway, logger)
	if err != nil {
		return err
	}

	points, err := service.Reconstruct(ctx, cfg.Pair, series.Range(cfg.Range))
	if err != nil {
		return err
	}

	if cfg.Out != "" {
		sink := storage.NewJsonlStorage(cfg.Out)
		if err := sink.PutSeries(ctx, cfg.Pair, cfg.Range, points); err != nil {
			return fmt.Errorf("write jsonl: %w", err)
		}
	}

	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.PutSeries(ctx, cfg.Pair, cfg.Range, points); err != nil {
			return fmt.Errorf("store series: %w", err)
		}
	}

	out, err := json.MarshalIndent(points, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal series: %w", err)
	}
	fmt.Println(string(out))

	return nil
}

func newGateway(ctx context.Context, scanURL, rpcURL string, logger *zap.Logger) (series.Gateway, func(), error) {
	switch {
	case scanURL != "":
		return scan.NewClient(scanURL, logger), func() {}, nil
	case rpcURL != "":
		client, err := chain.NewClient(ctx, rpcURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect rpc: %w", err)
		}
		return client, client.Close, nil
	default:
		return nil, nil, fmt.Errorf("either scan-url or rpc is required")
	}
}
