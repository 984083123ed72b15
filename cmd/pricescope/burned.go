package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pricescope/internal/config"
	"pricescope/internal/dex"
)

func runBurned(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadBurned(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Token == "" {
		return fmt.Errorf("token address is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway, closeGateway, err := newGateway(ctx, cfg.ScanURL, cfg.RPCURL, logger)
	if err != nil {
		return err
	}
	defer closeGateway()

	burned, err := dex.FetchBurnedSupply(ctx, gateway, cfg.Token, logger)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(burned, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal burned supply: %w", err)
	}
	fmt.Println(string(out))

	return nil
}
