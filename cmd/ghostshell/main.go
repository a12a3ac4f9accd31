package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/obscuranet/ghostshell/internal/config"
	"github.com/obscuranet/ghostshell/internal/logging"
	"github.com/obscuranet/ghostshell/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Optional TOML config file")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *configPath != "" {
		if err := config.LoadFile(*configPath, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "load config %s: %v\n", *configPath, err)
			os.Exit(1)
		}
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
