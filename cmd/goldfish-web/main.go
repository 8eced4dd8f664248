package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/peterkuimelis/goldfish/internal/config"
	"github.com/peterkuimelis/goldfish/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	zl, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer zl.Sync()

	cat, err := cfg.LoadCatalog()
	if err != nil {
		zl.Fatal("load catalog", zap.Error(err))
	}
	if *addr == "" {
		*addr = cfg.Server.HTTPAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := web.NewServer(cfg.GameConfig(cat, nil, zl), zl)
	if err := srv.ListenAndServe(ctx, *addr); err != nil {
		zl.Fatal("serve", zap.Error(err))
	}
}
