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
	"github.com/peterkuimelis/goldfish/internal/game"
	gnet "github.com/peterkuimelis/goldfish/internal/net"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "host":
		err = runHost(ctx, os.Args[2:])
	case "join":
		err = runJoin(ctx, os.Args[2:])
	case "play":
		err = runPlay(ctx, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  goldfish host [--config FILE] [--port P]")
	fmt.Println("  goldfish join [--addr ADDR]")
	fmt.Println("  goldfish play [--config FILE]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  host    Run the opponent and wait for a player to join")
	fmt.Println("  join    Connect to a host and play against its opponent")
	fmt.Println("  play    Play against an opponent in this terminal")
}

// setup loads configuration and builds the process logger and game config.
func setup(path string) (*config.Config, *zap.Logger, game.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, game.Config{}, err
	}
	zl, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, game.Config{}, err
	}
	cat, err := cfg.LoadCatalog()
	if err != nil {
		zl.Error("load catalog", zap.Error(err))
		return nil, nil, game.Config{}, err
	}
	return cfg, zl, cfg.GameConfig(cat, nil, zl), nil
}

func runHost(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	port := fs.Int("port", 0, "TCP port to listen on (overrides config)")
	fs.Parse(args)

	cfg, zl, gcfg, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer zl.Sync()

	if *port == 0 {
		*port = cfg.Server.TCPPort
	}
	srv := &gnet.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Game:    gcfg,
		Console: os.Stdout,
		Logger:  zl,
	}
	fmt.Printf("Hosting on port %d. Waiting for a player to join...\n", *port)
	return srv.Run(ctx)
}

func runJoin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	addr := fs.String("addr", "localhost:7777", "host address to connect to")
	fs.Parse(args)

	return gnet.Connect(ctx, *addr, os.Stdin, os.Stdout)
}

func runPlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	_, zl, gcfg, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer zl.Sync()

	return gnet.Play(ctx, gcfg, os.Stdin, os.Stdout, zl)
}
