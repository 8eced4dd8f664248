package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/peterkuimelis/goldfish/internal/config"
	gfmcp "github.com/peterkuimelis/goldfish/internal/mcp"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	// stdout carries the MCP stream; zap writes to stderr.
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
	gfmcp.SetConfig(cfg.GameConfig(cat, nil, zl))
	defer gfmcp.CloseSession()

	s := server.NewMCPServer(cfg.Server.MCPName, "1.0.0")
	gfmcp.RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		zl.Error("serve stdio", zap.Error(err))
		os.Exit(1)
	}
}
