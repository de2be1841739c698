package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/cardroom/cardroom/internal/account"
	"github.com/cardroom/cardroom/internal/server"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"cardroom.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	Store    string `short:"s" long:"store" help:"Path to the account store (overrides config)"`
}

func main() {
	kctx := kong.Parse(&CLI)

	cfg, err := server.LoadServerConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		kctx.Exit(1)
	}

	if CLI.Addr != "" {
		cfg.Server.Address = CLI.Addr
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.Store != "" {
		cfg.Store.Path = CLI.Store
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		kctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	logger.Info("Starting cardroom server",
		"addr", cfg.GetServerAddress(),
		"tables", len(cfg.Tables),
		"store", cfg.Store.Path)

	accounts, err := account.NewFileStore(cfg.Store.Path, logger)
	if err != nil {
		logger.Error("Failed to open account store", "error", err, "path", cfg.Store.Path)
		kctx.Exit(1)
	}

	wsServer := server.NewServer(cfg.GetServerAddress(), logger)
	service := server.NewTableService(wsServer, accounts, logger)
	wsServer.SetService(service)

	for _, tableConfig := range cfg.Tables {
		table, err := service.CreateTable(tableConfig)
		if err != nil {
			logger.Error("Failed to create table", "error", err, "table", tableConfig.Name)
			kctx.Exit(1)
		}

		logger.Info("Created table",
			"id", table.ID(),
			"name", tableConfig.Name,
			"stakes", fmt.Sprintf("%d/%d", tableConfig.SmallBlind, tableConfig.BigBlind),
			"maxPlayers", tableConfig.MaxPlayers)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return wsServer.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		service.Close()
		return wsServer.Stop()
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server failed", "error", err)
		kctx.Exit(1)
	}
}
