/*
Package main is the entry point for the chatterm client.

It loads the configuration, initializes the global logger, builds the client
session and hands control to the terminal UI until interrupted.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"chatterm/internal/app/client"
	"chatterm/internal/configs"
	"chatterm/internal/pkg/logx"
	"chatterm/internal/ui"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Info("Configuration loaded successfully",
		"environment", cfg.Environment,
		"server_url", cfg.ServerURL.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chatClient, err := client.New(cfg, afero.NewOsFs())
	if err != nil {
		logx.Fatal(err, "Failed to initialize client")
	}

	app := ui.NewApp(chatClient, os.Stdin, os.Stdout)
	if err := app.Run(ctx); err != nil {
		logx.Error(err, "UI loop ended with error")
	}

	chatClient.Shutdown()
	logx.Info("Client stopped.")
}
