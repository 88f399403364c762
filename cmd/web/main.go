// Command web serves the dashboard API over the prepared long-format CSV.
package main

import (
	"flag"
	"log/slog"
	"os"

	"emiscli/internal/app"
	"emiscli/internal/config"
)

func main() {
	dataset := flag.String("dataset", "", "prepared long-format CSV to serve (overrides config)")
	port := flag.Int("port", 0, "listen port (overrides config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *dataset != "" {
		cfg.Pipeline.OutputPath = *dataset
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		slog.Error("Failed to start application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		application.Logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
