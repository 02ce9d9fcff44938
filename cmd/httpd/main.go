// Command httpd runs the review triage HTTP service.
package main

import (
	"context"
	"log"

	"github.com/jonesrussell/review-triage/internal/bootstrap"
	"github.com/jonesrussell/review-triage/internal/logger"
)

func main() {
	cfg := bootstrap.LoadConfig()

	logg, err := bootstrap.CreateLogger(cfg)
	if err != nil {
		log.Fatalf("create logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	components, err := bootstrap.NewComponents(cfg, logg)
	if err != nil {
		logg.Fatal("failed to build service", logger.Error(err))
	}
	defer components.Close()

	logg.Info("Starting review triage service",
		logger.Int("port", cfg.Service.Port),
		logger.String("version", cfg.Service.Version),
	)

	if err := components.Server.RunWithGracefulShutdown(context.Background()); err != nil {
		logg.Fatal("server failed", logger.Error(err))
	}
}
