package bootstrap

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/review-triage/internal/api"
	"github.com/jonesrussell/review-triage/internal/config"
	"github.com/jonesrussell/review-triage/internal/labeler"
	"github.com/jonesrussell/review-triage/internal/logger"
	"github.com/jonesrussell/review-triage/internal/processor"
	"github.com/jonesrussell/review-triage/internal/progress"
	"github.com/jonesrussell/review-triage/internal/source"
	"github.com/jonesrussell/review-triage/internal/storage"
	"github.com/jonesrussell/review-triage/internal/telemetry"
	"github.com/jonesrussell/review-triage/internal/triage"
)

// Components holds everything the service needs at runtime.
type Components struct {
	Database *DatabaseComponents
	Redis    *redis.Client
	Runner   *processor.Runner
	Server   *api.Server
	Log      logger.Logger
}

// NewComponents builds the full service: database, telemetry, pipeline,
// collaborators, runner and HTTP server.
func NewComponents(cfg *config.Config, log logger.Logger) (*Components, error) {
	dbComps, err := SetupDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	tp := telemetry.NewProvider()
	archive := SetupElasticsearch(cfg, log)

	lbl, err := labeler.New(cfg.Labeler, log)
	if err != nil {
		dbComps.DB.Close()
		return nil, fmt.Errorf("build labeler: %w", err)
	}
	if lbl != nil {
		log.Info("External labeler enabled", logger.String("mode", cfg.Labeler.Mode))
	}

	var notifier progress.Notifier = progress.NewLogNotifier(log)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = progress.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, progress falls back to logs", logger.Error(err))
		} else {
			notifier = progress.NewRedisNotifier(redisClient, cfg.Redis.ProgressChannel, cfg.Redis.ProgressRPS, log)
		}
	}

	var src source.ReviewSource
	if cfg.Source.BaseURL != "" {
		src = source.NewClient(cfg.Source.BaseURL, cfg.Source.AppID, log,
			source.WithTimeout(cfg.Source.Timeout),
			source.WithRateLimit(cfg.Source.RPS, cfg.Source.Burst),
		)
	}

	pipeline := triage.NewPipeline(triage.NewCategoryClassifier(log), lbl, tp, log)

	var archiver processor.Archiver
	if archive != nil {
		archiver = archive
	}

	runner := processor.NewRunner(processor.Config{
		Source:    src,
		Pipeline:  pipeline,
		Registry:  dbComps.Tags,
		Sink:      storage.NewDatabaseSink(dbComps.Tickets, log),
		Archive:   archiver,
		Runs:      dbComps.Runs,
		Notifier:  notifier,
		Telemetry: tp,
		Logger:    log,
	})

	handler := api.NewHandler(api.HandlerConfig{
		Runner:       runner,
		Runs:         dbComps.Runs,
		Tickets:      dbComps.Tickets,
		Telemetry:    tp,
		Readiness:    func(ctx context.Context) error { return dbComps.DB.PingContext(ctx) },
		Service:      cfg.Service.Name,
		Version:      cfg.Service.Version,
		BatchSize:    cfg.Service.BatchSize,
		MaxBatchSize: cfg.Service.MaxBatchSize,
		Logger:       log,
	})

	server := api.NewServer(api.ServerConfig{
		Port:  cfg.Service.Port,
		Debug: cfg.Service.Debug,
	}, log, func(router *gin.Engine) {
		api.SetupRoutes(router, handler, cfg.Auth.JWTSecret)
	})

	return &Components{
		Database: dbComps,
		Redis:    redisClient,
		Runner:   runner,
		Server:   server,
		Log:      log,
	}, nil
}

// Close releases held connections.
func (c *Components) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Warn("failed to close redis client", logger.Error(err))
		}
	}
	if c.Database != nil && c.Database.DB != nil {
		if err := c.Database.DB.Close(); err != nil {
			c.Log.Warn("failed to close database", logger.Error(err))
		}
	}
}
