package bootstrap

import (
	"context"
	"time"

	"github.com/jonesrussell/review-triage/internal/config"
	"github.com/jonesrussell/review-triage/internal/logger"
	"github.com/jonesrussell/review-triage/internal/storage"
)

// SetupElasticsearch creates the optional triage-result archive.
// Returns nil when archiving is disabled or the client cannot be built; the
// service runs without an archive in that case.
func SetupElasticsearch(cfg *config.Config, log logger.Logger) *storage.Archive {
	if !cfg.Elasticsearch.Enabled {
		return nil
	}

	client, err := storage.NewESClient(cfg.Elasticsearch)
	if err != nil {
		log.Warn("Elasticsearch unavailable, archiving disabled", logger.Error(err))
		return nil
	}

	archive := storage.NewArchive(client, cfg.Elasticsearch.Index)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := archive.EnsureIndex(ctx); err != nil {
		log.Warn("Failed to ensure archive index, archiving disabled", logger.Error(err))
		return nil
	}

	log.Info("Elasticsearch archive enabled",
		logger.String("url", cfg.Elasticsearch.URL),
		logger.String("index", cfg.Elasticsearch.Index),
	)
	return archive
}
