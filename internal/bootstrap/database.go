package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/review-triage/internal/config"
	"github.com/jonesrussell/review-triage/internal/database"
	"github.com/jonesrussell/review-triage/internal/logger"
)

// DatabaseComponents holds the database connection and repositories.
type DatabaseComponents struct {
	DB      *sqlx.DB
	Tags    *database.TagsRepository
	Tickets *database.TicketsRepository
	Runs    *database.RunsRepository
}

// SetupDatabase connects to the configured database, seeds the category
// registry and builds the repositories.
func SetupDatabase(cfg *config.Config, log logger.Logger) (*DatabaseComponents, error) {
	log.Info("Connecting to database",
		logger.String("driver", cfg.Database.Driver),
		logger.String("host", cfg.Database.Host),
		logger.String("database", cfg.Database.Database),
	)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	tags := database.NewTagsRepository(db)
	if seedErr := tags.Seed(context.Background()); seedErr != nil {
		log.Warn("failed to seed category registry", logger.Error(seedErr))
	}

	log.Info("Database connected successfully")

	return &DatabaseComponents{
		DB:      db,
		Tags:    tags,
		Tickets: database.NewTicketsRepository(db),
		Runs:    database.NewRunsRepository(db),
	}, nil
}
