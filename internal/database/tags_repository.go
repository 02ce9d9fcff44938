package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/review-triage/internal/domain"
)

// ErrTagNotFound is returned when a tag does not exist.
var ErrTagNotFound = errors.New("tag not found")

// TagsRepository handles database operations for the category registry.
// Queries use "?" bindvars and are rebound per driver.
type TagsRepository struct {
	db *sqlx.DB
}

// NewTagsRepository creates a new tags repository.
func NewTagsRepository(db *sqlx.DB) *TagsRepository {
	return &TagsRepository{db: db}
}

// Create inserts a tag. Existing names are left untouched.
func (r *TagsRepository) Create(ctx context.Context, name string) error {
	query := r.db.Rebind(`INSERT INTO tags (name) VALUES (?) ON CONFLICT (name) DO NOTHING`)

	if _, err := r.db.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

// GetByName retrieves a tag by name.
func (r *TagsRepository) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	var tag domain.Tag
	query := r.db.Rebind(`SELECT id, name, created_at FROM tags WHERE name = ?`)

	err := r.db.GetContext(ctx, &tag, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrTagNotFound, name)
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	return &tag, nil
}

// List retrieves all tags ordered by name.
func (r *TagsRepository) List(ctx context.Context) ([]domain.Tag, error) {
	var tags []domain.Tag
	query := `SELECT id, name, created_at FROM tags ORDER BY name`

	if err := r.db.SelectContext(ctx, &tags, query); err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// AllowedSet returns the registry as a lookup set for label overrides.
// An empty registry falls back to the built-in category vocabulary, so a
// fresh database never disables external labeling.
func (r *TagsRepository) AllowedSet(ctx context.Context) (map[string]struct{}, error) {
	tags, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	if len(tags) == 0 {
		return BuiltinAllowedSet(), nil
	}

	allowed := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		allowed[tag.Name] = struct{}{}
	}
	return allowed, nil
}

// Seed inserts the built-in category vocabulary.
func (r *TagsRepository) Seed(ctx context.Context) error {
	for _, name := range domain.Categories() {
		if err := r.Create(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// BuiltinAllowedSet returns the built-in category vocabulary as a set.
func BuiltinAllowedSet() map[string]struct{} {
	allowed := make(map[string]struct{}, len(domain.Categories()))
	for _, name := range domain.Categories() {
		allowed[name] = struct{}{}
	}
	return allowed
}
