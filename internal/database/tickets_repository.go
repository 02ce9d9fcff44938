package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/review-triage/internal/domain"
)

// ErrTicketNotFound is returned when a ticket does not exist.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketsRepository handles database operations for tickets.
type TicketsRepository struct {
	db *sqlx.DB
}

// NewTicketsRepository creates a new tickets repository.
func NewTicketsRepository(db *sqlx.DB) *TicketsRepository {
	return &TicketsRepository{db: db}
}

// Create inserts a ticket and fills in its ID and creation time.
func (r *TicketsRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	query := r.db.Rebind(`
		INSERT INTO tickets (review_id, run_id, title, body, category, spam, verdict)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at
	`)

	err := r.db.QueryRowContext(
		ctx,
		query,
		ticket.ReviewID,
		ticket.RunID,
		ticket.Title,
		ticket.Body,
		ticket.Category,
		ticket.Spam,
		ticket.Verdict,
	).Scan(&ticket.ID, &ticket.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

// GetByID retrieves a ticket by its ID.
func (r *TicketsRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	var ticket domain.Ticket
	query := r.db.Rebind(`
		SELECT id, review_id, run_id, title, body, category, spam, verdict, created_at
		FROM tickets
		WHERE id = ?
	`)

	err := r.db.GetContext(ctx, &ticket, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrTicketNotFound, id)
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return &ticket, nil
}

// ListByRun retrieves all tickets created by one run, oldest first.
func (r *TicketsRepository) ListByRun(ctx context.Context, runID string) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	query := r.db.Rebind(`
		SELECT id, review_id, run_id, title, body, category, spam, verdict, created_at
		FROM tickets
		WHERE run_id = ?
		ORDER BY id
	`)

	if err := r.db.SelectContext(ctx, &tickets, query, runID); err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

// CountByCategory returns ticket counts per category across all runs.
// Spam tickets carry no category and are excluded.
func (r *TicketsRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COUNT(*)
		FROM tickets
		WHERE spam = FALSE AND category <> ''
		GROUP BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			category string
			count    int
		)
		if scanErr := rows.Scan(&category, &count); scanErr != nil {
			return nil, fmt.Errorf("failed to scan count: %w", scanErr)
		}
		counts[category] = count
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate counts: %w", rowsErr)
	}

	return counts, nil
}

// CountSpam returns the number of spam tickets across all runs.
func (r *TicketsRepository) CountSpam(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM tickets WHERE spam = TRUE`); err != nil {
		return 0, fmt.Errorf("failed to count spam tickets: %w", err)
	}
	return count, nil
}
