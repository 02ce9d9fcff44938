// Package storage persists triage outcomes: tickets in the database and an
// optional Elasticsearch archive of full triage results.
package storage

import (
	"context"
	"fmt"

	"github.com/jonesrussell/review-triage/internal/database"
	"github.com/jonesrussell/review-triage/internal/domain"
	"github.com/jonesrussell/review-triage/internal/logger"
)

// TicketSink receives one creation request per triage result.
type TicketSink interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
}

// DatabaseSink writes tickets to the tickets table.
type DatabaseSink struct {
	repo *database.TicketsRepository
	log  logger.Logger
}

// NewDatabaseSink creates a database-backed ticket sink.
func NewDatabaseSink(repo *database.TicketsRepository, log logger.Logger) *DatabaseSink {
	return &DatabaseSink{repo: repo, log: log}
}

// Create persists the ticket and fills in its ID.
func (s *DatabaseSink) Create(ctx context.Context, ticket *domain.Ticket) error {
	if err := s.repo.Create(ctx, ticket); err != nil {
		return err
	}
	s.log.Info("created ticket",
		logger.Int64("ticket_id", ticket.ID),
		logger.String("review_id", ticket.ReviewID),
		logger.String("category", ticket.Category),
		logger.Bool("spam", ticket.Spam))
	return nil
}

// BuildTicket maps a triage result to its downstream ticket. Every result
// maps to exactly one ticket, spam or not.
//
// Spam tickets keep the review title, falling back to "Spam Review - <user>",
// and carry the raw review text. Classified tickets fall back to a title
// derived from the review URL, and their body carries the review plus the
// running per-batch count for the inferred category.
func BuildTicket(runID string, result *domain.TriageResult) *domain.Ticket {
	rev := result.Review

	if result.IsSpam() {
		title := rev.Title
		if title == "" {
			title = fmt.Sprintf("Spam Review - %s", rev.Reviewer)
		}
		return &domain.Ticket{
			ReviewID: rev.ID,
			RunID:    runID,
			Title:    title,
			Body:     rev.Text,
			Spam:     true,
			Verdict:  string(result.Verdict),
		}
	}

	title := rev.Title
	if title == "" {
		title = fmt.Sprintf("Ticket created from review %s", rev.URL)
	}

	body := fmt.Sprintf("Ticket created from review %s\n\n%s\n\n", rev.URL, rev.Text)
	if result.CategoryTracked {
		body += fmt.Sprintf("Running count for category %q in this batch: %d\n", result.Category, result.CategoryCount)
	} else {
		body += "The review could not be assigned a category.\n"
	}
	if result.ExternalReason != "" {
		body += fmt.Sprintf("Label reason: %s\n", result.ExternalReason)
	}

	category := result.Category
	if category == domain.CategoryUnknown {
		// Uncategorized tickets are created untagged.
		category = ""
	}

	return &domain.Ticket{
		ReviewID: rev.ID,
		RunID:    runID,
		Title:    title,
		Body:     body,
		Category: category,
		Verdict:  string(result.Verdict),
	}
}
