package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/jonesrussell/review-triage/internal/config"
	"github.com/jonesrussell/review-triage/internal/domain"
	"github.com/jonesrussell/review-triage/internal/elasticsearch/mappings"
)

// NewESClient creates an Elasticsearch client from configuration.
func NewESClient(cfg config.ElasticsearchConfig) (*es.Client, error) {
	client, err := es.NewClient(es.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return client, nil
}

// Archive indexes full triage results into Elasticsearch so past runs stay
// searchable after the reviews themselves are gone.
type Archive struct {
	client *es.Client
	index  string
}

// NewArchive creates an Elasticsearch archive writing to the given index.
func NewArchive(client *es.Client, index string) *Archive {
	return &Archive{client: client, index: index}
}

// EnsureIndex creates the archive index with its mapping if it does not
// already exist.
func (a *Archive) EnsureIndex(ctx context.Context) error {
	exists, err := a.client.Indices.Exists(
		[]string{a.index},
		a.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer exists.Body.Close()

	if exists.StatusCode == 200 {
		return nil
	}

	mapping := mappings.NewTriageResultsMapping()
	if err := mapping.Validate(); err != nil {
		return fmt.Errorf("invalid index mapping: %w", err)
	}

	body, err := mapping.GetJSON()
	if err != nil {
		return fmt.Errorf("failed to build index mapping: %w", err)
	}

	res, err := a.client.Indices.Create(
		a.index,
		a.client.Indices.Create.WithContext(ctx),
		a.client.Indices.Create.WithBody(bytes.NewReader([]byte(body))),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index: %s", res.String())
	}

	return nil
}

// archiveDoc is the indexed document shape.
type archiveDoc struct {
	RunID      string    `json:"run_id"`
	ArchivedAt time.Time `json:"archived_at"`
	domain.TriageResult
}

// IndexResult archives one triage result. The document ID combines run and
// review IDs, so every run keeps its own document per review and retrying a
// result within a run overwrites rather than duplicates.
func (a *Archive) IndexResult(ctx context.Context, runID string, result *domain.TriageResult) error {
	doc := archiveDoc{
		RunID:        runID,
		ArchivedAt:   time.Now().UTC(),
		TriageResult: *result,
	}

	docBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	docID := fmt.Sprintf("%s-%s", runID, result.Review.ID)
	res, err := a.client.Index(
		a.index,
		bytes.NewReader(docBytes),
		a.client.Index.WithContext(ctx),
		a.client.Index.WithDocumentID(docID),
	)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing document: %s", res.String())
	}

	return nil
}
