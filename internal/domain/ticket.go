package domain

import "time"

// Ticket is the downstream work item created for every triage result,
// spam or not. Exactly one ticket maps to one TriageResult.
type Ticket struct {
	ID        int64     `db:"id"         json:"id"`
	ReviewID  string    `db:"review_id"  json:"review_id"`
	RunID     string    `db:"run_id"     json:"run_id"`
	Title     string    `db:"title"      json:"title"`
	Body      string    `db:"body"       json:"body"`
	Category  string    `db:"category"   json:"category,omitempty"`
	Spam      bool      `db:"spam"       json:"spam"`
	Verdict   string    `db:"verdict"    json:"verdict"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Tag is a registry entry naming a valid ticket category. The registry is
// the set of categories an external label may override to.
type Tag struct {
	ID        int64     `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RunSummary records the aggregate outcome of one triage run. It is audit
// history only; the spam detector never reads it back.
type RunSummary struct {
	RunID      string    `db:"run_id"      json:"run_id"`
	Requested  int       `db:"requested"   json:"requested"`
	Fetched    int       `db:"fetched"     json:"fetched"`
	Classified int       `db:"classified"  json:"classified"`
	Spam       int       `db:"spam"        json:"spam"`
	Skipped    int       `db:"skipped"     json:"skipped"`
	StartedAt  time.Time `db:"started_at"  json:"started_at"`
	FinishedAt time.Time `db:"finished_at" json:"finished_at"`
}
