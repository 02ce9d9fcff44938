package triage

import "github.com/jonesrussell/review-triage/internal/domain"

// FrequencyTracker counts how many reviews in the current batch landed in
// each category. One instance per run; counts start at zero and only grow.
type FrequencyTracker struct {
	counts map[string]int
}

// NewFrequencyTracker creates a tracker with every tracked category at zero.
// The sentinel failed_to_infer_category is deliberately not tracked.
func NewFrequencyTracker() *FrequencyTracker {
	counts := make(map[string]int, len(domain.Categories()))
	for _, c := range domain.Categories() {
		counts[c] = 0
	}
	return &FrequencyTracker{counts: counts}
}

// Record increments the count for category and returns the post-increment
// value. An unrecognized category is a normal no-op: Record returns
// (0, false) and no table entry changes.
func (t *FrequencyTracker) Record(category string) (int, bool) {
	if _, ok := t.counts[category]; !ok {
		return 0, false
	}
	t.counts[category]++
	return t.counts[category], true
}

// Count returns the current count for a category without recording.
func (t *FrequencyTracker) Count(category string) int {
	return t.counts[category]
}

// Counts returns a copy of the frequency table.
func (t *FrequencyTracker) Counts() map[string]int {
	out := make(map[string]int, len(t.counts))
	for k, v := range t.counts {
		out[k] = v
	}
	return out
}
