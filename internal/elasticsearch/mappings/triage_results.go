package mappings

// TriageResultsMapping defines the index mapping for archived triage results
type TriageResultsMapping struct {
	Settings BaseSettings            `json:"settings"`
	Mappings TriageResultsProperties `json:"mappings"`
}

// TriageResultsProperties wraps the property definitions for the index
type TriageResultsProperties struct {
	Properties TriageResultsFields `json:"properties"`
}

// ReviewFields maps the embedded review object
type ReviewFields struct {
	Properties struct {
		ID        Field `json:"id"`
		URL       Field `json:"url"`
		Title     Field `json:"title"`
		Text      Field `json:"text"`
		Score     Field `json:"score"`
		Reviewer  Field `json:"reviewer"`
		FetchedAt Field `json:"fetched_at"`
	} `json:"properties"`
}

// TriageResultsFields lists the fields stored for each archived result
type TriageResultsFields struct {
	RunID           Field        `json:"run_id"`
	Review          ReviewFields `json:"review"`
	Outcome         Field        `json:"outcome"`
	Verdict         Field        `json:"verdict"`
	Category        Field        `json:"category"`
	CategoryCount   Field        `json:"category_count"`
	CategoryTracked Field        `json:"category_tracked"`
	ExternalReason  Field        `json:"external_reason"`
	TriagedAt       Field        `json:"triaged_at"`
	ArchivedAt      Field        `json:"archived_at"`
}

// NewTriageResultsMapping creates a new triage results index mapping with
// default settings
func NewTriageResultsMapping() *TriageResultsMapping {
	var review ReviewFields
	review.Properties.ID = Field{Type: "keyword"}
	review.Properties.URL = Field{Type: "keyword"}
	review.Properties.Title = Field{Type: "text", Analyzer: "standard"}
	review.Properties.Text = Field{Type: "text", Analyzer: "standard"}
	review.Properties.Score = Field{Type: "float"}
	review.Properties.Reviewer = Field{Type: "keyword"}
	review.Properties.FetchedAt = Field{Type: "date"}

	return &TriageResultsMapping{
		Settings: DefaultSettings(),
		Mappings: TriageResultsProperties{
			Properties: TriageResultsFields{
				RunID:           Field{Type: "keyword"},
				Review:          review,
				Outcome:         Field{Type: "keyword"},
				Verdict:         Field{Type: "keyword"},
				Category:        Field{Type: "keyword"},
				CategoryCount:   Field{Type: "integer"},
				CategoryTracked: Field{Type: "boolean"},
				ExternalReason:  Field{Type: "text", Analyzer: "standard"},
				TriagedAt:       Field{Type: "date"},
				ArchivedAt:      Field{Type: "date"},
			},
		},
	}
}

// GetJSON returns the mapping as a JSON string
func (m *TriageResultsMapping) GetJSON() (string, error) {
	return ToJSON(m)
}

// Validate checks the mapping settings
func (m *TriageResultsMapping) Validate() error {
	return ValidateSettings(m.Settings)
}
