package triage

// Report is a citizen submission as handed to the pipeline. Callers validate
// and normalize it first.
type Report struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	LocationText string  `json:"locationText"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// Result is a validated classification.
type Result struct {
	Category         Category `json:"category"`
	Priority         Priority `json:"priority"`
	TechnicalSummary string   `json:"technicalSummary"`
}

const (
	MinSummaryLength = 10
	MaxSummaryLength = 300
)
