package model

// SearchResult is one row returned by a search provider. Results are
// ephemeral: they exist for the duration of a single retrieval pass and are
// reduced into aggregates before anything is persisted.
type SearchResult struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Snippet       string   `json:"snippet"`
	Source        string   `json:"source"`                   // engine that produced the row
	PublishedDate string   `json:"published_date,omitempty"`
	Engines       []string `json:"engines,omitempty"`        // engines that agreed on the row
	Score         float64  `json:"score,omitempty"`          // aggregator relevance score, 0 if absent
	HasScore      bool     `json:"-"`
	Category      string   `json:"category,omitempty"`
}

// Relevance returns the aggregator score, defaulting to 1.0 when the
// aggregator did not report one.
func (r SearchResult) Relevance() float64 {
	if !r.HasScore {
		return 1.0
	}
	return r.Score
}
