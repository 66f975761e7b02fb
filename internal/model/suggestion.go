package model

// SuggestionResult is the output of one suggestion pipeline run. It is
// transient: each run supersedes the previous result entirely.
type SuggestionResult struct {
	Suggestions    []string `json:"suggestions"`
	Summary        string   `json:"summary"`
	ConversionRate int      `json:"conversionRate"`

	// Warning is set when the heuristic fallback produced the result instead
	// of the external provider. Advisory only.
	Warning string `json:"warning,omitempty"`
}

// SummaryResult is a conversation summary with an estimated conversion
// probability in [0,100].
type SummaryResult struct {
	Summary        string `json:"summary"`
	ConversionRate int    `json:"conversionRate"`
}

// SuggestRequest is the request body shared by the suggestion and summary
// endpoints.
type SuggestRequest struct {
	Messages []Message `json:"messages"`
}
