package suggest

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tooni-app/salesdesk/internal/model"
)

var (
	// ErrNoSummaryJSON means no JSON object could be located in the model output.
	ErrNoSummaryJSON = errors.New("no JSON object in model output")

	// ErrBadSummaryShape means the JSON object lacks the required fields.
	ErrBadSummaryShape = errors.New("model output missing summary or conversionRate")
)

// ParseSummary extracts a {summary, conversionRate} object from free-form
// model output. Models routinely wrap the JSON in prose, so the extraction is
// permissive: everything between the first '{' and the last '}' is taken as
// the candidate object. Callers must treat any error here the same as a
// network failure and fall back to the heuristic summary.
func ParseSummary(raw string) (model.SummaryResult, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return model.SummaryResult{}, ErrNoSummaryJSON
	}

	var parsed struct {
		Summary        *string  `json:"summary"`
		ConversionRate *float64 `json:"conversionRate"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return model.SummaryResult{}, fmt.Errorf("parse summary object: %w", err)
	}

	if parsed.Summary == nil || parsed.ConversionRate == nil {
		return model.SummaryResult{}, ErrBadSummaryShape
	}

	return model.SummaryResult{
		Summary:        *parsed.Summary,
		ConversionRate: int(math.Round(*parsed.ConversionRate)),
	}, nil
}
