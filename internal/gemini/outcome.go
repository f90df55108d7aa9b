package gemini

import (
	"bytes"
	"encoding/json"

	"github.com/aashari/go-report-analyzer/internal/types"
)

// OutcomeKind tags how a 2xx provider response should be read
type OutcomeKind int

const (
	// OutcomeSuccess carries the first candidate's text
	OutcomeSuccess OutcomeKind = iota
	// OutcomeBlocked means no candidate and the prompt feedback explains why
	OutcomeBlocked
	// OutcomeMalformed means neither a candidate nor feedback was returned
	OutcomeMalformed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of a successful HTTP exchange
type Outcome struct {
	Kind     OutcomeKind
	Text     string
	Feedback json.RawMessage
	Usage    *types.UsageMetadata
}

// Classify maps a decoded response onto exactly one outcome.
// A candidate with at least one part wins over feedback.
func Classify(resp *types.GenerateContentResponse) *Outcome {
	if resp == nil {
		return &Outcome{Kind: OutcomeMalformed}
	}

	if len(resp.Candidates) > 0 {
		if content := resp.Candidates[0].Content; content != nil && len(content.Parts) > 0 {
			text := ""
			if content.Parts[0].Text != nil {
				text = *content.Parts[0].Text
			}
			return &Outcome{Kind: OutcomeSuccess, Text: text, Usage: resp.UsageMetadata}
		}
	}

	if hasFeedback(resp.PromptFeedback) {
		return &Outcome{Kind: OutcomeBlocked, Feedback: resp.PromptFeedback, Usage: resp.UsageMetadata}
	}

	return &Outcome{Kind: OutcomeMalformed, Usage: resp.UsageMetadata}
}

func hasFeedback(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// BlockReason extracts blockReason from the feedback, for logs only
func (o *Outcome) BlockReason() string {
	if o == nil || len(o.Feedback) == 0 {
		return ""
	}
	var feedback types.PromptFeedback
	if err := json.Unmarshal(o.Feedback, &feedback); err != nil {
		return ""
	}
	return feedback.BlockReason
}
