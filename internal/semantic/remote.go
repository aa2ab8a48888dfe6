package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/docscore/docscore/internal/config"
	"github.com/docscore/docscore/internal/content"
	"github.com/docscore/docscore/internal/score"
)

const maxAnalysisChars = 24000

const systemInstructions = `You are a documentation quality analyst. You score a single
documentation page for how well an AI assistant can consume it: unambiguous
steps, clear outcomes, explicit permissions, and self-contained context.
You respond with strict JSON only, matching the requested schema exactly.
Scores are numbers from 0 to 10.`

// RemoteEvaluator scores the semantic criteria through the Anthropic
// Messages API using a fixed request/response contract.
type RemoteEvaluator struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

// NewRemoteEvaluator creates a remote evaluator. Returns nil when no
// API key is configured; the caller then selects the estimator.
func NewRemoteEvaluator(cfg config.Semantic) *RemoteEvaluator {
	if cfg.APIKey == "" {
		return nil
	}
	return &RemoteEvaluator{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Evaluate sends the page to the model and transforms the strict-JSON
// response into criterion records. Any failure (transport, auth, rate
// limit, malformed payload) is returned to the caller, which falls back
// to the estimator; errors never abort the scoring run.
func (r *RemoteEvaluator) Evaluate(ctx context.Context, c *content.NormalizedContent) (*Result, error) {
	prompt := buildPrompt(c)

	resp, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(r.model),
		MaxTokens: int64(r.maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemInstructions},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("semantic api call: %w", err)
	}

	var responseText string
	for _, block := range resp.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}
	if responseText == "" {
		return nil, fmt.Errorf("semantic api call: empty response")
	}

	raw := []byte(ExtractJSON(responseText))
	result, err := Transform(raw)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func buildPrompt(c *content.NormalizedContent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyze this documentation page.\n\nTitle: %s\nURL: %s\n\n", c.Meta.Title, c.Meta.URL)

	sb.WriteString("Score each of these criteria from 0 to 10:\n")
	for _, crit := range Criteria {
		fmt.Fprintf(&sb, "- %s (%s): %s\n", crit.ID, crit.Name, crit.Definition)
	}

	sb.WriteString(`
Respond with ONLY this JSON, no other text:
{
  "scores": {
    "<criterionId>": {
      "score": 0,
      "explanation": "why",
      "issues": ["specific problem"],
      "fixes": ["how to fix the matching issue"]
    }
  },
  "summary": "one-paragraph overall assessment",
  "topIssues": ["most important problems first"]
}

Page content:
`)
	text := c.Text.FullText
	if len(text) > maxAnalysisChars {
		text = text[:maxAnalysisChars] + "\n...[truncated]..."
	}
	sb.WriteString(text)
	return sb.String()
}

// remotePayload is the fixed response contract.
type remotePayload struct {
	Scores map[string]struct {
		Score       float64  `json:"score"`
		Explanation string   `json:"explanation"`
		Issues      []string `json:"issues"`
		Fixes       []string `json:"fixes"`
	} `json:"scores"`
	Summary   string   `json:"summary"`
	TopIssues []string `json:"topIssues"`
}

// Transform parses a raw semantic payload into a Result. Malformed JSON
// is a hard failure routed to the fallback path by the caller. Exported
// so cached raw payloads can be re-transformed.
func Transform(raw []byte) (*Result, error) {
	var payload remotePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parsing semantic response: %w", err)
	}
	if len(payload.Scores) == 0 {
		return nil, fmt.Errorf("parsing semantic response: no scores present")
	}

	result := &Result{
		Criteria:  make(map[string]score.CriterionResult),
		Summary:   payload.Summary,
		TopIssues: payload.TopIssues,
		Raw:       json.RawMessage(raw),
	}

	for _, crit := range Criteria {
		entry, ok := payload.Scores[crit.ID]
		if !ok {
			continue
		}
		s := score.Clamp(entry.Score)
		cr := score.CriterionResult{
			CriterionID: crit.ID,
			Score:       score.Round1(s),
			Details:     entry.Explanation,
		}
		sev := severityForScore(s)
		for i, msg := range entry.Issues {
			issue := score.Issue{Severity: sev, Message: msg}
			if i < len(entry.Fixes) {
				issue.Fix = entry.Fixes[i]
			}
			cr.Issues = append(cr.Issues, issue)
		}
		result.Criteria[crit.ID] = cr
	}
	return result, nil
}

// ExtractJSON strips a possible fenced code block around a JSON payload.
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "{") {
		return s
	}

	if idx := strings.Index(s, "```json"); idx != -1 {
		start := idx + 7
		if end := strings.Index(s[start:], "```"); end != -1 {
			return strings.TrimSpace(s[start : start+end])
		}
	}

	if idx := strings.Index(s, "```"); idx != -1 {
		start := idx + 3
		if nl := strings.Index(s[start:], "\n"); nl != -1 {
			start += nl + 1
		}
		if end := strings.Index(s[start:], "```"); end != -1 {
			return strings.TrimSpace(s[start : start+end])
		}
	}

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			return s[start : end+1]
		}
	}

	return s
}
