package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
)

type classifierPayload struct {
	Label       string `json:"label"`
	Reasoning   string `json:"reasoning"`
	Description string `json:"description"`
}

// parseClassifierOutput extracts the JSON object from the model response.
// Models occasionally wrap the object in prose or code fences, so the
// parser slices from the first '{' to the last '}'.
func parseClassifierOutput(content string) (*classifierPayload, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object in classifier output")
	}

	payload := &classifierPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, fmt.Errorf("decode classifier output: %w", err)
	}
	if strings.TrimSpace(payload.Label) == "" {
		return nil, fmt.Errorf("classifier output has empty label")
	}
	return payload, nil
}

// normalizeLabel maps the model's label onto the canonical vocabulary,
// ignoring case. Unknown labels pass through trimmed so a drifting model
// never loses information.
func normalizeLabel(raw string) string {
	trimmed := strings.TrimSpace(raw)
	for _, label := range ImageLabels {
		if strings.EqualFold(label, trimmed) {
			return label
		}
	}
	return trimmed
}

// extractUsage pulls token accounting out of a model response when the
// provider reports it.
func extractUsage(msg *schema.Message) Usage {
	if msg == nil || msg.ResponseMeta == nil || msg.ResponseMeta.Usage == nil {
		return Usage{}
	}
	u := msg.ResponseMeta.Usage
	return Usage{
		InputTokens:  u.PromptTokens,
		OutputTokens: u.CompletionTokens,
		TotalTokens:  u.TotalTokens,
	}
}
