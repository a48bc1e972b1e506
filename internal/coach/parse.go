package coach

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/craveless/lesscoach/internal/models"
)

// extractJSON returns the first balanced {...} substring of the raw
// response, tolerating surrounding prose and markdown fencing. Returns
// an empty string when no balanced object exists.
func extractJSON(raw string) string {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	return ""
}

// parseResult parses an extracted JSON object and validates it against
// the response schema: non-empty assistantMessage, classification in the
// fixed enum, quickActions a list, memoryUpdates an object.
func parseResult(jsonStr string) (*models.CoachResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &fields); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}

	var message string
	if err := json.Unmarshal(fields["assistantMessage"], &message); err != nil || strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("invalid assistantMessage")
	}

	var classification models.Classification
	if err := json.Unmarshal(fields["classification"], &classification); err != nil {
		return nil, fmt.Errorf("invalid classification")
	}
	if !models.IsValidClassification(classification) {
		slog.Warn("coach.parseResult: classification outside enum", "classification", classification)
		return nil, fmt.Errorf("invalid classification %q", classification)
	}

	rawActions, ok := fields["quickActions"]
	if !ok {
		return nil, fmt.Errorf("missing quickActions")
	}
	var quickActions []string
	if err := json.Unmarshal(rawActions, &quickActions); err != nil {
		return nil, fmt.Errorf("invalid quickActions: %w", err)
	}
	if quickActions == nil {
		quickActions = []string{}
	}

	rawUpdates, ok := fields["memoryUpdates"]
	if !ok || !strings.HasPrefix(strings.TrimSpace(string(rawUpdates)), "{") {
		return nil, fmt.Errorf("invalid memoryUpdates")
	}
	var updates models.MemoryUpdates
	if err := json.Unmarshal(rawUpdates, &updates); err != nil {
		return nil, fmt.Errorf("invalid memoryUpdates: %w", err)
	}

	return &models.CoachResult{
		AssistantMessage: message,
		Classification:   classification,
		QuickActions:     quickActions,
		MemoryUpdates:    updates,
	}, nil
}
