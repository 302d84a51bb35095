package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sells-group/intake-cli/pkg/anthropic"
)

// extractText concatenates all text content blocks from a message response.
func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or surrounding prose.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first { and last }.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// normalizeKey canonicalizes a JSON object key so that snake_case,
// camelCase, and kebab-case spellings of the same field collide.
func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, "_", "")
	key = strings.ReplaceAll(key, "-", "")
	return key
}

// decodeStage extracts a JSON object from raw completion text and unmarshals
// it into out, whose json tags must use normalized (lowercase, separator-free)
// key names. Wrong-typed values fail with a ParseError; they are never
// coerced. A truncated or absent payload fails rather than producing a
// partial record.
func decodeStage(raw string, out any) error {
	text := cleanJSON(raw)
	if text == "" || !strings.HasPrefix(text, "{") {
		return &ParseError{Detail: "no JSON object in completion text", Raw: raw}
	}

	fields, err := objectFields(text)
	if err != nil {
		// Single-quoted pseudo-JSON shows up occasionally; repair only when
		// the payload has no double quotes at all, so apostrophes inside
		// properly quoted strings are left alone.
		if !strings.Contains(text, `"`) && strings.Contains(text, "'") {
			fields, err = objectFields(strings.ReplaceAll(text, "'", `"`))
		}
		if err != nil {
			return &ParseError{Detail: "malformed JSON: " + err.Error(), Raw: raw}
		}
	}

	normalized := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		normalized[normalizeKey(k)] = v
	}

	buf, err := json.Marshal(normalized)
	if err != nil {
		return &ParseError{Detail: "re-encode payload: " + err.Error(), Raw: raw}
	}

	if err := json.Unmarshal(buf, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &ParseError{
				Detail: fmt.Sprintf("field %q: got %s, want %s", typeErr.Field, typeErr.Value, typeErr.Type),
				Raw:    raw,
			}
		}
		return &ParseError{Detail: err.Error(), Raw: raw}
	}
	return nil
}

func objectFields(text string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
