package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	deckerrors "github.com/deckforge/deckforge/internal/errors"
)

// fencedJSON matches a fenced code block, optionally tagged json.
var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*\n(.*?)\n```")

// ExtractJSON pulls the JSON payload out of a model response that may
// wrap it in a fenced code block or surround it with prose. First a
// fenced block is tried, then the span from the first '{' to the last
// '}'.
func ExtractJSON(response string) string {
	clean := strings.TrimSpace(response)

	if strings.Contains(clean, "```") {
		if m := fencedJSON.FindStringSubmatch(clean); m != nil {
			clean = strings.TrimSpace(m[1])
		}
	}

	if !strings.HasPrefix(clean, "{") {
		start := strings.Index(clean, "{")
		end := strings.LastIndex(clean, "}")
		if start != -1 && end != -1 && end > start {
			clean = clean[start : end+1]
		}
	}

	return clean
}

// DecodeJSON extracts and unmarshals the JSON payload from a model
// response into v. Absent or malformed JSON is a distinct, reportable
// failure, never silently swallowed.
func DecodeJSON(response string, v any) error {
	clean := ExtractJSON(response)
	if clean == "" {
		return deckerrors.MalformedPayload("llm response", fmt.Errorf("no JSON payload found"))
	}
	if err := json.Unmarshal([]byte(clean), v); err != nil {
		return deckerrors.MalformedPayload("llm response", err)
	}
	return nil
}

// StringOrList normalizes model output fields that arrive as either a
// single string or a list. It always unmarshals to an ordered list of
// strings so downstream code never branches on shape.
type StringOrList []string

// UnmarshalJSON accepts a JSON string (split on newlines) or an array
// of arbitrary values (each stringified). Blank lines are dropped.
func (s *StringOrList) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*s = splitNonBlank(asString)
		return nil
	}

	var asList []any
	if err := json.Unmarshal(data, &asList); err != nil {
		return fmt.Errorf("expected string or list, got %s", truncateBody(data))
	}

	out := make([]string, 0, len(asList))
	for _, item := range asList {
		var line string
		switch v := item.(type) {
		case string:
			line = v
		default:
			line = fmt.Sprintf("%v", v)
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	*s = out
	return nil
}

func splitNonBlank(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
