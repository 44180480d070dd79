package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoObject is returned when a reply has no {...} span.
var ErrNoObject = errors.New("no json object in model output")

// Parse decodes the text between the first '{' and the last '}' of raw.
func Parse(raw string) (map[string]any, error) {
	candidate, ok := objectSpan(stripFences(raw))
	if !ok {
		return nil, ErrNoObject
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(candidate), &data); err != nil {
		return nil, fmt.Errorf("parse model output: %w", err)
	}
	if data == nil {
		return nil, ErrNoObject
	}

	return data, nil
}

func objectSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// stripFences removes a markdown code fence wrapping the whole reply. Text
// inside the fence is left untouched.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(raw, "```"); ok {
		// Drop the info string, e.g. "json".
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		} else {
			rest = strings.TrimPrefix(rest, "json")
		}
		raw = rest
	}
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}

// coerceString renders any decoded JSON value as text.
func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
