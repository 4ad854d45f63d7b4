package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when text contains no valid JSON document.
var ErrNoJSON = errors.New("no JSON document found")

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// ExtractJSON returns the JSON document in content. Content may be bare JSON
// or contain a markdown code fence, as when a workflow export is pasted from
// a README or chat transcript.
func ExtractJSON(content string) (string, error) {
	content = strings.TrimSpace(content)
	if json.Valid([]byte(content)) {
		return content, nil
	}

	for _, m := range fencePattern.FindAllStringSubmatch(content, -1) {
		candidate := strings.TrimSpace(m[1])
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}

	return "", ErrNoJSON
}

// Parse extracts the JSON document from content and decodes it into T.
func Parse[T any](content string) (T, error) {
	var result T

	doc, err := ExtractJSON(content)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal([]byte(doc), &result); err != nil {
		return result, fmt.Errorf("decode %T: %w", result, err)
	}

	return result, nil
}
