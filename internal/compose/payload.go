package compose

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// rawSuggestion is one entry of the suggestions payload in generated text.
type rawSuggestion struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type payload struct {
	Suggestions []rawSuggestion `json:"suggestions"`
}

var fencedRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// extractPayload finds the suggestions payload in generated text, fenced or
// bare, and returns the text with the payload removed. A malformed payload is
// still removed, yields no suggestions and is reported through err.
func extractPayload(text string) (visible string, suggestions []rawSuggestion, err error) {
	if loc := fencedRe.FindStringSubmatchIndex(text); loc != nil {
		body := text[loc[2]:loc[3]]
		if strings.Contains(body, `"suggestions"`) {
			visible = cleanVisible(text[:loc[0]] + text[loc[1]:])
			var p payload
			if err := json.Unmarshal([]byte(body), &p); err != nil {
				return visible, nil, fmt.Errorf("malformed fenced payload: %w", err)
			}
			return visible, p.Suggestions, nil
		}
	}
	key := strings.Index(text, `"suggestions"`)
	if key < 0 {
		return cleanVisible(text), nil, nil
	}
	start := strings.LastIndex(text[:key], "{")
	if start < 0 {
		return cleanVisible(text), nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(text[start:]))
	var p payload
	if err := dec.Decode(&p); err != nil {
		return cleanVisible(text[:start]), nil, fmt.Errorf("malformed payload: %w", err)
	}
	end := start + int(dec.InputOffset())
	return cleanVisible(text[:start] + text[end:]), p.Suggestions, nil
}

func cleanVisible(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	out := lines[:0]
	blank := false
	for _, l := range lines {
		l = strings.TrimRight(l, " \t")
		if l == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

var idLikeRe = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`)

// foreignIDs returns the id-like tokens of text that are not in allowed.
func foreignIDs(text string, allowed map[string]bool) []string {
	var out []string
	for _, id := range idLikeRe.FindAllString(text, -1) {
		if !allowed[strings.ToLower(id)] {
			out = append(out, id)
		}
	}
	return out
}
