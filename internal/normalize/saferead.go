package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// codeFenceRe strips a leading/trailing markdown code fence, with or
// without a language tag (```json ... ```).
var codeFenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// looseObjectRe is the last-resort regex fallback: grab the span from the
// first '{' to the last '}' even when it's embedded in prose.
var looseObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// safeParse attempts to recover a JSON object from text that isn't
// directly valid JSON: markdown code fences, leading/trailing prose around
// a JSON object, or a balanced-brace scan for the first top-level object.
func safeParse(data []byte) (map[string]any, error) {
	text := strings.TrimSpace(string(data))

	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		if out, err := tryUnmarshal(m[1]); err == nil {
			return out, nil
		}
	}

	if span, ok := firstBalancedObject(text); ok {
		if out, err := tryUnmarshal(span); err == nil {
			return out, nil
		}
	}

	if m := looseObjectRe.FindString(text); m != "" {
		if out, err := tryUnmarshal(m); err == nil {
			return out, nil
		}
	}

	return nil, fmt.Errorf("no recoverable JSON object in payload")
}

func tryUnmarshal(s string) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// firstBalancedObject scans for the first top-level {...} span using a
// brace counter, correctly skipping over braces that appear inside
// strings.
func firstBalancedObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

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
				return text[start : i+1], true
			}
		}
	}

	return "", false
}
