package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedJSONRe    = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	fencedAnyRe     = regexp.MustCompile("(?s)```\\s*(.+?)\\s*```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)(\w+)(\s*:)`)
	controlCharsRe  = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseAIJSON decodes JSON produced by a language model into target. Model
// output is often not clean JSON, so the following candidates are tried in order:
// - the raw input
// - the body of a markdown code fence
// - the first balanced object or array in surrounding text
// - the input with common syntax slips repaired
func ParseAIJSON(input string, target interface{}) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("empty input")
	}

	candidates := []func(string) string{
		func(s string) string { return s },
		extractFromMarkdown,
		extractJSONFromText,
		cleanAndFixJSON,
	}
	for _, candidate := range candidates {
		raw := candidate(input)
		if raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(raw), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to parse JSON from input: %s", truncateString(input, 100))
}

// extractFromMarkdown returns the body of a ```json fence, or of a bare fence
// whose body looks like JSON.
func extractFromMarkdown(input string) string {
	if m := fencedJSONRe.FindStringSubmatch(input); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	if m := fencedAnyRe.FindStringSubmatch(input); len(m) > 1 {
		body := strings.TrimSpace(m[1])
		if strings.HasPrefix(body, "{") || strings.HasPrefix(body, "[") {
			return body
		}
	}
	return ""
}

// extractJSONFromText finds the first JSON object, then array, in surrounding text
func extractJSONFromText(input string) string {
	if start := strings.Index(input, "{"); start >= 0 {
		if s := extractBalancedBraces(input[start:], '{', '}'); s != "" {
			return s
		}
	}
	if start := strings.Index(input, "["); start >= 0 {
		if s := extractBalancedBraces(input[start:], '[', ']'); s != "" {
			return s
		}
	}
	return ""
}

// extractBalancedBraces returns the prefix of input up to the bracket that
// closes the first open bracket, skipping brackets inside string literals.
func extractBalancedBraces(input string, open, close rune) string {
	depth := 0
	inString := false
	escape := false
	start := 0

	for i, ch := range input {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			if depth == 0 {
				start = i
			}
			depth++
		case ch == close:
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}

// cleanAndFixJSON repairs trailing commas, unquoted keys, single quotes and
// stray control characters.
func cleanAndFixJSON(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "\ufeff")
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = bareKeyRe.ReplaceAllString(s, `$1"$2"$3`)
	s = fixSingleQuotes(s)
	return controlCharsRe.ReplaceAllString(s, "")
}

// fixSingleQuotes turns single quotes that delimit values into double quotes,
// leaving apostrophes inside words and double-quoted strings alone.
func fixSingleQuotes(input string) string {
	var b strings.Builder
	inDouble := false
	escape := false
	var prev rune

	for i, ch := range input {
		out := ch
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inDouble = !inDouble
		case ch == '\'' && !inDouble:
			if i == 0 || strings.ContainsRune(":,[{", prev) || strings.ContainsRune(",}]:", nextRune(input, i+1)) {
				out = '"'
			}
		}
		b.WriteRune(out)
		if ch != ' ' {
			prev = ch
		}
	}
	return b.String()
}

func nextRune(s string, from int) rune {
	for _, r := range s[from:] {
		if r != ' ' {
			return r
		}
	}
	return 0
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// ValidateJSON checks if a string is valid JSON
func ValidateJSON(input string) bool {
	var js interface{}
	return json.Unmarshal([]byte(input), &js) == nil
}
