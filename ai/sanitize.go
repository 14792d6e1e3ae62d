package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// SanitizeRule is one textual repair applied to model output before parsing
type SanitizeRule struct {
	Name  string
	Apply func(string) string
}

var (
	bareNullToken     = regexp.MustCompile(`\b(null|None|NaN|nan|undefined)\b`)
	bareTrueToken     = regexp.MustCompile(`\bTrue\b`)
	bareFalseToken    = regexp.MustCompile(`\bFalse\b`)
	trailingComma     = regexp.MustCompile(`,(\s*[}\]])`)
	placeholderValues = regexp.MustCompile(`(:\s*|\[\s*|,\s*)"\s*(?i:n/a|na|none|null|nan|undefined|-|\?)\s*"`)
)

// SanitizeRules is the ordered list applied by SanitizeModelJSON
var SanitizeRules = []SanitizeRule{
	{Name: "strip_code_fences", Apply: stripCodeFences},
	{Name: "extract_object", Apply: extractObject},
	{Name: "smart_quotes", Apply: straightenQuotes},
	{Name: "single_quotes", Apply: singleToDoubleQuotes},
	{Name: "bare_tokens", Apply: replaceBareTokens},
	{Name: "placeholder_values", Apply: func(s string) string { return placeholderValues.ReplaceAllString(s, `$1""`) }},
	{Name: "trailing_commas", Apply: func(s string) string { return mapOutsideStrings(s, removeTrailingCommas) }},
}

// SanitizeModelJSON repairs near-JSON model output with SanitizeRules
func SanitizeModelJSON(content string) string {
	for _, rule := range SanitizeRules {
		content = rule.Apply(content)
	}
	return content
}

// ParseModelJSON sanitizes content and decodes it as a JSON object
func ParseModelJSON(content string) (map[string]any, error) {
	cleaned := SanitizeModelJSON(content)
	var out map[string]any
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("decode model output: not a JSON object")
	}
	return out, nil
}

func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```JSON")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	return strings.TrimSpace(content)
}

// extractObject drops chatter before the first { and after the last }
func extractObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return content
	}
	return content[start : end+1]
}

func straightenQuotes(content string) string {
	return strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`, "«", `"`, "»", `"`,
		"‘", "'", "’", "'",
	).Replace(content)
}

// singleToDoubleQuotes handles Python dict reprs that carry no double quotes
func singleToDoubleQuotes(content string) string {
	if strings.Contains(content, `"`) || !strings.Contains(content, "'") {
		return content
	}
	return strings.ReplaceAll(content, "'", `"`)
}

func replaceBareTokens(content string) string {
	return mapOutsideStrings(content, func(seg string) string {
		seg = bareNullToken.ReplaceAllString(seg, `""`)
		seg = bareTrueToken.ReplaceAllString(seg, "true")
		return bareFalseToken.ReplaceAllString(seg, "false")
	})
}

func removeTrailingCommas(seg string) string {
	return trailingComma.ReplaceAllString(seg, "$1")
}

// mapOutsideStrings applies fn to every run of text outside JSON string
// literals, copying string literals verbatim.
func mapOutsideStrings(content string, fn func(string) string) string {
	var out, seg strings.Builder
	inString := false
	escaped := false
	for _, r := range content {
		if inString {
			out.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		if r == '"' {
			out.WriteString(fn(seg.String()))
			seg.Reset()
			out.WriteRune(r)
			inString = true
			continue
		}
		seg.WriteRune(r)
	}
	out.WriteString(fn(seg.String()))
	return out.String()
}
