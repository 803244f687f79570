package triage

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_-]*[ \t]*\r?\n?")
	trailingFence = regexp.MustCompile("\r?\n?[ \t]*```$")
)

var resultSchema = jsonschema.MustCompileString("triage-result.json", resultSchemaJSON())

func resultSchemaJSON() string {
	categories := make([]string, len(Categories))
	for i, c := range Categories {
		categories[i] = string(c)
	}
	priorities := make([]string, len(Priorities))
	for i, p := range Priorities {
		priorities[i] = string(p)
	}
	schema := map[string]any{
		"$schema":  "https://json-schema.org/draft/2020-12/schema",
		"type":     "object",
		"required": []string{"category", "priority", "technicalSummary"},
		"properties": map[string]any{
			"category": map[string]any{"type": "string", "enum": categories},
			"priority": map[string]any{"type": "string", "enum": priorities},
			"technicalSummary": map[string]any{
				"type":      "string",
				"minLength": MinSummaryLength,
				"maxLength": MaxSummaryLength,
			},
		},
	}
	data, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// StripCodeFence removes a leading and trailing Markdown fence, with or
// without a language tag, plus surrounding whitespace.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ParseResult turns raw provider text into a validated Result.
func ParseResult(raw string) (Result, error) {
	text := StripCodeFence(raw)
	if !strings.HasPrefix(text, "{") || !strings.HasSuffix(text, "}") {
		return Result{}, fmt.Errorf("response is not a JSON object: %s", preview(text))
	}

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return Result{}, fmt.Errorf("failed to parse response JSON: %w", err)
	}
	if err := resultSchema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return Result{}, fmt.Errorf("response violates triage schema: %s", flattenValidation(verr))
		}
		return Result{}, fmt.Errorf("response violates triage schema: %w", err)
	}

	// Read the exact validated keys; a struct decode would also accept
	// case variants such as "Category" that the schema never checked.
	fields := doc.(map[string]any)
	return Result{
		Category:         Category(fields["category"].(string)),
		Priority:         Priority(fields["priority"].(string)),
		TechnicalSummary: fields["technicalSummary"].(string),
	}, nil
}

func flattenValidation(verr *jsonschema.ValidationError) string {
	var parts []string
	for _, e := range verr.BasicOutput().Errors {
		if e.KeywordLocation == "" || e.Error == "" {
			continue
		}
		loc := e.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		parts = append(parts, loc+": "+e.Error)
	}
	if len(parts) == 0 {
		return verr.Error()
	}
	return strings.Join(parts, "; ")
}

func preview(text string) string {
	if len(text) > 200 {
		return text[:200] + "..."
	}
	return text
}
