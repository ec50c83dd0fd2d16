package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// Provider task APIs are not perfectly uniform: the payload of a successful
// task hides behind different field names and nesting depending on vendor and
// API revision. Extraction runs a small ordered list of named JMESPath
// strategies against the raw response instead of scattering field probes
// through business logic.

// extractionStrategy names one known response shape.
type extractionStrategy struct {
	Name string
	Expr string
}

// resultURLStrategies cover the task-status shapes seen across image/video
// vendors, tried in order.
var resultURLStrategies = []extractionStrategy{
	{Name: "result_urls", Expr: "data.resultJson.resultUrls[0]"},
	{Name: "video_url", Expr: "data.resultJson.videoUrl"},
	{Name: "image_url", Expr: "data.resultJson.imageUrl"},
	{Name: "works_resource", Expr: "data.works[0].resource.resource"},
	{Name: "output_url", Expr: "output.url"},
	{Name: "output_first", Expr: "output[0]"},
	{Name: "flat_url", Expr: "url"},
}

// ExtractResultURL pulls the payload URL out of a successful task response.
// Returns the winning strategy name for logging. An empty result despite a
// success state means the provider "succeeded but no usable output".
func ExtractResultURL(raw json.RawMessage) (url, strategy string, err error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", "", fmt.Errorf("decode task response: %w", err)
	}

	// resultJson sometimes arrives as a JSON string rather than an object.
	doc = decodeNestedJSONStrings(doc)

	for _, s := range resultURLStrategies {
		v, searchErr := jmespath.Search(s.Expr, doc)
		if searchErr != nil || v == nil {
			continue
		}
		if u, ok := v.(string); ok && strings.TrimSpace(u) != "" {
			return u, s.Name, nil
		}
	}
	return "", "", nil
}

// resultJSONKeys are fields some vendors double-encode as JSON strings.
var resultJSONKeys = map[string]bool{
	"resultJson": true,
	"result":     true,
}

// decodeNestedJSONStrings walks the document and decodes string values that
// are themselves JSON objects, so the JMESPath strategies can reach into them.
func decodeNestedJSONStrings(doc any) any {
	m, ok := doc.(map[string]any)
	if !ok {
		return doc
	}
	for k, v := range m {
		switch val := v.(type) {
		case string:
			if resultJSONKeys[k] && looksLikeJSON(val) {
				var nested any
				if err := json.Unmarshal([]byte(val), &nested); err == nil {
					m[k] = nested
				}
			}
		case map[string]any:
			m[k] = decodeNestedJSONStrings(val)
		}
	}
	return m
}

func looksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

// failReasonStrategies locate a provider-declared failure message.
var failReasonStrategies = []extractionStrategy{
	{Name: "fail_reason", Expr: "data.failReason"},
	{Name: "fail_msg", Expr: "data.failMsg"},
	{Name: "error_message", Expr: "error.message"},
	{Name: "message", Expr: "message"},
}

// ExtractFailReason pulls the provider-declared failure reason, if any. The
// reason is surfaced verbatim in the unit's error detail.
func ExtractFailReason(raw json.RawMessage) string {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}
	for _, s := range failReasonStrategies {
		v, err := jmespath.Search(s.Expr, doc)
		if err != nil || v == nil {
			continue
		}
		if msg, ok := v.(string); ok && strings.TrimSpace(msg) != "" {
			return msg
		}
	}
	return ""
}
