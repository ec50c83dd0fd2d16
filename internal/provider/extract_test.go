package provider

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractResultURL_Shapes(t *testing.T) {
	cases := []struct {
		name         string
		raw          string
		wantURL      string
		wantStrategy string
	}{
		{
			name:         "result urls array",
			raw:          `{"data": {"resultJson": {"resultUrls": ["https://cdn.example/a.mp4"]}}}`,
			wantURL:      "https://cdn.example/a.mp4",
			wantStrategy: "result_urls",
		},
		{
			name:         "video url field",
			raw:          `{"data": {"resultJson": {"videoUrl": "https://cdn.example/v.mp4"}}}`,
			wantURL:      "https://cdn.example/v.mp4",
			wantStrategy: "video_url",
		},
		{
			name:         "works resource",
			raw:          `{"data": {"works": [{"resource": {"resource": "https://cdn.example/w.png"}}]}}`,
			wantURL:      "https://cdn.example/w.png",
			wantStrategy: "works_resource",
		},
		{
			name:         "output url object",
			raw:          `{"output": {"url": "https://cdn.example/o.png"}}`,
			wantURL:      "https://cdn.example/o.png",
			wantStrategy: "output_url",
		},
		{
			name:         "output array",
			raw:          `{"output": ["https://cdn.example/first.png", "https://cdn.example/second.png"]}`,
			wantURL:      "https://cdn.example/first.png",
			wantStrategy: "output_first",
		},
		{
			name:         "flat url",
			raw:          `{"url": "https://cdn.example/flat.png"}`,
			wantURL:      "https://cdn.example/flat.png",
			wantStrategy: "flat_url",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			url, strategy, err := ExtractResultURL(json.RawMessage(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.wantURL, url)
			assert.Equal(t, tc.wantStrategy, strategy)
		})
	}
}

func TestExtractResultURL_DoubleEncodedResultJSON(t *testing.T) {
	// Some vendors return resultJson as a JSON string, not an object.
	raw := `{"data": {"resultJson": "{\"resultUrls\": [\"https://cdn.example/nested.mp4\"]}"}}`
	url, strategy, err := ExtractResultURL(json.RawMessage(raw))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/nested.mp4", url)
	assert.Equal(t, "result_urls", strategy)
}

func TestExtractResultURL_NoPayload(t *testing.T) {
	url, strategy, err := ExtractResultURL(json.RawMessage(`{"data": {"status": "success"}}`))
	require.NoError(t, err)
	assert.Empty(t, url)
	assert.Empty(t, strategy)
}

func TestExtractResultURL_InvalidJSON(t *testing.T) {
	_, _, err := ExtractResultURL(json.RawMessage(`not json`))
	require.Error(t, err)
}

func TestExtractFailReason(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"data failReason", `{"data": {"failReason": "content policy violation"}}`, "content policy violation"},
		{"data failMsg", `{"data": {"failMsg": "quota exceeded"}}`, "quota exceeded"},
		{"error message", `{"error": {"message": "internal error"}}`, "internal error"},
		{"top-level message", `{"message": "task expired"}`, "task expired"},
		{"none", `{"data": {"status": "fail"}}`, ""},
		{"invalid json", `garbage`, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractFailReason(json.RawMessage(tc.raw)))
		})
	}
}
