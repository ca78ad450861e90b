// Package ollama talks to a locally served sequence-to-sequence model over
// the Ollama HTTP API and applies the summarization input policy: bounded
// input prefix, short-input sentinel, deterministic decoding.
package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/antonvlasov/documind/internal/infrastructure/resilience"
)

// ShortInputSentinel is returned without invoking the model when the
// truncated input is too short to summarize meaningfully.
const ShortInputSentinel = "Text too short to summarize."

const (
	maxInputRunes     = 3000
	minSummarizeRunes = 50
	maxSummaryTokens  = 130
	minSummaryTokens  = 30
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	exec       *resilience.Executor
}

func New(baseURL, model string, exec *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		exec:       exec,
	}
}

func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	input := truncateRunes(text, maxInputRunes)
	if utf8.RuneCountInString(strings.TrimSpace(input)) < minSummarizeRunes {
		return ShortInputSentinel, nil
	}

	reqBody := map[string]any{
		"model":  c.model,
		"prompt": buildSummaryPrompt(input, minSummaryTokens),
		"stream": false,
		"options": map[string]any{
			// Greedy decoding keeps identical input mapping to an
			// identical summary.
			"temperature": 0,
			"seed":        42,
			"num_predict": maxSummaryTokens,
		},
	}

	var response struct {
		Response string `json:"response"`
	}
	err := c.exec.Execute(ctx, "summarize", func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/generate", reqBody, &response, "summarize")
	}, classifySummarizerError)
	if err != nil {
		return "", wrapTemporaryIfNeeded("summarize", err)
	}

	return strings.TrimSpace(response.Response), nil
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
