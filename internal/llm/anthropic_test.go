package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{
		client: &client,
		model:  "claude-sonnet-4-20250514",
	}
}

// anthropicMessage answers with a single text block.
func anthropicMessage(text, stopReason string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"content":     []map[string]any{{"type": "text", "text": text}},
			"model":       "claude-sonnet-4-20250514",
			"stop_reason": stopReason,
			"usage":       map[string]any{"input_tokens": 320, "output_tokens": 140},
		})
	}
}

func anthropicError(status int, kind, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": kind, "message": message},
		})
	}
}

func TestAnthropicProvider_Questions(t *testing.T) {
	var body string
	reply := anthropicMessage("```json\n"+questionsJSON+"\n```", "end_turn")
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		reply(w, r)
	})

	resp, err := p.Generate(context.Background(), questionsRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != questionsJSON {
		t.Fatalf("content = %s", resp.Content)
	}
	if resp.Usage.InputTokens != 320 || resp.Usage.TotalTokens != 460 {
		t.Fatalf("usage = %+v", resp.Usage)
	}
	if resp.StopReason != StopEnd {
		t.Fatalf("expected stop reason %q, got %q", StopEnd, resp.StopReason)
	}
	for _, want := range []string{"reading comprehension questions", "supportingQuote", "correctIndex"} {
		if !strings.Contains(body, want) {
			t.Errorf("request body missing %q:\n%s", want, body)
		}
	}
	var sent struct {
		MaxTokens int `json:"max_tokens"`
	}
	if err := json.Unmarshal([]byte(body), &sent); err != nil || sent.MaxTokens != 2048 {
		t.Errorf("max_tokens = %d (%v)", sent.MaxTokens, err)
	}
}

func TestAnthropicProvider_SplitTextBlocks(t *testing.T) {
	half := len(summaryGradeJSON) / 2
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": summaryGradeJSON[:half]},
				{"type": "text", "text": summaryGradeJSON[half:]},
			},
			"model":       "claude-sonnet-4-20250514",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 1, "output_tokens": 1},
		})
	})

	resp, err := p.Generate(context.Background(), summaryGradeRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != summaryGradeJSON {
		t.Fatalf("content = %s", resp.Content)
	}
}

func TestAnthropicProvider_CutOffAtMaxTokens(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicMessage(questionsJSON[:80], "max_tokens"))

	_, err := p.Generate(context.Background(), questionsRequest())
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
	if !invalid.Truncated || invalid.Schema != "comprehension-questions" {
		t.Fatalf("invalid = %+v", invalid)
	}
	if !strings.Contains(Describe(err), "cut off") {
		t.Errorf("Describe() = %q", Describe(err))
	}
}

func TestAnthropicProvider_SchemaViolation(t *testing.T) {
	bad := strings.Replace(summaryGradeJSON, `"issueType":"grammar"`, `"issueType":"spelling"`, 1)
	p := newTestAnthropicProvider(t, anthropicMessage(bad, "end_turn"))

	_, err := p.Generate(context.Background(), summaryGradeRequest())
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
	if invalid.Truncated || invalid.Schema != "summary-grade" {
		t.Fatalf("invalid = %+v", invalid)
	}
}

func TestAnthropicProvider_RateLimit(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicError(http.StatusTooManyRequests, "rate_limit_error", "Rate limit exceeded"))

	_, err := p.Generate(context.Background(), questionsRequest())
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
	}
	if rl.Provider != "anthropic" {
		t.Errorf("Provider = %q", rl.Provider)
	}
	if !strings.Contains(Describe(err), "anthropic API is rate limiting") {
		t.Errorf("Describe() = %q", Describe(err))
	}
}

func TestAnthropicProvider_Unavailable(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		kind     string
		describe string
	}{
		{"server error", http.StatusInternalServerError, "api_error", "could not be reached"},
		{"bad key", http.StatusUnauthorized, "authentication_error", "key was rejected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestAnthropicProvider(t, anthropicError(tt.status, tt.kind, "nope"))

			_, err := p.Generate(context.Background(), summaryGradeRequest())
			var unavail *ErrProviderUnavailable
			if !errors.As(err, &unavail) {
				t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
			}
			if unavail.Provider != "anthropic" || unavail.Status != tt.status {
				t.Errorf("unavailable = %+v", unavail)
			}
			if !strings.Contains(Describe(err), tt.describe) {
				t.Errorf("Describe() = %q", Describe(err))
			}
		})
	}
}

func TestAnthropicProvider_ModelID(t *testing.T) {
	p := &AnthropicProvider{model: "claude-sonnet-4-20250514"}
	if p.ModelID() != "claude-sonnet-4-20250514" {
		t.Fatalf("expected 'claude-sonnet-4-20250514', got %q", p.ModelID())
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"claude-sonnet", "claude-sonnet-4-20250514"},
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-sonnet-4-20250514", "claude-sonnet-4-20250514"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, anthropicModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
