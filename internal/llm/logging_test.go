package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/focuslab/internal/store"
)

// recordingRepo captures appended events.
type recordingRepo struct {
	store.EventRepo
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(questionsJSON),
		Usage:   Usage{InputTokens: 12, OutputTokens: 7},
	})
	repo := &recordingRepo{}
	p := WithLogging(mock, repo, nil)

	ctx := WithPurpose(context.Background(), PurposeQuestionGen)
	_, err := p.Generate(ctx, questionsRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	ev := repo.events[0]
	if ev.Provider != "mock" || ev.Purpose != PurposeQuestionGen || !ev.Success {
		t.Errorf("event = %+v", ev)
	}
	if ev.InputTokens != 12 || ev.OutputTokens != 7 {
		t.Errorf("tokens = %d/%d, want 12/7", ev.InputTokens, ev.OutputTokens)
	}
	for _, want := range []string{"[system]", "[user]", "Level: B1", "[schema: comprehension-questions]"} {
		if !strings.Contains(ev.RequestBody, want) {
			t.Errorf("request body missing %q:\n%s", want, ev.RequestBody)
		}
	}
	if ev.ResponseBody != questionsJSON {
		t.Errorf("response body = %q", ev.ResponseBody)
	}
}

func TestLoggingProvider_RecordsFailure(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	repo := &recordingRepo{err: errors.New("db locked")}
	p := WithLogging(mock, repo, nil)

	_, err := p.Generate(context.Background(), Request{})
	var unavailable *ErrProviderUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected provider error to pass through, got %v", err)
	}
	if len(repo.events) != 1 || repo.events[0].Success || repo.events[0].ErrorMessage == "" {
		t.Errorf("events = %+v", repo.events)
	}
	if repo.events[0].Purpose != "unknown" {
		t.Errorf("purpose = %q, want unknown", repo.events[0].Purpose)
	}
}

// slowProvider blocks until its context is done.
type slowProvider struct{ MockProvider }

func (s *slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestTimeoutProvider(t *testing.T) {
	p := WithTimeout(&slowProvider{}, 10*time.Millisecond)
	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if p.Name() != "mock" {
		t.Errorf("Name() = %q", p.Name())
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock", Timeout: time.Second}, &recordingRepo{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" || p.Name() != "mock" {
		t.Errorf("provider = %s/%s", p.Name(), p.ModelID())
	}
	if _, err := NewProvider(context.Background(), Config{Provider: "nope"}, nil, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestResolve(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY", "FOCUSLAB_ANTHROPIC_API_KEY"} {
		t.Setenv(k, "")
	}

	t.Setenv("FOCUSLAB_LLM_PROVIDER", "anthropic")
	if _, ok := Resolve(); ok {
		t.Error("explicit provider without key should not resolve")
	}
	t.Setenv("FOCUSLAB_ANTHROPIC_API_KEY", "sk-test")
	cfg, ok := Resolve()
	if !ok || cfg.Provider != "anthropic" || cfg.Anthropic.APIKey != "sk-test" {
		t.Errorf("Resolve() = %+v, %v", cfg, ok)
	}

	t.Setenv("FOCUSLAB_LLM_PROVIDER", "")
	t.Setenv("OPENAI_API_KEY", "sk-oai")
	cfg, ok = Resolve()
	if !ok || cfg.Provider != "openai" {
		t.Errorf("discovered = %+v, %v", cfg, ok)
	}
}
