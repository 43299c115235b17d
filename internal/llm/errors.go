package llm

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrRateLimit is a request the provider refused for quota reasons (429).
type ErrRateLimit struct {
	Provider string
	Err      error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("%s: rate limited: %v", e.Provider, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse is content that could not be read as the requested
// schema. Truncated is set when generation stopped at MaxTokens, which
// usually means the JSON was cut off.
type ErrInvalidResponse struct {
	Schema    string
	Content   json.RawMessage
	Truncated bool
	Err       error
}

func (e *ErrInvalidResponse) Error() string {
	what := "LLM response"
	if e.Schema != "" {
		what = e.Schema + " response"
	}
	if e.Truncated {
		return fmt.Sprintf("invalid %s (cut off at max tokens): %v", what, e.Err)
	}
	return fmt.Sprintf("invalid %s: %v", what, e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable is a provider that could not be reached or
// failed the request. Status is the HTTP status when there was one.
type ErrProviderUnavailable struct {
	Provider string
	Status   int
	Err      error
}

func (e *ErrProviderUnavailable) Error() string {
	name := e.Provider
	if name == "" {
		name = "LLM provider"
	}
	switch {
	case e.Err == nil:
		return name + " unavailable"
	case e.Status != 0:
		return fmt.Sprintf("%s unavailable (HTTP %d): %v", name, e.Status, e.Err)
	}
	return fmt.Sprintf("%s unavailable: %v", name, e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// Describe returns a one-line message for the learner. Errors that are not
// provider errors are described by their own text.
func Describe(err error) string {
	var (
		rl      *ErrRateLimit
		invalid *ErrInvalidResponse
		down    *ErrProviderUnavailable
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &rl):
		return "The " + rl.Provider + " API is rate limiting requests. Wait a moment and retry."
	case errors.As(err, &invalid) && invalid.Truncated:
		return "The model's answer was cut off. Retry, or raise the token limit."
	case errors.As(err, &invalid):
		return "The model returned an answer in the wrong shape. Retry."
	case errors.As(err, &down) && (down.Status == 401 || down.Status == 403):
		return "The " + down.Provider + " API key was rejected. Check it and restart."
	case errors.As(err, &down):
		return "The LLM provider could not be reached. Check the connection and retry."
	}
	return err.Error()
}

// statusError classifies a failed provider call by HTTP status.
func statusError(provider string, status int, err error) error {
	if status == 429 {
		return &ErrRateLimit{Provider: provider, Err: err}
	}
	return &ErrProviderUnavailable{Provider: provider, Status: status, Err: err}
}
