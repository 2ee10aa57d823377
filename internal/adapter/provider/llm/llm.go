// Package llm adapts remote text-generation APIs to a single Completer
// interface used by the lookup services.
package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/heartmarshall/lexicon/internal/domain"
)

// Request is one chat-style completion. System messages are sent in order
// before the user Prompt. A nil Temperature leaves the provider default.
type Request struct {
	System      []string
	Prompt      string
	Temperature *float32
	MaxTokens   int
}

// Completer returns the text of a single completion.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrEmptyResponse is wrapped in a RemoteError when the provider answers
// without any text.
var ErrEmptyResponse = errors.New("empty response")

const defaultMaxTokens = 2048

// Temperature is a helper for building requests.
func Temperature(t float32) *float32 { return &t }

func remoteErr(provider string, err error) error {
	return &domain.RemoteError{Provider: provider, Err: err}
}

func nonEmpty(provider, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", remoteErr(provider, ErrEmptyResponse)
	}
	return text, nil
}

func maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return defaultMaxTokens
}

// Disabled is used by commands that never need the model, such as export.
// Every call fails with Err.
type Disabled struct {
	Provider string
	Err      error
}

func (d Disabled) Complete(context.Context, Request) (string, error) {
	return "", remoteErr(d.Provider, d.Err)
}
