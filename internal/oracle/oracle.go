// Package oracle provides the naming oracle: an external capability that
// proposes a replacement for a minified identifier given its surrounding
// source context. Implementations are slow, unreliable, and rate
// limited; failures are returned to the caller, which owns retry and
// checkpoint policy.
package oracle

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Renamer proposes a descriptive replacement name for an identifier
// based on the source context it appears in. Returning the original name
// unchanged is a valid answer.
type Renamer interface {
	ProposeName(ctx context.Context, identifier string, codeContext string) (string, error)
}

// Options selects and configures a Renamer variant. Provider is one of
// "gemini", "openai", or "ollama"; nothing is discovered dynamically.
type Options struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// New constructs the configured Renamer variant.
func New(ctx context.Context, opts Options) (Renamer, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "gemini"
	}

	switch provider {
	case "gemini":
		return NewGeminiRenamer(ctx, opts.APIKey, opts.Model)
	case "openai":
		return NewOpenAIRenamer(opts.APIKey, opts.Model, opts.BaseURL), nil
	case "ollama":
		return NewOllamaRenamer(opts.Model, opts.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported renamer provider: %s", opts.Provider)
	}
}

// Local reports whether the provider runs local inference. Local
// backends tolerate larger checkpoint intervals since they are not rate
// limited.
func Local(provider string) bool {
	return strings.ToLower(strings.TrimSpace(provider)) == "ollama"
}

// CheckpointInterval returns the default number of processed bindings
// between full checkpoint saves for a provider: small for remote,
// rate-limited APIs, larger for local inference.
func CheckpointInterval(provider string) int {
	if Local(provider) {
		return 10
	}
	return 2
}

// throttle spaces requests at least min apart. Remote providers use it
// as rate-limit courtesy; one in-flight request at a time is already
// guaranteed by the sequential orchestrator.
type throttle struct {
	mu   sync.Mutex
	min  time.Duration
	last time.Time
}

func (t *throttle) wait(ctx context.Context) error {
	if t == nil || t.min <= 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if elapsed := time.Since(t.last); elapsed < t.min {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.min - elapsed):
		}
	}
	// Stamp after any sleep so the next request is spaced min from this
	// one's actual dispatch, not from its arrival.
	t.last = time.Now()
	return nil
}
