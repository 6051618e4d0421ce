// Package backend provides a uniform interface over the translation
// providers the pipeline can call. Every adapter converts transport-level
// failures into a classified *Error so the orchestrator can decide between
// retrying the same backend and falling back to the next one.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// DefaultTimeout bounds a single translation request when the Config does
// not say otherwise.
const DefaultTimeout = 30 * time.Second

// Request is one translation call. SourceLang and TargetLang are lowercase
// ISO 639-1 codes; SourceLang may be empty when unknown.
type Request struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// Config carries per-backend configuration. Adapters hold no other state
// between calls.
type Config struct {
	CredentialsFile string        `mapstructure:"credentials" json:"credentials"`
	APIKey          string        `mapstructure:"api_key" json:"api_key"`
	Region          string        `mapstructure:"region" json:"region"`
	BaseURL         string        `mapstructure:"base_url" json:"base_url"`
	Email           string        `mapstructure:"email" json:"email"`
	Timeout         time.Duration `mapstructure:"timeout" json:"timeout"`
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// Backend is one translation provider.
type Backend interface {
	Name() string
	Translate(ctx context.Context, req Request) (string, error)
	Languages() []string
}

// ErrorKind classifies a failed backend call.
type ErrorKind int

const (
	// KindRateLimited means the provider throttled the request; retrying
	// the same backend after a short delay may succeed.
	KindRateLimited ErrorKind = iota
	// KindNetwork covers transport failures and provider-side errors;
	// the orchestrator moves to the next backend immediately.
	KindNetwork
	// KindUnsupported means the backend cannot handle the language pair;
	// it fails fast without consuming any retry budget.
	KindUnsupported
	// KindTimeout means the per-call deadline elapsed; it counts toward
	// the backend's retry budget like a rate limit.
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindNetwork:
		return "network_error"
	case KindUnsupported:
		return "unsupported"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is the only error type adapters return. Raw transport errors are
// never propagated.
type Error struct {
	Backend string
	Kind    ErrorKind
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Backend, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the same backend is worth another attempt.
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindTimeout
}

func newError(name string, kind ErrorKind, err error) *Error {
	return &Error{Backend: name, Kind: kind, Err: err}
}

// classifyTransport maps an http.Client error onto a backend Error.
func classifyTransport(name string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(name, KindTimeout, err)
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return newError(name, KindTimeout, err)
	}
	return newError(name, KindNetwork, err)
}

// classifyStatus maps a non-2xx HTTP status onto a backend Error.
func classifyStatus(name string, status int, detail string) *Error {
	err := fmt.Errorf("API returned status %d: %s", status, detail)
	if status == 429 {
		return newError(name, KindRateLimited, err)
	}
	return newError(name, KindNetwork, err)
}

// checkPair fails fast with an Unsupported error when the backend does not
// handle both languages. An empty source passes (the provider will detect).
func checkPair(name string, langs []string, source, target string) *Error {
	if target == "" {
		return newError(name, KindUnsupported, fmt.Errorf("target language is empty"))
	}
	if !contains(langs, target) {
		return newError(name, KindUnsupported, fmt.Errorf("target language %q not supported", target))
	}
	if source != "" && source != "auto" && !contains(langs, source) {
		return newError(name, KindUnsupported, fmt.Errorf("source language %q not supported", source))
	}
	return nil
}

func contains(langs []string, code string) bool {
	for _, l := range langs {
		if l == code {
			return true
		}
	}
	return false
}
