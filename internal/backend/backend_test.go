package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestErrorKind_String(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindRateLimited, "rate_limited"},
		{KindNetwork, "network_error"},
		{KindUnsupported, "unsupported"},
		{KindTimeout, "timeout"},
		{ErrorKind(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestError_Retryable(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want bool
	}{
		{KindRateLimited, true},
		{KindTimeout, true},
		{KindNetwork, false},
		{KindUnsupported, false},
	}
	for _, tt := range tests {
		e := &Error{Backend: "x", Kind: tt.kind}
		if e.Retryable() != tt.want {
			t.Errorf("Error{%s}.Retryable() = %v, want %v", tt.kind, e.Retryable(), tt.want)
		}
	}
}

func TestCheckPair(t *testing.T) {
	langs := []string{"en", "hi", "mr"}

	if err := checkPair("x", langs, "en", "hi"); err != nil {
		t.Errorf("unexpected error for supported pair: %v", err)
	}
	if err := checkPair("x", langs, "", "hi"); err != nil {
		t.Errorf("unexpected error for empty source: %v", err)
	}
	if err := checkPair("x", langs, "auto", "hi"); err != nil {
		t.Errorf("unexpected error for auto source: %v", err)
	}

	for _, tt := range []struct{ source, target string }{
		{"en", "xx"},
		{"xx", "hi"},
		{"en", ""},
	} {
		err := checkPair("x", langs, tt.source, tt.target)
		if err == nil {
			t.Errorf("expected error for pair %s→%s", tt.source, tt.target)
			continue
		}
		if err.Kind != KindUnsupported {
			t.Errorf("pair %s→%s: kind = %s, want unsupported", tt.source, tt.target, err.Kind)
		}
	}
}

// --- Libre ---

func TestLibreBackend_Translate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"translatedText": "Bonjour le monde"}`))
	}))
	defer srv.Close()

	b := NewLibreBackend(Config{BaseURL: srv.URL})
	got, err := b.Translate(context.Background(), Request{Text: "Hello world", SourceLang: "en", TargetLang: "fr"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Bonjour le monde" {
		t.Errorf("got %q", got)
	}
}

func TestLibreBackend_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "Slowdown"}`))
	}))
	defer srv.Close()

	b := NewLibreBackend(Config{BaseURL: srv.URL})
	_, err := b.Translate(context.Background(), Request{Text: "Hello", SourceLang: "en", TargetLang: "fr"})

	var berr *Error
	if !errors.As(err, &berr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if berr.Kind != KindRateLimited {
		t.Errorf("kind = %s, want rate_limited", berr.Kind)
	}
	if !berr.Retryable() {
		t.Error("rate limited error should be retryable")
	}
}

func TestLibreBackend_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	b := NewLibreBackend(Config{BaseURL: srv.URL})
	_, err := b.Translate(context.Background(), Request{Text: "Hello", SourceLang: "en", TargetLang: "fr"})

	var berr *Error
	if !errors.As(err, &berr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if berr.Kind != KindNetwork {
		t.Errorf("kind = %s, want network_error", berr.Kind)
	}
}

func TestLibreBackend_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"translatedText": "late"}`))
	}))
	defer srv.Close()

	b := NewLibreBackend(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	_, err := b.Translate(context.Background(), Request{Text: "Hello", SourceLang: "en", TargetLang: "fr"})

	var berr *Error
	if !errors.As(err, &berr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if berr.Kind != KindTimeout {
		t.Errorf("kind = %s, want timeout", berr.Kind)
	}
}

func TestLibreBackend_UnsupportedNoNetwork(t *testing.T) {
	// Sanskrit is not in the Libre model set; the adapter must fail fast
	// without touching the server.
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	b := NewLibreBackend(Config{BaseURL: srv.URL})
	_, err := b.Translate(context.Background(), Request{Text: "text", SourceLang: "en", TargetLang: "sa"})

	var berr *Error
	if !errors.As(err, &berr) || berr.Kind != KindUnsupported {
		t.Fatalf("expected unsupported error, got %v", err)
	}
	if called {
		t.Error("unsupported pair must not reach the network")
	}
}

// --- Microsoft ---

func TestMicrosoftBackend_Translate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "test-key" {
			t.Errorf("missing subscription key header, got %q", got)
		}
		if got := r.URL.Query().Get("to"); got != "hi" {
			t.Errorf("to = %q, want hi", got)
		}
		if got := r.URL.Query().Get("from"); got != "en" {
			t.Errorf("from = %q, want en", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"translations":[{"text":"सुप्रभात","to":"hi"}]}]`))
	}))
	defer srv.Close()

	b := NewMicrosoftBackend(Config{BaseURL: srv.URL, APIKey: "test-key"})
	got, err := b.Translate(context.Background(), Request{Text: "Good morning", SourceLang: "en", TargetLang: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "सुप्रभात" {
		t.Errorf("got %q", got)
	}
}

func TestMicrosoftBackend_NoAPIKey(t *testing.T) {
	b := NewMicrosoftBackend(Config{})
	_, err := b.Translate(context.Background(), Request{Text: "Hello", SourceLang: "en", TargetLang: "hi"})
	if err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestMicrosoftBackend_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	b := NewMicrosoftBackend(Config{BaseURL: srv.URL, APIKey: "k"})
	_, err := b.Translate(context.Background(), Request{Text: "Hello", SourceLang: "en", TargetLang: "hi"})

	var berr *Error
	if !errors.As(err, &berr) || berr.Kind != KindRateLimited {
		t.Fatalf("expected rate_limited error, got %v", err)
	}
}

// --- MyMemory ---

func TestMyMemoryBackend_Translate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("langpair"); got != "en|hi" {
			t.Errorf("langpair = %q, want en|hi", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"responseData":{"translatedText":"सुप्रभात"},"responseStatus":200}`))
	}))
	defer srv.Close()

	b := NewMyMemoryBackend(Config{BaseURL: srv.URL})
	got, err := b.Translate(context.Background(), Request{Text: "Good morning", SourceLang: "en", TargetLang: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "सुप्रभात" {
		t.Errorf("got %q", got)
	}
}

func TestMyMemoryBackend_QuotaInBody(t *testing.T) {
	// MyMemory reports quota exhaustion inside a 200 response.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"responseData":{"translatedText":""},"responseStatus":"429","responseDetails":"YOU USED ALL AVAILABLE FREE TRANSLATIONS FOR TODAY"}`))
	}))
	defer srv.Close()

	b := NewMyMemoryBackend(Config{BaseURL: srv.URL})
	_, err := b.Translate(context.Background(), Request{Text: "Hello", SourceLang: "en", TargetLang: "hi"})

	var berr *Error
	if !errors.As(err, &berr) || berr.Kind != KindRateLimited {
		t.Fatalf("expected rate_limited error, got %v", err)
	}
}

func TestMyMemoryBackend_InvalidPairInBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"responseData":{"translatedText":""},"responseStatus":403,"responseDetails":"INVALID LANGUAGE PAIR SPECIFIED"}`))
	}))
	defer srv.Close()

	b := NewMyMemoryBackend(Config{BaseURL: srv.URL})
	_, err := b.Translate(context.Background(), Request{Text: "Hello", SourceLang: "en", TargetLang: "hi"})

	var berr *Error
	if !errors.As(err, &berr) || berr.Kind != KindUnsupported {
		t.Fatalf("expected unsupported error, got %v", err)
	}
}

func TestMyMemoryBackend_EntityCleanup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"responseData":{"translatedText":"l&#39;heure &amp; demie"},"responseStatus":200}`))
	}))
	defer srv.Close()

	b := NewMyMemoryBackend(Config{BaseURL: srv.URL})
	got, err := b.Translate(context.Background(), Request{Text: "half past", SourceLang: "en", TargetLang: "fr"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "l'heure & demie" {
		t.Errorf("got %q", got)
	}
}

func TestBackendNames(t *testing.T) {
	tests := []struct {
		b    Backend
		want string
	}{
		{NewGoogleBackend(Config{}), "google"},
		{NewMicrosoftBackend(Config{}), "microsoft"},
		{NewLibreBackend(Config{}), "libre"},
		{NewMyMemoryBackend(Config{}), "mymemory"},
	}
	for _, tt := range tests {
		if got := tt.b.Name(); got != tt.want {
			t.Errorf("Name() = %q, want %q", got, tt.want)
		}
		if len(tt.b.Languages()) == 0 {
			t.Errorf("%s: expected non-empty language list", tt.want)
		}
	}
}
