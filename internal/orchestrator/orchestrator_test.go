package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valpere/peredoc/internal/backend"
	"github.com/valpere/peredoc/internal/chunker"
)

type mockBackend struct {
	nameVal       string
	translateFunc func(ctx context.Context, req backend.Request) (string, error)
	callCount     atomic.Int32
}

func (m *mockBackend) Name() string { return m.nameVal }

func (m *mockBackend) Languages() []string { return []string{"en", "hi", "mr", "sa"} }

func (m *mockBackend) Translate(ctx context.Context, req backend.Request) (string, error) {
	m.callCount.Add(1)
	if m.translateFunc != nil {
		return m.translateFunc(ctx, req)
	}
	return "[" + m.nameVal + "]" + req.Text, nil
}

func kindErr(name string, kind backend.ErrorKind) error {
	return &backend.Error{Backend: name, Kind: kind, Err: errors.New("boom")}
}

func testConfig() Config {
	return Config{
		Timeout:        5 * time.Second,
		MaxRetries:     1,
		RetryDelay:     5 * time.Millisecond,
		Concurrency:    4,
		SkipValidation: true,
	}
}

func TestNew_Defaults(t *testing.T) {
	o := New([]backend.Backend{&mockBackend{nameVal: "m"}}, Config{SkipValidation: true})

	if o.config.Timeout <= 0 {
		t.Error("expected positive default timeout")
	}
	if o.config.RetryDelay <= 0 {
		t.Error("expected positive default retry delay")
	}
	if o.config.Concurrency != 4 {
		t.Errorf("expected default concurrency 4, got %d", o.config.Concurrency)
	}
	if o.validator != nil {
		t.Error("expected nil validator when SkipValidation is true")
	}
}

func TestTranslate_SingleChunk(t *testing.T) {
	primary := &mockBackend{
		nameVal: "primary",
		translateFunc: func(ctx context.Context, req backend.Request) (string, error) {
			return "सुप्रभात। आज आप कैसे हैं?", nil
		},
	}
	o := New([]backend.Backend{primary}, testConfig())

	chunks := chunker.Split("Good morning. How are you today?", 5000)
	job := NewJob("en", "hi", chunks)

	res, err := o.Translate(context.Background(), job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != StatusSucceeded {
		t.Errorf("status = %s, want succeeded", res.Status)
	}
	if res.Text != "सुप्रभात। आज आप कैसे हैं?" {
		t.Errorf("unexpected text %q", res.Text)
	}
	if primary.callCount.Load() != 1 {
		t.Errorf("expected 1 backend call, got %d", primary.callCount.Load())
	}
	if res.BackendUsage[0] != "primary" {
		t.Errorf("backend usage = %v", res.BackendUsage)
	}
	if job.Chunks[0].Status != chunker.StatusTranslated {
		t.Errorf("chunk status = %v, want translated", job.Chunks[0].Status)
	}
}

func TestTranslate_EmptyJob(t *testing.T) {
	o := New([]backend.Backend{&mockBackend{nameVal: "m"}}, testConfig())

	job := NewJob("en", "hi", chunker.Split("", 5000))
	res, err := o.Translate(context.Background(), job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != StatusSucceeded {
		t.Errorf("status = %s, want succeeded", res.Status)
	}
	if res.Text != "" {
		t.Errorf("expected empty output, got %q", res.Text)
	}
}

func TestTranslate_OrderingUnderConcurrency(t *testing.T) {
	// Earlier chunks take longer, so completion order is the reverse of
	// index order. Reassembly must still follow chunk indices.
	const n = 8
	slow := &mockBackend{nameVal: "slow"}
	slow.translateFunc = func(ctx context.Context, req backend.Request) (string, error) {
		var idx int
		fmt.Sscanf(req.Text, "part%d;", &idx)
		time.Sleep(time.Duration(n-idx) * 10 * time.Millisecond)
		return fmt.Sprintf("out%d;", idx), nil
	}

	var chunks []chunker.Chunk
	for i := 0; i < n; i++ {
		chunks = append(chunks, chunker.Chunk{Index: i, Text: fmt.Sprintf("part%d;", i)})
	}

	cfg := testConfig()
	cfg.Concurrency = n
	o := New([]backend.Backend{slow}, cfg)

	res, err := o.Translate(context.Background(), NewJob("en", "hi", chunks))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := ""
	for i := 0; i < n; i++ {
		want += fmt.Sprintf("out%d;", i)
	}
	if res.Text != want {
		t.Errorf("reassembly out of order:\n got %q\nwant %q", res.Text, want)
	}
}

func TestTranslate_FallbackOnRateLimit(t *testing.T) {
	primary := &mockBackend{
		nameVal: "primary",
		translateFunc: func(ctx context.Context, req backend.Request) (string, error) {
			return "", kindErr("primary", backend.KindRateLimited)
		},
	}
	secondary := &mockBackend{
		nameVal: "secondary",
		translateFunc: func(ctx context.Context, req backend.Request) (string, error) {
			return "translated", nil
		},
	}

	o := New([]backend.Backend{primary, secondary}, testConfig())

	chunks := chunker.Split("Hello there, friend.", 5000)
	job := NewJob("en", "hi", chunks)

	res, err := o.Translate(context.Background(), job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != StatusSucceeded {
		t.Errorf("status = %s, want succeeded", res.Status)
	}
	if res.BackendUsage[0] != "secondary" {
		t.Errorf("backend used = %q, want secondary", res.BackendUsage[0])
	}
	// MaxRetries=1 means 1 initial + 1 retry against primary before falling back.
	if got := primary.callCount.Load(); got != 2 {
		t.Errorf("primary calls = %d, want 2 (initial + retry)", got)
	}
	if got := secondary.callCount.Load(); got != 1 {
		t.Errorf("secondary calls = %d, want 1", got)
	}
	if res.ChunkResults[0].Attempts != 3 {
		t.Errorf("attempts = %d, want 3", res.ChunkResults[0].Attempts)
	}
}

func TestTranslate_NetworkErrorSkipsRetry(t *testing.T) {
	primary := &mockBackend{
		nameVal: "primary",
		translateFunc: func(ctx context.Context, req backend.Request) (string, error) {
			return "", kindErr("primary", backend.KindNetwork)
		},
	}
	secondary := &mockBackend{nameVal: "secondary"}

	o := New([]backend.Backend{primary, secondary}, testConfig())

	res, err := o.Translate(context.Background(), NewJob("en", "hi", chunker.Split("Hello.", 100)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != StatusSucceeded {
		t.Errorf("status = %s, want succeeded", res.Status)
	}
	// Network errors move to the next backend immediately, no retry.
	if got := primary.callCount.Load(); got != 1 {
		t.Errorf("primary calls = %d, want 1", got)
	}
}

func TestTranslate_UnsupportedSkipsRetry(t *testing.T) {
	primary := &mockBackend{
		nameVal: "primary",
		translateFunc: func(ctx context.Context, req backend.Request) (string, error) {
			return "", kindErr("primary", backend.KindUnsupported)
		},
	}
	secondary := &mockBackend{nameVal: "secondary"}

	o := New([]backend.Backend{primary, secondary}, testConfig())

	res, err := o.Translate(context.Background(), NewJob("en", "sa", chunker.Split("Hello.", 100)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != StatusSucceeded {
		t.Errorf("status = %s, want succeeded", res.Status)
	}
	if got := primary.callCount.Load(); got != 1 {
		t.Errorf("primary calls = %d, want 1 (unsupported fails fast)", got)
	}
}

func TestTranslate_PartialFailure(t *testing.T) {
	// The backend fails only for the marked chunk; its original text must
	// survive verbatim in the output.
	flaky := &mockBackend{nameVal: "flaky"}
	flaky.translateFunc = func(ctx context.Context, req backend.Request) (string, error) {
		if strings.Contains(req.Text, "poison") {
			return "", kindErr("flaky", backend.KindNetwork)
		}
		return "ok;", nil
	}

	chunks := []chunker.Chunk{
		{Index: 0, Text: "fine one. "},
		{Index: 1, Text: "the poison chunk. "},
		{Index: 2, Text: "fine two."},
	}

	o := New([]backend.Backend{flaky}, testConfig())
	job := NewJob("en", "hi", chunks)

	res, err := o.Translate(context.Background(), job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != StatusPartial {
		t.Errorf("status = %s, want partially_succeeded", res.Status)
	}
	if len(res.FailedChunks) != 1 || res.FailedChunks[0] != 1 {
		t.Errorf("failed chunks = %v, want [1]", res.FailedChunks)
	}
	if want := "ok;the poison chunk. ok;"; res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}
	if job.Chunks[1].Status != chunker.StatusFailed {
		t.Errorf("chunk 1 status = %v, want failed", job.Chunks[1].Status)
	}
	if _, ok := res.BackendUsage[1]; ok {
		t.Error("failed chunk must not appear in backend usage")
	}
}

func TestTranslate_AllChunksFailed(t *testing.T) {
	dead := &mockBackend{
		nameVal: "dead",
		translateFunc: func(ctx context.Context, req backend.Request) (string, error) {
			return "", kindErr("dead", backend.KindNetwork)
		},
	}

	o := New([]backend.Backend{dead}, testConfig())
	job := NewJob("en", "hi", chunker.Split("Only sentence here.", 100))

	res, err := o.Translate(context.Background(), job)
	if !errors.Is(err, ErrAllChunksFailed) {
		t.Fatalf("error = %v, want ErrAllChunksFailed", err)
	}
	if res.Status != StatusFailed {
		t.Errorf("status = %s, want failed", res.Status)
	}
	if res.Text != "" {
		t.Errorf("total failure must return no output text, got %q", res.Text)
	}
	if len(res.FailedChunks) != 1 {
		t.Errorf("failed chunks = %v", res.FailedChunks)
	}
}

func TestTranslate_Cancellation(t *testing.T) {
	slow := &mockBackend{
		nameVal: "slow",
		translateFunc: func(ctx context.Context, req backend.Request) (string, error) {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Second):
				return "done", nil
			}
		},
	}

	o := New([]backend.Backend{slow}, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := o.Translate(ctx, NewJob("en", "hi", chunker.Split("Some text here please.", 100)))
	if err == nil {
		t.Fatal("expected error for cancelled job")
	}
	if res != nil {
		t.Error("cancelled job must not produce a result")
	}
}

func TestTranslate_NoBackends(t *testing.T) {
	o := New(nil, testConfig())
	_, err := o.Translate(context.Background(), NewJob("en", "hi", chunker.Split("Hello.", 100)))
	if err == nil {
		t.Fatal("expected error with no backends")
	}
}

func TestNewJob(t *testing.T) {
	chunks := chunker.Split("One. Two. Three.", 100)
	job := NewJob("en", "hi", chunks)

	if job.ID == "" {
		t.Error("expected generated job ID")
	}
	if job.SourceLang != "en" || job.TargetLang != "hi" {
		t.Errorf("unexpected langs %s→%s", job.SourceLang, job.TargetLang)
	}
	if len(job.Chunks) != len(chunks) {
		t.Errorf("chunk count = %d, want %d", len(job.Chunks), len(chunks))
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusRunning, "running"},
		{StatusSucceeded, "succeeded"},
		{StatusPartial, "partially_succeeded"},
		{StatusFailed, "failed"},
		{Status(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
