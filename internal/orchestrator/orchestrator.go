// Package orchestrator drives chunked translation across an ordered chain of
// backends. Chunks are translated concurrently in a bounded worker pool;
// each chunk walks the backend chain with per-backend retry, and the final
// text is reassembled strictly in chunk index order.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/valpere/peredoc/internal/backend"
	"github.com/valpere/peredoc/internal/chunker"
	"github.com/valpere/peredoc/internal/validator"
)

// ErrAllChunksFailed is returned when every chunk exhausted every backend.
// It is the only error that fails a job outright; individual chunk failures
// are recorded in the Result instead.
var ErrAllChunksFailed = errors.New("all chunks failed on all backends")

// Config tunes one Orchestrator. Zero values get sensible defaults.
type Config struct {
	// Timeout bounds a single backend call.
	Timeout time.Duration
	// MaxRetries is the number of extra attempts against the SAME backend
	// after a retryable failure (rate limit or timeout).
	MaxRetries int
	// RetryDelay is the pause before each retry of the same backend.
	RetryDelay time.Duration
	// Concurrency bounds the number of chunks translated in parallel.
	Concurrency int
	// RatePerBackend, when non-zero, paces calls to each backend.
	RatePerBackend rate.Limit
	// SkipValidation disables target-language validation of chunk results.
	SkipValidation bool
	// Logger receives per-chunk diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Status is the job-level state.
type Status int

const (
	StatusRunning Status = iota
	StatusSucceeded
	StatusPartial
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusPartial:
		return "partially_succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Job aggregates everything one translation request needs. It is owned by
// the Orchestrator for the duration of one Translate call and must not be
// reused afterwards.
type Job struct {
	ID         string
	SourceLang string
	TargetLang string
	Chunks     []chunker.Chunk
}

// NewJob builds a Job over pre-chunked text.
func NewJob(sourceLang, targetLang string, chunks []chunker.Chunk) *Job {
	return &Job{
		ID:         uuid.New().String(),
		SourceLang: sourceLang,
		TargetLang: targetLang,
		Chunks:     chunks,
	}
}

// ChunkResult is the per-chunk outcome, kept for diagnostics. Err is nil
// for translated chunks.
type ChunkResult struct {
	Index    int
	Text     string
	Backend  string
	Attempts int
	Elapsed  time.Duration
	Err      error
}

// Result is the output boundary of a job.
type Result struct {
	Status       Status
	Text         string
	FailedChunks []int
	BackendUsage map[int]string
	ChunkResults []ChunkResult
}

type Orchestrator struct {
	backends  []backend.Backend
	config    Config
	validator *validator.Validator
	logger    *slog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates an Orchestrator over backends in fallback rank order: the
// first backend is tried first for every chunk.
func New(backends []backend.Backend, config Config) *Orchestrator {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 250 * time.Millisecond
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	o := &Orchestrator{
		backends: backends,
		config:   config,
		logger:   logger,
		limiters: make(map[string]*rate.Limiter),
	}
	if !config.SkipValidation {
		o.validator = validator.New()
	}
	return o
}

// Translate runs the job to completion. One chunk failing never aborts the
// job: its original text is substituted in the output and its index is
// reported in Result.FailedChunks. The returned error is non-nil only when
// the context was cancelled or every chunk failed.
func (o *Orchestrator) Translate(ctx context.Context, job *Job) (*Result, error) {
	if len(o.backends) == 0 {
		return nil, errors.New("no backends configured")
	}

	// Zero chunks is an empty document, not an error.
	if len(job.Chunks) == 0 {
		return &Result{
			Status:       StatusSucceeded,
			Text:         "",
			BackendUsage: map[int]string{},
		}, nil
	}

	results := make([]ChunkResult, len(job.Chunks))

	sem := make(chan struct{}, o.config.Concurrency)
	var wg sync.WaitGroup

dispatch:
	for i := range job.Chunks {
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = o.translateChunk(ctx, job, &job.Chunks[i])
		}(i)
	}
	wg.Wait()

	// A cancelled job discards everything: no partially-cancelled chunk
	// result may reach the reassembled output.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("job %s cancelled: %w", job.ID, err)
	}

	res := o.assemble(job, results)
	if res.Status == StatusFailed {
		return res, ErrAllChunksFailed
	}
	return res, nil
}

// translateChunk walks the backend chain for one chunk. Retryable failures
// (rate limit, timeout) retry the same backend up to MaxRetries times with
// a RetryDelay pause; network errors and unsupported pairs move to the next
// backend immediately.
func (o *Orchestrator) translateChunk(ctx context.Context, job *Job, chunk *chunker.Chunk) ChunkResult {
	start := time.Now()
	attempts := 0
	var lastErr error

	req := backend.Request{
		Text:       chunk.Text,
		SourceLang: job.SourceLang,
		TargetLang: job.TargetLang,
	}

	for _, b := range o.backends {
	attempt:
		for try := 0; try <= o.config.MaxRetries; try++ {
			if err := ctx.Err(); err != nil {
				lastErr = err
				chunk.Status = chunker.StatusFailed
				return ChunkResult{Index: chunk.Index, Attempts: attempts, Elapsed: time.Since(start), Err: lastErr}
			}
			if err := o.waitForSlot(ctx, b.Name()); err != nil {
				lastErr = err
				continue
			}

			attempts++
			callCtx, cancel := context.WithTimeout(ctx, o.config.Timeout)
			out, err := b.Translate(callCtx, req)
			cancel()

			if err == nil {
				if o.validator != nil {
					if ok, verr := o.validator.IsValid(out, job.TargetLang); !ok {
						o.logger.Warn("translation failed validation",
							"job", job.ID, "chunk", chunk.Index, "backend", b.Name(), "reason", verr)
						lastErr = fmt.Errorf("%s: result rejected: %w", b.Name(), verr)
						continue // validation failure consumes an attempt
					}
				}
				chunk.Status = chunker.StatusTranslated
				o.logger.Debug("chunk translated",
					"job", job.ID, "chunk", chunk.Index, "backend", b.Name(), "attempts", attempts)
				return ChunkResult{
					Index:    chunk.Index,
					Text:     out,
					Backend:  b.Name(),
					Attempts: attempts,
					Elapsed:  time.Since(start),
				}
			}

			lastErr = err
			o.logger.Debug("backend attempt failed",
				"job", job.ID, "chunk", chunk.Index, "backend", b.Name(), "error", err)

			var berr *backend.Error
			if !errors.As(err, &berr) {
				break attempt // unclassified failure, next backend
			}
			switch {
			case berr.Kind == backend.KindUnsupported:
				// Fail fast: an unsupported pair never improves on retry.
				break attempt
			case berr.Retryable() && try < o.config.MaxRetries:
				if !sleepCtx(ctx, o.config.RetryDelay) {
					chunk.Status = chunker.StatusFailed
					return ChunkResult{Index: chunk.Index, Attempts: attempts, Elapsed: time.Since(start), Err: ctx.Err()}
				}
			default:
				break attempt // network error or retry budget exhausted
			}
		}
	}

	chunk.Status = chunker.StatusFailed
	o.logger.Warn("chunk failed on all backends",
		"job", job.ID, "chunk", chunk.Index, "attempts", attempts, "last_error", lastErr)
	return ChunkResult{Index: chunk.Index, Attempts: attempts, Elapsed: time.Since(start), Err: lastErr}
}

// assemble concatenates chunk outputs strictly in index order. Failed chunks
// contribute their ORIGINAL source text so no content is ever dropped.
func (o *Orchestrator) assemble(job *Job, results []ChunkResult) *Result {
	var sb strings.Builder
	res := &Result{
		BackendUsage: make(map[int]string, len(results)),
		ChunkResults: results,
	}

	for i, cr := range results {
		if cr.Err != nil {
			res.FailedChunks = append(res.FailedChunks, i)
			sb.WriteString(job.Chunks[i].Text)
			continue
		}
		res.BackendUsage[i] = cr.Backend
		sb.WriteString(cr.Text)
	}

	switch len(res.FailedChunks) {
	case 0:
		res.Status = StatusSucceeded
	case len(results):
		res.Status = StatusFailed
	default:
		res.Status = StatusPartial
	}

	if res.Status == StatusFailed {
		// Total failure surfaces no output text.
		res.Text = ""
	} else {
		res.Text = sb.String()
	}

	return res
}

// waitForSlot paces calls per backend when a rate limit is configured.
func (o *Orchestrator) waitForSlot(ctx context.Context, name string) error {
	if o.config.RatePerBackend <= 0 {
		return nil
	}
	o.mu.Lock()
	lim, ok := o.limiters[name]
	if !ok {
		lim = rate.NewLimiter(o.config.RatePerBackend, 1)
		o.limiters[name] = lim
	}
	o.mu.Unlock()
	return lim.Wait(ctx)
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
