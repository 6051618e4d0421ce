/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/valpere/peredoc/internal"
	"github.com/valpere/peredoc/internal/chunker"
	"github.com/valpere/peredoc/internal/detector"
	"github.com/valpere/peredoc/internal/extractor"
	"github.com/valpere/peredoc/internal/orchestrator"
	"github.com/valpere/peredoc/internal/packager"
	"github.com/valpere/peredoc/internal/store"
)

var (
	inputFile  string
	outputFile string
	sourceLang string
	targetLang string
	outFormat  string

	backendNames []string
	chunkSize    int
	concurrency  int
	maxRetries   int
	callTimeout  time.Duration
	retryDelay   time.Duration
	ratePerSec   float64
	noValidate   bool

	credentials   string
	azureKey      string
	azureRegion   string
	libreURL      string
	libreKey      string
	mymemoryEmail string

	dbPath string
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate a document through the backend chain",
	Long: `Translate a document (PDF, DOCX, TXT, Markdown) to the target language.

The text is split into sentence-aligned chunks of at most --chunk-size
characters and each chunk is translated independently. Backends are tried
in rank order with automatic fallback:

  - google      Google Cloud Translation (requires credentials)
  - microsoft   Azure Translator (requires --azure-key)
  - libre       LibreTranslate (self-hosted or libretranslate.com)
  - mymemory    MyMemory (free, daily quota)

Chunks that fail on every backend keep their original text in the output
and are reported as a warning, so content is never dropped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		// Config file and env values apply unless the flag was given explicitly.
		if !cmd.Flags().Changed("backends") {
			backendNames = viper.GetStringSlice("backend_order")
		}
		if !cmd.Flags().Changed("chunk-size") {
			chunkSize = viper.GetInt("max_chunk_size")
		}
		if !cmd.Flags().Changed("concurrency") {
			concurrency = viper.GetInt("concurrency")
		}
		if !cmd.Flags().Changed("max-retries") {
			maxRetries = viper.GetInt("max_retries")
		}

		data, err := os.ReadFile(inputFile)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}

		doc, err := extractor.Extract(data, filepath.Ext(inputFile))
		if err != nil {
			return fmt.Errorf("extraction failed: %w", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		// Auto-detect source language when not specified.
		if sourceLang == "" || sourceLang == "auto" {
			det := detector.New()
			detected, err := det.Detect(doc.Text)
			if err != nil {
				return fmt.Errorf("source language required: %w", err)
			}
			sourceLang = detected
			fmt.Fprintf(os.Stderr, "Detected source language: %s\n", sourceLang)
		}

		if sourceLang == targetLang {
			fmt.Fprintf(os.Stderr, "Source and target language are the same, copying text\n")
			return writeOutput(doc.Text, sourceLang)
		}

		chunks := chunker.Split(doc.Text, chunkSize)

		backendList, err := buildBackends(backendNames, callTimeout, credentials, azureKey, azureRegion, libreURL, libreKey, mymemoryEmail)
		if err != nil {
			return err
		}

		orch := orchestrator.New(backendList, orchestrator.Config{
			Timeout:        callTimeout,
			MaxRetries:     maxRetries,
			RetryDelay:     retryDelay,
			Concurrency:    concurrency,
			RatePerBackend: rate.Limit(ratePerSec),
			SkipValidation: noValidate,
			Logger:         newLogger(),
		})

		job := orchestrator.NewJob(sourceLang, targetLang, chunks)
		res, err := orch.Translate(ctx, job)
		if err != nil && !errors.Is(err, orchestrator.ErrAllChunksFailed) {
			return fmt.Errorf("translation aborted: %w", err)
		}

		if dbPath != "" {
			if serr := saveJob(ctx, job, res); serr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to record job: %v\n", serr)
			}
		}

		if res.Status == orchestrator.StatusFailed {
			return fmt.Errorf("translation failed: every chunk failed on every backend")
		}

		if len(res.FailedChunks) > 0 {
			fmt.Fprintf(os.Stderr, "Warning: %d of %d chunks failed (indices %v); original text kept for those spans\n",
				len(res.FailedChunks), len(job.Chunks), res.FailedChunks)
		}

		if err := writeOutput(res.Text, sourceLang); err != nil {
			return err
		}

		fmt.Printf("Translated %s to %s (%s, %d chunks)\n", sourceLang, targetLang, res.Status, len(job.Chunks))
		return nil
	},
}

// writeOutput packages the final text as TXT or PDF based on --format or the
// output file extension.
func writeOutput(text, srcLang string) error {
	format := outFormat
	if format == "" {
		if strings.EqualFold(filepath.Ext(outputFile), ".pdf") {
			format = "pdf"
		} else {
			format = "txt"
		}
	}

	if dir := filepath.Dir(outputFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	switch format {
	case "pdf":
		data, err := packager.RenderPDF(text, filepath.Base(inputFile), srcLang, targetLang)
		if err != nil {
			return err
		}
		return os.WriteFile(outputFile, data, 0644)
	case "txt":
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		return packager.WriteText(f, text)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// saveJob records job diagnostics when --db is given.
func saveJob(ctx context.Context, job *orchestrator.Job, res *orchestrator.Result) error {
	db, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveJob(ctx, internal.JobRecord{
		ID:           job.ID,
		InputFile:    filepath.Base(inputFile),
		SourceLang:   job.SourceLang,
		TargetLang:   job.TargetLang,
		Status:       res.Status.String(),
		ChunkCount:   len(job.Chunks),
		FailedChunks: len(res.FailedChunks),
		CreatedAt:    time.Now(),
	}); err != nil {
		return err
	}

	records := make([]internal.ChunkRecord, 0, len(res.ChunkResults))
	for _, cr := range res.ChunkResults {
		rec := internal.ChunkRecord{
			JobID:     job.ID,
			Index:     cr.Index,
			Backend:   cr.Backend,
			Attempts:  cr.Attempts,
			LatencyMs: int(cr.Elapsed.Milliseconds()),
		}
		if cr.Err != nil {
			rec.Error = cr.Err.Error()
		}
		records = append(records, rec)
	}
	return db.SaveChunkResults(ctx, job.ID, records)
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input document (required)")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (required)")
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", "auto", "Source language code")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language code (required)")
	translateCmd.Flags().StringVar(&outFormat, "format", "", "Output format: txt or pdf (default from output extension)")

	translateCmd.Flags().StringSliceVar(&backendNames, "backends", []string{"google", "microsoft", "libre", "mymemory"}, "Backends in fallback order")
	translateCmd.Flags().IntVar(&chunkSize, "chunk-size", chunker.DefaultMaxChars, "Maximum chunk size in characters")
	translateCmd.Flags().IntVar(&concurrency, "concurrency", 4, "Concurrent chunk translations")
	translateCmd.Flags().IntVar(&maxRetries, "max-retries", 1, "Retries per backend on rate limit or timeout")
	translateCmd.Flags().DurationVar(&callTimeout, "timeout", 30*time.Second, "Per-backend-call timeout")
	translateCmd.Flags().DurationVar(&retryDelay, "retry-delay", 250*time.Millisecond, "Backoff before retrying the same backend")
	translateCmd.Flags().Float64Var(&ratePerSec, "rate", 0, "Max requests per second per backend (0 = unlimited)")
	translateCmd.Flags().BoolVar(&noValidate, "no-validate", false, "Skip target-language validation of results")

	translateCmd.Flags().StringVarP(&credentials, "credentials", "c", "", "Path to Google Cloud credentials")
	translateCmd.Flags().StringVar(&azureKey, "azure-key", "", "Azure Translator API key")
	translateCmd.Flags().StringVar(&azureRegion, "azure-region", "", "Azure Translator region")
	translateCmd.Flags().StringVar(&libreURL, "libre-url", "", "LibreTranslate base URL")
	translateCmd.Flags().StringVar(&libreKey, "libre-key", "", "LibreTranslate API key")
	translateCmd.Flags().StringVar(&mymemoryEmail, "mymemory-email", "", "MyMemory email (for higher limits)")

	translateCmd.Flags().StringVar(&dbPath, "db", "", "SQLite path for job history (disabled when empty)")

	translateCmd.MarkFlagRequired("input")
	translateCmd.MarkFlagRequired("output")
	translateCmd.MarkFlagRequired("target")
}
