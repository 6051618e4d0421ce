package backend

import (
	"context"
	"errors"
	"fmt"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/valpere/peredoc/internal/postprocess"
)

// googleLanguages is the subset of Google Translate's coverage this
// pipeline cares about. Sanskrit support is limited but present.
var googleLanguages = []string{
	"en", "hi", "mr", "sa",
	"es", "fr", "de", "it", "pt", "ru", "ja", "ko", "zh",
	"ar", "nl", "pl", "tr", "uk", "bn", "ta", "te", "gu", "kn", "ml", "pa", "ur",
}

// GoogleBackend translates through the Google Cloud Translation API (v2).
type GoogleBackend struct {
	cfg Config
}

func NewGoogleBackend(cfg Config) *GoogleBackend {
	return &GoogleBackend{cfg: cfg}
}

func (b *GoogleBackend) Name() string { return "google" }

func (b *GoogleBackend) Languages() []string { return googleLanguages }

func (b *GoogleBackend) Translate(ctx context.Context, req Request) (string, error) {
	if err := checkPair(b.Name(), b.Languages(), req.SourceLang, req.TargetLang); err != nil {
		return "", err
	}

	targetTag, err := language.Parse(req.TargetLang)
	if err != nil {
		return "", newError(b.Name(), KindUnsupported, fmt.Errorf("invalid target language: %w", err))
	}

	var opts []option.ClientOption
	if b.cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(b.cfg.CredentialsFile))
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.timeout())
	defer cancel()

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return "", classifyTransport(b.Name(), fmt.Errorf("failed to create client: %w", err))
	}
	defer client.Close()

	var translations []translate.Translation
	if req.SourceLang == "" || req.SourceLang == "auto" {
		translations, err = client.Translate(ctx, []string{req.Text}, targetTag, nil)
	} else {
		sourceTag, perr := language.Parse(req.SourceLang)
		if perr != nil {
			return "", newError(b.Name(), KindUnsupported, fmt.Errorf("invalid source language: %w", perr))
		}
		translations, err = client.Translate(ctx, []string{req.Text}, targetTag, &translate.Options{
			Source: sourceTag,
		})
	}
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return "", classifyStatus(b.Name(), gerr.Code, gerr.Message)
		}
		return "", classifyTransport(b.Name(), err)
	}

	if len(translations) == 0 {
		return "", newError(b.Name(), KindNetwork, errors.New("no translation returned"))
	}

	return postprocess.Clean(translations[0].Text), nil
}
