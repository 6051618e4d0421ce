package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/valpere/peredoc/internal/postprocess"
)

const defaultLibreBaseURL = "https://libretranslate.com"

// libreLanguages mirrors the default LibreTranslate model set. Sanskrit is
// not available, so the adapter fails fast with Unsupported for "sa".
var libreLanguages = []string{
	"en", "hi",
	"es", "fr", "de", "it", "pt", "ru", "ja", "ko", "zh",
	"ar", "nl", "pl", "tr", "uk", "bn", "ur",
}

// LibreBackend translates through a LibreTranslate server.
type LibreBackend struct {
	cfg    Config
	client *http.Client
}

func NewLibreBackend(cfg Config) *LibreBackend {
	return &LibreBackend{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.timeout()},
	}
}

func (b *LibreBackend) Name() string { return "libre" }

func (b *LibreBackend) Languages() []string { return libreLanguages }

func (b *LibreBackend) Translate(ctx context.Context, req Request) (string, error) {
	if err := checkPair(b.Name(), b.Languages(), req.SourceLang, req.TargetLang); err != nil {
		return "", err
	}

	base := b.cfg.BaseURL
	if base == "" {
		base = defaultLibreBaseURL
	}

	source := req.SourceLang
	if source == "" {
		source = "auto"
	}

	payload := map[string]string{
		"q":      req.Text,
		"source": source,
		"target": req.TargetLang,
		"format": "text",
	}
	if b.cfg.APIKey != "" {
		payload["api_key"] = b.cfg.APIKey
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", newError(b.Name(), KindNetwork, fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", newError(b.Name(), KindNetwork, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return "", classifyTransport(b.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return "", classifyStatus(b.Name(), resp.StatusCode, apiErr.Error)
	}

	var libreResp struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&libreResp); err != nil {
		return "", newError(b.Name(), KindNetwork, fmt.Errorf("failed to decode response: %w", err))
	}

	if libreResp.TranslatedText == "" {
		return "", newError(b.Name(), KindNetwork, errors.New("empty translation response"))
	}

	return postprocess.Clean(libreResp.TranslatedText), nil
}
