package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/valpere/peredoc/internal/postprocess"
)

const defaultMicrosoftBaseURL = "https://api.cognitive.microsofttranslator.com"

var microsoftLanguages = []string{
	"en", "hi", "mr", "sa",
	"es", "fr", "de", "it", "pt", "ru", "ja", "ko", "zh",
	"ar", "nl", "pl", "tr", "uk", "bn", "ta", "te", "gu", "kn", "ml", "pa", "ur",
}

// MicrosoftBackend translates through the Azure Translator REST API (v3.0).
type MicrosoftBackend struct {
	cfg    Config
	client *http.Client
}

func NewMicrosoftBackend(cfg Config) *MicrosoftBackend {
	return &MicrosoftBackend{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.timeout()},
	}
}

func (b *MicrosoftBackend) Name() string { return "microsoft" }

func (b *MicrosoftBackend) Languages() []string { return microsoftLanguages }

func (b *MicrosoftBackend) Translate(ctx context.Context, req Request) (string, error) {
	if err := checkPair(b.Name(), b.Languages(), req.SourceLang, req.TargetLang); err != nil {
		return "", err
	}
	if b.cfg.APIKey == "" {
		return "", newError(b.Name(), KindNetwork, errors.New("Azure Translator API key required"))
	}

	base := b.cfg.BaseURL
	if base == "" {
		base = defaultMicrosoftBaseURL
	}

	params := url.Values{}
	params.Set("api-version", "3.0")
	params.Set("to", req.TargetLang)
	if req.SourceLang != "" && req.SourceLang != "auto" {
		params.Set("from", req.SourceLang)
	}

	body, err := json.Marshal([]map[string]string{{"Text": req.Text}})
	if err != nil {
		return "", newError(b.Name(), KindNetwork, fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/translate?"+params.Encode(), bytes.NewReader(body))
	if err != nil {
		return "", newError(b.Name(), KindNetwork, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", b.cfg.APIKey)
	if b.cfg.Region != "" {
		httpReq.Header.Set("Ocp-Apim-Subscription-Region", b.cfg.Region)
	}

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return "", classifyTransport(b.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", classifyStatus(b.Name(), resp.StatusCode, string(detail))
	}

	var msResp []struct {
		Translations []struct {
			Text string `json:"text"`
			To   string `json:"to"`
		} `json:"translations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&msResp); err != nil {
		return "", newError(b.Name(), KindNetwork, fmt.Errorf("failed to decode response: %w", err))
	}

	if len(msResp) == 0 || len(msResp[0].Translations) == 0 || msResp[0].Translations[0].Text == "" {
		return "", newError(b.Name(), KindNetwork, errors.New("empty translation response"))
	}

	return postprocess.Clean(msResp[0].Translations[0].Text), nil
}
