package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/valpere/peredoc/internal/postprocess"
)

const defaultMyMemoryBaseURL = "https://api.mymemory.translated.net"

var mymemoryLanguages = []string{
	"en", "hi", "mr", "sa",
	"es", "fr", "de", "it", "pt", "ru", "ja", "ko", "zh",
	"ar", "nl", "pl", "tr", "sv", "da", "fi", "el", "he",
	"th", "vi", "id", "ms", "cs", "hu", "ro", "uk", "bg", "ca",
}

// MyMemoryBackend translates through the free MyMemory API. Passing an
// e-mail address in Config.Email raises the daily quota.
type MyMemoryBackend struct {
	cfg    Config
	client *http.Client
}

func NewMyMemoryBackend(cfg Config) *MyMemoryBackend {
	return &MyMemoryBackend{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.timeout()},
	}
}

func (b *MyMemoryBackend) Name() string { return "mymemory" }

func (b *MyMemoryBackend) Languages() []string { return mymemoryLanguages }

func (b *MyMemoryBackend) Translate(ctx context.Context, req Request) (string, error) {
	if err := checkPair(b.Name(), b.Languages(), req.SourceLang, req.TargetLang); err != nil {
		return "", err
	}

	base := b.cfg.BaseURL
	if base == "" {
		base = defaultMyMemoryBaseURL
	}

	// MyMemory has no auto-detection; default the source to English the
	// way the original pipeline did.
	source := req.SourceLang
	if source == "" || source == "auto" {
		source = "en"
	}

	params := url.Values{}
	params.Set("q", req.Text)
	params.Set("langpair", fmt.Sprintf("%s|%s", source, req.TargetLang))
	if b.cfg.Email != "" {
		params.Set("de", b.cfg.Email)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/get?"+params.Encode(), nil)
	if err != nil {
		return "", newError(b.Name(), KindNetwork, fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return "", classifyTransport(b.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(b.Name(), resp.StatusCode, "")
	}

	var mymemResp struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
		ResponseStatus  any    `json:"responseStatus"`
		ResponseDetails string `json:"responseDetails"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&mymemResp); err != nil {
		return "", newError(b.Name(), KindNetwork, fmt.Errorf("failed to decode response: %w", err))
	}

	// MyMemory reports quota and pair errors inside a 200 response.
	if status := asInt(mymemResp.ResponseStatus); status != 200 {
		detail := mymemResp.ResponseDetails
		if status == 429 || strings.Contains(strings.ToUpper(detail), "QUOTA") {
			return "", newError(b.Name(), KindRateLimited, fmt.Errorf("API error: %s (%d)", detail, status))
		}
		if strings.Contains(strings.ToUpper(detail), "LANGUAGE PAIR") {
			return "", newError(b.Name(), KindUnsupported, fmt.Errorf("API error: %s", detail))
		}
		return "", newError(b.Name(), KindNetwork, fmt.Errorf("API error: %s (%d)", detail, status))
	}

	if mymemResp.ResponseData.TranslatedText == "" {
		return "", newError(b.Name(), KindNetwork, errors.New("empty translation response"))
	}

	return postprocess.Clean(mymemResp.ResponseData.TranslatedText), nil
}

// asInt tolerates MyMemory returning responseStatus as either a number or a
// quoted string.
func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		var i int
		fmt.Sscanf(n, "%d", &i)
		return i
	default:
		return 0
	}
}
