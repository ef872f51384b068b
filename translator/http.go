package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/spektr-org/seriesagg/engine"
)

// ============================================================================
// HTTP TRANSLATOR — POSTs label text to a translation service
// ============================================================================
// Lookup order: cache → service → source text. Successful translations are
// written to the cache; failures are logged and fall back to the input.
// ============================================================================

var (
	// ErrInvalidLanguage is returned for a target that is not a BCP 47 tag.
	ErrInvalidLanguage = errors.New("invalid target language")
	// ErrEmptyTranslation is returned when the service answers with no text.
	ErrEmptyTranslation = errors.New("translation service returned empty text")
)

// HTTPTranslator implements Translator against a JSON translation API.
type HTTPTranslator struct {
	config Config
	cache  Cache
	client *http.Client
}

// NewHTTP creates a translator. cache may be nil, in which case a private
// MemoryCache is used.
func NewHTTP(cfg Config, cache Cache) *HTTPTranslator {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Source == "" {
		cfg.Source = "auto"
	}
	if cache == nil {
		cache = NewMemoryCache()
	}

	return &HTTPTranslator{
		config: cfg,
		cache:  cache,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Cache returns the cache the translator reads and writes.
func (t *HTTPTranslator) Cache() Cache { return t.cache }

// Translate translates text into target.
func (t *HTTPTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	tag, err := language.Parse(target)
	if err != nil {
		return text, fmt.Errorf("%w %q: %v", ErrInvalidLanguage, target, err)
	}
	lang := tag.String()

	key := CacheKey(text, lang)
	if cached, ok := t.cache.Get(key); ok {
		return cached, nil
	}

	log.Printf("🔄 seriesagg translator: text=%q target=%s", truncate(text, 80), lang)

	translated, err := t.callService(ctx, text, lang)
	if err != nil {
		log.Printf("⚠️ seriesagg translator: falling back to source text: %v", err)
		return text, err
	}

	if err := t.cache.Set(key, translated); err != nil {
		log.Printf("⚠️ seriesagg translator: cache write failed: %v", err)
	}
	log.Printf("✅ seriesagg translator: %q → %q", truncate(text, 40), truncate(translated, 40))
	return translated, nil
}

// ============================================================================
// SERVICE CALL
// ============================================================================

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
	Error          *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (t *HTTPTranslator) callService(ctx context.Context, text, target string) (string, error) {
	jsonBody, err := json.Marshal(translateRequest{
		Text:   text,
		Source: t.config.Source,
		Target: target,
		APIKey: t.config.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.config.Endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation service returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var out translateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse translation response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("translation error %d: %s", out.Error.Code, out.Error.Message)
	}
	if strings.TrimSpace(out.TranslatedText) == "" {
		return "", ErrEmptyTranslation
	}
	return out.TranslatedText, nil
}

// ============================================================================
// CHART LABELS
// ============================================================================

// TranslateChart returns a copy of chart with bucket labels and dataset
// labels translated. Labels that fail to translate keep their source text.
// Data, colours and totals are shared with the input.
func TranslateChart(ctx context.Context, tr Translator, chart *engine.ChartData, target string) *engine.ChartData {
	if chart == nil {
		return nil
	}
	out := *chart

	out.Labels = make([]string, len(chart.Labels))
	for i, l := range chart.Labels {
		out.Labels[i], _ = tr.Translate(ctx, l, target)
	}

	out.Datasets = make([]engine.Dataset, len(chart.Datasets))
	for i, ds := range chart.Datasets {
		ds.Label, _ = tr.Translate(ctx, ds.Label, target)
		out.Datasets[i] = ds
	}
	return &out
}

// ============================================================================
// HELPERS
// ============================================================================

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
