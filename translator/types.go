package translator

import (
	"context"
)

// ============================================================================
// TRANSLATOR — label text → target language, through an injected cache
// ============================================================================
// The Translator is the ONLY component that calls an external service.
// It sees label strings (titles, axis values, KPI captions), never rows.
// Failures never surface to the caller as missing labels: the source text
// is returned unchanged.
// ============================================================================

// Translator translates display text into a target language.
type Translator interface {
	// Translate returns text in target. On any failure it returns text
	// itself together with the error, so callers can always render.
	Translate(ctx context.Context, text, target string) (string, error)
}

// Cache stores translations for the lifetime of the process (MemoryCache)
// or across runs (FileCache). Entries are never evicted.
// One Cache is constructed at startup and shared by reference.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// CacheKey is the cache key of text translated into target.
func CacheKey(text, target string) string {
	return text + "_" + target
}

// Config holds translator configuration.
type Config struct {
	APIKey   string // translation service API key
	Endpoint string // POST endpoint
	Source   string // source language, "auto" lets the service detect it
}

// DefaultEndpoint is used when Config.Endpoint is empty.
const DefaultEndpoint = "http://localhost:5000/v1/translate"
