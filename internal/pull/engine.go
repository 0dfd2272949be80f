// Package pull implements the pull-diagnostics orchestration engine: it
// decides when to ask connected language servers for diagnostics, runs
// one ordered group of concurrent requests per document, reconciles the
// heterogeneous response shapes into the diagnostics store, and retries
// when a server explicitly asks for it.
package pull

import (
	"time"

	"quill/internal/diagnostic"
	"quill/internal/diskcache"
	"quill/internal/job"
)

const (
	// DefaultDebounceDelay coalesces rapid edits on one document.
	DefaultDebounceDelay = 250 * time.Millisecond
	// DefaultSweepDelay coalesces the global sweep across all documents.
	DefaultSweepDelay = time.Second
	// DefaultRetryDelay spaces out server-requested retriggers.
	DefaultRetryDelay = 500 * time.Millisecond
)

// Config carries the engine timings. Zero fields fall back to defaults.
type Config struct {
	DebounceDelay time.Duration
	SweepDelay    time.Duration
	RetryDelay    time.Duration
}

func (c Config) withDefaults() Config {
	if c.DebounceDelay <= 0 {
		c.DebounceDelay = DefaultDebounceDelay
	}
	if c.SweepDelay <= 0 {
		c.SweepDelay = DefaultSweepDelay
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	return c
}

// Engine owns the request orchestration for all documents. Everything
// that touches editor state runs via the job queue; the engine itself
// only keeps timers and the optional persistent cache.
type Engine struct {
	jobs  *job.Queue
	cfg   Config
	cache *diskcache.Store

	docScheduler   *documentScheduler
	sweepScheduler *sweepScheduler
}

// NewEngine creates an engine posting to the given job queue.
func NewEngine(jobs *job.Queue, cfg Config) *Engine {
	e := &Engine{
		jobs: jobs,
		cfg:  cfg.withDefaults(),
	}
	e.docScheduler = newDocumentScheduler(e.cfg.DebounceDelay, e.flushDocuments)
	e.sweepScheduler = newSweepScheduler(e.cfg.SweepDelay, e.flushSweep)
	return e
}

// UseCache attaches a persistent diagnostics cache. Cached findings are
// seeded into the store when a document opens and refreshed on every
// accepted full report.
func (e *Engine) UseCache(cache *diskcache.Store) {
	e.cache = cache
}

// TriggerSweep arms the global sweep debounce, e.g. after an
// out-of-editor file change. The sweep only queries providers with
// inter-file dependencies.
func (e *Engine) TriggerSweep() {
	e.sweepScheduler.arm()
}

func cacheKey(serverName string, provider diagnostic.Provider) string {
	return diskcache.ProviderKey(serverName, provider.Identifier)
}
