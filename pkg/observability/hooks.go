// Package observability lets a binary watch sort runs, cache traffic and HTTP
// requests without the libraries depending on a metrics or tracing backend.
//
// Libraries emit events through the package-level accessors:
//
//	observability.Pipeline().OnSortStart(ctx, runID, width, height)
//	// ... sort ...
//	observability.Pipeline().OnSortComplete(ctx, runID, duration, err)
//
// Every accessor returns a no-op implementation until main installs its own
// with SetPipelineHooks, SetCacheHooks or SetHTTPHooks. [LogHooks] is the
// implementation pixelsort ships.
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives the stage events of one pipeline run. runID
// correlates the events of a run.
type PipelineHooks interface {
	OnDecodeStart(ctx context.Context, runID string, size int)
	OnDecodeComplete(ctx context.Context, runID, format string, duration time.Duration, err error)

	OnSortStart(ctx context.Context, runID string, width, height int)
	OnSortComplete(ctx context.Context, runID string, duration time.Duration, err error)

	OnEncodeStart(ctx context.Context, runID, format string)
	OnEncodeComplete(ctx context.Context, runID, format string, size int, duration time.Duration, err error)
}

// CacheHooks receives cache traffic. keyType is "artifact" or "summary".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives the requests handled by the HTTP service.
type HTTPHooks interface {
	OnRequest(ctx context.Context, requestID, method, path string)
	OnResponse(ctx context.Context, requestID, method, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, requestID, method, path string, err error)
}

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnDecodeStart(context.Context, string, int)                             {}
func (NoopPipelineHooks) OnDecodeComplete(context.Context, string, string, time.Duration, error) {}
func (NoopPipelineHooks) OnSortStart(context.Context, string, int, int)                          {}
func (NoopPipelineHooks) OnSortComplete(context.Context, string, time.Duration, error)           {}
func (NoopPipelineHooks) OnEncodeStart(context.Context, string, string)                          {}
func (NoopPipelineHooks) OnEncodeComplete(context.Context, string, string, int, time.Duration, error) {
}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// slot holds one registered hook implementation.
type slot[T any] struct {
	mu   sync.RWMutex
	v    T
	noop T
}

func newSlot[T any](noop T) *slot[T] {
	return &slot[T]{v: noop, noop: noop}
}

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v
}

func (s *slot[T]) set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v = v
}

func (s *slot[T]) reset() { s.set(s.noop) }

var (
	pipelineSlot = newSlot[PipelineHooks](NoopPipelineHooks{})
	cacheSlot    = newSlot[CacheHooks](NoopCacheHooks{})
	httpSlot     = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetPipelineHooks installs h. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineSlot.set(h)
	}
}

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.set(h)
	}
}

// SetHTTPHooks installs h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpSlot.set(h)
	}
}

func Pipeline() PipelineHooks { return pipelineSlot.get() }
func Cache() CacheHooks       { return cacheSlot.get() }
func HTTP() HTTPHooks         { return httpSlot.get() }

// Reset restores the no-op hooks.
func Reset() {
	pipelineSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
