package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports pipeline, cache and HTTP events to a logger at debug
// level, and failures at warn level. serve registers it so that --verbose
// traces every stage of every request.
type LogHooks struct {
	NoopPipelineHooks
	NoopHTTPHooks
	logger *log.Logger
}

// NewLogHooks returns hooks writing to l, prefixed "hooks".
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l.WithPrefix("hooks")}
}

// Register installs h as the pipeline, cache and HTTP hooks.
func (h *LogHooks) Register() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) stage(stage, runID string, d time.Duration, err error, keyvals ...any) {
	keyvals = append([]any{"run", short(runID), "stage", stage, "duration", d}, keyvals...)
	if err != nil {
		h.logger.Warn("stage failed", append(keyvals, "err", err)...)
		return
	}
	h.logger.Debug("stage done", keyvals...)
}

func (h *LogHooks) OnDecodeComplete(_ context.Context, runID, format string, d time.Duration, err error) {
	h.stage("decode", runID, d, err, "format", format)
}

func (h *LogHooks) OnSortComplete(_ context.Context, runID string, d time.Duration, err error) {
	h.stage("sort", runID, d, err)
}

func (h *LogHooks) OnEncodeComplete(_ context.Context, runID, format string, size int, d time.Duration, err error) {
	h.stage("encode", runID, d, err, "format", format, "bytes", size)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "kind", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "kind", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "kind", keyType, "bytes", size)
}

func (h *LogHooks) OnError(_ context.Context, requestID, method, path string, err error) {
	h.logger.Warn("request failed", "request", short(requestID), "method", method, "path", path, "err", err)
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
