package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/observability"
)

// newLogger returns a logger writing to w at level, with short wall-clock
// timestamps ("14:32:01.45"). Debug logs carry the calling file.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    level <= log.DebugLevel,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Rendered stark.json elapsed=12ms".
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type loggerKey struct{}

// withLogger attaches l to ctx for code that only sees the context, such as
// watch callbacks.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Debug Hooks
// =============================================================================

// logHooks reports pipeline, cache and server events as debug log lines.
type logHooks struct {
	logger *log.Logger
}

var (
	_ observability.PipelineHooks = logHooks{}
	_ observability.CacheHooks    = logHooks{}
	_ observability.ServerHooks   = logHooks{}
)

// registerLogHooks routes every observability event to l.
func registerLogHooks(l *log.Logger) {
	h := logHooks{logger: l.WithPrefix("hooks")}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetServerHooks(h)
}

func (h logHooks) OnLoadStart(_ context.Context, source string) {
	h.logger.Debug("load start", "source", source)
}

func (h logHooks) OnLoadComplete(_ context.Context, source string, persons int, d time.Duration, err error) {
	h.complete("load", err, "source", source, "persons", persons, "elapsed", d)
}

func (h logHooks) OnLayoutStart(_ context.Context, treeID string, visible int) {
	h.logger.Debug("layout start", "tree", treeID, "visible", visible)
}

func (h logHooks) OnLayoutComplete(_ context.Context, treeID string, placed int, d time.Duration, err error) {
	h.complete("layout", err, "tree", treeID, "placed", placed, "elapsed", d)
}

func (h logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.complete("render", err, "formats", formats, "elapsed", d)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "kind", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "kind", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "kind", keyType, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("request", "method", method, "route", route, "status", status, "elapsed", d)
}

func (h logHooks) OnCollapseChange(_ context.Context, treeID string, collapsed int) {
	h.logger.Debug("collapse state", "tree", treeID, "collapsed", collapsed)
}

func (h logHooks) complete(stage string, err error, keyvals ...any) {
	if err != nil {
		h.logger.Debug(stage+" failed", append(keyvals, "err", err)...)
		return
	}
	h.logger.Debug(stage+" done", keyvals...)
}
