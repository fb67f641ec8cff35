package pipeline

import "log/slog"

// ProgressSink receives run progress notifications. Calls are
// fire-and-forget: sinks must not block, and a slow sink must never
// slow the run down.
type ProgressSink interface {
	// PageAnalyzed fires when a page finishes layout analysis
	PageAnalyzed(index int)

	// BatchDone fires after each translation batch, failed or not
	BatchDone(done, total int)

	// PageRendered fires when a page layout is finalized
	PageRendered(index int, passthrough bool)
}

// NopSink discards all progress notifications.
type NopSink struct{}

// PageAnalyzed implements ProgressSink.
func (NopSink) PageAnalyzed(int) {}

// BatchDone implements ProgressSink.
func (NopSink) BatchDone(int, int) {}

// PageRendered implements ProgressSink.
func (NopSink) PageRendered(int, bool) {}

// LogSink forwards progress to a structured logger.
type LogSink struct {
	Logger *slog.Logger
}

// PageAnalyzed implements ProgressSink.
func (s LogSink) PageAnalyzed(index int) {
	s.Logger.Debug("page analyzed", "page", index)
}

// BatchDone implements ProgressSink.
func (s LogSink) BatchDone(done, total int) {
	s.Logger.Info("translation batch finished", "done", done, "total", total)
}

// PageRendered implements ProgressSink.
func (s LogSink) PageRendered(index int, passthrough bool) {
	if passthrough {
		s.Logger.Warn("page degraded to passthrough", "page", index)
		return
	}
	s.Logger.Debug("page rendered", "page", index)
}
