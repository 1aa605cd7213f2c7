package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/scripter/pkg/domain"
)

// LogHooks returns lifecycle hooks that log run and handle events.
// Frame events are logged at debug level only.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run_start", "run_id", e.RunID, "script", e.Script)
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			level := slog.LevelInfo
			if e.Status == domain.RunFailed {
				level = slog.LevelError
			}
			logger.Log(ctx, level, "run_end",
				"run_id", e.RunID,
				"script", e.Script,
				"status", e.Status,
				"elapsed", e.Elapsed,
				"timers", e.Stats.Timers,
				"animations", e.Stats.Animations,
				"traversals", e.Stats.Traversals,
				"err", e.Err,
			)
		},
		OnCancel: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "cancel", "run_id", e.RunID)
		},
		OnTimerSettle: func(ctx context.Context, e *domain.HandleEvent) {
			logger.DebugContext(ctx, "timer_settle", "run_id", e.RunID, "handle", e.HandleID, "outcome", e.Outcome)
		},
		OnAnimationFrame: func(ctx context.Context, e *domain.FrameEvent) {
			logger.DebugContext(ctx, "animation_frame", "run_id", e.RunID, "handle", e.HandleID, "t", e.Time)
		},
		OnAnimationEnd: func(ctx context.Context, e *domain.HandleEvent) {
			logger.DebugContext(ctx, "animation_end", "run_id", e.RunID, "handle", e.HandleID, "outcome", e.Outcome)
		},
		OnTraversalEnd: func(ctx context.Context, e *domain.TraversalEvent) {
			logger.DebugContext(ctx, "traversal_end",
				"run_id", e.RunID,
				"handle", e.HandleID,
				"mode", e.Mode,
				"outcome", e.Outcome,
				"visited", e.Visited,
				"matched", e.Matched,
			)
		},
	}
}

// Merge combines hooks; each event is delivered to every non-nil hook in
// argument order.
func Merge(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		out.OnRunStart = chain(out.OnRunStart, h.OnRunStart)
		out.OnRunEnd = chain(out.OnRunEnd, h.OnRunEnd)
		out.OnCancel = chain(out.OnCancel, h.OnCancel)
		out.OnTimerSettle = chain(out.OnTimerSettle, h.OnTimerSettle)
		out.OnAnimationFrame = chain(out.OnAnimationFrame, h.OnAnimationFrame)
		out.OnAnimationEnd = chain(out.OnAnimationEnd, h.OnAnimationEnd)
		out.OnTraversalEnd = chain(out.OnTraversalEnd, h.OnTraversalEnd)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
