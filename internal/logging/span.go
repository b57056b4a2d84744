package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span times one step of a request, such as a multi-query read model build.
type Span struct {
	name   string
	logger *slog.Logger
	start  time.Time
	attrs  []any
}

// StartSpan derives a child span from the provided context. The derived context
// carries a logger tagged with the trace and span identifiers.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := FromContext(ctx)

	traceID := TraceIDFromContext(ctx)
	if traceID == "" {
		traceID = RequestIDFromContext(ctx)
	}
	if traceID == "" {
		traceID = uuid.NewString()
	}
	if TraceIDFromContext(ctx) == "" {
		ctx = WithTraceID(ctx, traceID)
		logger = logger.With(slog.String("trace_id", traceID))
	}

	spanID := uuid.NewString()
	logger = logger.With(
		slog.String("span_id", spanID),
		slog.String("span_name", name),
	)
	if parent := SpanIDFromContext(ctx); parent != "" {
		logger = logger.With(slog.String("parent_span_id", parent))
	}

	ctx = WithLogger(ctx, logger)
	ctx = WithSpanID(ctx, spanID)

	return ctx, &Span{name: name, logger: logger, start: time.Now()}
}

// Annotate attaches attributes emitted when the span ends.
func (s *Span) Annotate(args ...any) {
	if s == nil {
		return
	}
	s.attrs = append(s.attrs, args...)
}

// End emits a debug entry with the span duration.
func (s *Span) End() {
	if s == nil {
		return
	}
	args := append([]any{slog.Duration("duration", time.Since(s.start))}, s.attrs...)
	s.logger.Debug("span completed", args...)
}
