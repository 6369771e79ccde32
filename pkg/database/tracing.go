package database

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/frenow/rocketshoes-cart/pkg/database"

// QueryTracer starts client spans around statements and warns about slow ones.
// The zero value traces without slow-query logging.
type QueryTracer struct {
	System        string // "postgresql", "redis"
	SlowThreshold time.Duration
	Logger        *slog.Logger
}

// Start opens a span for operation. Call the returned func with the
// operation's error when it completes:
//
//	ctx, end := t.Start(ctx, "SaveSnapshot", upsertSQL)
//	defer func() { end(err) }()
func (t QueryTracer) Start(ctx context.Context, operation, statement string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", t.System),
			attribute.String("db.operation", operation),
			attribute.String("db.statement", statement),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		if t.SlowThreshold <= 0 || t.Logger == nil {
			return
		}
		if elapsed := time.Since(start); elapsed >= t.SlowThreshold {
			t.Logger.WarnContext(ctx, "slow query detected",
				slog.String("operation", operation),
				slog.String("db_system", t.System),
				slog.Duration("duration", elapsed),
			)
		}
	}
}
