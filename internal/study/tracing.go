package study

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/pavan3030-vikal/VIKAL-NEW/internal/study")

func traceHTTP(ctx context.Context, method, path string, fn func(context.Context) (int, error)) error {
	ctx, span := tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	status, err := fn(ctx)
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	recordError(span, err)
	return err
}

func startSubmitSpan(ctx context.Context, sub Submission) (context.Context, trace.Span) {
	return tracer.Start(ctx, "study.submit",
		trace.WithAttributes(attribute.String("vikal.mode", string(sub.Mode))),
	)
}

func endSubmitSpan(span trace.Span, res Result) {
	span.SetAttributes(attribute.String("vikal.outcome", res.Outcome.String()))
	recordError(span, res.Err)
	span.End()
}

func recordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
