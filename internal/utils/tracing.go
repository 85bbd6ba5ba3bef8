package utils

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "app-cadastro"

// TraceOperation starts a span with the given attributes. The returned
// cleanup adds the elapsed time and ends the span.
func TraceOperation(ctx context.Context, operationName string, attributes map[string]interface{}) (context.Context, trace.Span, func()) {
	start := time.Now()

	otelAttrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		otelAttrs = append(otelAttrs, toAttribute(k, v))
	}

	spanCtx, span := otel.Tracer(tracerName).Start(ctx, operationName, trace.WithAttributes(otelAttrs...))

	cleanup := func() {
		AddTimingToSpan(span, start)
		span.End()
	}

	return spanCtx, span, cleanup
}

// TraceBusinessLogic traces controller logic such as validation or state changes
func TraceBusinessLogic(ctx context.Context, logicType string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "business_logic."+logicType,
		trace.WithAttributes(attribute.String("logic.type", logicType)))
}

// TraceExternalService traces calls to the backend API
func TraceExternalService(ctx context.Context, serviceName, operation string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "external_service."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.operation", operation),
		))
}

// AddTimingToSpan adds timing information to an existing span
func AddTimingToSpan(span trace.Span, startTime time.Time) {
	duration := time.Since(startTime)
	span.SetAttributes(
		attribute.Int64("duration_ms", duration.Milliseconds()),
		attribute.String("duration", duration.String()),
	)
}

// RecordErrorInSpan records an error in a span with additional context
func RecordErrorInSpan(span trace.Span, err error, context map[string]interface{}) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	for k, v := range context {
		span.SetAttributes(toAttribute(k, v))
	}
}

// AddSpanAttribute adds a single attribute to a span
func AddSpanAttribute(span trace.Span, key string, value interface{}) {
	span.SetAttributes(toAttribute(key, value))
}

func toAttribute(key string, value interface{}) attribute.KeyValue {
	switch val := value.(type) {
	case string:
		return attribute.String(key, val)
	case int:
		return attribute.Int(key, val)
	case int64:
		return attribute.Int64(key, val)
	case bool:
		return attribute.Bool(key, val)
	case float64:
		return attribute.Float64(key, val)
	default:
		return attribute.String(key, "unknown_type")
	}
}
