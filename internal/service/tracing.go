package service

import (
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"campus-events-api/internal/tracing"
)

func tracerOrNoop(tracer trace.Tracer) trace.Tracer {
	if tracer == nil {
		return tracing.NoopTracer()
	}
	return tracer
}

func eventAttr(eventID uuid.UUID) attribute.KeyValue {
	return attribute.String("event.id", eventID.String())
}

func userAttr(userID uuid.UUID) attribute.KeyValue {
	return attribute.String("user.id", userID.String())
}

// endSpan records err on the span before ending it
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
