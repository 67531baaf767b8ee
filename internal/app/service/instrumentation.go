package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Operation results recorded on the per-area operation counters.
const (
	resultSuccess  = "success"
	resultFailure  = "failure"
	resultNotFound = "not_found"
	resultInvalid  = "invalid"
)

func operationCounter(meter metric.Meter, area string) metric.Int64Counter {
	counter, _ := meter.Int64Counter(
		"shopverse."+area+".operations",
		metric.WithDescription("Total number of "+area+" operations"),
	)
	return counter
}

func countOperation(ctx context.Context, counter metric.Int64Counter, operation, result string) {
	counter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}

func failSpan(span trace.Span, err error, description string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, description)
}
