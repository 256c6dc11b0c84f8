package orderlog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// NewEntry builds an Entry with trace identifiers extracted from the active
// span in ctx. Without an active span (unit tests, background jobs) both
// ids are empty strings.
func NewEntry(ctx context.Context, orderID string, event Event, status, detail string) *Entry {
	e := &Entry{
		OrderID: orderID,
		Event:   event,
		Status:  status,
		Detail:  detail,
		At:      time.Now().UTC(),
	}

	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		e.TraceID = sc.TraceID().String()
		e.SpanID = sc.SpanID().String()
	}
	return e
}
