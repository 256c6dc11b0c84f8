// Package orderlog defines the append-only audit trail of order lifecycle
// events.
//
// Each row captures one transition: what an order became, when, and under
// which distributed trace. The order collection itself only keeps the
// current status, so the log is the only place the full history can be
// reconstructed from.
package orderlog

import "time"

// Event names the kind of lifecycle change a row records.
type Event string

const (
	EventCreated       Event = "CREATED"
	EventStatusChanged Event = "STATUS_CHANGED"
	EventSeen          Event = "SEEN"
)

// Entry is a single row in the order_events table.
type Entry struct {
	// OrderID joins the row with the business record.
	OrderID string

	// Event is the kind of change.
	Event Event

	// Status is the order's status after the change.
	Status string

	// Detail is free-form context, e.g. the previous status.
	Detail string

	// TraceID is the W3C trace ID of the span active when the row was
	// written, so a log row links straight to its distributed trace.
	TraceID string

	// SpanID pinpoints the exact operation within the trace.
	SpanID string

	// At is the wall-clock time of the event.
	At time.Time
}
