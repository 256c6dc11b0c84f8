// Package sqlite provides the SQLite-backed orderlog.Repository.
//
// WAL mode is enabled on Open so readers never block writers: the admin
// dashboard may query history while checkout appends new rows.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/lahma-store/internal/order/orderlog"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO,
	// keeping Docker builds on Alpine simple.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. The table is append-only:
// each row is an immutable event in an order's lifecycle.
const schema = `
CREATE TABLE IF NOT EXISTS order_events (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Business identifier. Not UNIQUE: one row per lifecycle event.
    order_id    TEXT        NOT NULL,

    -- CREATED, STATUS_CHANGED or SEEN.
    event       TEXT        NOT NULL,

    -- Status after the event.
    status      TEXT        NOT NULL DEFAULT '',

    -- Free-form context, e.g. the previous status.
    detail      TEXT,

    -- W3C trace_id (32 hex chars) from the active OTel span.
    trace_id    TEXT        NOT NULL DEFAULT '',

    -- W3C span_id (16 hex chars).
    span_id     TEXT        NOT NULL DEFAULT '',

    -- RFC3339 stored as TEXT, SQLite idiom.
    at          TEXT        NOT NULL
);

-- The common query: "history of order X, in order".
CREATE INDEX IF NOT EXISTS idx_order_events_order_id ON order_events(order_id, at);

-- The observability query: "which order belongs to trace Y".
CREATE INDEX IF NOT EXISTS idx_order_events_trace_id ON order_events(trace_id);
`

// Repository is the SQLite implementation of orderlog.Repository.
type Repository struct {
	db *sql.DB
}

var _ orderlog.Repository = (*Repository)(nil)

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Repository, error) {
	// The pure-Go driver takes _pragma query parameters. WAL enables
	// concurrent readers; busy_timeout waits for locks instead of failing.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection. Defer it in main().
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save appends one audit row. Safe for concurrent use.
func (r *Repository) Save(ctx context.Context, entry *orderlog.Entry) error {
	const q = `
		INSERT INTO order_events
			(order_id, event, status, detail, trace_id, span_id, at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.OrderID,
		string(entry.Event),
		entry.Status,
		nullableString(entry.Detail),
		entry.TraceID,
		entry.SpanID,
		entry.At.UTC().Format("2006-01-02T15:04:05.999999999Z"),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save order event for %q: %w", entry.OrderID, err)
	}
	return nil
}

// GetLatest returns the most recent event for one order, or nil when the
// order has no history.
func (r *Repository) GetLatest(ctx context.Context, orderID string) (*orderlog.Entry, error) {
	const q = `
		SELECT order_id, event, status, COALESCE(detail, ''), trace_id, span_id, at
		FROM order_events
		WHERE order_id = ?
		ORDER BY at DESC, id DESC
		LIMIT 1`

	var (
		e  orderlog.Entry
		ev string
		at string
	)
	err := r.db.QueryRowContext(ctx, q, orderID).
		Scan(&e.OrderID, &ev, &e.Status, &e.Detail, &e.TraceID, &e.SpanID, &at)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get latest order event for %q: %w", orderID, err)
	}
	e.Event = orderlog.Event(ev)
	e.At, err = parseRFC3339(at)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByOrder returns every event for one order, oldest first.
func (r *Repository) ListByOrder(ctx context.Context, orderID string) ([]orderlog.Entry, error) {
	const q = `
		SELECT order_id, event, status, COALESCE(detail, ''), trace_id, span_id, at
		FROM order_events
		WHERE order_id = ?
		ORDER BY at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list order events for %q: %w", orderID, err)
	}
	defer rows.Close()

	var entries []orderlog.Entry
	for rows.Next() {
		var (
			e  orderlog.Entry
			ev string
			at string
		)
		if err := rows.Scan(&e.OrderID, &ev, &e.Status, &e.Detail, &e.TraceID, &e.SpanID, &at); err != nil {
			return nil, fmt.Errorf("sqlite: scan order event: %w", err)
		}
		e.Event = orderlog.Event(ev)
		e.At, err = parseRFC3339(at)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate order events: %w", err)
	}
	return entries, nil
}

// nullableString maps empty strings to NULL so the detail column stays
// clean on rows without context.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
