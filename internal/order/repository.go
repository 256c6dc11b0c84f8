package order

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/lahma-store/internal/order/orderlog"
	"github.com/jcmexdev/lahma-store/internal/pkg/kvstore"
	"github.com/jcmexdev/lahma-store/internal/pkg/metrics"
)

// storageKey holds the whole order collection as one JSON array, in
// chronological (append) order.
const storageKey = "orders"

// Repository is the single owner of all Order records. It is the only code
// that produces order identifiers, and the only path for status mutations.
//
// auditLog may be nil, in which case lifecycle events are not recorded.
type Repository struct {
	store    kvstore.Store
	auditLog orderlog.Repository

	mu          sync.RWMutex
	subscribers []func()
}

func NewRepository(store kvstore.Store, auditLog orderlog.Repository) *Repository {
	return &Repository{store: store, auditLog: auditLog}
}

// Subscribe registers fn to run synchronously after every successful
// mutation of the order collection. This is the in-process analog of the
// storage event other contexts observe through the store's Watch.
func (r *Repository) Subscribe(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

func (r *Repository) notify() {
	r.mu.RLock()
	subs := make([]func(), len(r.subscribers))
	copy(subs, r.subscribers)
	r.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}

// Create validates the checkout, freezes the cart snapshot into an Order and
// appends it to the collection. It is the only producer of order ids.
func (r *Repository) Create(ctx context.Context, items []Item, customer Customer) (Order, error) {
	if err := validateCheckout(items, customer); err != nil {
		return Order{}, err
	}

	now := time.Now().UTC()
	o := Order{
		ID:       newOrderID(now),
		Customer: customer,
		Items:    items,
		Total:    sumItems(items),
		Date:     now,
		Status:   StatusPending,
		Seen:     false,
	}

	orders, err := r.load(ctx)
	if err != nil {
		return Order{}, err
	}
	orders = append(orders, o)
	if err := r.save(ctx, orders); err != nil {
		return Order{}, err
	}

	r.logEvent(ctx, o.ID, orderlog.EventCreated, string(o.Status), "")
	metrics.OrdersCreated.Inc()
	slog.InfoContext(ctx, "order created", "order_id", o.ID, "total", o.Total, "items", len(o.Items))

	r.notify()
	return o, nil
}

// List returns every order in storage order, chronological ascending.
// Callers wanting newest-first reverse the slice themselves.
func (r *Repository) List(ctx context.Context) ([]Order, error) {
	return r.load(ctx)
}

// Get looks an order up by id.
func (r *Repository) Get(ctx context.Context, id string) (Order, error) {
	orders, err := r.load(ctx)
	if err != nil {
		return Order{}, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

// UpdateStatus moves the order to next, enforcing the forward-only rule.
// Every other field is left byte-for-byte untouched.
func (r *Repository) UpdateStatus(ctx context.Context, id string, next Status) (Order, error) {
	if !next.Valid() {
		return Order{}, newValidationError(fmt.Sprintf("unknown status %q", next))
	}

	orders, err := r.load(ctx)
	if err != nil {
		return Order{}, err
	}
	for i := range orders {
		if orders[i].ID != id {
			continue
		}
		prev := orders[i].Status
		if !prev.CanTransitionTo(next) {
			return Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, prev, next)
		}
		orders[i].Status = next
		if err := r.save(ctx, orders); err != nil {
			return Order{}, err
		}

		r.logEvent(ctx, id, orderlog.EventStatusChanged, string(next), "from "+string(prev))
		metrics.OrderTransitions.WithLabelValues(string(next)).Inc()
		slog.InfoContext(ctx, "order status updated", "order_id", id, "from", prev, "to", next)

		r.notify()
		return orders[i], nil
	}
	return Order{}, ErrNotFound
}

// MarkSeen sets the administrator-acknowledgement flag. Idempotent, and
// independent of the status axis.
func (r *Repository) MarkSeen(ctx context.Context, id string) (Order, error) {
	orders, err := r.load(ctx)
	if err != nil {
		return Order{}, err
	}
	for i := range orders {
		if orders[i].ID != id {
			continue
		}
		if orders[i].Seen {
			return orders[i], nil
		}
		orders[i].Seen = true
		if err := r.save(ctx, orders); err != nil {
			return Order{}, err
		}
		r.logEvent(ctx, id, orderlog.EventSeen, string(orders[i].Status), "")
		r.notify()
		return orders[i], nil
	}
	return Order{}, ErrNotFound
}

// UnseenCount returns how many orders the administrator has not yet
// acknowledged; feeds the navigation badge.
func (r *Repository) UnseenCount(ctx context.Context) (int, error) {
	orders, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	var n int
	for _, o := range orders {
		if !o.Seen {
			n++
		}
	}
	return n, nil
}

func (r *Repository) load(ctx context.Context) ([]Order, error) {
	raw, err := r.store.Get(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var orders []Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		// An unreadable collection reads as empty; a parse failure must
		// never take the storefront down.
		slog.WarnContext(ctx, "order storage corrupt, treating as empty", "error", err)
		return nil, nil
	}
	return orders, nil
}

func (r *Repository) save(ctx context.Context, orders []Order) error {
	if orders == nil {
		orders = []Order{}
	}
	raw, err := json.Marshal(orders)
	if err != nil {
		return &kvstore.PersistenceError{Op: "marshal", Key: storageKey, Err: err}
	}
	return r.store.Set(ctx, storageKey, raw)
}

func (r *Repository) logEvent(ctx context.Context, orderID string, event orderlog.Event, status, detail string) {
	if r.auditLog == nil {
		return
	}
	entry := orderlog.NewEntry(ctx, orderID, event, status, detail)
	if err := r.auditLog.Save(ctx, entry); err != nil {
		// Audit failures are logged, never fatal to the business operation.
		slog.ErrorContext(ctx, "failed to write order audit log", "order_id", orderID, "error", err)
	}
}

// newOrderID derives an identifier from the creation instant so ids sort
// chronologically, with a short random suffix to stay unique within the
// same millisecond.
func newOrderID(now time.Time) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix)
}

func sumItems(items []Item) float64 {
	var total float64
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}
