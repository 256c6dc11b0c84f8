package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/lahma-store/internal/auth"
	"github.com/jcmexdev/lahma-store/internal/cart"
	"github.com/jcmexdev/lahma-store/internal/catalog"
	"github.com/jcmexdev/lahma-store/internal/geocode"
	"github.com/jcmexdev/lahma-store/internal/httpx/middlewares"
	"github.com/jcmexdev/lahma-store/internal/order"
	"github.com/jcmexdev/lahma-store/internal/pkg/kvstore"
)

// Handler serves the storefront and admin APIs.
type Handler struct {
	catalog  *catalog.Service
	carts    *cart.Service
	orders   *order.Repository
	geocoder *geocode.Client
	auth     *auth.Authenticator
}

func NewHandler(
	cs *catalog.Service,
	carts *cart.Service,
	orders *order.Repository,
	gc *geocode.Client,
	au *auth.Authenticator,
) *Handler {
	return &Handler{
		catalog:  cs,
		carts:    carts,
		orders:   orders,
		geocoder: gc,
		auth:     au,
	}
}

// ── Catalog ────────────────────────────────────────────────────────────────

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	p, err := h.catalog.Create(r.Context(), mapProductFromRequest(req))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	req.ID = chi.URLParam(r, "id")
	p, err := h.catalog.Update(r.Context(), mapProductFromRequest(req))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetProductAvailability(w http.ResponseWriter, r *http.Request) {
	var req AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	p, err := h.catalog.SetAvailability(r.Context(), chi.URLParam(r, "id"), req.Available)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ── Cart ───────────────────────────────────────────────────────────────────

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), middlewares.SessionID(r.Context()))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCartToResponse(c))
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "product_id is required")
		return
	}

	p, err := h.catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if !p.IsAvailable() {
		writeError(w, http.StatusUnprocessableEntity, "product_unavailable", "product is currently unavailable")
		return
	}

	c, err := h.carts.Add(r.Context(), middlewares.SessionID(r.Context()), p, req.Quantity)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCartToResponse(c))
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	c, err := h.carts.UpdateQuantity(r.Context(), middlewares.SessionID(r.Context()), chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCartToResponse(c))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Remove(r.Context(), middlewares.SessionID(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCartToResponse(c))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), middlewares.SessionID(r.Context())); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Orders ─────────────────────────────────────────────────────────────────

// Checkout turns the session cart plus the submitted customer form into a
// placed order, then clears the cart.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	sid := middlewares.SessionID(r.Context())
	c, err := h.carts.Get(r.Context(), sid)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	items := make([]order.Item, len(c.Items))
	for i, it := range c.Items {
		items[i] = order.Item{
			ProductID: it.ProductID,
			NameAr:    it.NameAr,
			Price:     it.Price,
			Image:     it.Image,
			Quantity:  it.Quantity,
		}
	}

	o, err := h.orders.Create(r.Context(), items, mapCustomerFromRequest(req))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	if err := h.carts.Clear(r.Context(), sid); err != nil {
		// The order exists; a stale cart is only a nuisance.
		slog.WarnContext(r.Context(), "failed to clear cart after checkout", "session_id", sid, "error", err)
	}

	writeJSON(w, http.StatusCreated, mapOrderToResponse(o))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(o))
}

// ListOrders serves the dashboard: newest first, optional status filter.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	if filter := r.URL.Query().Get("status"); filter != "" {
		status := order.Status(filter)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid_status", "unknown status "+filter)
			return
		}
		orders = slices.DeleteFunc(orders, func(o order.Order) bool {
			return o.Status != status
		})
	}

	// Storage order is chronological ascending; the dashboard wants
	// newest first.
	slices.Reverse(orders)

	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = mapOrderToResponse(o)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), order.Status(req.Status))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(o))
}

func (h *Handler) MarkOrderSeen(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.MarkSeen(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(o))
}

// UnseenOrderCount feeds the navigation badge.
func (h *Handler) UnseenOrderCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.orders.UnseenCount(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UnseenCountResponse{Count: n})
}

// ── Geocoding ──────────────────────────────────────────────────────────────

func (h *Handler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, err2 := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "lat and lng must be numbers")
		return
	}

	loc, err := h.geocoder.ReverseGeocode(r.Context(), lat, lng)
	if err != nil {
		// 503 tells the form to fall back to manual address entry.
		writeError(w, http.StatusServiceUnavailable, "geocode_unavailable", "enter the address manually")
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

// ── Admin session ──────────────────────────────────────────────────────────

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	token, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}

// ── Error mapping ──────────────────────────────────────────────────────────

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var perr *kvstore.PersistenceError
	switch {
	case order.IsValidation(err) || catalog.IsValidation(err):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, order.ErrInvalidTransition):
		writeError(w, http.StatusUnprocessableEntity, "invalid_transition", err.Error())
	case errors.Is(err, order.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "")
	case errors.As(err, &perr):
		slog.ErrorContext(r.Context(), "storage failure", "error", err)
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "temporary storage failure, retry shortly")
	default:
		slog.ErrorContext(r.Context(), "unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
