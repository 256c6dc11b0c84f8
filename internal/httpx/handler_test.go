package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/lahma-store/internal/auth"
	"github.com/jcmexdev/lahma-store/internal/cart"
	"github.com/jcmexdev/lahma-store/internal/catalog"
	"github.com/jcmexdev/lahma-store/internal/geocode"
	"github.com/jcmexdev/lahma-store/internal/order"
	"github.com/jcmexdev/lahma-store/internal/pkg/kvstore"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := kvstore.NewMemory()
	cs, err := catalog.NewService(context.Background(), store)
	require.NoError(t, err)

	handler := NewHandler(
		cs,
		cart.NewService(store),
		order.NewRepository(store, nil),
		geocode.New(""),
		auth.New("admin@example.com", "s3cret", "test-signing-key", time.Hour),
	)

	srv := httptest.NewServer(NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv
}

// newClient returns an http client with a cookie jar so the session
// cookie survives across requests, like a browser.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func do(t *testing.T, client *http.Client, method, url string, body any, out any) *http.Response {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func login(t *testing.T, client *http.Client, baseURL string) string {
	t.Helper()
	var out LoginResponse
	resp := do(t, client, http.MethodPost, baseURL+"/api/admin/login", LoginRequest{
		Email:    "admin@example.com",
		Password: "s3cret",
	}, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func doAuthed(t *testing.T, client *http.Client, token, method, url string, body any, out any) *http.Response {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestListProducts(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	var products []catalog.Product
	resp := do(t, client, http.MethodGet, srv.URL+"/api/products", nil, &products)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, products, 6)
}

func TestGetProductNotFound(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp := do(t, client, http.MethodGet, srv.URL+"/api/products/404", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCartFlow(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	var c CartResponse
	resp := do(t, client, http.MethodPost, srv.URL+"/api/cart/items", AddItemRequest{ProductID: "1", Quantity: 2}, &c)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.TotalItems)
	assert.Equal(t, 360.0, c.TotalPrice)

	// Same session, same cart.
	resp = do(t, client, http.MethodGet, srv.URL+"/api/cart/", nil, &c)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, c.TotalItems)

	// A fresh browser gets its own empty cart.
	other := newClient(t)
	var empty CartResponse
	resp = do(t, other, http.MethodGet, srv.URL+"/api/cart/", nil, &empty)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, empty.Items)

	resp = do(t, client, http.MethodPatch, srv.URL+"/api/cart/items/1", UpdateQuantityRequest{Quantity: 5}, &c)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, c.TotalItems)

	resp = do(t, client, http.MethodDelete, srv.URL+"/api/cart/items/1", nil, &c)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, c.Items)
}

func TestAddUnknownProductToCart(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp := do(t, client, http.MethodPost, srv.URL+"/api/cart/items", AddItemRequest{ProductID: "404", Quantity: 1}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddUnavailableProductToCart(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)
	token := login(t, client, srv.URL)

	resp := doAuthed(t, client, token, http.MethodPatch, srv.URL+"/api/admin/products/1/availability", AvailabilityRequest{Available: false}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var errResp ErrorResponse
	resp = do(t, client, http.MethodPost, srv.URL+"/api/cart/items", AddItemRequest{ProductID: "1", Quantity: 1}, &errResp)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "product_unavailable", errResp.Error)
}

func checkoutRequest() CheckoutRequest {
	return CheckoutRequest{
		FullName: "أحمد علي",
		Email:    "ahmed@example.com",
		Phone:    "+201001234567",
		Address:  "15 شارع التحرير، القاهرة",
		Location: &LocationDTO{Lat: 30.0444, Lng: 31.2357},
	}
}

func TestCheckout(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	var c CartResponse
	resp := do(t, client, http.MethodPost, srv.URL+"/api/cart/items", AddItemRequest{ProductID: "2", Quantity: 2}, &c)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var o OrderResponse
	resp = do(t, client, http.MethodPost, srv.URL+"/api/orders", checkoutRequest(), &o)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.False(t, o.Seen)
	assert.Equal(t, 240.0, o.Total)
	require.NotNil(t, o.Progress)
	assert.Equal(t, 20, *o.Progress)
	assert.Equal(t, "قيد الانتظار", o.StatusInfo.Label)

	// The cart is gone once the order is placed.
	resp = do(t, client, http.MethodGet, srv.URL+"/api/cart/", nil, &c)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, c.Items)

	// The customer can track the order without logging in.
	var tracked OrderResponse
	resp = do(t, client, http.MethodGet, srv.URL+"/api/orders/"+o.ID, nil, &tracked)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, o.ID, tracked.ID)
}

func TestCheckoutValidation(t *testing.T) {
	srv := newTestServer(t)

	t.Run("empty cart", func(t *testing.T) {
		client := newClient(t)
		var errResp ErrorResponse
		resp := do(t, client, http.MethodPost, srv.URL+"/api/orders", checkoutRequest(), &errResp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "validation_failed", errResp.Error)
	})

	t.Run("missing customer fields", func(t *testing.T) {
		client := newClient(t)
		resp := do(t, client, http.MethodPost, srv.URL+"/api/cart/items", AddItemRequest{ProductID: "1", Quantity: 1}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		req := checkoutRequest()
		req.Phone = "   "
		resp = do(t, client, http.MethodPost, srv.URL+"/api/orders", req, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetOrderNotFound(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp := do(t, client, http.MethodGet, srv.URL+"/api/orders/ghost", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminRequiresToken(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp := do(t, client, http.MethodGet, srv.URL+"/api/admin/orders", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, client, http.MethodPost, srv.URL+"/api/admin/products", ProductRequest{}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp := do(t, client, http.MethodPost, srv.URL+"/api/admin/login", LoginRequest{
		Email:    "admin@example.com",
		Password: "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOrderDashboard(t *testing.T) {
	srv := newTestServer(t)

	// Two orders from two customers.
	for _, pid := range []string{"1", "2"} {
		client := newClient(t)
		resp := do(t, client, http.MethodPost, srv.URL+"/api/cart/items", AddItemRequest{ProductID: pid, Quantity: 1}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp = do(t, client, http.MethodPost, srv.URL+"/api/orders", checkoutRequest(), nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	admin := newClient(t)
	token := login(t, admin, srv.URL)

	var orders []OrderResponse
	resp := doAuthed(t, admin, token, http.MethodGet, srv.URL+"/api/admin/orders", nil, &orders)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, orders, 2)

	var unseen UnseenCountResponse
	resp = doAuthed(t, admin, token, http.MethodGet, srv.URL+"/api/admin/orders/unseen_count", nil, &unseen)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, unseen.Count)

	var seen OrderResponse
	resp = doAuthed(t, admin, token, http.MethodPost, srv.URL+"/api/admin/orders/"+orders[0].ID+"/seen", nil, &seen)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, seen.Seen)

	resp = doAuthed(t, admin, token, http.MethodGet, srv.URL+"/api/admin/orders/unseen_count", nil, &unseen)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, unseen.Count)
}

func TestUpdateOrderStatus(t *testing.T) {
	srv := newTestServer(t)

	client := newClient(t)
	resp := do(t, client, http.MethodPost, srv.URL+"/api/cart/items", AddItemRequest{ProductID: "1", Quantity: 1}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var placed OrderResponse
	resp = do(t, client, http.MethodPost, srv.URL+"/api/orders", checkoutRequest(), &placed)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	admin := newClient(t)
	token := login(t, admin, srv.URL)
	statusURL := srv.URL + "/api/admin/orders/" + placed.ID + "/status"

	var updated OrderResponse
	resp = doAuthed(t, admin, token, http.MethodPatch, statusURL, StatusUpdateRequest{Status: "confirmed"}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, order.StatusConfirmed, updated.Status)
	require.NotNil(t, updated.Progress)
	assert.Equal(t, 40, *updated.Progress)

	// Going back to pending is not allowed.
	var errResp ErrorResponse
	resp = doAuthed(t, admin, token, http.MethodPatch, statusURL, StatusUpdateRequest{Status: "pending"}, &errResp)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "invalid_transition", errResp.Error)

	// Unknown statuses are a validation failure, not a transition one.
	resp = doAuthed(t, admin, token, http.MethodPatch, statusURL, StatusUpdateRequest{Status: "shipped"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Cancelling drops the progress bar from the payload. Decode into a
	// fresh struct so the omitted key cannot leave a stale pointer behind.
	updated = OrderResponse{}
	resp = doAuthed(t, admin, token, http.MethodPatch, statusURL, StatusUpdateRequest{Status: "cancelled"}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, order.StatusCancelled, updated.Status)
	assert.Nil(t, updated.Progress)
}

func TestReverseGeocodeEndpoint(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	t.Run("bad coordinates", func(t *testing.T) {
		resp := do(t, client, http.MethodGet, srv.URL+"/api/geocode/reverse?lat=abc&lng=31", nil, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unconfigured collaborator degrades", func(t *testing.T) {
		var errResp ErrorResponse
		resp := do(t, client, http.MethodGet, srv.URL+"/api/geocode/reverse?lat=30.04&lng=31.23", nil, &errResp)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "geocode_unavailable", errResp.Error)
	})
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp := do(t, client, http.MethodGet, srv.URL+"/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminProductLifecycle(t *testing.T) {
	srv := newTestServer(t)
	admin := newClient(t)
	token := login(t, admin, srv.URL)

	var created catalog.Product
	resp := doAuthed(t, admin, token, http.MethodPost, srv.URL+"/api/admin/products", ProductRequest{
		ID:       "7",
		Name:     "Minced Beef",
		NameAr:   "لحم مفروم",
		Price:    140,
		Category: "beef",
		Image:    "/assets/minced.jpg",
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "7", created.ID)

	var updated catalog.Product
	resp = doAuthed(t, admin, token, http.MethodPut, srv.URL+"/api/admin/products/7", ProductRequest{
		Name:     "Minced Beef",
		NameAr:   "لحم مفروم",
		Price:    150,
		Category: "beef",
		Image:    "/assets/minced.jpg",
	}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 150.0, updated.Price)

	resp = doAuthed(t, admin, token, http.MethodDelete, srv.URL+"/api/admin/products/7", nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	shopper := newClient(t)
	resp = do(t, shopper, http.MethodGet, srv.URL+"/api/products/7", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
