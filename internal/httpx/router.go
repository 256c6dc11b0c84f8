package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/lahma-store/internal/httpx/middlewares"
	"github.com/jcmexdev/lahma-store/internal/pkg/metrics"
)

// NewRouter wires every endpoint of the storefront and admin APIs.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middlewares.Session)

		r.Get("/products", handler.ListProducts)
		r.Get("/products/{id}", handler.GetProduct)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", handler.GetCart)
			r.Delete("/", handler.ClearCart)
			r.Post("/items", handler.AddCartItem)
			r.Patch("/items/{productID}", handler.UpdateCartItem)
			r.Delete("/items/{productID}", handler.RemoveCartItem)
		})

		r.Post("/orders", handler.Checkout)
		r.Get("/orders/{id}", handler.GetOrder)

		r.Get("/geocode/reverse", handler.ReverseGeocode)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", handler.Login)

			r.Group(func(r chi.Router) {
				r.Use(handler.auth.Middleware)

				r.Get("/orders", handler.ListOrders)
				r.Get("/orders/unseen_count", handler.UnseenOrderCount)
				r.Patch("/orders/{id}/status", handler.UpdateOrderStatus)
				r.Post("/orders/{id}/seen", handler.MarkOrderSeen)

				r.Post("/products", handler.CreateProduct)
				r.Put("/products/{id}", handler.UpdateProduct)
				r.Delete("/products/{id}", handler.DeleteProduct)
				r.Patch("/products/{id}/availability", handler.SetProductAvailability)
			})
		})
	})

	return r
}
