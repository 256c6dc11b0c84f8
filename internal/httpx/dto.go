package httpx

import (
	"time"

	"github.com/jcmexdev/lahma-store/internal/cart"
	"github.com/jcmexdev/lahma-store/internal/catalog"
	"github.com/jcmexdev/lahma-store/internal/order"
)

type ProductRequest struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	NameAr      string  `json:"nameAr"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Available   *bool   `json:"available,omitempty"`
}

type AvailabilityRequest struct {
	Available bool `json:"available"`
}

type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Items      []cart.Item `json:"items"`
	TotalItems int         `json:"total_items"`
	TotalPrice float64     `json:"total_price"`
}

type LocationDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type CheckoutRequest struct {
	FullName string       `json:"fullName"`
	Email    string       `json:"email"`
	Phone    string       `json:"phone"`
	Address  string       `json:"address"`
	Notes    string       `json:"notes,omitempty"`
	Location *LocationDTO `json:"location,omitempty"`
}

type OrderResponse struct {
	ID       string         `json:"id"`
	Customer order.Customer `json:"customer"`
	Items    []order.Item   `json:"items"`
	Total    float64        `json:"total"`
	Date     string         `json:"date"`
	Status   order.Status   `json:"status"`
	Seen     bool           `json:"seen"`

	// Presentation metadata of the current status, for the tracking page.
	StatusInfo order.Info `json:"status_info"`

	// Progress is omitted entirely for cancelled orders: no bar is shown.
	Progress *int `json:"progress,omitempty"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type UnseenCountResponse struct {
	Count int `json:"count"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapProductFromRequest(req ProductRequest) catalog.Product {
	return catalog.Product{
		ID:          req.ID,
		Name:        req.Name,
		NameAr:      req.NameAr,
		Description: req.Description,
		Price:       req.Price,
		Category:    catalog.Category(req.Category),
		Image:       req.Image,
		Available:   req.Available,
	}
}

func mapCartToResponse(c cart.Cart) CartResponse {
	items := c.Items
	if items == nil {
		items = []cart.Item{}
	}
	return CartResponse{
		Items:      items,
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
	}
}

func mapCustomerFromRequest(req CheckoutRequest) order.Customer {
	c := order.Customer{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Notes:    req.Notes,
	}
	if req.Location != nil {
		c.Location = &order.Location{Lat: req.Location.Lat, Lng: req.Location.Lng}
	}
	return c
}

func mapOrderToResponse(o order.Order) OrderResponse {
	resp := OrderResponse{
		ID:         o.ID,
		Customer:   o.Customer,
		Items:      o.Items,
		Total:      o.Total,
		Date:       o.Date.UTC().Format(time.RFC3339),
		Status:     o.Status,
		Seen:       o.Seen,
		StatusInfo: o.Status.Info(),
	}
	if p, ok := o.Status.Progress(); ok {
		resp.Progress = &p
	}
	return resp
}
