// Package api exposes the checkout backend over HTTP. Handlers decode
// requests, delegate to domain services, and map typed domain errors to
// response codes; they hold no business logic of their own.
package api

import (
	"context"
	"net/http"

	"github.com/xenking/stripe-checkout/internal/domain/item"
	"github.com/xenking/stripe-checkout/internal/domain/order"
)

// OrderCreator creates an order from a validated creation request.
type OrderCreator interface {
	Create(ctx context.Context, userID string, in order.CreateInput) (string, error)
}

// CheckoutService produces payment session ids for items and orders.
type CheckoutService interface {
	CheckoutItem(ctx context.Context, itemID string) (string, error)
	CheckoutOrder(ctx context.Context, orderID string) (string, error)
}

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// PublishableKeys maps currencies to the provider publishable key a
	// frontend needs to open the checkout page for that currency.
	PublishableKeys map[item.Currency]string
}

// Handler implements the HTTP API.
type Handler struct {
	cfg      HandlerConfig
	items    item.Repository
	orders   order.Repository
	creator  OrderCreator
	checkout CheckoutService
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg HandlerConfig,
	items item.Repository,
	orders order.Repository,
	creator OrderCreator,
	checkout CheckoutService,
) *Handler {
	return &Handler{
		cfg:      cfg,
		items:    items,
		orders:   orders,
		creator:  creator,
		checkout: checkout,
	}
}

// Register attaches all API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/items", h.ListItems)
	mux.HandleFunc("GET /api/items/{id}", h.GetItem)
	mux.HandleFunc("GET /api/items/{id}/checkout", h.CheckoutItem)
	mux.HandleFunc("POST /api/orders", h.CreateOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	mux.HandleFunc("GET /api/orders/{id}/checkout", h.CheckoutOrder)
}
