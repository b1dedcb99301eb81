package api

import (
	"net/http"

	"github.com/go-faster/jx"
)

// ListItems returns the whole catalog.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		writeDomainError(w, r, "list items", err)
		return
	}

	var e jx.Encoder
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(it.ID)
		e.FieldStart("name")
		e.Str(it.Name)
		e.FieldStart("description")
		e.Str(it.Description)
		e.FieldStart("price")
		e.Str(it.Price.StringFixed(2))
		e.FieldStart("currency")
		e.Str(string(it.Currency))
		e.ObjEnd()
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

// GetItem returns item details plus the publishable key for its currency.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	it, err := h.items.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, "get item", err)
		return
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("id")
	e.Str(it.ID)
	e.FieldStart("name")
	e.Str(it.Name)
	e.FieldStart("description")
	e.Str(it.Description)
	e.FieldStart("price")
	e.Str(it.Price.StringFixed(2))
	e.FieldStart("currency")
	e.Str(string(it.Currency))
	e.FieldStart("publishable_key")
	e.Str(h.cfg.PublishableKeys[it.Currency])
	e.ObjEnd()
	writeJSON(w, http.StatusOK, &e)
}

// CheckoutItem creates a payment session for a single item.
func (h *Handler) CheckoutItem(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.checkout.CheckoutItem(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, "item checkout", err)
		return
	}
	writeSessionID(w, sessionID)
}

func writeSessionID(w http.ResponseWriter, sessionID string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("session_id")
	e.Str(sessionID)
	e.ObjEnd()
	writeJSON(w, http.StatusOK, &e)
}
