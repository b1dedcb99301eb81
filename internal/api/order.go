package api

import (
	"io"
	"net/http"
	"time"

	"github.com/go-faster/jx"

	"github.com/xenking/stripe-checkout/internal/domain/order"
	"github.com/xenking/stripe-checkout/internal/domain/pricing"
)

const maxBodySize = 1 << 20

// CreateOrder creates an order from submitted (item_id, quantity) pairs.
// Responds 201 with the new order id, or 400 with per-field problems.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return
	}

	in, err := decodeOrderRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	orderID, err := h.creator.Create(r.Context(), r.Header.Get("X-User-ID"), in)
	if err != nil {
		writeDomainError(w, r, "create order", err)
		return
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("order_id")
	e.Str(orderID)
	e.ObjEnd()
	writeJSON(w, http.StatusCreated, &e)
}

// decodeOrderRequest parses {"items": [{"item_id", "quantity"}],
// "discount_id"?, "tax_id"?}. Unknown fields are skipped; structural
// problems fail the decode.
func decodeOrderRequest(body []byte) (order.CreateInput, error) {
	var in order.CreateInput
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				var ln order.LineInput
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					switch key {
					case "item_id":
						s, err := d.Str()
						ln.ItemID = s
						return err
					case "quantity":
						n, err := d.Int()
						ln.Quantity = n
						return err
					default:
						return d.Skip()
					}
				}); err != nil {
					return err
				}
				in.Lines = append(in.Lines, ln)
				return nil
			})
		case "discount_id":
			s, err := d.Str()
			in.DiscountID = s
			return err
		case "tax_id":
			s, err := d.Str()
			in.TaxID = s
			return err
		default:
			return d.Skip()
		}
	})
	return in, err
}

// GetOrder returns order details with the derived display total.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, "get order", err)
		return
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("user_id")
	e.Str(o.UserID)
	e.FieldStart("created_at")
	e.Str(o.CreatedAt.Format(time.RFC3339))
	e.FieldStart("lines")
	e.ArrStart()
	for _, ln := range o.Lines {
		e.ObjStart()
		e.FieldStart("item_id")
		e.Str(ln.ItemID)
		e.FieldStart("name")
		e.Str(ln.Item.Name)
		e.FieldStart("price")
		e.Str(ln.Item.Price.StringFixed(2))
		e.FieldStart("currency")
		e.Str(string(ln.Item.Currency))
		e.FieldStart("quantity")
		e.Int(ln.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	if o.Discount != nil {
		e.FieldStart("discount")
		e.Str(o.Discount.Name)
	}
	if o.Tax != nil {
		e.FieldStart("tax")
		e.Str(o.Tax.Name)
	}
	e.FieldStart("total")
	e.Str(pricing.OrderTotal(o).StringFixed(2))
	e.ObjEnd()
	writeJSON(w, http.StatusOK, &e)
}

// CheckoutOrder creates a payment session for a whole order.
func (h *Handler) CheckoutOrder(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.checkout.CheckoutOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, "order checkout", err)
		return
	}
	writeSessionID(w, sessionID)
}
