package api

import (
	"net/http"
	"sort"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/stripe-checkout/internal/domain/item"
	"github.com/xenking/stripe-checkout/internal/domain/order"
	"github.com/xenking/stripe-checkout/internal/payment"
)

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("error")
	e.Str(msg)
	e.ObjEnd()
	writeJSON(w, status, &e)
}

func writeValidationError(w http.ResponseWriter, fields map[string]string) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("errors")
	e.ObjStart()
	for _, k := range keys {
		e.FieldStart(k)
		e.Str(fields[k])
	}
	e.ObjEnd()
	e.ObjEnd()
	writeJSON(w, http.StatusBadRequest, &e)
}

// writeDomainError maps the error taxonomy to response codes. Gateway
// failures are logged with their original message but surfaced to the
// client as a generic error.
func writeDomainError(w http.ResponseWriter, r *http.Request, op string, err error) {
	lg := zctx.From(r.Context())

	var vErr *order.ValidationError
	var gwErr *payment.GatewayError

	switch {
	case errors.Is(err, item.ErrNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.As(err, &vErr):
		writeValidationError(w, vErr.Fields)
	case errors.Is(err, payment.ErrEmptyOrder):
		writeError(w, http.StatusUnprocessableEntity, "order has no lines")
	case errors.As(err, &gwErr):
		lg.Error("payment gateway failure",
			zap.String("op", op),
			zap.Int("status", gwErr.Status),
			zap.Bool("retriable", gwErr.Retriable),
			zap.String("message", gwErr.Message),
		)
		writeError(w, http.StatusBadGateway, "payment session creation failed")
	default:
		lg.Error("request failed", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
