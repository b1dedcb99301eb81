package order

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/stripe-checkout/internal/domain/discount"
	"github.com/xenking/stripe-checkout/internal/domain/item"
	"github.com/xenking/stripe-checkout/internal/domain/tax"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// ValidationError enumerates per-field problems with an order-creation
// request. Field keys follow the request shape, e.g. "items[2].quantity".
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("validation failed:")
	for _, k := range keys {
		fmt.Fprintf(&b, " %s: %s;", k, e.Fields[k])
	}
	return strings.TrimSuffix(b.String(), ";")
}

// Line is one item entry in an order. The same item may appear in multiple
// lines; line order is the order in which the caller submitted them.
type Line struct {
	ID       string
	ItemID   string
	Quantity int
	Item     item.Item
}

// Order is the aggregate used for pricing: lines with their items resolved,
// plus the optional discount and tax. The total is never stored, it is
// derived from this state at read time.
type Order struct {
	ID        string
	UserID    string
	Lines     []Line
	Discount  *discount.Discount
	Tax       *tax.Tax
	CreatedAt time.Time
}

// Repository defines persistence operations for orders.
//
// Create must persist the order and all of its lines atomically: a failed
// line insert must not leave a partially created order behind. Get resolves
// lines (with items), discount, and tax in submission order.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
}
