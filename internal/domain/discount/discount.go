package discount

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested discount does not exist.
var ErrNotFound = errors.New("discount not found")

// Discount reduces an order's price. Amount is interpreted as a percentage
// by the per-line payment pricing and as an absolute value by the display
// total; see the pricing package for the two operations.
type Discount struct {
	ID     string
	Name   string
	Amount decimal.Decimal
}

// Repository defines read operations for discounts.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Discount, error)
}
