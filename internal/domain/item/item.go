package item

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested item does not exist.
var ErrNotFound = errors.New("item not found")

// Currency is an ISO 4217 code in the lowercase form Stripe expects.
type Currency string

const (
	USD Currency = "usd"
	RUB Currency = "rub"
)

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	return c == USD || c == RUB
}

// Item represents a catalog entry available for purchase. Price is in major
// currency units with two fraction digits.
type Item struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Currency    Currency
}

// Repository defines read operations for the item catalog.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	GetByIDs(ctx context.Context, ids []string) ([]Item, error)
}
