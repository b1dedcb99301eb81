package tax

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested tax does not exist.
var ErrNotFound = errors.New("tax not found")

// Tax holds a percentage rate in [0, 100].
type Tax struct {
	ID   string
	Name string
	Rate decimal.Decimal
}

// Repository defines read operations for taxes.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Tax, error)
}
