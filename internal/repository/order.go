package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/stripe-checkout/internal/domain/discount"
	"github.com/xenking/stripe-checkout/internal/domain/item"
	"github.com/xenking/stripe-checkout/internal/domain/order"
	"github.com/xenking/stripe-checkout/internal/domain/tax"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, user_id, discount_id, tax_id)
		VALUES ($1, $2, $3, $4)`

	insertOrderLineSQL = `INSERT INTO order_lines (id, order_id, item_id, quantity, position)
		VALUES ($1, $2, $3, $4, $5)`

	getOrderSQL = `SELECT o.id, o.user_id, o.created_at,
			d.id, d.name, d.amount,
			t.id, t.name, t.rate
		FROM orders o
		LEFT JOIN discounts d ON d.id = o.discount_id
		LEFT JOIN taxes t ON t.id = o.tax_id
		WHERE o.id = $1`

	getOrderLinesSQL = `SELECT l.id, l.item_id, l.quantity,
			i.id, i.name, i.description, i.price, i.currency
		FROM order_lines l
		JOIN items i ON i.id = l.item_id
		WHERE l.order_id = $1
		ORDER BY l.position`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order and its lines in a single transaction so a
// failed line insert never leaves a partial order behind.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create order: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var discountID, taxID *string
	if o.Discount != nil {
		discountID = &o.Discount.ID
	}
	if o.Tax != nil {
		taxID = &o.Tax.ID
	}

	if _, err := tx.Exec(ctx, insertOrderSQL, o.ID, o.UserID, discountID, taxID); err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	for i, ln := range o.Lines {
		if _, err := tx.Exec(ctx, insertOrderLineSQL, ln.ID, o.ID, ln.ItemID, ln.Quantity, i); err != nil {
			return fmt.Errorf("creating line %d of order %q: %w", i, o.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create order %q: %w", o.ID, err)
	}
	return nil
}

// Get loads an order with its lines (items resolved, in submission order),
// discount, and tax. Returns order.ErrNotFound when the order is absent.
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	var (
		o          order.Order
		dID, dName *string
		dAmount    *decimal.Decimal
		tID, tName *string
		tRate      *decimal.Decimal
	)
	err := r.pool.QueryRow(ctx, getOrderSQL, id).Scan(
		&o.ID, &o.UserID, &o.CreatedAt,
		&dID, &dName, &dAmount,
		&tID, &tName, &tRate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	if dID != nil {
		o.Discount = &discount.Discount{ID: *dID, Name: *dName, Amount: *dAmount}
	}
	if tID != nil {
		o.Tax = &tax.Tax{ID: *tID, Name: *tName, Rate: *tRate}
	}

	rows, err := r.pool.Query(ctx, getOrderLinesSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting lines of order %q: %w", id, err)
	}
	o.Lines, err = pgx.CollectRows(rows, scanOrderLine)
	if err != nil {
		return nil, fmt.Errorf("getting lines of order %q: %w", id, err)
	}

	return &o, nil
}

func scanOrderLine(row pgx.CollectableRow) (order.Line, error) {
	var (
		ln       order.Line
		price    decimal.Decimal
		currency string
	)
	err := row.Scan(
		&ln.ID, &ln.ItemID, &ln.Quantity,
		&ln.Item.ID, &ln.Item.Name, &ln.Item.Description, &price, &currency,
	)
	ln.Item.Price = price
	ln.Item.Currency = item.Currency(currency)
	return ln, err
}
