package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/stripe-checkout/internal/domain/item"
)

const (
	listItemsSQL = `SELECT id, name, description, price, currency
		FROM items ORDER BY id`

	getItemByIDSQL = `SELECT id, name, description, price, currency
		FROM items WHERE id = $1`

	getItemsByIDsSQL = `SELECT id, name, description, price, currency
		FROM items WHERE id = ANY($1)`
)

var _ item.Repository = (*ItemRepository)(nil)

// ItemRepository implements item.Repository backed by PostgreSQL.
type ItemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository returns an ItemRepository that uses the given pool.
func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

// List returns all catalog items ordered by ID.
func (r *ItemRepository) List(ctx context.Context) ([]item.Item, error) {
	rows, err := r.pool.Query(ctx, listItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return pgx.CollectRows(rows, scanItem)
}

// GetByID returns a single item by its identifier.
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*item.Item, error) {
	rows, err := r.pool.Query(ctx, getItemByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting item %q: %w", id, err)
	}

	it, err := pgx.CollectExactlyOneRow(rows, scanItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, item.ErrNotFound
		}
		return nil, fmt.Errorf("getting item %q: %w", id, err)
	}
	return &it, nil
}

// GetByIDs returns items matching any of the given IDs.
func (r *ItemRepository) GetByIDs(ctx context.Context, ids []string) ([]item.Item, error) {
	rows, err := r.pool.Query(ctx, getItemsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting items by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanItem)
}

func scanItem(row pgx.CollectableRow) (item.Item, error) {
	var (
		it       item.Item
		price    decimal.Decimal
		currency string
	)
	err := row.Scan(&it.ID, &it.Name, &it.Description, &price, &currency)
	it.Price = price
	it.Currency = item.Currency(currency)
	return it, err
}
