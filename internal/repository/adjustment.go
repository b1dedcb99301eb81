package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/stripe-checkout/internal/domain/discount"
	"github.com/xenking/stripe-checkout/internal/domain/tax"
)

const (
	getDiscountByIDSQL = `SELECT id, name, amount FROM discounts WHERE id = $1`
	getTaxByIDSQL      = `SELECT id, name, rate FROM taxes WHERE id = $1`
)

var (
	_ discount.Repository = (*DiscountRepository)(nil)
	_ tax.Repository      = (*TaxRepository)(nil)
)

// DiscountRepository implements discount.Repository backed by PostgreSQL.
type DiscountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// GetByID returns a single discount by its identifier.
func (r *DiscountRepository) GetByID(ctx context.Context, id string) (*discount.Discount, error) {
	var d discount.Discount
	err := r.pool.QueryRow(ctx, getDiscountByIDSQL, id).Scan(&d.ID, &d.Name, &d.Amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrNotFound
		}
		return nil, fmt.Errorf("getting discount %q: %w", id, err)
	}
	return &d, nil
}

// TaxRepository implements tax.Repository backed by PostgreSQL.
type TaxRepository struct {
	pool *pgxpool.Pool
}

// NewTaxRepository returns a TaxRepository that uses the given pool.
func NewTaxRepository(pool *pgxpool.Pool) *TaxRepository {
	return &TaxRepository{pool: pool}
}

// GetByID returns a single tax by its identifier.
func (r *TaxRepository) GetByID(ctx context.Context, id string) (*tax.Tax, error) {
	var t tax.Tax
	err := r.pool.QueryRow(ctx, getTaxByIDSQL, id).Scan(&t.ID, &t.Name, &t.Rate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tax.ErrNotFound
		}
		return nil, fmt.Errorf("getting tax %q: %w", id, err)
	}
	return &t, nil
}
