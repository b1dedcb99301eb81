//go:build integration

package repository

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/stripe-checkout/internal/domain/discount"
	"github.com/xenking/stripe-checkout/internal/domain/item"
	"github.com/xenking/stripe-checkout/internal/domain/order"
	"github.com/xenking/stripe-checkout/internal/domain/tax"
)

var pool *pgxpool.Pool

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("checkout"),
		postgres.WithUsername("checkout"),
		postgres.WithPassword("checkout"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("start postgres container: %v", err)
	}
	defer func() {
		if err := container.Terminate(context.Background()); err != nil {
			log.Printf("terminate postgres container: %v", err)
		}
	}()

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("connection string: %v", err)
	}

	pool, err = NewPool(ctx, connStr)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	if err := RunMigrations(ctx, pool); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	return m.Run()
}

// Fixture helpers. Every test inserts its own rows with fresh ids, so tests
// stay independent without truncating between them.

func insertItem(t *testing.T, name, price string, cur item.Currency) item.Item {
	t.Helper()

	it := item.Item{
		ID:          uuid.NewString(),
		Name:        name,
		Description: name + " description.",
		Price:       decimal.RequireFromString(price),
		Currency:    cur,
	}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO items (id, name, description, price, currency) VALUES ($1, $2, $3, $4, $5)`,
		it.ID, it.Name, it.Description, it.Price, string(it.Currency),
	)
	require.NoError(t, err)
	return it
}

func insertDiscount(t *testing.T, name, amount string) discount.Discount {
	t.Helper()

	d := discount.Discount{
		ID:     uuid.NewString(),
		Name:   name,
		Amount: decimal.RequireFromString(amount),
	}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO discounts (id, name, amount) VALUES ($1, $2, $3)`,
		d.ID, d.Name, d.Amount,
	)
	require.NoError(t, err)
	return d
}

func insertTax(t *testing.T, name, rate string) tax.Tax {
	t.Helper()

	tx := tax.Tax{
		ID:   uuid.NewString(),
		Name: name,
		Rate: decimal.RequireFromString(rate),
	}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO taxes (id, name, rate) VALUES ($1, $2, $3)`,
		tx.ID, tx.Name, tx.Rate,
	)
	require.NoError(t, err)
	return tx
}

func TestItemRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewItemRepository(pool)

	widget := insertItem(t, "Widget", "19.99", item.USD)
	gadget := insertItem(t, "Gadget", "500.00", item.RUB)

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, widget.ID)
		require.NoError(t, err)
		assert.Equal(t, widget.Name, got.Name)
		assert.True(t, got.Price.Equal(widget.Price), "want %s, got %s", widget.Price, got.Price)
		assert.Equal(t, item.USD, got.Currency)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, item.ErrNotFound)
	})

	t.Run("get by ids skips unknown", func(t *testing.T) {
		got, err := repo.GetByIDs(ctx, []string{widget.ID, gadget.ID, uuid.NewString()})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("list contains inserted", func(t *testing.T) {
		got, err := repo.List(ctx)
		require.NoError(t, err)

		ids := make(map[string]bool, len(got))
		for _, it := range got {
			ids[it.ID] = true
		}
		assert.True(t, ids[widget.ID])
		assert.True(t, ids[gadget.ID])
	})
}

func TestAdjustmentRepositories(t *testing.T) {
	ctx := context.Background()
	discounts := NewDiscountRepository(pool)
	taxes := NewTaxRepository(pool)

	d := insertDiscount(t, "Summer sale", "5.00")
	tx := insertTax(t, "VAT", "10")

	got, err := discounts.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Summer sale", got.Name)
	assert.True(t, got.Amount.Equal(d.Amount))

	_, err = discounts.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, discount.ErrNotFound)

	gotTax, err := taxes.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "VAT", gotTax.Name)
	assert.True(t, gotTax.Rate.Equal(tx.Rate))

	_, err = taxes.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, tax.ErrNotFound)
}

func TestOrderRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(pool)

	widget := insertItem(t, "Widget", "100.00", item.USD)
	gadget := insertItem(t, "Gadget", "20.00", item.USD)
	d := insertDiscount(t, "Sale", "5.00")
	tx := insertTax(t, "VAT", "10")

	o := &order.Order{
		ID:     uuid.NewString(),
		UserID: "u1",
		Lines: []order.Line{
			{ID: uuid.NewString(), ItemID: widget.ID, Quantity: 2},
			{ID: uuid.NewString(), ItemID: gadget.ID, Quantity: 1},
			{ID: uuid.NewString(), ItemID: widget.ID, Quantity: 3},
		},
		Discount: &d,
		Tax:      &tx,
	}
	require.NoError(t, repo.Create(ctx, o))

	got, err := repo.Get(ctx, o.ID)
	require.NoError(t, err)

	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, "u1", got.UserID)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)

	require.NotNil(t, got.Discount)
	assert.Equal(t, "Sale", got.Discount.Name)
	require.NotNil(t, got.Tax)
	assert.True(t, got.Tax.Rate.Equal(tx.Rate))

	require.Len(t, got.Lines, 3)
	assert.Equal(t, widget.ID, got.Lines[0].ItemID)
	assert.Equal(t, 2, got.Lines[0].Quantity)
	assert.Equal(t, gadget.ID, got.Lines[1].ItemID)
	assert.Equal(t, widget.ID, got.Lines[2].ItemID, "lines keep submission order")
	assert.Equal(t, 3, got.Lines[2].Quantity)

	assert.Equal(t, "Widget", got.Lines[0].Item.Name)
	assert.True(t, got.Lines[0].Item.Price.Equal(widget.Price))
	assert.Equal(t, item.USD, got.Lines[0].Item.Currency)
}

func TestOrderRepository_CreateRollsBackOnBadLine(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(pool)

	widget := insertItem(t, "Widget", "10.00", item.USD)

	o := &order.Order{
		ID:     uuid.NewString(),
		UserID: "u1",
		Lines: []order.Line{
			{ID: uuid.NewString(), ItemID: widget.ID, Quantity: 1},
			{ID: uuid.NewString(), ItemID: uuid.NewString(), Quantity: 1}, // violates the item FK
		},
	}
	require.Error(t, repo.Create(ctx, o))

	_, err := repo.Get(ctx, o.ID)
	assert.ErrorIs(t, err, order.ErrNotFound, "failed create must not leave a partial order")
}

func TestOrderRepository_GetMissing(t *testing.T) {
	repo := NewOrderRepository(pool)

	_, err := repo.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestOrderRepository_DiscountDeleteKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(pool)

	widget := insertItem(t, "Widget", "10.00", item.USD)
	d := insertDiscount(t, "Doomed", "1.00")

	o := &order.Order{
		ID:       uuid.NewString(),
		UserID:   "u1",
		Lines:    []order.Line{{ID: uuid.NewString(), ItemID: widget.ID, Quantity: 1}},
		Discount: &d,
	}
	require.NoError(t, repo.Create(ctx, o))

	_, err := pool.Exec(ctx, `DELETE FROM discounts WHERE id = $1`, d.ID)
	require.NoError(t, err)

	got, err := repo.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Discount, "deleting a discount detaches it from existing orders")
	require.Len(t, got.Lines, 1)
}
