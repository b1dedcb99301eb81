// Command seed-db populates the database with a demo catalog: items in both
// supported currencies plus a discount and a tax to attach to orders.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/stripe-checkout/internal/repository"
)

type seedItem struct {
	name, description, price, currency string
}

var seedItems = []seedItem{
	{"Mechanical Keyboard", "Hot-swappable 87-key board with PBT caps.", "129.00", "usd"},
	{"Trackball Mouse", "Wireless thumb-operated trackball.", "59.90", "usd"},
	{"Desk Mat", "900x400mm stitched-edge desk mat.", "19.99", "usd"},
	{"USB-C Dock", "Dual-display dock with 100W passthrough.", "4590.00", "rub"},
	{"Laptop Stand", "Aluminium adjustable stand.", "2390.00", "rub"},
}

var seedDiscounts = [][2]string{
	{"Spring sale", "5.00"},
	{"Loyal customer", "10.00"},
}

var seedTaxes = [][2]string{
	{"VAT", "20.00"},
	{"Sales tax", "10.00"},
}

func main() {
	var databaseURL string
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return seedItemsTable(ctx, pool) })
	g.Go(func() error { return seedAdjustments(ctx, pool) })
	return g.Wait()
}

func seedItemsTable(ctx context.Context, pool *pgxpool.Pool) error {
	const insert = `INSERT INTO items (id, name, description, price, currency)
		VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`

	for _, it := range seedItems {
		price, err := decimal.NewFromString(it.price)
		if err != nil {
			return errors.Wrapf(err, "parse price for %q", it.name)
		}
		if _, err := pool.Exec(ctx, insert,
			uuid.NewSHA1(uuid.NameSpaceOID, []byte("item:"+it.name)).String(),
			it.name, it.description, price, it.currency,
		); err != nil {
			return errors.Wrapf(err, "insert item %q", it.name)
		}
	}

	slog.Info("items seeded", slog.Int("count", len(seedItems)))
	return nil
}

func seedAdjustments(ctx context.Context, pool *pgxpool.Pool) error {
	const insertDiscount = `INSERT INTO discounts (id, name, amount)
		VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`
	const insertTax = `INSERT INTO taxes (id, name, rate)
		VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`

	for _, d := range seedDiscounts {
		amount, err := decimal.NewFromString(d[1])
		if err != nil {
			return errors.Wrapf(err, "parse amount for %q", d[0])
		}
		if _, err := pool.Exec(ctx, insertDiscount,
			uuid.NewSHA1(uuid.NameSpaceOID, []byte("discount:"+d[0])).String(), d[0], amount,
		); err != nil {
			return errors.Wrapf(err, "insert discount %q", d[0])
		}
	}

	for _, t := range seedTaxes {
		rate, err := decimal.NewFromString(t[1])
		if err != nil {
			return errors.Wrapf(err, "parse rate for %q", t[0])
		}
		if _, err := pool.Exec(ctx, insertTax,
			uuid.NewSHA1(uuid.NameSpaceOID, []byte("tax:"+t[0])).String(), t[0], rate,
		); err != nil {
			return errors.Wrapf(err, "insert tax %q", t[0])
		}
	}

	slog.Info("adjustments seeded",
		slog.Int("discounts", len(seedDiscounts)),
		slog.Int("taxes", len(seedTaxes)),
	)
	return nil
}
