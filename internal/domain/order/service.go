package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xenking/stripe-checkout/internal/domain/discount"
	"github.com/xenking/stripe-checkout/internal/domain/item"
	"github.com/xenking/stripe-checkout/internal/domain/tax"
)

// LineInput is one submitted (item_id, quantity) pair.
type LineInput struct {
	ItemID   string
	Quantity int
}

// CreateInput is an order-creation request. DiscountID and TaxID are
// optional; empty means no adjustment.
type CreateInput struct {
	Lines      []LineInput
	DiscountID string
	TaxID      string
}

// Service encapsulates order creation: input validation, item and adjustment
// resolution, and atomic persistence.
type Service struct {
	items     item.Repository
	discounts discount.Repository
	taxes     tax.Repository
	orders    Repository
	lg        *zap.Logger
}

// NewService creates an order Service with the required dependencies.
func NewService(
	items item.Repository,
	discounts discount.Repository,
	taxes tax.Repository,
	orders Repository,
	lg *zap.Logger,
) *Service {
	return &Service{
		items:     items,
		discounts: discounts,
		taxes:     taxes,
		orders:    orders,
		lg:        lg,
	}
}

// Create validates the submitted lines, verifies every item id against the
// catalog, resolves the optional discount and tax, and persists a new order
// owned by userID. It returns the created order id. All validation problems
// are collected into a single *ValidationError; nothing is persisted unless
// the whole request is valid.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (string, error) {
	fields := make(map[string]string)

	if len(in.Lines) == 0 {
		fields["items"] = "at least one item is required"
		return "", &ValidationError{Fields: fields}
	}

	ids := make([]string, 0, len(in.Lines))
	for i, ln := range in.Lines {
		if ln.Quantity <= 0 {
			fields[fmt.Sprintf("items[%d].quantity", i)] = "must be greater than 0"
		}
		if ln.ItemID == "" {
			fields[fmt.Sprintf("items[%d].item_id", i)] = "is required"
			continue
		}
		ids = append(ids, ln.ItemID)
	}

	// Batch fetch so unknown ids are reported per-field in one pass.
	fetched, err := s.items.GetByIDs(ctx, ids)
	if err != nil {
		return "", errors.Wrap(err, "get items")
	}
	known := make(map[string]struct{}, len(fetched))
	for _, it := range fetched {
		known[it.ID] = struct{}{}
	}
	for i, ln := range in.Lines {
		if ln.ItemID == "" {
			continue
		}
		if _, ok := known[ln.ItemID]; !ok {
			fields[fmt.Sprintf("items[%d].item_id", i)] = fmt.Sprintf("item %s not found", ln.ItemID)
		}
	}

	var d *discount.Discount
	if in.DiscountID != "" {
		d, err = s.discounts.GetByID(ctx, in.DiscountID)
		if errors.Is(err, discount.ErrNotFound) {
			fields["discount_id"] = fmt.Sprintf("discount %s not found", in.DiscountID)
		} else if err != nil {
			return "", errors.Wrap(err, "get discount")
		}
	}

	var t *tax.Tax
	if in.TaxID != "" {
		t, err = s.taxes.GetByID(ctx, in.TaxID)
		if errors.Is(err, tax.ErrNotFound) {
			fields["tax_id"] = fmt.Sprintf("tax %s not found", in.TaxID)
		} else if err != nil {
			return "", errors.Wrap(err, "get tax")
		}
	}

	if len(fields) > 0 {
		return "", &ValidationError{Fields: fields}
	}

	o := &Order{
		ID:       uuid.New().String(),
		UserID:   userID,
		Lines:    make([]Line, len(in.Lines)),
		Discount: d,
		Tax:      t,
	}
	for i, ln := range in.Lines {
		o.Lines[i] = Line{
			ID:       uuid.New().String(),
			ItemID:   ln.ItemID,
			Quantity: ln.Quantity,
		}
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return "", errors.Wrap(err, "create order")
	}

	s.lg.Info("order created",
		zap.String("order_id", o.ID),
		zap.Int("lines", len(o.Lines)),
		zap.Bool("discount", d != nil),
		zap.Bool("tax", t != nil),
	)
	return o.ID, nil
}
