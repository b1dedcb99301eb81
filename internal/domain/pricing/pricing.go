// Package pricing derives payment amounts from order state.
//
// Two operations coexist on purpose and must not be unified: PriceOrder
// treats the order discount as a percentage per line (the behaviour the
// payment payload is built from), while OrderTotal treats the same discount
// as an absolute subtraction (the display total). The divergence is pinned
// by tests.
package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xenking/stripe-checkout/internal/domain/item"
	"github.com/xenking/stripe-checkout/internal/domain/order"
)

var hundred = decimal.NewFromInt(100)

// PricedLine is one payment-ready entry derived from an order line.
// UnitAmountMinor is in minor currency units (cents, kopecks).
type PricedLine struct {
	Name            string
	Description     string
	Currency        item.Currency
	UnitAmountMinor int64
	Quantity        int
}

// PriceOrder computes one PricedLine per order line, in submission order.
//
// Per line: start from the item's base price, subtract the tax rate as a
// percentage, then subtract the discount amount as a percentage of the
// already-taxed price. Adjustments append human-readable notes to the item
// description. Negative results are clamped to zero. The minor amount is
// rounded half away from zero.
//
// An order with zero lines yields an empty slice; rejecting that case is
// the payload builder's job.
func PriceOrder(o *order.Order) []PricedLine {
	taxed := o.Tax != nil && o.Tax.Rate.IsPositive()
	discounted := o.Discount != nil && o.Discount.Amount.IsPositive()

	lines := make([]PricedLine, len(o.Lines))
	for i, ln := range o.Lines {
		unit := ln.Item.Price
		desc := ln.Item.Description

		if taxed || discounted {
			desc += fmt.Sprintf(" Base price: %s %s.",
				ln.Item.Price.StringFixed(2),
				strings.ToUpper(string(ln.Item.Currency)),
			)
		}
		if taxed {
			unit = unit.Sub(unit.Mul(o.Tax.Rate).Div(hundred))
			desc += fmt.Sprintf(" Tax %s%% applied.", o.Tax.Rate.String())
		}
		if discounted {
			unit = unit.Sub(unit.Mul(o.Discount.Amount).Div(hundred))
			desc += fmt.Sprintf(" Discount %s%% applied.", o.Discount.Amount.String())
		}
		if unit.IsNegative() {
			unit = decimal.Zero
		}

		lines[i] = PricedLine{
			Name:            ln.Item.Name,
			Description:     desc,
			Currency:        ln.Item.Currency,
			UnitAmountMinor: unit.Mul(hundred).Round(0).IntPart(),
			Quantity:        ln.Quantity,
		}
	}
	return lines
}

// OrderTotal computes the informational display total: sum of price times
// quantity over all lines, minus the discount amount taken as an absolute
// value, plus the tax rate applied as a percentage surcharge on the
// discounted subtotal.
//
// This intentionally differs from PriceOrder, which treats the discount as
// a percentage and the tax as a deduction. The two results are not
// reconciled.
func OrderTotal(o *order.Order) decimal.Decimal {
	total := decimal.Zero
	for _, ln := range o.Lines {
		total = total.Add(ln.Item.Price.Mul(decimal.NewFromInt(int64(ln.Quantity))))
	}

	if o.Discount != nil {
		total = total.Sub(o.Discount.Amount)
	}
	if o.Tax != nil && o.Tax.Rate.IsPositive() {
		total = total.Add(total.Mul(o.Tax.Rate).Div(hundred))
	}
	return total
}
