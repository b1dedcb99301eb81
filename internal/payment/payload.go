package payment

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/stripe-checkout/internal/domain/item"
	"github.com/xenking/stripe-checkout/internal/domain/pricing"
)

var hundred = decimal.NewFromInt(100)

// ErrEmptyOrder is returned when a payment payload is requested for an order
// with zero lines. The session gateway must never be called in that case.
var ErrEmptyOrder = errors.New("order has no lines")

// LineItem is one priced entry in a checkout session request.
type LineItem struct {
	Currency        item.Currency
	Name            string
	Description     string
	UnitAmountMinor int64
	Quantity        int
}

// Payload is a provider-agnostic checkout session request. Handing it to a
// session gateway is the only provider-specific step.
type Payload struct {
	LineItems  []LineItem
	Mode       string
	SuccessURL string
	CancelURL  string
}

// BuildItemPayload builds a single-line payload for buying one unit of it.
// No tax or discount applies; the currency is the item's own.
func BuildItemPayload(it item.Item, successURL, cancelURL string) *Payload {
	return &Payload{
		LineItems: []LineItem{{
			Currency:        it.Currency,
			Name:            it.Name,
			Description:     it.Description,
			UnitAmountMinor: it.Price.Mul(hundred).Round(0).IntPart(),
			Quantity:        1,
		}},
		Mode:       "payment",
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	}
}

// BuildOrderPayload converts priced lines into a payload, quantities and
// amounts verbatim. It rejects an empty line set with ErrEmptyOrder.
func BuildOrderPayload(lines []pricing.PricedLine, successURL, cancelURL string) (*Payload, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	items := make([]LineItem, len(lines))
	for i, ln := range lines {
		items[i] = LineItem{
			Currency:        ln.Currency,
			Name:            ln.Name,
			Description:     ln.Description,
			UnitAmountMinor: ln.UnitAmountMinor,
			Quantity:        ln.Quantity,
		}
	}

	return &Payload{
		LineItems:  items,
		Mode:       "payment",
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	}, nil
}
