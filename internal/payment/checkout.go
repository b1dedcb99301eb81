package payment

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/stripe-checkout/internal/domain/item"
	"github.com/xenking/stripe-checkout/internal/domain/order"
	"github.com/xenking/stripe-checkout/internal/domain/pricing"
)

// ServiceConfig holds the redirect URLs embedded into every payload.
type ServiceConfig struct {
	SuccessURL string
	CancelURL  string
}

// Service orchestrates checkout: it loads domain data, prices it, builds the
// payload, selects the credential for the charged currency, and exchanges
// the payload for a session id.
type Service struct {
	cfg      ServiceConfig
	items    item.Repository
	orders   order.Repository
	sessions SessionCreator
	creds    Credentials
	lg       *zap.Logger
}

// NewService creates a checkout Service.
func NewService(
	cfg ServiceConfig,
	items item.Repository,
	orders order.Repository,
	sessions SessionCreator,
	creds Credentials,
	lg *zap.Logger,
) *Service {
	return &Service{
		cfg:      cfg,
		items:    items,
		orders:   orders,
		sessions: sessions,
		creds:    creds,
		lg:       lg,
	}
}

// CheckoutItem creates a payment session for one unit of the given item,
// charged in the item's own currency.
func (s *Service) CheckoutItem(ctx context.Context, itemID string) (string, error) {
	it, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return "", errors.Wrapf(err, "get item %s", itemID)
	}

	key, err := s.creds.For(it.Currency)
	if err != nil {
		return "", err
	}

	payload := BuildItemPayload(*it, s.cfg.SuccessURL, s.cfg.CancelURL)

	sessionID, err := s.sessions.CreateSession(ctx, key, payload)
	if err != nil {
		return "", errors.Wrapf(err, "create session for item %s", itemID)
	}

	s.lg.Info("item checkout session created",
		zap.String("item_id", itemID),
		zap.String("session_id", sessionID),
	)
	return sessionID, nil
}

// CheckoutOrder prices the order, builds the payload, and creates a payment
// session. The credential is selected by the first line's currency. An order
// with zero lines fails with ErrEmptyOrder before the gateway is reached.
func (s *Service) CheckoutOrder(ctx context.Context, orderID string) (string, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return "", errors.Wrapf(err, "get order %s", orderID)
	}

	lines := pricing.PriceOrder(o)
	payload, err := BuildOrderPayload(lines, s.cfg.SuccessURL, s.cfg.CancelURL)
	if err != nil {
		return "", err
	}

	key, err := s.creds.For(lines[0].Currency)
	if err != nil {
		return "", err
	}

	sessionID, err := s.sessions.CreateSession(ctx, key, payload)
	if err != nil {
		return "", errors.Wrapf(err, "create session for order %s", orderID)
	}

	s.lg.Info("order checkout session created",
		zap.String("order_id", orderID),
		zap.String("session_id", sessionID),
		zap.Int("lines", len(lines)),
	)
	return sessionID, nil
}
