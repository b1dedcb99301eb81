package payment

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/xenking/stripe-checkout/internal/domain/item"
)

// ErrNoCredential is returned when no secret key is configured for the
// currency a session must be created in.
var ErrNoCredential = errors.New("no credential for currency")

// GatewayError wraps a session-creation failure from the payment provider.
// Retriable distinguishes transport failures and provider 5xx responses from
// request errors; the core itself never retries.
type GatewayError struct {
	Status    int
	Message   string
	Retriable bool
}

func (e *GatewayError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("payment gateway: %s", e.Message)
	}
	return fmt.Sprintf("payment gateway: status %d: %s", e.Status, e.Message)
}

// SessionCreator exchanges a payload for an opaque checkout session id using
// the given provider credential. Implementations fail with *GatewayError.
type SessionCreator interface {
	CreateSession(ctx context.Context, secretKey string, p *Payload) (string, error)
}

// Credentials maps currencies to provider secret keys. Which credential to
// present is a function of the currency being charged.
type Credentials struct {
	keys map[item.Currency]string
}

// NewCredentials builds a Credentials set; empty keys are left unregistered.
func NewCredentials(usd, rub string) Credentials {
	keys := make(map[item.Currency]string, 2)
	if usd != "" {
		keys[item.USD] = usd
	}
	if rub != "" {
		keys[item.RUB] = rub
	}
	return Credentials{keys: keys}
}

// For returns the secret key for the given currency.
func (c Credentials) For(cur item.Currency) (string, error) {
	key, ok := c.keys[cur]
	if !ok {
		return "", errors.Wrapf(ErrNoCredential, "currency %q", cur)
	}
	return key, nil
}
