// Package billing requests payment-provider checkout targets. The credits
// ledger is reconciled entirely server-side via provider webhooks; the only
// client-visible effect is the redirect URL, and the balance is observed
// later through an independent profile fetch.
package billing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/solidgen/solidgen-go/internal/model"
)

// Provider selects the payment path.
type Provider string

const (
	// ProviderStripe buys credits with a card checkout session.
	ProviderStripe Provider = "stripe"
	// ProviderCrypto buys credits with a crypto invoice.
	ProviderCrypto Provider = "crypto"
)

// API is the subset of backend operations the billing flow depends on.
type API interface {
	StripeCheckout(ctx context.Context, token string, credits int) (string, error)
	CryptoInvoice(ctx context.Context, token string, credits int, payCurrency string) (model.PaymentIntent, error)
}

// Service requests checkout targets for credit purchases.
type Service struct {
	api API
	log *zap.Logger
}

// NewService constructs a Service. A nil logger is replaced with a no-op one.
func NewService(api API, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{api: api, log: log}
}

// Purchase requests a checkout target for the given credit quantity.
// payCurrency is required for the crypto provider and ignored for stripe.
func (s *Service) Purchase(ctx context.Context, token string, credits int, provider Provider, payCurrency string) (model.PaymentIntent, error) {
	if credits <= 0 {
		return model.PaymentIntent{}, fmt.Errorf("validation: credits must be positive")
	}

	switch provider {
	case ProviderStripe:
		url, err := s.api.StripeCheckout(ctx, token, credits)
		if err != nil {
			return model.PaymentIntent{}, fmt.Errorf("stripe checkout: %w", err)
		}
		s.log.Info("checkout session created", zap.Int("credits", credits))
		return model.PaymentIntent{RedirectURL: url}, nil

	case ProviderCrypto:
		if payCurrency == "" {
			return model.PaymentIntent{}, fmt.Errorf("validation: pay_currency required for crypto")
		}
		intent, err := s.api.CryptoInvoice(ctx, token, credits, payCurrency)
		if err != nil {
			return model.PaymentIntent{}, fmt.Errorf("crypto invoice: %w", err)
		}
		s.log.Info("crypto invoice created",
			zap.Int("credits", credits),
			zap.String("pay_currency", payCurrency),
			zap.String("invoice_id", intent.InvoiceID),
		)
		return intent, nil

	default:
		return model.PaymentIntent{}, fmt.Errorf("validation: unknown provider %q", provider)
	}
}
