// Package simulated is a payment provider that approves every charge after
// a fixed delay.
package simulated

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/payment"
)

// Provider is the development payment provider.
type Provider struct {
	delay time.Duration
}

// NewProvider creates a provider that takes delay to answer.
func NewProvider(delay time.Duration) *Provider {
	return &Provider{delay: delay}
}

func (p *Provider) Name() string {
	return "simulated"
}

// Charge waits for the configured delay and succeeds. It returns ctx.Err()
// if the caller gives up first.
func (p *Provider) Charge(ctx context.Context, _ *payment.ChargeInput) (*payment.ChargeResult, error) {
	if p.delay > 0 {
		t := time.NewTimer(p.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return &payment.ChargeResult{
		ProviderPaymentID: "sim_pay_" + uuid.New().String(),
		Status:            domain.PaymentStatusSucceeded,
	}, nil
}
