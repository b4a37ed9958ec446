// Package payment defines the checkout payment provider boundary.
package payment

import (
	"context"
)

// ChargeInput holds the parameters for charging a payment.
type ChargeInput struct {
	Amount int64
	Method string
	UserID string
}

// ChargeResult holds the result of a charge operation from the payment provider.
type ChargeResult struct {
	ProviderPaymentID string
	Status            string
	FailureReason     string
}

// Provider charges a customer for a checkout.
type Provider interface {
	Name() string

	// Charge blocks until the provider answers or ctx is done.
	Charge(ctx context.Context, input *ChargeInput) (*ChargeResult, error)
}
