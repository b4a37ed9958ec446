package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/payment"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// PayInput is the body of a checkout payment.
type PayInput struct {
	Method string `json:"method" validate:"required,oneof=credit paypal other"`
}

func validMethod(m string) bool {
	switch m {
	case domain.PaymentMethodCredit, domain.PaymentMethodPayPal, domain.PaymentMethodOther:
		return true
	}
	return false
}

// CheckoutService charges the session's cart and clears it on success.
type CheckoutService struct {
	carts    *CartService
	provider payment.Provider
	producer *event.Producer
	logger   *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(carts *CartService, provider payment.Provider, producer *event.Producer, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		provider: provider,
		producer: producer,
		logger:   logger,
	}
}

// Pay charges the current cart total. If ctx is cancelled while the
// provider is working, the cart is left untouched.
func (s *CheckoutService) Pay(ctx context.Context, session, userID string, input PayInput) (*domain.Payment, error) {
	if !validMethod(input.Method) {
		return nil, apperrors.InvalidInput("method must be one of credit, paypal, other")
	}

	view, err := s.carts.GetCart(ctx, session)
	if err != nil {
		return nil, err
	}
	if len(view.Items) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	res, err := s.provider.Charge(ctx, &payment.ChargeInput{
		Amount: view.TotalAmount,
		Method: input.Method,
		UserID: userID,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.logger.WarnContext(ctx, "payment abandoned",
				slog.String("session", session),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("charge: %w", err)
		}
		return nil, apperrors.PaymentFailed(err.Error())
	}
	if res.Status != domain.PaymentStatusSucceeded {
		return nil, apperrors.PaymentFailed(res.FailureReason)
	}

	pay := &domain.Payment{
		ID:        res.ProviderPaymentID,
		UserID:    userID,
		Method:    input.Method,
		Amount:    view.TotalAmount,
		Status:    res.Status,
		Items:     view.ItemCount,
		CreatedAt: time.Now().UTC(),
	}

	s.carts.Clear(ctx, session, ClearReasonCheckout)

	if err := s.producer.PublishCheckoutCompleted(ctx, pay); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish checkout.completed event",
			slog.String("payment_id", pay.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "checkout completed",
		slog.String("payment_id", pay.ID),
		slog.String("provider", s.provider.Name()),
		slog.Int64("amount", pay.Amount),
	)
	return pay, nil
}
