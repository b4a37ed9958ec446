// Package event publishes storefront domain events.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Kafka topics for storefront domain events.
const (
	TopicCartUpdated       = "storefront.cart.updated"
	TopicCartCleared       = "storefront.cart.cleared"
	TopicCheckoutCompleted = "storefront.checkout.completed"
	TopicProductCreated    = "storefront.product.created"
	TopicProductUpdated    = "storefront.product.updated"
	TopicProductDeleted    = "storefront.product.deleted"
	TopicUserCreated       = "storefront.user.created"
	TopicUserDeleted       = "storefront.user.deleted"
)

const (
	AggregateTypeCart    = "cart"
	AggregateTypePayment = "payment"
	AggregateTypeProduct = "product"
	AggregateTypeUser    = "user"
)

const Source = "storefront"

// Publisher is satisfied by *pkgkafka.Producer and LogPublisher.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// LogPublisher stands in for Kafka when it is disabled: events are only logged.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(l *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: l}
}

func (p *LogPublisher) Publish(ctx context.Context, topic string, event *pkgkafka.Event) error {
	p.logger.DebugContext(ctx, "event (kafka disabled)",
		slog.String("topic", topic),
		slog.String("event_type", event.EventType),
		slog.String("aggregate_id", event.AggregateID),
	)
	return nil
}

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	Session     string      `json:"session"`
	Command     string      `json:"command"`
	Items       domain.Cart `json:"items"`
	ItemCount   int         `json:"item_count"`
	TotalAmount int64       `json:"total_amount"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	Session string `json:"session"`
	Reason  string `json:"reason"`
}

// CheckoutCompletedData is the payload for a checkout.completed event.
type CheckoutCompletedData struct {
	PaymentID string `json:"payment_id"`
	UserID    string `json:"user_id"`
	Method    string `json:"method"`
	Amount    int64  `json:"amount"`
	Items     int    `json:"items"`
}

// ProductData is the payload for product lifecycle events.
type ProductData struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Price     int64  `json:"price,omitempty"`
	Stock     int    `json:"stock,omitempty"`
}

// UserData is the payload for user lifecycle events.
type UserData struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email,omitempty"`
	IsAdmin bool   `json:"is_admin"`
}

// Producer builds storefront events and hands them to a Publisher.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, session string, kind domain.CommandKind, items domain.Cart) error {
	return p.publish(ctx, TopicCartUpdated, session, AggregateTypeCart, CartUpdatedData{
		Session:     session,
		Command:     string(kind),
		Items:       items,
		ItemCount:   items.ItemCount(),
		TotalAmount: items.TotalAmount(),
	})
}

// PublishCartCleared publishes a cart.cleared event. reason is "checkout"
// or "signout".
func (p *Producer) PublishCartCleared(ctx context.Context, session, reason string) error {
	return p.publish(ctx, TopicCartCleared, session, AggregateTypeCart, CartClearedData{
		Session: session,
		Reason:  reason,
	})
}

// PublishCheckoutCompleted publishes a checkout.completed event.
func (p *Producer) PublishCheckoutCompleted(ctx context.Context, payment *domain.Payment) error {
	return p.publish(ctx, TopicCheckoutCompleted, payment.ID, AggregateTypePayment, CheckoutCompletedData{
		PaymentID: payment.ID,
		UserID:    payment.UserID,
		Method:    payment.Method,
		Amount:    payment.Amount,
		Items:     payment.Items,
	})
}

func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, product.ID, AggregateTypeProduct, productData(product))
}

func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, product.ID, AggregateTypeProduct, productData(product))
}

func (p *Producer) PublishProductDeleted(ctx context.Context, productID string) error {
	return p.publish(ctx, TopicProductDeleted, productID, AggregateTypeProduct, ProductData{ProductID: productID})
}

func (p *Producer) PublishUserCreated(ctx context.Context, user *domain.User) error {
	return p.publish(ctx, TopicUserCreated, user.ID, AggregateTypeUser, UserData{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	})
}

func (p *Producer) PublishUserDeleted(ctx context.Context, userID string) error {
	return p.publish(ctx, TopicUserDeleted, userID, AggregateTypeUser, UserData{UserID: userID})
}

func productData(product *domain.Product) ProductData {
	return ProductData{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Stock:     product.Stock,
	}
}
