package domain

import "time"

// Payment methods offered at checkout.
const (
	PaymentMethodCredit = "credit"
	PaymentMethodPayPal = "paypal"
	PaymentMethodOther  = "other"
)

const (
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// Payment is the outcome of a checkout.
type Payment struct {
	ID        string    `json:"payment_id"`
	UserID    string    `json:"user_id"`
	Method    string    `json:"method"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	Items     int       `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}
