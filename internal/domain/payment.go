package domain

import "time"

// PaymentStatus enumerates payment lifecycle states.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusSucceeded  PaymentStatus = "succeeded"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// Payment records a charge against a user. Stripe identifiers are opaque
// strings; the integration behind them is stubbed.
type Payment struct {
	ID                    string
	UserID                string
	AmountCents           int64
	Currency              string
	Description           string
	StripePaymentIntentID string
	StripeSessionID       string
	StripeCustomerID      string
	Status                PaymentStatus
	MethodType            string
	MethodBrand           string
	MethodLast4           string
	FailureCode           string
	FailureMessage        string
	CreatedAt             time.Time
	UpdatedAt             time.Time
	PaidAt                *time.Time
}
