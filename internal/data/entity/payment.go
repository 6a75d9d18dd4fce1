package entity

import "github.com/shopspring/decimal"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// PaymentSummary is the read-only view of the payment collaborator's record
// for a confirmed booking.
type PaymentSummary struct {
	Status   PaymentStatus
	Amount   decimal.Decimal
	Currency string
}
