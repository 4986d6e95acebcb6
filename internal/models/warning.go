package models

import "time"

type WarningReason string

const (
	WarningInsufficientCreditLimit WarningReason = "INSUFFICIENT_CREDIT_LIMIT"
)

// CreditWarning is an ephemeral notification record raised when a card-backed
// occurrence cannot be posted. At most one warning is retained at a time; the
// last write wins and the consumer clears it.
type CreditWarning struct {
	Reason          WarningReason `json:"reason"`
	CardID          int           `json:"card_id"`
	CardName        string        `json:"card_name"`
	AttemptedAmount int64         `json:"attempted_amount"` // minor units, absolute
	AvailableLimit  int64         `json:"available_limit"`  // minor units at the time of the attempt
	CreatedAt       time.Time     `json:"created_at"`
}
