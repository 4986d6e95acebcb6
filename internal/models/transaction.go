package models

import "time"

// Transaction is a posted occurrence. Immutable once created: the engine
// guarantees exactly one row per (RecurringID, Date) pair.
type Transaction struct {
	TransactionID int       `json:"transaction_id"`
	Amount        int64     `json:"amount"` // minor units, signed
	Description   string    `json:"description"`
	CategoryID    int       `json:"category_id"`
	Date          time.Time `json:"date"`         // occurrence calendar day at UTC midnight
	RecurringID   *int      `json:"recurring_id"` // back-reference, nulled on plain definition delete
	CardID        *int      `json:"card_id"`
	FlowType      FlowType  `json:"flow_type"`
	CreatedAt     time.Time `json:"created_at"`
}
