package models

import "time"

type FlowType string

const (
	FlowTypeIn  FlowType = "in"
	FlowTypeOut FlowType = "out"
)

// Apply normalizes a raw amount to the sign convention of the flow type:
// outflows are stored negative, inflows positive.
func (f FlowType) Apply(amount int64) int64 {
	if amount < 0 {
		amount = -amount
	}
	if f == FlowTypeOut {
		return -amount
	}
	return amount
}

// RecurringDefinition is a template that generates concrete transactions over
// time. AnchorStartDate and RecurrenceRule are immutable after creation;
// editing a recurrence means creating a new definition.
type RecurringDefinition struct {
	DefinitionID    int        `json:"definition_id"`
	Amount          int64      `json:"amount"` // minor units; sign mirrors FlowType
	Description     string     `json:"description"`
	CategoryID      int        `json:"category_id"`
	AnchorStartDate time.Time  `json:"anchor_start_date"` // UTC midnight, the rule's DTSTART
	RecurrenceRule  string     `json:"recurrence_rule"`   // RFC 5545 RRULE body, no DTSTART
	LastProcessedAt *time.Time `json:"last_processed_at"` // nil means never processed
	CardID          *int       `json:"card_id"`
	IsInstallment   bool       `json:"is_installment"`
	FlowType        FlowType   `json:"flow_type"`
	CreatedAt       time.Time  `json:"created_at"`
}

// IsCardBacked reports whether postings must be checked against a card limit.
func (d *RecurringDefinition) IsCardBacked() bool {
	return d.CardID != nil
}
