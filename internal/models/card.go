package models

import "time"

// Card tracks a credit card's limit state. LimitUsed is never clamped to
// MaxLimit at the write level, so AvailableCredit can go negative after a
// concurrent overspend; callers must treat negative as no capacity.
type Card struct {
	CardID    int       `json:"card_id"`
	Name      string    `json:"name"`
	MaxLimit  int64     `json:"max_limit"`  // minor units
	LimitUsed int64     `json:"limit_used"` // minor units, >= 0
	CreatedAt time.Time `json:"created_at"`
}

func (c *Card) AvailableCredit() int64 {
	return c.MaxLimit - c.LimitUsed
}
