package recurring

import (
	"errors"
	"fmt"
)

var (
	// ErrDefinitionNotFound is returned when a definition id does not exist.
	ErrDefinitionNotFound = errors.New("recurring definition not found")

	// ErrCardNotFound is returned when a card id does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrCategoryNotFound is returned when a category id does not exist.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrInvalidAmount is returned when an amount is zero or negative where a
	// positive value is required.
	ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

	// ErrInvalidRule is returned when a recurrence rule string carries no
	// usable FREQ component.
	ErrInvalidRule = errors.New("invalid recurrence rule")
)

// InsufficientCreditError reports a card-backed posting that could not be
// made. It is a control-flow outcome rather than a store failure: during sync
// the materializer converts it into a credit warning and halts the
// definition for the tick; at installment creation it propagates to the
// caller.
type InsufficientCreditError struct {
	CardID          int
	CardName        string
	AttemptedAmount int64
	AvailableLimit  int64
}

func (e *InsufficientCreditError) Error() string {
	return fmt.Sprintf("insufficient credit on card %d: attempted %d, available %d",
		e.CardID, e.AttemptedAmount, e.AvailableLimit)
}

// RuleError marks a definition whose recurrence rule could not be expanded.
// The definition is skipped for the tick; others are unaffected.
type RuleError struct {
	DefinitionID int
	Err          error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("definition %d: %v", e.DefinitionID, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }
