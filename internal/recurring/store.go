package recurring

import (
	"context"
	"time"

	"github.com/nate-dsc/finsync/internal/models"
)

// DefinitionStore is the persistence boundary for recurring definitions and
// the transactions they generate. The two Post methods are the engine's
// atomic units: insert and watermark advance commit or roll back together.
type DefinitionStore interface {
	// ListDefinitions returns every definition in stable store order.
	ListDefinitions(ctx context.Context) ([]*models.RecurringDefinition, error)

	CreateDefinition(ctx context.Context, def *models.RecurringDefinition) error

	// DeleteDefinition removes a definition. With cascade the generated
	// transactions are deleted in the same unit; without it their
	// back-references are nulled out and the rows stand.
	DeleteDefinition(ctx context.Context, definitionID int, cascade bool) error

	// PostOccurrence persists one generated transaction and advances the
	// definition's watermark to processedAt as one atomic unit.
	PostOccurrence(ctx context.Context, txn *models.Transaction, definitionID int, processedAt time.Time) error

	// PostCardOccurrence additionally reserves amount (absolute minor units)
	// against the card inside the same unit, reading and writing the limit
	// under a row lock. When the card lacks headroom it returns
	// *InsufficientCreditError and leaves every row untouched.
	PostCardOccurrence(ctx context.Context, txn *models.Transaction, definitionID int, processedAt time.Time, cardID int, amount int64) error
}

// CardLedger tracks consumed credit per card. Reserve is the only mutator in
// the recurring path; released capacity comes from card edits outside this
// core.
type CardLedger interface {
	CreateCard(ctx context.Context, card *models.Card) error
	GetCard(ctx context.Context, cardID int) (*models.Card, error)

	// Reserve increments the card's consumed limit. Non-positive amounts are
	// a no-op. Reserve itself does not check capacity; rejection happens
	// before the increment.
	Reserve(ctx context.Context, cardID int, amount int64) error
}

// CategoryStore is the minimal category surface the engine needs to satisfy
// the category foreign key.
type CategoryStore interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, categoryID int) (*models.Category, error)
}

// WarningSink is the single-slot notification store observed by the UI
// layer. Set overwrites any outstanding warning (last write wins).
type WarningSink interface {
	SetWarning(ctx context.Context, w *models.CreditWarning) error
	ClearWarning(ctx context.Context) error
	CurrentWarning(ctx context.Context) (*models.CreditWarning, error)
}
