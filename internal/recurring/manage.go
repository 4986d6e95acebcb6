package recurring

import (
	"context"
	"fmt"
	"time"

	"github.com/nate-dsc/finsync/internal/models"
	"github.com/nate-dsc/finsync/internal/recurdate"
	"github.com/nate-dsc/finsync/internal/rrule"
)

// NewRecurringInput describes an open-ended recurring charge or income.
type NewRecurringInput struct {
	Amount      int64 `validate:"required"` // absolute minor units
	Description string
	CategoryID  int `validate:"required,gt=0"`
	CardID      *int
	StartDate   time.Time       `validate:"required"`
	Rule        string          `validate:"required"`
	FlowType    models.FlowType `validate:"required,oneof=in out"`
}

// InstallmentPurchaseInput describes a credit-card purchase split into a
// fixed number of monthly postings.
type InstallmentPurchaseInput struct {
	InstallmentAmount int64 `validate:"required,gt=0"` // per posting, minor units
	Description       string
	CategoryID        int       `validate:"required,gt=0"`
	CardID            int       `validate:"required,gt=0"`
	Installments      int       `validate:"required,gt=0"`
	PurchaseDay       time.Time `validate:"required"`
}

// CreateRecurring validates and stores a new recurring definition. The stored
// amount is normalized to the flow type's sign convention.
func (s *Service) CreateRecurring(ctx context.Context, in NewRecurringInput) (*models.RecurringDefinition, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("validate recurring input: %w", err)
	}
	if !rrule.IsRecurring(in.Rule) {
		return nil, ErrInvalidRule
	}
	if _, err := s.cats.GetCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	if in.CardID != nil {
		if _, err := s.cards.GetCard(ctx, *in.CardID); err != nil {
			return nil, err
		}
	}

	def := &models.RecurringDefinition{
		Amount:          in.FlowType.Apply(in.Amount),
		Description:     in.Description,
		CategoryID:      in.CategoryID,
		AnchorStartDate: recurdate.RecurrenceDate(in.StartDate),
		RecurrenceRule:  in.Rule,
		CardID:          in.CardID,
		FlowType:        in.FlowType,
	}
	if err := s.defs.CreateDefinition(ctx, def); err != nil {
		return nil, fmt.Errorf("create recurring definition: %w", err)
	}
	return def, nil
}

// PostInstallmentPurchase creates a COUNT-bounded installment definition and
// reserves the purchase's total projected exposure up front, so the card's
// available limit reflects the outstanding installment debt immediately
// rather than only what has been posted so far.
func (s *Service) PostInstallmentPurchase(ctx context.Context, in InstallmentPurchaseInput) (*models.RecurringDefinition, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("validate installment input: %w", err)
	}
	if _, err := s.cats.GetCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	card, err := s.cards.GetCard(ctx, in.CardID)
	if err != nil {
		return nil, err
	}

	exposure := in.InstallmentAmount * int64(in.Installments)
	if card.AvailableCredit() < exposure {
		return nil, &InsufficientCreditError{
			CardID:          card.CardID,
			CardName:        card.Name,
			AttemptedAmount: exposure,
			AvailableLimit:  card.AvailableCredit(),
		}
	}

	if err := s.cards.Reserve(ctx, in.CardID, exposure); err != nil {
		return nil, fmt.Errorf("reserve installment exposure: %w", err)
	}

	cardID := in.CardID
	def := &models.RecurringDefinition{
		Amount:          models.FlowTypeOut.Apply(in.InstallmentAmount),
		Description:     in.Description,
		CategoryID:      in.CategoryID,
		AnchorStartDate: recurdate.RecurrenceDate(in.PurchaseDay),
		RecurrenceRule:  rrule.InstallmentRule(in.Installments),
		CardID:          &cardID,
		IsInstallment:   true,
		FlowType:        models.FlowTypeOut,
	}
	if err := s.defs.CreateDefinition(ctx, def); err != nil {
		return nil, fmt.Errorf("create installment definition: %w", err)
	}

	s.log.Info().
		Int("definition_id", def.DefinitionID).
		Int("card_id", in.CardID).
		Int("installments", in.Installments).
		Int64("exposure", exposure).
		Msg("Created installment purchase")
	return def, nil
}

// DeleteRecurring removes a definition. With cascade the generated
// transactions go with it; otherwise they stand with the back-reference
// nulled out.
func (s *Service) DeleteRecurring(ctx context.Context, definitionID int, cascade bool) error {
	return s.defs.DeleteDefinition(ctx, definitionID, cascade)
}

// AddCard registers a credit card with its limit.
func (s *Service) AddCard(ctx context.Context, name string, maxLimit int64) (*models.Card, error) {
	if maxLimit <= 0 {
		return nil, ErrInvalidAmount
	}
	card := &models.Card{Name: name, MaxLimit: maxLimit}
	if err := s.cards.CreateCard(ctx, card); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	return card, nil
}

// AddCategory registers a transaction category.
func (s *Service) AddCategory(ctx context.Context, name string) (*models.Category, error) {
	cat := &models.Category{Name: name}
	if err := s.cats.CreateCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return cat, nil
}

// CurrentWarning returns the outstanding credit warning, if any.
func (s *Service) CurrentWarning(ctx context.Context) (*models.CreditWarning, error) {
	return s.warnings.CurrentWarning(ctx)
}

// AcknowledgeWarning clears the outstanding credit warning.
func (s *Service) AcknowledgeWarning(ctx context.Context) error {
	return s.warnings.ClearWarning(ctx)
}
