// Package recurring implements the recurring-transaction materialization
// engine: it expands each definition's recurrence rule over the window since
// its watermark and posts one transaction per due occurrence exactly once,
// advancing the watermark with every posting.
package recurring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/nate-dsc/finsync/internal/models"
	"github.com/nate-dsc/finsync/internal/recurdate"
	"github.com/nate-dsc/finsync/internal/rrule"
)

type Service struct {
	defs     DefinitionStore
	cards    CardLedger
	cats     CategoryStore
	warnings WarningSink
	validate *validator.Validate
	log      zerolog.Logger

	// Clock supplies "now" for sync passes invoked with a zero time.
	// Overridable for deterministic tests.
	Clock func() time.Time
}

func NewService(defs DefinitionStore, cards CardLedger, cats CategoryStore, warnings WarningSink, log zerolog.Logger) *Service {
	return &Service{
		defs:     defs,
		cards:    cards,
		cats:     cats,
		warnings: warnings,
		validate: validator.New(),
		log:      log,
		Clock:    time.Now,
	}
}

// SyncRecurringTransactions runs one materialization pass as of now (zero
// means the current time). Safe to call repeatedly: a calendar-day gate makes
// repeated same-day passes no-ops, and multi-day gaps are caught up through
// the expansion window. Per-definition failures are logged and isolated; the
// returned error is non-nil only when the initial definition fetch fails.
func (s *Service) SyncRecurringTransactions(ctx context.Context, now time.Time) error {
	if now.IsZero() {
		now = s.Clock()
	}

	defs, err := s.defs.ListDefinitions(ctx)
	if err != nil {
		return fmt.Errorf("fetch recurring definitions: %w", err)
	}

	for _, def := range defs {
		if err := s.processDefinition(ctx, def, now); err != nil {
			s.log.Error().Err(err).
				Int("definition_id", def.DefinitionID).
				Msg("Failed to process recurring definition")
		}
	}
	return nil
}

func (s *Service) processDefinition(ctx context.Context, def *models.RecurringDefinition, now time.Time) error {
	// Gate: already materialized for this calendar day.
	if def.LastProcessedAt != nil && !recurdate.NewCalendarDayElapsed(*def.LastProcessedAt, now) {
		return nil
	}

	windowStart := def.AnchorStartDate
	if def.LastProcessedAt != nil {
		windowStart = *def.LastProcessedAt
	}

	occurrences, err := rrule.Between(def.RecurrenceRule, def.AnchorStartDate, windowStart, now)
	if err != nil {
		return &RuleError{DefinitionID: def.DefinitionID, Err: err}
	}

	pending := s.pendingOccurrences(def, occurrences)
	if len(pending) == 0 {
		// Nothing due. The watermark deliberately stays put: the daily gate
		// already stops same-day re-scans, and the next pass re-expands the
		// same window until an occurrence lands in it.
		return nil
	}

	if def.IsInstallment && def.IsCardBacked() {
		return s.postCardOccurrences(ctx, def, pending, now)
	}
	return s.postOccurrences(ctx, def, pending, now)
}

// pendingOccurrences drops the prefix already covered by the watermark. The
// expansion window is inclusive on both ends so that the first-ever pass
// picks up an occurrence landing exactly on the anchor date; on later passes
// the inclusive start would replay the watermark day, so days the watermark
// has moved past are filtered here.
func (s *Service) pendingOccurrences(def *models.RecurringDefinition, occurrences []time.Time) []time.Time {
	if def.LastProcessedAt == nil {
		return occurrences
	}
	covered := recurdate.RecurrenceDate(*def.LastProcessedAt)
	var pending []time.Time
	for _, occ := range occurrences {
		if recurdate.RecurrenceDate(occ).After(covered) {
			pending = append(pending, occ)
		}
	}
	return pending
}

// postOccurrences posts pending occurrences in ascending date order, one
// atomic (insert, watermark-advance) unit each. Intermediate units advance
// the watermark to the occurrence itself so an interrupted batch resumes with
// exactly the unposted suffix; the final unit advances it to now.
func (s *Service) postOccurrences(ctx context.Context, def *models.RecurringDefinition, pending []time.Time, now time.Time) error {
	for i, occ := range pending {
		day := recurdate.RecurrenceDate(occ)
		processedAt := day
		if i == len(pending)-1 {
			processedAt = now
		}

		txn := buildTransaction(def, day)
		if err := s.defs.PostOccurrence(ctx, txn, def.DefinitionID, processedAt); err != nil {
			return fmt.Errorf("post occurrence %s: %w", recurdate.OccurrenceDBTimestamp(day), err)
		}

		s.log.Debug().
			Int("definition_id", def.DefinitionID).
			Str("occurrence", recurdate.OccurrenceDBTimestamp(day)).
			Str("processed_at", recurdate.DBTimestamp(processedAt)).
			Int64("amount", txn.Amount).
			Msg("Posted recurring occurrence")
	}
	return nil
}

// postCardOccurrences is the installment specialization: every posting also
// reserves the occurrence amount against the card. On insufficient credit the
// occurrence is not posted, the watermark is not advanced past it, one
// warning is raised and the definition halts for this tick. Posting partial
// installments out of order would corrupt the remaining-count accounting, so
// halt-and-surface beats skip-and-continue.
func (s *Service) postCardOccurrences(ctx context.Context, def *models.RecurringDefinition, pending []time.Time, now time.Time) error {
	attempted := def.Amount
	if attempted < 0 {
		attempted = -attempted
	}

	for i, occ := range pending {
		day := recurdate.RecurrenceDate(occ)
		processedAt := day
		if i == len(pending)-1 {
			processedAt = now
		}

		txn := buildTransaction(def, day)
		err := s.defs.PostCardOccurrence(ctx, txn, def.DefinitionID, processedAt, *def.CardID, attempted)

		var credErr *InsufficientCreditError
		if errors.As(err, &credErr) {
			warning := &models.CreditWarning{
				Reason:          models.WarningInsufficientCreditLimit,
				CardID:          credErr.CardID,
				CardName:        credErr.CardName,
				AttemptedAmount: credErr.AttemptedAmount,
				AvailableLimit:  credErr.AvailableLimit,
				CreatedAt:       now,
			}
			if werr := s.warnings.SetWarning(ctx, warning); werr != nil {
				s.log.Error().Err(werr).Msg("Failed to store credit warning")
			}
			s.log.Warn().
				Int("definition_id", def.DefinitionID).
				Int("card_id", credErr.CardID).
				Int64("attempted", credErr.AttemptedAmount).
				Int64("available", credErr.AvailableLimit).
				Msg("Skipped installment occurrence: insufficient credit")
			return nil
		}
		if err != nil {
			return fmt.Errorf("post card occurrence %s: %w", recurdate.OccurrenceDBTimestamp(day), err)
		}
	}
	return nil
}

func buildTransaction(def *models.RecurringDefinition, day time.Time) *models.Transaction {
	defID := def.DefinitionID
	return &models.Transaction{
		Amount:      def.Amount,
		Description: def.Description,
		CategoryID:  def.CategoryID,
		Date:        day,
		RecurringID: &defID,
		CardID:      def.CardID,
		FlowType:    def.FlowType,
	}
}
