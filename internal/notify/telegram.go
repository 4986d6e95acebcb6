// Package notify provides NotificationSink adapters around the single-slot
// warning store. The Telegram sink forwards each new warning to a chat in
// addition to persisting it.
package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/nate-dsc/finsync/internal/models"
	"github.com/nate-dsc/finsync/internal/recurring"
)

// sender is the slice of the Telegram API the sink needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSink decorates a warning store: the store stays authoritative and
// delivery is best-effort (a failed send is logged, never surfaced to the
// materializer).
type TelegramSink struct {
	store  recurring.WarningSink
	api    sender
	chatID int64
	log    zerolog.Logger
}

func NewTelegramSink(store recurring.WarningSink, api sender, chatID int64, log zerolog.Logger) *TelegramSink {
	return &TelegramSink{store: store, api: api, chatID: chatID, log: log}
}

func (s *TelegramSink) SetWarning(ctx context.Context, w *models.CreditWarning) error {
	if err := s.store.SetWarning(ctx, w); err != nil {
		return err
	}

	text := fmt.Sprintf(
		"⚠️ Installment skipped: insufficient credit\n\nCard: %s\nAttempted: %s\nAvailable: %s",
		w.CardName, formatAmount(w.AttemptedAmount), formatAmount(w.AvailableLimit),
	)
	if _, err := s.api.Send(tgbotapi.NewMessage(s.chatID, text)); err != nil {
		s.log.Error().Err(err).Int("card_id", w.CardID).Msg("Failed to send credit warning")
	}
	return nil
}

func (s *TelegramSink) ClearWarning(ctx context.Context) error {
	return s.store.ClearWarning(ctx)
}

func (s *TelegramSink) CurrentWarning(ctx context.Context) (*models.CreditWarning, error) {
	return s.store.CurrentWarning(ctx)
}

// formatAmount renders minor currency units as a decimal string.
func formatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
