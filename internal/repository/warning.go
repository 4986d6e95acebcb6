package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/nate-dsc/finsync/internal/database"
	"github.com/nate-dsc/finsync/internal/models"
)

// WarningRepository is the single-slot credit warning store: one row at most,
// last write wins.
type WarningRepository struct {
	db *database.DB
}

func NewWarningRepository(db *database.DB) *WarningRepository {
	return &WarningRepository{db: db}
}

func (r *WarningRepository) SetWarning(ctx context.Context, w *models.CreditWarning) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO recurring_credit_warning (warning_id, reason, card_id, card_name, attempted_amount, available_limit, created_at)
		 VALUES (1, $1, $2, $3, $4, $5, $6)
		 ON CONFLICT (warning_id) DO UPDATE SET
		   reason = EXCLUDED.reason,
		   card_id = EXCLUDED.card_id,
		   card_name = EXCLUDED.card_name,
		   attempted_amount = EXCLUDED.attempted_amount,
		   available_limit = EXCLUDED.available_limit,
		   created_at = EXCLUDED.created_at`,
		w.Reason, w.CardID, w.CardName, w.AttemptedAmount, w.AvailableLimit, w.CreatedAt)
	return err
}

func (r *WarningRepository) ClearWarning(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM recurring_credit_warning WHERE warning_id = 1`)
	return err
}

// CurrentWarning returns the outstanding warning, or nil when there is none.
func (r *WarningRepository) CurrentWarning(ctx context.Context) (*models.CreditWarning, error) {
	w := &models.CreditWarning{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT reason, card_id, card_name, attempted_amount, available_limit, created_at
		 FROM recurring_credit_warning WHERE warning_id = 1`,
	).Scan(&w.Reason, &w.CardID, &w.CardName, &w.AttemptedAmount, &w.AvailableLimit, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}
