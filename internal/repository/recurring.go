package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nate-dsc/finsync/internal/database"
	"github.com/nate-dsc/finsync/internal/models"
	"github.com/nate-dsc/finsync/internal/recurring"
)

type RecurringRepository struct {
	db *database.DB
}

func NewRecurringRepository(db *database.DB) *RecurringRepository {
	return &RecurringRepository{db: db}
}

func (r *RecurringRepository) ListDefinitions(ctx context.Context) ([]*models.RecurringDefinition, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT recurring_id, amount, description, category_id, anchor_start_date, recurrence_rule,
		 last_processed_at, card_id, is_installment, flow_type, created_at
		 FROM recurring_transaction ORDER BY recurring_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []*models.RecurringDefinition
	for rows.Next() {
		def := &models.RecurringDefinition{}
		if err := rows.Scan(&def.DefinitionID, &def.Amount, &def.Description, &def.CategoryID,
			&def.AnchorStartDate, &def.RecurrenceRule, &def.LastProcessedAt, &def.CardID,
			&def.IsInstallment, &def.FlowType, &def.CreatedAt); err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

func (r *RecurringRepository) CreateDefinition(ctx context.Context, def *models.RecurringDefinition) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO recurring_transaction (amount, description, category_id, anchor_start_date,
		 recurrence_rule, card_id, is_installment, flow_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING recurring_id, created_at`,
		def.Amount, def.Description, def.CategoryID, def.AnchorStartDate,
		def.RecurrenceRule, def.CardID, def.IsInstallment, def.FlowType,
	).Scan(&def.DefinitionID, &def.CreatedAt)
}

func (r *RecurringRepository) DeleteDefinition(ctx context.Context, definitionID int, cascade bool) error {
	if !cascade {
		// The transaction FK is ON DELETE SET NULL: generated rows stand with
		// the back-reference nulled out.
		tag, err := r.db.Pool.Exec(ctx,
			`DELETE FROM recurring_transaction WHERE recurring_id = $1`, definitionID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return recurring.ErrDefinitionNotFound
		}
		return nil
	}

	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM transaction WHERE recurring_id = $1`, definitionID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			`DELETE FROM recurring_transaction WHERE recurring_id = $1`, definitionID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return recurring.ErrDefinitionNotFound
		}
		return nil
	})
}

// PostOccurrence inserts one generated transaction and advances the
// definition watermark in a single database transaction, so the pair is
// visible all-or-nothing.
func (r *RecurringRepository) PostOccurrence(ctx context.Context, txn *models.Transaction, definitionID int, processedAt time.Time) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := insertTransaction(ctx, tx, txn); err != nil {
			return err
		}
		return advanceWatermark(ctx, tx, definitionID, processedAt)
	})
}

// PostCardOccurrence reserves the occurrence amount against the card's limit
// and posts the transaction in one unit. The card row is read under FOR
// UPDATE so a concurrent reservation on the same card cannot slip between
// the headroom check and the increment.
func (r *RecurringRepository) PostCardOccurrence(ctx context.Context, txn *models.Transaction, definitionID int, processedAt time.Time, cardID int, amount int64) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var name string
		var maxLimit, limitUsed int64
		err := tx.QueryRow(ctx,
			`SELECT card_name, max_limit, limit_used FROM card WHERE card_id = $1 FOR UPDATE`,
			cardID,
		).Scan(&name, &maxLimit, &limitUsed)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return recurring.ErrCardNotFound
			}
			return fmt.Errorf("lock card row: %w", err)
		}

		available := maxLimit - limitUsed
		if available < amount {
			return &recurring.InsufficientCreditError{
				CardID:          cardID,
				CardName:        name,
				AttemptedAmount: amount,
				AvailableLimit:  available,
			}
		}

		if _, err := tx.Exec(ctx,
			`UPDATE card SET limit_used = limit_used + $2 WHERE card_id = $1`,
			cardID, amount); err != nil {
			return fmt.Errorf("reserve card limit: %w", err)
		}

		if err := insertTransaction(ctx, tx, txn); err != nil {
			return err
		}
		return advanceWatermark(ctx, tx, definitionID, processedAt)
	})
}

func insertTransaction(ctx context.Context, tx pgx.Tx, txn *models.Transaction) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO transaction (amount, description, category_id, transaction_date, recurring_id, card_id, flow_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING transaction_id, created_at`,
		txn.Amount, txn.Description, txn.CategoryID, txn.Date, txn.RecurringID, txn.CardID, txn.FlowType,
	).Scan(&txn.TransactionID, &txn.CreatedAt)
	if err != nil {
		return err
	}

	// Each posted transaction counts toward its category's usage.
	_, err = tx.Exec(ctx,
		`UPDATE category SET usage_count = usage_count + 1 WHERE category_id = $1`,
		txn.CategoryID)
	return err
}

func advanceWatermark(ctx context.Context, tx pgx.Tx, definitionID int, processedAt time.Time) error {
	tag, err := tx.Exec(ctx,
		`UPDATE recurring_transaction SET last_processed_at = $2 WHERE recurring_id = $1`,
		definitionID, processedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return recurring.ErrDefinitionNotFound
	}
	return nil
}
