package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/nate-dsc/finsync/internal/database"
	"github.com/nate-dsc/finsync/internal/models"
	"github.com/nate-dsc/finsync/internal/recurring"
)

type CardRepository struct {
	db *database.DB
}

func NewCardRepository(db *database.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) CreateCard(ctx context.Context, card *models.Card) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO card (card_name, max_limit, limit_used) VALUES ($1, $2, $3)
		 RETURNING card_id, created_at`,
		card.Name, card.MaxLimit, card.LimitUsed,
	).Scan(&card.CardID, &card.CreatedAt)
}

func (r *CardRepository) GetCard(ctx context.Context, cardID int) (*models.Card, error) {
	card := &models.Card{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT card_id, card_name, max_limit, limit_used, created_at
		 FROM card WHERE card_id = $1`,
		cardID,
	).Scan(&card.CardID, &card.Name, &card.MaxLimit, &card.LimitUsed, &card.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, recurring.ErrCardNotFound
		}
		return nil, err
	}
	return card, nil
}

// Reserve increments the card's consumed limit. Non-positive amounts are a
// no-op; capacity is checked by callers before the increment, never here.
func (r *CardRepository) Reserve(ctx context.Context, cardID int, amount int64) error {
	if amount <= 0 {
		return nil
	}
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE card SET limit_used = limit_used + $2 WHERE card_id = $1`,
		cardID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return recurring.ErrCardNotFound
	}
	return nil
}
