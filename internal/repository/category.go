package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/nate-dsc/finsync/internal/database"
	"github.com/nate-dsc/finsync/internal/models"
	"github.com/nate-dsc/finsync/internal/recurring"
)

type CategoryRepository struct {
	db *database.DB
}

func NewCategoryRepository(db *database.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO category (category_name, usage_count) VALUES ($1, $2)
		 RETURNING category_id`,
		category.Name, category.UsageCount,
	).Scan(&category.CategoryID)
}

func (r *CategoryRepository) GetCategory(ctx context.Context, categoryID int) (*models.Category, error) {
	cat := &models.Category{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT category_id, category_name, usage_count FROM category WHERE category_id = $1`,
		categoryID,
	).Scan(&cat.CategoryID, &cat.Name, &cat.UsageCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, recurring.ErrCategoryNotFound
		}
		return nil, err
	}
	return cat, nil
}
