package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-ecommerce/internal/domain/entity"
	"github.com/oksasatya/go-ddd-ecommerce/internal/domain/repository"
)

type CategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) List(ctx context.Context) ([]entity.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, slug, parent_id FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", mapError(err))
	}
	cats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Category, error) {
		var c entity.Category
		err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", mapError(err))
	}
	return cats, nil
}

// Upsert inserts or renames a category by slug. Used by the seed command.
func (r *CategoryRepository) Upsert(ctx context.Context, c *entity.Category) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO categories (name, slug, parent_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, c.Name, c.Slug, c.ParentID).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("upsert category: %w", mapError(err))
	}
	return nil
}

var _ repository.CategoryRepository = (*CategoryRepository)(nil)
