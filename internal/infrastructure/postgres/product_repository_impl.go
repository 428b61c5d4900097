package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-ecommerce/internal/domain/entity"
	"github.com/oksasatya/go-ddd-ecommerce/internal/domain/repository"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *ProductRepository) List(ctx context.Context, f repository.ProductFilter, opts repository.ProductListOptions) ([]entity.Product, error) {
	q, args := buildListProductsSQL(f, opts)
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", mapError(err))
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", mapError(err))
	}
	if err := loadProductRelations(ctx, r.pool, products, opts.IncludeCategories, opts.IncludeImages); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) Count(ctx context.Context, f repository.ProductFilter) (int, error) {
	q, args := buildCountProductsSQL(f)
	var n int
	if err := r.pool.QueryRow(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", mapError(err))
	}
	return n, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("query product: %w", mapError(err))
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		return nil, mapError(err)
	}
	products := []entity.Product{p}
	if err := loadProductRelations(ctx, r.pool, products, true, true); err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product, categoryIDs []string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO products (sku, name, slug, description, price, compare_price, cost,
				stock, low_stock_threshold, weight, status, featured)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id, created_at, updated_at
		`, p.SKU, p.Name, p.Slug, p.Description, p.Price, p.ComparePrice, p.Cost,
			p.Stock, p.LowStockThreshold, p.Weight, string(p.Status), p.Featured,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert product: %w", mapError(err))
		}
		return replaceCategories(ctx, tx, p.ID, categoryIDs)
	})
}

// Update overwrites every column. A nil categoryIDs leaves the links untouched;
// an empty one removes them all.
func (r *ProductRepository) Update(ctx context.Context, p *entity.Product, categoryIDs []string) error {
	if !validID(p.ID) {
		return repository.ErrNotFound
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE products
			SET sku = $1, name = $2, slug = $3, description = $4, price = $5, compare_price = $6,
				cost = $7, stock = $8, low_stock_threshold = $9, weight = $10, status = $11,
				featured = $12, updated_at = now()
			WHERE id = $13
			RETURNING created_at, updated_at
		`, p.SKU, p.Name, p.Slug, p.Description, p.Price, p.ComparePrice, p.Cost,
			p.Stock, p.LowStockThreshold, p.Weight, string(p.Status), p.Featured, p.ID,
		).Scan(&p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update product: %w", mapError(err))
		}
		if categoryIDs == nil {
			return nil
		}
		return replaceCategories(ctx, tx, p.ID, categoryIDs)
	})
}

// Delete relies on ON DELETE CASCADE for images and category links.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) AddImage(ctx context.Context, img *entity.ProductImage) error {
	if !validID(img.ProductID) {
		return repository.ErrNotFound
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var locked string
		if err := tx.QueryRow(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, img.ProductID).Scan(&locked); err != nil {
			return fmt.Errorf("lock product: %w", mapError(err))
		}
		if img.Position < 0 {
			if err := tx.QueryRow(ctx,
				`SELECT COALESCE(MAX(position) + 1, 0) FROM product_images WHERE product_id = $1`,
				img.ProductID).Scan(&img.Position); err != nil {
				return fmt.Errorf("next image position: %w", mapError(err))
			}
		}
		if img.IsPrimary {
			if _, err := tx.Exec(ctx,
				`UPDATE product_images SET is_primary = false WHERE product_id = $1 AND is_primary`,
				img.ProductID); err != nil {
				return fmt.Errorf("clear primary image: %w", mapError(err))
			}
		}
		err := tx.QueryRow(ctx, `
			INSERT INTO product_images (product_id, url, alt_text, position, is_primary)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`, img.ProductID, img.URL, img.AltText, img.Position, img.IsPrimary).Scan(&img.ID, &img.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert product image: %w", mapError(err))
		}
		return nil
	})
}

func replaceCategories(ctx context.Context, db DBTX, productID string, categoryIDs []string) error {
	if _, err := db.Exec(ctx, `DELETE FROM product_categories WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("clear product categories: %w", mapError(err))
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	_, err := db.Exec(ctx, `
		INSERT INTO product_categories (product_id, category_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING
	`, productID, categoryIDs)
	if err != nil {
		return fmt.Errorf("link product categories: %w", mapError(err))
	}
	return nil
}

// loadProductRelations attaches categories and images to products with one query per relation.
func loadProductRelations(ctx context.Context, db DBTX, products []entity.Product, withCategories, withImages bool) error {
	if len(products) == 0 || (!withCategories && !withImages) {
		return nil
	}
	ids := make([]string, len(products))
	byID := make(map[string]int, len(products))
	for i := range products {
		ids[i] = products[i].ID
		byID[products[i].ID] = i
		if withCategories {
			products[i].Categories = []entity.ProductCategory{}
		}
		if withImages {
			products[i].Images = []entity.ProductImage{}
		}
	}

	if withCategories {
		rows, err := db.Query(ctx, productCategoriesSQL, ids)
		if err != nil {
			return fmt.Errorf("query product categories: %w", mapError(err))
		}
		links, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.ProductCategory, error) {
			var pc entity.ProductCategory
			err := row.Scan(&pc.ProductID, &pc.CategoryID, &pc.CreatedAt,
				&pc.Category.ID, &pc.Category.Name, &pc.Category.Slug, &pc.Category.ParentID)
			return pc, err
		})
		if err != nil {
			return fmt.Errorf("scan product categories: %w", mapError(err))
		}
		for _, l := range links {
			if i, ok := byID[l.ProductID]; ok {
				products[i].Categories = append(products[i].Categories, l)
			}
		}
	}

	if withImages {
		rows, err := db.Query(ctx, productImagesSQL, ids)
		if err != nil {
			return fmt.Errorf("query product images: %w", mapError(err))
		}
		images, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.ProductImage, error) {
			var img entity.ProductImage
			err := row.Scan(&img.ID, &img.ProductID, &img.URL, &img.AltText, &img.Position, &img.IsPrimary, &img.CreatedAt)
			return img, err
		})
		if err != nil {
			return fmt.Errorf("scan product images: %w", mapError(err))
		}
		for _, img := range images {
			if i, ok := byID[img.ProductID]; ok {
				products[i].Images = append(products[i].Images, img)
			}
		}
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (entity.Product, error) {
	var (
		p      entity.Product
		status string
	)
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Slug, &p.Description, &p.Price, &p.ComparePrice, &p.Cost,
		&p.Stock, &p.LowStockThreshold, &p.Weight, &status, &p.Featured, &p.CreatedAt, &p.UpdatedAt)
	p.Status = entity.ProductStatus(status)
	return p, err
}

var _ repository.ProductRepository = (*ProductRepository)(nil)
