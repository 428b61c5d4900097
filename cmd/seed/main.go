package main

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-ecommerce/config"
	"github.com/oksasatya/go-ddd-ecommerce/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-ecommerce/internal/domain/repository"
	pginfra "github.com/oksasatya/go-ddd-ecommerce/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-ecommerce/pkg/helpers"
)

type seedConfig struct {
	AdminEmail    string `envconfig:"SEED_ADMIN_EMAIL" default:"admin@shop.local"`
	AdminPassword string `envconfig:"SEED_ADMIN_PASSWORD" default:"password123"`
	AdminName     string `envconfig:"SEED_ADMIN_NAME" default:"Store Admin"`
}

type seedProduct struct {
	sku, name, description string
	price                  float64
	stock                  int
	featured               bool
	categories             []string
}

var seedCategories = []string{"Electronics", "Books", "Home & Kitchen"}

var seedProducts = []seedProduct{
	{"ELEC-001", "Wireless Headphones", "Over-ear bluetooth headphones with noise cancelling", 129.99, 40, true, []string{"Electronics"}},
	{"ELEC-002", "USB-C Charger 65W", "Compact GaN wall charger", 39.50, 120, false, []string{"Electronics"}},
	{"BOOK-001", "The Go Programming Language", "Donovan and Kernighan", 34.00, 15, true, []string{"Books"}},
	{"HOME-001", "Pour Over Coffee Set", "Glass dripper with reusable filter", 24.90, 0, false, []string{"Home & Kitchen"}},
	{"HOME-002", "Smart Kettle", "Temperature controlled electric kettle", 79.00, 8, false, []string{"Home & Kitchen", "Electronics"}},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	var sc seedConfig
	if err := envconfig.Process("", &sc); err != nil {
		log.Fatalf("load seed config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolConfig{MaxConns: 2, MinConns: 1, MaxConnLife: cfg.DBMaxConnLife})
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := seedAdmin(ctx, pool, helpers.NewBcryptHasher(cfg.BcryptCost), sc); err != nil {
		logger.Fatalf("failed to seed admin: %v", err)
	}
	logger.WithField("email", sc.AdminEmail).Info("seeded admin user")

	categoryIDs, err := seedCategoryTree(ctx, pginfra.NewCategoryRepository(pool))
	if err != nil {
		logger.Fatalf("failed to seed categories: %v", err)
	}
	logger.WithField("count", len(categoryIDs)).Info("seeded categories")

	seedCatalog(ctx, pginfra.NewProductRepository(pool), categoryIDs, logger)
}

// seedAdmin creates the admin account or promotes an existing one with the same email.
func seedAdmin(ctx context.Context, pool *pgxpool.Pool, hasher *helpers.BcryptHasher, sc seedConfig) error {
	hash, err := hasher.Hash(sc.AdminPassword)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO users (email, password_hash, name, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET role = EXCLUDED.role, updated_at = now()
	`, sc.AdminEmail, hash, sc.AdminName, string(entity.RoleAdmin))
	return err
}

func seedCategoryTree(ctx context.Context, categories *pginfra.CategoryRepository) (map[string]string, error) {
	ids := make(map[string]string, len(seedCategories))
	for _, name := range seedCategories {
		c := &entity.Category{Name: name, Slug: entity.Slugify(name)}
		if err := categories.Upsert(ctx, c); err != nil {
			return nil, err
		}
		ids[name] = c.ID
	}
	return ids, nil
}

func seedCatalog(ctx context.Context, products *pginfra.ProductRepository, categoryIDs map[string]string, logger *logrus.Logger) {
	created := 0
	for _, sp := range seedProducts {
		desc := sp.description
		p := &entity.Product{
			SKU:               sp.sku,
			Name:              sp.name,
			Slug:              entity.Slugify(sp.name),
			Description:       &desc,
			Price:             sp.price,
			Stock:             sp.stock,
			LowStockThreshold: 5,
			Status:            entity.ProductActive,
			Featured:          sp.featured,
		}
		links := make([]string, 0, len(sp.categories))
		for _, name := range sp.categories {
			links = append(links, categoryIDs[name])
		}
		err := products.Create(ctx, p, links)
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			logger.WithField("sku", sp.sku).Debug("product already seeded")
		case err != nil:
			logger.WithError(err).WithField("sku", sp.sku).Error("seed product failed")
		default:
			created++
		}
	}
	logger.WithField("created", created).Info("seeded products")
}
