// Command seed applies migrations and creates the first admin account and,
// optionally, a handful of sample products.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository/postgres"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/migrations"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

var sampleProducts = []service.ProductInput{
	{Name: "Classic Tee", Description: "Heavyweight cotton t-shirt.", Price: 1999, Category: "apparel", Stock: 50},
	{Name: "Canvas Tote", Description: "Everyday carry-all.", Price: 1499, Category: "accessories", Stock: 30},
	{Name: "Trail Runner", Description: "Lightweight running shoe.", Price: 8900, Category: "shoes", Stock: 12},
	{Name: "Enamel Mug", Description: "Camp mug, 350 ml.", Price: 1200, Category: "home", Stock: 40},
	{Name: "Wool Beanie", Description: "Merino knit hat.", Price: 2500, Category: "apparel", Stock: 25},
}

func main() {
	cfg, err := config.LoadSeed()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("storefront-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("seed complete")
}

func run(ctx context.Context, cfg *config.SeedConfig, log *slog.Logger) error {
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	producer := event.NewProducer(event.NewLogPublisher(log), log)
	users := service.NewUserService(
		postgres.NewUserRepository(pool),
		auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry),
		producer, log, cfg.BcryptCost,
	)

	_, err = users.CreateUser(ctx, service.CreateUserInput{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		IsAdmin:  true,
	})
	switch {
	case errors.Is(err, apperrors.ErrAlreadyExists):
		log.Info("admin user already exists", slog.String("email", cfg.AdminEmail))
	case err != nil:
		return fmt.Errorf("create admin: %w", err)
	default:
		log.Info("admin user created", slog.String("email", cfg.AdminEmail))
	}

	if !cfg.SeedProducts {
		return nil
	}

	products := service.NewProductService(postgres.NewProductRepository(pool), producer, log)
	n, err := products.CountProducts(ctx)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		log.Info("catalog not empty, skipping sample products", slog.Int("products", n))
		return nil
	}
	for _, in := range sampleProducts {
		if _, err := products.CreateProduct(ctx, in); err != nil {
			return fmt.Errorf("create product %q: %w", in.Name, err)
		}
	}
	log.Info("sample products created", slog.Int("count", len(sampleProducts)))
	return nil
}
