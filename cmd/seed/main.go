package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"storefront-be/internal/config"
	"storefront-be/internal/db"
	"storefront-be/internal/logger"
	"storefront-be/internal/product"
	"storefront-be/internal/user"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	adminEmail := flag.String("admin-email", "", "promote this registered user to admin")
	skipProducts := flag.Bool("skip-products", false, "do not insert the demo catalog")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.L().Fatal("failed to load config", zap.Error(err))
	}
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database, err := db.NewDatabase(cfg)
	if err != nil {
		logger.L().Fatal("failed to connect", zap.Error(err))
	}
	defer database.Close()

	var products productCreator
	if !*skipProducts {
		products = product.NewService(product.NewRepository(database), product.NewNoopCache())
	}
	// token issuing is never reached from the seeder
	users := user.NewService(user.NewRepository(database), nil)

	if err := seed(context.Background(), products, users, *adminEmail); err != nil {
		logger.L().Error("seed failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.L().Info("seed applied")
}

type productCreator interface {
	Create(ctx context.Context, input product.ProductInput) (*product.Product, error)
}

type adminPromoter interface {
	PromoteToAdmin(ctx context.Context, email string) error
}

// seed is safe to re-run: products whose SKU already exists are skipped.
func seed(ctx context.Context, products productCreator, users adminPromoter, adminEmail string) error {
	log := logger.FromCtx(ctx)

	if products != nil {
		created := 0
		for _, in := range demoProducts() {
			_, err := products.Create(ctx, in)
			if errors.Is(err, product.ErrDuplicateSKU) {
				continue
			}
			if err != nil {
				return err
			}
			created++
		}
		log.Info("demo products seeded", zap.Int("created", created))
	}

	if adminEmail != "" {
		if err := users.PromoteToAdmin(ctx, adminEmail); err != nil {
			return err
		}
	}
	return nil
}

func demoProducts() []product.ProductInput {
	price := decimal.RequireFromString
	return []product.ProductInput{
		{
			SKU:         "TS-CLASSIC-BLK",
			Name:        "Classic Crew Tee",
			Description: "Heavyweight cotton tee with a relaxed fit.",
			Price:       price("24.99"),
			Category:    product.CategoryTShirts,
			Images:      []string{"/images/tees/classic-black.jpg"},
			Stock:       120,
			Sizes:       []string{"S", "M", "L", "XL"},
			Colors:      []string{"black", "white"},
			Featured:    true,
		},
		{
			SKU:         "TS-POCKET-OLV",
			Name:        "Pocket Tee",
			Description: "Garment-dyed tee with a chest pocket.",
			Price:       price("29.00"),
			Category:    product.CategoryTShirts,
			Images:      []string{"/images/tees/pocket-olive.jpg"},
			Stock:       60,
			Sizes:       []string{"S", "M", "L"},
			Colors:      []string{"olive", "navy"},
		},
		{
			SKU:         "PT-CHINO-KHK",
			Name:        "Slim Chino",
			Description: "Stretch twill chino with a tapered leg.",
			Price:       price("59.50"),
			Category:    product.CategoryPants,
			Images:      []string{"/images/pants/chino-khaki.jpg"},
			Stock:       45,
			Sizes:       []string{"30", "32", "34", "36"},
			Colors:      []string{"khaki", "stone"},
			Featured:    true,
		},
		{
			SKU:         "PT-CARGO-BLK",
			Name:        "Utility Cargo Pant",
			Description: "Ripstop cargo with six pockets.",
			Price:       price("72.00"),
			Category:    product.CategoryPants,
			Images:      []string{"/images/pants/cargo-black.jpg"},
			Stock:       0,
			Sizes:       []string{"30", "32", "34"},
			Colors:      []string{"black"},
		},
		{
			SKU:         "SN-RUNNER-WHT",
			Name:        "Court Runner",
			Description: "Leather low-top on a cupsole.",
			Price:       price("110.00"),
			Category:    product.CategorySneakers,
			Images:      []string{"/images/sneakers/runner-white.jpg"},
			Stock:       30,
			Sizes:       []string{"40", "41", "42", "43", "44"},
			Colors:      []string{"white"},
			Featured:    true,
		},
		{
			SKU:         "SN-TRAIL-GRY",
			Name:        "Trail Knit",
			Description: "Knit upper with a lugged outsole.",
			Price:       price("134.99"),
			Category:    product.CategorySneakers,
			Images:      []string{"/images/sneakers/trail-grey.jpg"},
			Stock:       18,
			Sizes:       []string{"41", "42", "43"},
			Colors:      []string{"grey", "black"},
		},
	}
}
