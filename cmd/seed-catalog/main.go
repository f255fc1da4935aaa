package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/config"
	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/internal/repository/postgres"
)

// Seeds the shape catalog and delivery-method table with the studio's
// defaults. Safe to re-run; existing rows are updated in place.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, cfg, logger)
	ctx := context.Background()

	shapes := []domain.Shape{
		{ID: "square", Name: "Square", BasePrice: decimal.NewFromInt(35), IsVisible: true},
		{ID: "coffin", Name: "Coffin", BasePrice: decimal.NewFromInt(35), PriceAdjustment: decimal.NewFromInt(5), IsVisible: true},
		{ID: "almond", Name: "Almond", BasePrice: decimal.NewFromInt(35), PriceAdjustment: decimal.NewFromInt(5), IsVisible: true},
		{ID: "stiletto", Name: "Stiletto", BasePrice: decimal.NewFromInt(35), PriceAdjustment: decimal.NewFromInt(10), IsVisible: true},
		{ID: "oval", Name: "Oval", BasePrice: decimal.NewFromInt(35), IsVisible: true},
		{ID: "round", Name: "Round", BasePrice: decimal.NewFromInt(35), IsVisible: true},
	}
	for i := range shapes {
		if err := repos.Shape.Upsert(ctx, &shapes[i]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to seed shape %s: %v\n", shapes[i].ID, err)
			os.Exit(1)
		}
	}
	fmt.Printf("Seeded %d shapes\n", len(shapes))

	methods := []domain.DeliveryMethodConfig{
		{
			ID:           domain.DeliveryMethodPickup,
			Label:        "Studio pickup",
			DefaultSpeed: domain.DeliverySpeedStandard,
			SpeedOptions: map[domain.DeliverySpeed]domain.SpeedOption{
				domain.DeliverySpeedStandard: {Fee: decimal.Zero, Label: "Standard", EstimatedDays: 7},
				domain.DeliverySpeedRush:     {Fee: decimal.NewFromInt(15), Label: "Rush", EstimatedDays: 3},
			},
		},
		{
			ID:           domain.DeliveryMethodDelivery,
			Label:        "Local delivery",
			DefaultSpeed: domain.DeliverySpeedStandard,
			SpeedOptions: map[domain.DeliverySpeed]domain.SpeedOption{
				domain.DeliverySpeedStandard: {Fee: decimal.NewFromInt(5), Label: "Standard", EstimatedDays: 8},
				domain.DeliverySpeedRush:     {Fee: decimal.NewFromInt(20), Label: "Rush", EstimatedDays: 4},
			},
		},
		{
			ID:           domain.DeliveryMethodShipping,
			Label:        "Shipping",
			DefaultSpeed: domain.DeliverySpeedStandard,
			SpeedOptions: map[domain.DeliverySpeed]domain.SpeedOption{
				domain.DeliverySpeedStandard: {Fee: decimal.NewFromInt(8), Label: "Standard", EstimatedDays: 10},
			},
		},
	}
	for i := range methods {
		if err := repos.DeliveryMethod.Upsert(ctx, &methods[i]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to seed delivery method %s: %v\n", methods[i].ID, err)
			os.Exit(1)
		}
	}
	fmt.Printf("Seeded %d delivery methods\n", len(methods))
}
