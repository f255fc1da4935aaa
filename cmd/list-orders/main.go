package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/config"
	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/internal/repository/postgres"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, cfg, logger)

	status := domain.OrderStatusSubmitted
	if len(os.Args) > 1 {
		status = domain.OrderStatus(os.Args[1])
		if !status.IsValid() {
			fmt.Fprintf(os.Stderr, "Unknown status %q\n", os.Args[1])
			os.Exit(1)
		}
	}

	fmt.Printf("📋 Listing %s orders:\n", status)

	orders, err := repos.Order.ListByStatus(context.Background(), status, 100, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query orders: %v\n", err)
		os.Exit(1)
	}

	for _, o := range orders {
		promo := "-"
		if o.PromoCode != "" {
			promo = o.PromoCode
		}
		fmt.Printf("  %s  user=%s  sets=%d  method=%s  promo=%s  created=%s\n",
			o.ID, o.UserID, len(o.NailSets), o.Delivery.Method, promo,
			o.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("Total: %d orders\n", len(orders))
}
