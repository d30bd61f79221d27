package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/agrobridge/tradeapi/internal/clock"
	"github.com/agrobridge/tradeapi/internal/config"
	"github.com/agrobridge/tradeapi/internal/repository/postgres"
	"github.com/agrobridge/tradeapi/internal/service"
)

// Sweeps offers whose expiry has passed while still under negotiation or
// review. Meant to run from a scheduler; re-running is harmless.
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

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)
	services := service.New(repos, clock.System(), logger)

	expired, err := services.Offers.ExpireDue(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sweep failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Expired %d offer(s)\n", expired)
}
