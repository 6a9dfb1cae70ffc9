package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/config"
	"github.com/nexusshop/orderapi/internal/domain"
	"github.com/nexusshop/orderapi/internal/repository/postgres"
)

func main() {
	if len(os.Args) < 5 {
		fmt.Println("Usage: go run cmd/create-affiliate/main.go <code> <name> <email> <commission-rate>")
		fmt.Println("Example: go run cmd/create-affiliate/main.go \"TECH10\" \"Tech Reviews\" \"partners@techreviews.example\" 10")
		os.Exit(1)
	}

	code := os.Args[1]
	name := os.Args[2]
	email := os.Args[3]

	rate, err := strconv.ParseFloat(os.Args[4], 64)
	if err != nil || rate < 0 || rate > 100 {
		fmt.Fprintf(os.Stderr, "Commission rate must be a percentage between 0 and 100\n")
		os.Exit(1)
	}

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

	// Create repositories
	repos := postgres.NewRepositories(db, logger)

	// Create affiliate partner
	partner := &domain.AffiliatePartner{
		Code:           code,
		Name:           name,
		Email:          email,
		CommissionRate: rate,
		Status:         domain.AffiliateStatusActive,
	}

	err = repos.Affiliate.Create(context.Background(), partner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create affiliate partner: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Affiliate partner created successfully!\n\n")
	fmt.Printf("Partner ID: %s\n", partner.ID.String())
	fmt.Printf("Code: %s\n", partner.Code)
	fmt.Printf("Name: %s\n", partner.Name)
	fmt.Printf("Commission rate: %.2f%%\n", partner.CommissionRate)
}
