package seed

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"licensestore/internal/domain"
	"licensestore/internal/repository/catalog"
)

// Apply upserts the demo catalog. Safe to run repeatedly.
func Apply(ctx context.Context, repo catalog.Repository, logger *log.Logger) error {
	for _, p := range products() {
		if _, err := repo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.Name, err)
		}
	}
	if logger != nil {
		logger.Printf("seed: %d products upserted", len(products()))
	}
	return nil
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func products() []domain.Product {
	return []domain.Product{
		{
			Name:                 "Profiler Pro",
			Description:          "CPU and memory profiler with flame graphs and diff view.",
			Category:             "devtools",
			Price:                price("29.99"),
			DiscountPercent:      15,
			Stock:                500,
			RequiresHardwareLock: true,
			CompatibleTargets:    []string{"Windows", "Linux", "macOS"},
			Badge:                "BESTSELLER",
			Icon:                 "flame",
			UpdateCadence:        "weekly",
		},
		{
			Name:                 "Packet Lens",
			Description:          "Protocol inspector with live capture filters and session replay.",
			Category:             "devtools",
			Price:                price("24.99"),
			DiscountPercent:      0,
			Stock:                500,
			RequiresHardwareLock: true,
			CompatibleTargets:    []string{"Windows", "Linux"},
			Badge:                "",
			Icon:                 "eye",
			UpdateCadence:        "weekly",
		},
		{
			Name:                 "Build Cache",
			Description:          "Distributed compilation cache, drop-in for CI runners.",
			Category:             "ci",
			Price:                price("14.99"),
			DiscountPercent:      10,
			Stock:                1000,
			RequiresHardwareLock: false,
			CompatibleTargets:    []string{"Linux"},
			Badge:                "POPULAR",
			Icon:                 "box",
			UpdateCadence:        "monthly",
		},
		{
			Name:                 "Schema Guard",
			Description:          "Database migration linter with rollback safety checks.",
			Category:             "database",
			Price:                price("19.99"),
			DiscountPercent:      25,
			Stock:                300,
			RequiresHardwareLock: false,
			CompatibleTargets:    []string{"PostgreSQL", "MySQL"},
			Badge:                "SALE",
			Icon:                 "shield",
			UpdateCadence:        "monthly",
		},
		{
			Name:                 "Log Tamer",
			Description:          "Structured log explorer with saved queries and alerting.",
			Category:             "observability",
			Price:                price("12.99"),
			DiscountPercent:      0,
			Stock:                1000,
			RequiresHardwareLock: false,
			CompatibleTargets:    []string{"Windows", "Linux", "macOS"},
			Badge:                "",
			Icon:                 "scroll",
			UpdateCadence:        "monthly",
		},
		{
			Name:                 "Secret Vault",
			Description:          "Offline credential manager with hardware-bound encryption.",
			Category:             "security",
			Price:                price("34.99"),
			DiscountPercent:      0,
			Stock:                200,
			RequiresHardwareLock: true,
			CompatibleTargets:    []string{"Windows", "Linux", "macOS"},
			Badge:                "PREMIUM",
			Icon:                 "lock",
			UpdateCadence:        "weekly",
		},
		{
			Name:                 "Config Sync",
			Description:          "Cloud sync for editor and tool configs across machines.",
			Category:             "utility",
			Price:                price("7.99"),
			DiscountPercent:      0,
			Stock:                2000,
			RequiresHardwareLock: false,
			CompatibleTargets:    []string{"Windows", "Linux", "macOS"},
			Badge:                "",
			Icon:                 "cloud",
			UpdateCadence:        "monthly",
		},
		{
			Name:                 "Studio Bundle",
			Description:          "Every tool in one subscription, priority support included.",
			Category:             "bundle",
			Price:                price("89.99"),
			DiscountPercent:      30,
			Stock:                100,
			RequiresHardwareLock: true,
			CompatibleTargets:    []string{"Windows", "Linux", "macOS"},
			Badge:                "BEST VALUE",
			Icon:                 "crown",
			UpdateCadence:        "weekly",
		},
	}
}
