package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/hoops-oracle/internal/analytics"
	"github.com/stitts-dev/hoops-oracle/internal/models"
	"github.com/stitts-dev/hoops-oracle/internal/services"
	"github.com/stitts-dev/hoops-oracle/pkg/config"
	"github.com/stitts-dev/hoops-oracle/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed <players.json>]")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	command := os.Args[1]

	switch command {
	case "up":
		if err := db.Migrate(models.AllModels()...); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := db.Migrator().DropTable(models.AllModels()...); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	case "seed":
		if len(os.Args) < 3 {
			log.Fatal("Usage: migrate seed <players.json>")
		}
		if cfg.YahooLeagueKey == "" {
			logrus.Fatal("YAHOO_LEAGUE_KEY is required to build player keys")
		}
		if err := db.Migrate(models.AllModels()...); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		saved, err := seedPool(db, cfg.YahooLeagueKey, os.Args[2])
		if err != nil {
			logrus.Fatalf("Failed to seed data: %v", err)
		}
		logrus.WithField("players", saved).Info("Data seeded successfully")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

// seedPool stores a JSON array of per-game stat lines as today's snapshot
func seedPool(db *database.DB, leagueKey, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var lines []analytics.PlayerStats
	if err := json.Unmarshal(raw, &lines); err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return services.NewGormSnapshotStore(db.DB).SavePool(ctx, leagueKey, lines, time.Now())
}
