// Package main is the schema migration CLI for the crm-campaigns
// service. It manages the contact, template, campaign and delivery
// tables through the shared migration runner.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/atendo/crm-campaigns/internal/infrastructure/migrate"
)

const defaultMigrationsPath = "./migrations"

const usage = `Usage: migrate [-path dir] <command>

Commands:
  up       apply all pending CRM schema migrations
  down     revert the most recent migration
  version  print the current schema version`

func main() {
	var migrationsPath string
	flag.StringVar(&migrationsPath, "path", defaultMigrationsPath, "Path to migrations directory")
	flag.Parse()

	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	args := flag.Args()
	if len(args) == 0 {
		log.Fatal(usage)
	}

	runner := migrate.NewRunner(&migrate.Config{
		DatabaseURL:    databaseURL,
		MigrationsPath: migrationsPath,
	})

	switch args[0] {
	case "up":
		if err := runner.Run(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		reportVersion(runner, "Schema migrated")

	case "down":
		if err := runner.Rollback(); err != nil {
			log.Fatalf("Rollback failed: %v", err)
		}
		reportVersion(runner, "Schema rolled back")

	case "version":
		version, dirty, err := runner.Version()
		if err != nil {
			log.Fatalf("Failed to get version: %v", err)
		}
		if dirty {
			fmt.Printf("Current version: %d (dirty)\n", version)
		} else {
			fmt.Printf("Current version: %d\n", version)
		}

	default:
		log.Fatalf("Unknown command %q\n%s", args[0], usage)
	}
}

func reportVersion(runner *migrate.Runner, action string) {
	version, dirty, err := runner.Version()
	if err != nil {
		log.Printf("Error getting migration version: %v", err)
		return
	}
	if dirty {
		log.Printf("WARNING: Database is in dirty state at version %d", version)
		return
	}
	log.Printf("%s, now at version %d", action, version)
}
