package main

import (
	"database/sql"
	"log"
	"os"

	_ "github.com/lib/pq"

	"property-market/internal/config"
)

// Applies one or more SQL migration files against the configured database.
// Usage: migrate <file.sql> [file.sql ...]
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <file.sql> [file.sql ...]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Connected to database successfully")

	for _, path := range os.Args[1:] {
		migrationSQL, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read migration file %s: %v", path, err)
		}

		log.Printf("Applying migration: %s", path)
		if _, err := db.Exec(string(migrationSQL)); err != nil {
			log.Fatalf("Failed to execute migration %s: %v", path, err)
		}
	}

	log.Println("Migrations completed successfully")
}
