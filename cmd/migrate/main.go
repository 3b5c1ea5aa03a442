package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"energy-calculator/internal/config"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	dir := flag.String("dir", "migrations", "Directory holding the migration files")
	flag.Parse()

	migrationPath, err := migrationFile(*dir, *direction)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.Postgres().DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Println("Connected to database successfully")

	content, err := os.ReadFile(migrationPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read migration file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Running migration: %s\n", migrationPath)

	if _, err := db.Exec(string(content)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute migration: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migration completed successfully")
}

func migrationFile(dir, direction string) (string, error) {
	switch direction {
	case "up", "down":
		return filepath.Join(dir, "001_create_schema."+direction+".sql"), nil
	default:
		return "", fmt.Errorf("invalid direction %q: want up or down", direction)
	}
}
