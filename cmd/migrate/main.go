package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"hairfit/internal/db"
	"hairfit/internal/infra"
)

func main() {
	var (
		dryRun  bool
		timeout time.Duration
	)
	flag.BoolVar(&dryRun, "dry-run", false, "print the schema instead of applying it")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "overall migration timeout")
	flag.Parse()

	_ = godotenv.Load()

	if dryRun {
		fmt.Println(db.Schema())
		return
	}

	logger := infra.NewLogger(os.Getenv("APP_ENV"))

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	conn, err := sql.Open("postgres", dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("open database: %w", err))
	}
	defer conn.Close()

	if err := conn.PingContext(ctx); err != nil {
		exitWithError(fmt.Errorf("ping database: %w", err))
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		exitWithError(fmt.Errorf("begin transaction: %w", err))
	}
	for i, stmt := range db.Statements() {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			exitWithError(fmt.Errorf("statement %d: %w", i+1, err))
		}
	}
	if err := tx.Commit(); err != nil {
		exitWithError(fmt.Errorf("commit: %w", err))
	}
	logger.Info().Int("statements", len(db.Statements())).Msg("schema applied")
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
	os.Exit(1)
}
