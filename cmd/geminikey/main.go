package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"hairfit/internal/infra"
	"hairfit/internal/infra/credentials"
)

func main() {
	var (
		keyFlag   string
		modelFlag string
		showFlag  bool
	)
	flag.StringVar(&keyFlag, "key", "", "Gemini API key to store (fallbacks to GEMINI_API_KEY)")
	flag.StringVar(&modelFlag, "model", "", "optional model override stored with the key")
	flag.BoolVar(&showFlag, "show", false, "print the stored key (masked) instead of writing")
	flag.Parse()

	_ = godotenv.Load()

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "geminikey").Logger()
	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))

	if showFlag {
		c, err := store.Get(ctx, credentials.ProviderGemini)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read gemini api key: %v\n", err)
			os.Exit(1)
		}
		if c.APIKey == "" {
			fmt.Println("no Gemini API key stored")
			return
		}
		model := c.Model
		if model == "" {
			model = "(default)"
		}
		fmt.Printf("key=%s model=%s\n", credentials.Mask(c.APIKey), model)
		return
	}

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		key = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}
	if key == "" {
		fmt.Fprintln(os.Stderr, "GEMINI API key is required via -key or environment")
		os.Exit(1)
	}

	if err := store.Set(ctx, credentials.ProviderGemini, credentials.Credential{APIKey: key, Model: modelFlag}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist gemini api key: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Gemini API key %s stored successfully\n", credentials.Mask(key))
}
