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

	"artify/internal/infra"
	"artify/internal/infra/credentials"
)

func main() {
	_ = godotenv.Load()

	var (
		nameFlag string
		keyFlag  string
	)
	flag.StringVar(&nameFlag, "name", "CLIPDROP_API_KEY", "Credential name, as listed in a provider's secrets")
	flag.StringVar(&keyFlag, "key", "", "Secret value (fallbacks to the environment variable of the same name)")
	flag.Parse()

	name := strings.ToUpper(strings.TrimSpace(nameFlag))
	if name == "" {
		fmt.Fprintln(os.Stderr, "credential name is required")
		os.Exit(1)
	}

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		key = strings.TrimSpace(os.Getenv(name))
	}
	if key == "" {
		fmt.Fprintf(os.Stderr, "%s is required via -key or environment\n", name)
		os.Exit(1)
	}

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

	logger := infra.NewLogger("cli").With().Str("cmd", "credential").Str("credential", name).Logger()
	store := credentials.NewStore(credentials.Options{SQL: infra.NewSQLRunner(pool, logger), Logger: &logger})

	ctxExec, cancelExec := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelExec()
	if err := store.SetToken(ctxExec, name, key); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist %s: %v\n", name, err)
		os.Exit(1)
	}

	fmt.Printf("%s stored successfully\n", name)
}
