package credentials

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type stubExecutor struct {
	tokens  map[string]string
	err     error
	queries int
	exec    struct {
		query string
		args  []any
	}
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.exec.query = query
	s.exec.args = args
	return pgconn.CommandTag{}, s.err
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	s.queries++
	if s.err != nil {
		return stubRow{err: s.err}
	}
	token, ok := s.tokens[args[0].(string)]
	if !ok {
		return stubRow{err: pgx.ErrNoRows}
	}
	return stubRow{token: token}
}

type stubRow struct {
	token string
	err   error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) == 0 {
		return errors.New("no dest")
	}
	ptr, ok := dest[0].(*string)
	if !ok {
		return errors.New("invalid dest")
	}
	*ptr = r.token
	return nil
}

func env(values map[string]string) func(string) string {
	return func(k string) string { return values[k] }
}

func TestLookupPrefersEnvironment(t *testing.T) {
	exec := &stubExecutor{tokens: map[string]string{"CLIPDROP_API_KEY": "from-db"}}
	store := NewStore(Options{SQL: exec, Getenv: env(map[string]string{"CLIPDROP_API_KEY": " from-env "})})

	if got := store.Lookup(context.Background(), "CLIPDROP_API_KEY"); got != "from-env" {
		t.Fatalf("Lookup = %q, want from-env", got)
	}
	if exec.queries != 0 {
		t.Fatalf("database should not be queried when env has the key")
	}
}

func TestLookupReadsSecretsFile(t *testing.T) {
	dir := t.TempDir()
	home := filepath.Join(dir, "home.toml")
	local := filepath.Join(dir, "local.toml")
	if err := os.WriteFile(home, []byte("CLIPDROP_API_KEY = \"home\"\nOTHER = \"x\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(local, []byte("CLIPDROP_API_KEY = \"local\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	store := NewStore(Options{Files: []string{home, local, filepath.Join(dir, "missing.toml")}, Getenv: env(nil)})

	if got := store.Lookup(context.Background(), "CLIPDROP_API_KEY"); got != "local" {
		t.Fatalf("Lookup = %q, want local", got)
	}
	if got := store.Lookup(context.Background(), "other"); got != "x" {
		t.Fatalf("Lookup(other) = %q, want x", got)
	}
}

func TestLookupFallsBackToDatabase(t *testing.T) {
	exec := &stubExecutor{tokens: map[string]string{"CLIPDROP_API_KEY": " abc123 "}}
	store := NewStore(Options{SQL: exec, Getenv: env(nil)})
	if got := store.Lookup(context.Background(), "CLIPDROP_API_KEY"); got != "abc123" {
		t.Fatalf("Lookup = %q, want abc123", got)
	}
}

func TestLookupToleratesAbsence(t *testing.T) {
	store := NewStore(Options{SQL: &stubExecutor{err: errors.New("connection refused")}, Getenv: env(nil)})
	if got := store.Lookup(context.Background(), "CLIPDROP_API_KEY"); got != "" {
		t.Fatalf("Lookup = %q, want empty", got)
	}
	store = NewStore(Options{Getenv: env(nil)})
	if got := store.Lookup(context.Background(), "CLIPDROP_API_KEY"); got != "" {
		t.Fatalf("Lookup without sources = %q", got)
	}
}

func TestCredentialsKeepsOrderAndSkipsMissing(t *testing.T) {
	store := NewStore(Options{Getenv: env(map[string]string{"KEY_B": "b", "KEY_C": "c"})})
	creds := store.Credentials(context.Background(), []string{"KEY_A", "KEY_C", "KEY_B"})
	if len(creds) != 2 {
		t.Fatalf("len = %d, want 2", len(creds))
	}
	if creds[0].Name != "KEY_C" || creds[1].Name != "KEY_B" {
		t.Fatalf("order = %v", creds)
	}
}

func TestTokenNoRows(t *testing.T) {
	store := NewStore(Options{SQL: &stubExecutor{}})
	token, err := store.Token(context.Background(), "CLIPDROP_API_KEY")
	if err != nil {
		t.Fatalf("Token error: %v", err)
	}
	if token != "" {
		t.Fatalf("expected empty token, got %q", token)
	}
}

func TestSetToken(t *testing.T) {
	exec := &stubExecutor{}
	store := NewStore(Options{SQL: exec})
	if err := store.SetToken(context.Background(), "CLIPDROP_API_KEY", " secret "); err != nil {
		t.Fatalf("SetToken error: %v", err)
	}
	if len(exec.exec.args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(exec.exec.args))
	}
	if v, ok := exec.exec.args[1].(string); !ok || v != "secret" {
		t.Fatalf("expected secret argument, got %T %v", exec.exec.args[1], exec.exec.args[1])
	}
}

func TestSetTokenValidation(t *testing.T) {
	store := NewStore(Options{SQL: &stubExecutor{}})
	if err := store.SetToken(context.Background(), "CLIPDROP_API_KEY", " "); err == nil {
		t.Fatal("expected error for empty token")
	}
	if err := store.SetToken(context.Background(), "", "x"); err == nil {
		t.Fatal("expected error for empty name")
	}
	if err := NewStore(Options{}).SetToken(context.Background(), "A", "x"); err == nil {
		t.Fatal("expected error without database")
	}
}
