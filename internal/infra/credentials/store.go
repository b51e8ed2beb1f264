package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"artify/internal/domain"
	"artify/internal/infra"
	"artify/internal/sqlinline"
)

// Options configures where a Store looks for secrets.
type Options struct {
	// SQL enables the integration_tokens table as the last lookup source.
	SQL infra.SQLExecutor
	// Files are TOML secret files; later files override earlier ones.
	Files []string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	Logger *infra.Logger
}

// Store resolves named secrets from the environment, then secret files, then
// the database. Absence is never an error: missing secrets resolve to "".
type Store struct {
	sql     infra.SQLExecutor
	secrets map[string]string
	getenv  func(string) string
	logger  *infra.Logger
}

func NewStore(opts Options) *Store {
	s := &Store{
		sql:     opts.SQL,
		secrets: map[string]string{},
		getenv:  opts.Getenv,
		logger:  opts.Logger,
	}
	if s.getenv == nil {
		s.getenv = os.Getenv
	}
	if s.logger == nil {
		s.logger = infra.NopLogger()
	}
	for _, path := range opts.Files {
		if err := s.loadFile(path); err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("credentials: secrets file ignored")
		}
	}
	return s
}

func (s *Store) loadFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read secrets: %w", err)
	}
	for _, key := range v.AllKeys() {
		if val := strings.TrimSpace(v.GetString(key)); val != "" {
			s.secrets[key] = val
		}
	}
	return nil
}

// Lookup returns the secret stored under name, or "" when no source has it.
func (s *Store) Lookup(ctx context.Context, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if v := strings.TrimSpace(s.getenv(name)); v != "" {
		return v
	}
	if v, ok := s.secrets[strings.ToLower(name)]; ok {
		return v
	}
	if s.sql == nil {
		return ""
	}
	token, err := s.Token(ctx, name)
	if err != nil {
		s.logger.Warn().Err(err).Str("credential", name).Msg("credentials: database lookup failed")
		return ""
	}
	return token
}

// Credentials resolves names in order and keeps only those that are set.
func (s *Store) Credentials(ctx context.Context, names []string) []domain.Credential {
	var out []domain.Credential
	for _, name := range names {
		if secret := s.Lookup(ctx, name); secret != "" {
			out = append(out, domain.Credential{Name: name, Secret: secret})
		}
	}
	return out
}

// Token reads a token from the integration_tokens table.
func (s *Store) Token(ctx context.Context, name string) (string, error) {
	if s.sql == nil {
		return "", nil
	}
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, name)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// SetToken upserts a token. Only the credential CLI writes tokens; the
// generation path is read-only.
func (s *Store) SetToken(ctx context.Context, name, token string) error {
	if s.sql == nil {
		return errors.New("credentials: database not configured")
	}
	name = strings.TrimSpace(name)
	token = strings.TrimSpace(token)
	if name == "" {
		return errors.New("credentials: name is required")
	}
	if token == "" {
		return fmt.Errorf("credentials: %s token is required", name)
	}
	_, err := s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, name, token)
	return err
}
