// Package credentials keeps provider API keys in the database so the backend
// can be configured without redeploying its environment.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"hairfit/internal/infra"
	"hairfit/internal/sqlinline"
)

const ProviderGemini = "gemini"

// Credential is a stored provider key plus an optional model override.
type Credential struct {
	APIKey string
	Model  string
}

type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Get returns the credential for provider. A missing row is not an error and
// yields an empty Credential.
func (s *Store) Get(ctx context.Context, provider string) (Credential, error) {
	var c Credential
	row := s.sql.QueryRow(ctx, sqlinline.QSelectProviderCredential, strings.ToLower(strings.TrimSpace(provider)))
	if err := row.Scan(&c.APIKey, &c.Model); err != nil {
		if infra.IsNoRows(err) {
			return Credential{}, nil
		}
		return Credential{}, fmt.Errorf("credentials: load %s: %w", provider, err)
	}
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.Model = strings.TrimSpace(c.Model)
	return c, nil
}

// Set stores or replaces the credential for provider.
func (s *Store) Set(ctx context.Context, provider string, c Credential) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	key := strings.TrimSpace(c.APIKey)
	if provider == "" {
		return errors.New("credentials: provider is required")
	}
	if key == "" {
		return fmt.Errorf("credentials: %s api key is required", provider)
	}
	props := map[string]any{}
	if m := strings.TrimSpace(c.Model); m != "" {
		props["model"] = m
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertProviderCredential, provider, key, raw)
	return err
}

// Resolve prefers the environment-supplied credential and falls back to the
// stored one field by field. source reports where the key came from: "env",
// "db" or "" when neither has one.
func Resolve(ctx context.Context, s *Store, provider string, env Credential) (Credential, string, error) {
	env.APIKey = strings.TrimSpace(env.APIKey)
	env.Model = strings.TrimSpace(env.Model)
	if env.APIKey != "" || s == nil {
		if env.APIKey == "" {
			return env, "", nil
		}
		return env, "env", nil
	}
	stored, err := s.Get(ctx, provider)
	if err != nil {
		return env, "", err
	}
	if stored.APIKey == "" {
		return env, "", nil
	}
	if env.Model != "" {
		stored.Model = env.Model
	}
	return stored, "db", nil
}

// Mask hides all but the last four characters of key.
func Mask(key string) string {
	key = strings.TrimSpace(key)
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
