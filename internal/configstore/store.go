// Package configstore persists provider configuration in SQLite.
package configstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vmunix/mediahub/internal/plugin"
)

// Store keeps one JSON object per provider under the key "<type>:<name>".
type Store struct {
	db *sql.DB
}

// New creates a config store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ plugin.ConfigStore = (*Store)(nil)

// Get returns the stored config, or an empty config when none exists.
func (s *Store) Get(ctx context.Context, t plugin.Type, name string) (plugin.Config, error) {
	return s.get(ctx, plugin.Key(t, name))
}

func (s *Store) get(ctx context.Context, key string) (plugin.Config, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM plugin_configs WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return plugin.Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get config %s: %w", key, err)
	}
	cfg := plugin.Config{}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", key, err)
	}
	return cfg, nil
}

// Set replaces the stored config.
func (s *Store) Set(ctx context.Context, t plugin.Type, name string, cfg plugin.Config) error {
	return s.set(ctx, plugin.Key(t, name), cfg)
}

func (s *Store) set(ctx context.Context, key string, cfg plugin.Config) error {
	if cfg == nil {
		cfg = plugin.Config{}
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plugin_configs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(raw), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set config %s: %w", key, err)
	}
	return nil
}

// IsEnabled reads the _enabled flag, defaulting to true.
func (s *Store) IsEnabled(ctx context.Context, t plugin.Type, name string) (bool, error) {
	cfg, err := s.Get(ctx, t, name)
	if err != nil {
		return false, err
	}
	return cfg.Enabled(), nil
}

// SetEnabled merges the _enabled flag into the stored config.
func (s *Store) SetEnabled(ctx context.Context, t plugin.Type, name string, enabled bool) error {
	key := plugin.Key(t, name)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cfg := plugin.Config{}
	var raw string
	err = tx.QueryRowContext(ctx, `SELECT value FROM plugin_configs WHERE key = ?`, key).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("get config %s: %w", key, err)
	default:
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			return fmt.Errorf("decode config %s: %w", key, err)
		}
	}
	cfg[plugin.EnabledKey] = enabled

	encoded, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config %s: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO plugin_configs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(encoded), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("set config %s: %w", key, err)
	}
	return tx.Commit()
}

// Delete removes the stored config. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, t plugin.Type, name string) error {
	key := plugin.Key(t, name)
	if _, err := s.db.ExecContext(ctx, `DELETE FROM plugin_configs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete config %s: %w", key, err)
	}
	return nil
}

// All returns every stored config keyed by "<type>:<name>".
func (s *Store) All(ctx context.Context) (map[string]plugin.Config, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM plugin_configs ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]plugin.Config)
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		cfg := plugin.Config{}
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", key, err)
		}
		out[key] = cfg
	}
	return out, rows.Err()
}
