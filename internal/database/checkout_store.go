// Package database holds the durable checkout handoff store. A handoff is
// written when checkout is requested and consumed exactly once by the
// checkout page; SQLite keeps it across gateway restarts.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"worknow/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type CheckoutStore struct {
	db     *sql.DB
	logger *zerolog.Logger
}

func NewCheckoutStore(path string, logger *zerolog.Logger) (*CheckoutStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("checkout store initialized")
	return &CheckoutStore{db: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS checkout_handoffs (
            session_id TEXT PRIMARY KEY,
            workspace_id TEXT NOT NULL,
            payload TEXT NOT NULL,
            created_at DATETIME NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_handoffs_workspace_id ON checkout_handoffs(workspace_id)`,
		`CREATE INDEX IF NOT EXISTS idx_handoffs_created_at ON checkout_handoffs(created_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// Put stores the handoff, replacing any previous one for the session. A new
// checkout request supersedes an unconsumed older snapshot.
func (s *CheckoutStore) Put(ctx context.Context, handoff *models.CheckoutHandoff) error {
	if handoff.CreatedAt.IsZero() {
		handoff.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(handoff)
	if err != nil {
		return fmt.Errorf("failed to marshal handoff: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO checkout_handoffs (session_id, workspace_id, payload, created_at)
         VALUES (?, ?, ?, ?)`,
		handoff.SessionID, handoff.WorkspaceID, string(payload), handoff.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store handoff: %w", err)
	}
	return nil
}

// Take reads and removes the handoff for a session in one transaction.
// Returns nil without error when no handoff is pending.
func (s *CheckoutStore) Take(ctx context.Context, sessionID string) (*models.CheckoutHandoff, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var payload string
	err = tx.QueryRowContext(ctx,
		`SELECT payload FROM checkout_handoffs WHERE session_id = ?`, sessionID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read handoff: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM checkout_handoffs WHERE session_id = ?`, sessionID); err != nil {
		return nil, fmt.Errorf("failed to delete handoff: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	var handoff models.CheckoutHandoff
	if err := json.Unmarshal([]byte(payload), &handoff); err != nil {
		return nil, fmt.Errorf("failed to unmarshal handoff: %w", err)
	}
	return &handoff, nil
}

// PurgeOlderThan removes stale handoffs that were never consumed.
func (s *CheckoutStore) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM checkout_handoffs WHERE created_at < ?`, time.Now().Add(-age))
	if err != nil {
		return 0, fmt.Errorf("failed to purge handoffs: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.logger.Info().Int64("purged", n).Msg("purged stale checkout handoffs")
	}
	return n, nil
}

func (s *CheckoutStore) Close() error {
	return s.db.Close()
}
