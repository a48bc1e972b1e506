// Package store provides storage backends for lesscoach.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/craveless/lesscoach/internal/models"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists profiles, turns, and cravings in a SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("SQLite store initialized", "dsn", dsn)
	return &SQLiteStore{db: db}, nil
}

// GetProfile retrieves a user's insight profile. Returns nil when absent.
func (s *SQLiteStore) GetProfile(userID string) (*models.UserInsightProfile, error) {
	var profileJSON string
	err := s.db.QueryRow(`SELECT profile_json FROM insight_profiles WHERE user_id = ?`, userID).Scan(&profileJSON)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetProfile not found", "userID", userID)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetProfile failed", "error", err, "userID", userID)
		return nil, err
	}

	var profile models.UserInsightProfile
	if err := json.Unmarshal([]byte(profileJSON), &profile); err != nil {
		slog.Error("SQLiteStore GetProfile unmarshal failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to parse stored profile: %w", err)
	}
	return &profile, nil
}

// SaveProfile stores or replaces a user's insight profile.
func (s *SQLiteStore) SaveProfile(profile *models.UserInsightProfile) error {
	if profile.UserID == "" {
		return models.ErrEmptyUserID
	}
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		slog.Error("SQLiteStore SaveProfile marshal failed", "error", err, "userID", profile.UserID)
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	_, err = s.db.Exec(`INSERT OR REPLACE INTO insight_profiles (user_id, profile_json, updated_at) VALUES (?, ?, ?)`,
		profile.UserID, string(profileJSON), time.Now().UTC())
	if err != nil {
		slog.Error("SQLiteStore SaveProfile failed", "error", err, "userID", profile.UserID)
		return err
	}
	slog.Debug("SQLiteStore SaveProfile succeeded", "userID", profile.UserID)
	return nil
}

// DeleteProfile removes a user's insight profile.
func (s *SQLiteStore) DeleteProfile(userID string) error {
	_, err := s.db.Exec(`DELETE FROM insight_profiles WHERE user_id = ?`, userID)
	if err != nil {
		slog.Error("SQLiteStore DeleteProfile failed", "error", err, "userID", userID)
	}
	return err
}

// RecentTurns returns up to max most recent turns, oldest first.
func (s *SQLiteStore) RecentTurns(userID string, max int) ([]models.AiTurn, error) {
	rows, err := s.db.Query(`SELECT id, role, content, created_at FROM (
			SELECT id, role, content, created_at FROM ai_turns WHERE user_id = ? ORDER BY created_at DESC LIMIT ?
		) ORDER BY created_at ASC`, userID, max)
	if err != nil {
		slog.Error("SQLiteStore RecentTurns query failed", "error", err, "userID", userID)
		return nil, err
	}
	defer rows.Close()

	var turns []models.AiTurn
	for rows.Next() {
		var t models.AiTurn
		if err := rows.Scan(&t.ID, &t.Role, &t.Content, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scan turn failed: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// AppendTurn appends a turn and evicts rows beyond the rolling cap.
func (s *SQLiteStore) AppendTurn(userID, role, content string) (models.AiTurn, error) {
	if err := models.ValidateTurn(role, content); err != nil {
		return models.AiTurn{}, err
	}
	turn := newTurn(role, content)

	_, err := s.db.Exec(`INSERT INTO ai_turns (id, user_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		turn.ID, userID, turn.Role, turn.Content, turn.Timestamp)
	if err != nil {
		slog.Error("SQLiteStore AppendTurn insert failed", "error", err, "userID", userID)
		return models.AiTurn{}, err
	}

	// Keep only the newest MaxTurns rows per user.
	_, err = s.db.Exec(`DELETE FROM ai_turns WHERE user_id = ? AND id NOT IN (
			SELECT id FROM ai_turns WHERE user_id = ? ORDER BY created_at DESC LIMIT ?
		)`, userID, userID, models.MaxTurns)
	if err != nil {
		slog.Error("SQLiteStore AppendTurn eviction failed", "error", err, "userID", userID)
		return models.AiTurn{}, err
	}
	return turn, nil
}

// ClearTurns removes a user's conversation history.
func (s *SQLiteStore) ClearTurns(userID string) error {
	_, err := s.db.Exec(`DELETE FROM ai_turns WHERE user_id = ?`, userID)
	if err != nil {
		slog.Error("SQLiteStore ClearTurns failed", "error", err, "userID", userID)
	}
	return err
}

// AddCraving records a craving event.
func (s *SQLiteStore) AddCraving(c models.Craving) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	_, err := s.db.Exec(`INSERT INTO cravings
			(id, user_id, timestamp, sweet_type, intensity, emotion, outcome, delay_used, delay_completed_at, post_delay_intensity, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Timestamp, string(c.SweetType), c.Intensity, string(c.Emotion),
		nilIfEmpty(string(c.Outcome)), c.DelayUsed, c.DelayCompletedAt, c.PostDelayIntensity, nilIfEmpty(c.Notes))
	if err != nil {
		slog.Error("SQLiteStore AddCraving failed", "error", err, "userID", c.UserID)
		return err
	}
	slog.Debug("SQLiteStore AddCraving succeeded", "userID", c.UserID, "cravingID", c.ID)
	return nil
}

// ListCravings returns the user's craving log, newest first.
func (s *SQLiteStore) ListCravings(userID string) ([]models.Craving, error) {
	rows, err := s.db.Query(`SELECT id, user_id, timestamp, sweet_type, intensity, emotion, outcome, delay_used, delay_completed_at, post_delay_intensity, notes
			FROM cravings WHERE user_id = ? ORDER BY timestamp DESC`, userID)
	if err != nil {
		slog.Error("SQLiteStore ListCravings query failed", "error", err, "userID", userID)
		return nil, err
	}
	defer rows.Close()

	var cravings []models.Craving
	for rows.Next() {
		c, err := scanCraving(rows)
		if err != nil {
			return nil, err
		}
		cravings = append(cravings, c)
	}
	return cravings, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
