// Package store provides storage backends for lesscoach.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/craveless/lesscoach/internal/models"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists profiles, turns, and cravings in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run Postgres migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("Postgres store initialized")
	return &PostgresStore{db: db}, nil
}

// GetProfile retrieves a user's insight profile. Returns nil when absent.
func (s *PostgresStore) GetProfile(userID string) (*models.UserInsightProfile, error) {
	var profileJSON string
	err := s.db.QueryRow(`SELECT profile_json FROM insight_profiles WHERE user_id = $1`, userID).Scan(&profileJSON)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetProfile not found", "userID", userID)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetProfile failed", "error", err, "userID", userID)
		return nil, err
	}

	var profile models.UserInsightProfile
	if err := json.Unmarshal([]byte(profileJSON), &profile); err != nil {
		slog.Error("PostgresStore GetProfile unmarshal failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to parse stored profile: %w", err)
	}
	return &profile, nil
}

// SaveProfile stores or replaces a user's insight profile.
func (s *PostgresStore) SaveProfile(profile *models.UserInsightProfile) error {
	if profile.UserID == "" {
		return models.ErrEmptyUserID
	}
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		slog.Error("PostgresStore SaveProfile marshal failed", "error", err, "userID", profile.UserID)
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	_, err = s.db.Exec(`INSERT INTO insight_profiles (user_id, profile_json, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO UPDATE SET profile_json = EXCLUDED.profile_json, updated_at = EXCLUDED.updated_at`,
		profile.UserID, string(profileJSON), time.Now().UTC())
	if err != nil {
		slog.Error("PostgresStore SaveProfile failed", "error", err, "userID", profile.UserID)
		return err
	}
	slog.Debug("PostgresStore SaveProfile succeeded", "userID", profile.UserID)
	return nil
}

// DeleteProfile removes a user's insight profile.
func (s *PostgresStore) DeleteProfile(userID string) error {
	_, err := s.db.Exec(`DELETE FROM insight_profiles WHERE user_id = $1`, userID)
	if err != nil {
		slog.Error("PostgresStore DeleteProfile failed", "error", err, "userID", userID)
	}
	return err
}

// RecentTurns returns up to max most recent turns, oldest first.
func (s *PostgresStore) RecentTurns(userID string, max int) ([]models.AiTurn, error) {
	rows, err := s.db.Query(`SELECT id, role, content, created_at FROM (
			SELECT id, role, content, created_at FROM ai_turns WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2
		) recent ORDER BY created_at ASC`, userID, max)
	if err != nil {
		slog.Error("PostgresStore RecentTurns query failed", "error", err, "userID", userID)
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
func (s *PostgresStore) AppendTurn(userID, role, content string) (models.AiTurn, error) {
	if err := models.ValidateTurn(role, content); err != nil {
		return models.AiTurn{}, err
	}
	turn := newTurn(role, content)

	_, err := s.db.Exec(`INSERT INTO ai_turns (id, user_id, role, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		turn.ID, userID, turn.Role, turn.Content, turn.Timestamp)
	if err != nil {
		slog.Error("PostgresStore AppendTurn insert failed", "error", err, "userID", userID)
		return models.AiTurn{}, err
	}

	_, err = s.db.Exec(`DELETE FROM ai_turns WHERE user_id = $1 AND id NOT IN (
			SELECT id FROM ai_turns WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2
		)`, userID, models.MaxTurns)
	if err != nil {
		slog.Error("PostgresStore AppendTurn eviction failed", "error", err, "userID", userID)
		return models.AiTurn{}, err
	}
	return turn, nil
}

// ClearTurns removes a user's conversation history.
func (s *PostgresStore) ClearTurns(userID string) error {
	_, err := s.db.Exec(`DELETE FROM ai_turns WHERE user_id = $1`, userID)
	if err != nil {
		slog.Error("PostgresStore ClearTurns failed", "error", err, "userID", userID)
	}
	return err
}

// AddCraving records a craving event.
func (s *PostgresStore) AddCraving(c models.Craving) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	_, err := s.db.Exec(`INSERT INTO cravings
			(id, user_id, timestamp, sweet_type, intensity, emotion, outcome, delay_used, delay_completed_at, post_delay_intensity, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.UserID, c.Timestamp, string(c.SweetType), c.Intensity, string(c.Emotion),
		nilIfEmpty(string(c.Outcome)), c.DelayUsed, c.DelayCompletedAt, c.PostDelayIntensity, nilIfEmpty(c.Notes))
	if err != nil {
		slog.Error("PostgresStore AddCraving failed", "error", err, "userID", c.UserID)
		return err
	}
	slog.Debug("PostgresStore AddCraving succeeded", "userID", c.UserID, "cravingID", c.ID)
	return nil
}

// ListCravings returns the user's craving log, newest first.
func (s *PostgresStore) ListCravings(userID string) ([]models.Craving, error) {
	rows, err := s.db.Query(`SELECT id, user_id, timestamp, sweet_type, intensity, emotion, outcome, delay_used, delay_completed_at, post_delay_intensity, notes
			FROM cravings WHERE user_id = $1 ORDER BY timestamp DESC`, userID)
	if err != nil {
		slog.Error("PostgresStore ListCravings query failed", "error", err, "userID", userID)
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
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
