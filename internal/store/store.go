// Package store provides storage backends for lesscoach.
//
// It persists user insight profiles (as JSON blobs), the rolling
// conversation window, and the craving log. SQLite and PostgreSQL
// implementations are provided, plus an in-memory store for tests.
package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/craveless/lesscoach/internal/models"
)

// Opts holds configuration options for store implementations.
type Opts struct {
	// DSN is the database connection string: a file path for SQLite, a
	// postgres:// URL for PostgreSQL.
	DSN string
}

// Option configures store creation.
type Option func(*Opts)

// WithDSN sets the database connection string.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// Store is the persistence interface consumed by the API layer.
//
// The calling application serializes requests per user, so
// implementations do not need cross-request transactional guarantees
// beyond single-statement atomicity.
type Store interface {
	// GetProfile returns the stored insight profile, or nil when the user
	// has none yet.
	GetProfile(userID string) (*models.UserInsightProfile, error)
	// SaveProfile stores or replaces the user's insight profile.
	SaveProfile(profile *models.UserInsightProfile) error
	// DeleteProfile removes the user's insight profile.
	DeleteProfile(userID string) error

	// RecentTurns returns up to max most recent turns, oldest first.
	RecentTurns(userID string, max int) ([]models.AiTurn, error)
	// AppendTurn appends a turn and evicts the oldest beyond the rolling cap.
	AppendTurn(userID, role, content string) (models.AiTurn, error)
	// ClearTurns removes the user's conversation history.
	ClearTurns(userID string) error

	// AddCraving records a craving event.
	AddCraving(c models.Craving) error
	// ListCravings returns the user's craving log, newest first.
	ListCravings(userID string) ([]models.Craving, error)

	// Close releases underlying resources.
	Close() error
}

// newTurn builds an AiTurn with a fresh ID and trimmed content.
func newTurn(role, content string) models.AiTurn {
	return models.AiTurn{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Role:      role,
		Content:   strings.TrimSpace(content),
	}
}

// InMemoryStore is a simple in-memory store used in tests and as a
// fallback when no DSN is configured.
type InMemoryStore struct {
	mu       sync.Mutex
	profiles map[string]*models.UserInsightProfile
	turns    map[string][]models.AiTurn
	cravings map[string][]models.Craving
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		profiles: make(map[string]*models.UserInsightProfile),
		turns:    make(map[string][]models.AiTurn),
		cravings: make(map[string][]models.Craving),
	}
}

// GetProfile returns the stored profile or nil when absent.
func (s *InMemoryStore) GetProfile(userID string) (*models.UserInsightProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

// SaveProfile stores or replaces a profile.
func (s *InMemoryStore) SaveProfile(profile *models.UserInsightProfile) error {
	if profile.UserID == "" {
		return models.ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *profile
	s.profiles[profile.UserID] = &copied
	return nil
}

// DeleteProfile removes a profile.
func (s *InMemoryStore) DeleteProfile(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, userID)
	return nil
}

// RecentTurns returns up to max most recent turns, oldest first.
func (s *InMemoryStore) RecentTurns(userID string, max int) ([]models.AiTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := s.turns[userID]
	if max > 0 && len(turns) > max {
		turns = turns[len(turns)-max:]
	}
	out := make([]models.AiTurn, len(turns))
	copy(out, turns)
	return out, nil
}

// AppendTurn appends a turn, evicting the oldest beyond the cap.
func (s *InMemoryStore) AppendTurn(userID, role, content string) (models.AiTurn, error) {
	if err := models.ValidateTurn(role, content); err != nil {
		return models.AiTurn{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	turn := newTurn(role, content)
	turns := append(s.turns[userID], turn)
	if len(turns) > models.MaxTurns {
		turns = turns[len(turns)-models.MaxTurns:]
	}
	s.turns[userID] = turns
	return turn, nil
}

// ClearTurns removes all turns for a user.
func (s *InMemoryStore) ClearTurns(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, userID)
	return nil
}

// AddCraving records a craving event, assigning an ID if absent.
func (s *InMemoryStore) AddCraving(c models.Craving) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.cravings[c.UserID] = append(s.cravings[c.UserID], c)
	return nil
}

// ListCravings returns the user's craving log, newest first.
func (s *InMemoryStore) ListCravings(userID string) ([]models.Craving, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Craving, len(s.cravings[userID]))
	copy(out, s.cravings[userID])
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
