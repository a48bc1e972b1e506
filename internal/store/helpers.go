package store

import (
	"database/sql"
	"fmt"

	"github.com/craveless/lesscoach/internal/models"
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// scanCraving scans a Craving from sql.Rows.
func scanCraving(rows *sql.Rows) (models.Craving, error) {
	var c models.Craving
	var outcome, notes sql.NullString
	var delayCompletedAt sql.NullTime
	var postDelayIntensity sql.NullInt64
	err := rows.Scan(
		&c.ID, &c.UserID, &c.Timestamp, &c.SweetType, &c.Intensity, &c.Emotion,
		&outcome, &c.DelayUsed, &delayCompletedAt, &postDelayIntensity, &notes,
	)
	if err != nil {
		return c, fmt.Errorf("scan craving failed: %w", err)
	}
	c.Outcome = models.CravingOutcome(outcome.String)
	c.Notes = notes.String
	if delayCompletedAt.Valid {
		c.DelayCompletedAt = &delayCompletedAt.Time
	}
	if postDelayIntensity.Valid {
		v := int(postDelayIntensity.Int64)
		c.PostDelayIntensity = &v
	}
	return c, nil
}
