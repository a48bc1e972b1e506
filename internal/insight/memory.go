package insight

import (
	"log/slog"
	"time"

	"github.com/craveless/lesscoach/internal/models"
)

// ApplyMemoryUpdates merges one turn's proposed deltas into the profile
// and returns the updated copy. The input profile is not mutated.
//
// Stat maps are incremented, pruned to the entry cap, and the cached
// pattern-confidence fields are refreshed afterwards. The distress flag
// only latches on: a false delta never clears it.
func ApplyMemoryUpdates(profile *models.UserInsightProfile, updates models.MemoryUpdates, now time.Time) *models.UserInsightProfile {
	updated := *profile

	if updates.GoalMode != nil {
		if models.IsValidGoalMode(*updates.GoalMode) {
			updated.GoalMode = *updates.GoalMode
		} else {
			slog.Warn("insight.ApplyMemoryUpdates: ignoring invalid goal mode", "goalMode", *updates.GoalMode)
		}
	}
	if updates.TonePreference != nil {
		if models.IsValidTonePreference(*updates.TonePreference) {
			updated.TonePreference = *updates.TonePreference
		} else {
			slog.Warn("insight.ApplyMemoryUpdates: ignoring invalid tone preference", "tone", *updates.TonePreference)
		}
	}

	updated.TriggerStats = incrementAll(profile.TriggerStats, updates.AddTriggers)
	updated.EmotionStats = incrementAll(profile.EmotionStats, updates.AddTriggers)
	updated.SweetPreferenceStats = incrementAll(profile.SweetPreferenceStats, updates.AddSweetPreferences)
	updated.TimeBucketStats = incrementAll(profile.TimeBucketStats, updates.AddPeakTimes)

	if updates.DistressFlag {
		updated.DistressFlag = true
	}

	RefreshPatternConfidence(&updated)
	updated.LastUpdated = now

	return &updated
}

// incrementAll applies IncrementStat for each key and prunes the result.
// Returns a fresh copy even when keys is empty so the caller never shares
// map state with the input profile.
func incrementAll(stats map[string]int, keys []string) map[string]int {
	out := make(map[string]int, len(stats)+len(keys))
	for k, v := range stats {
		out[k] = v
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		out[key]++
	}
	if len(out) > models.MaxStatEntries {
		out = PruneStats(out, models.MaxStatEntries)
	}
	return out
}
