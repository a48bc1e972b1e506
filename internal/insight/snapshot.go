package insight

import (
	"fmt"
	"math"
	"strings"

	"github.com/craveless/lesscoach/internal/models"
)

// derivedPattern resolves a pattern field, preferring the value cached on
// the profile and recomputing from the stat map only when the cache is
// absent and the map's total has reached the threshold. Both paths use
// the same TopK/ComputeConfidence helpers so they cannot disagree.
func derivedPattern(cachedKey string, cachedConfidence float64, stats map[string]int) (string, float64, bool) {
	if cachedKey != "" {
		return cachedKey, cachedConfidence, true
	}
	total := statTotal(stats)
	if total < patternConfidenceThreshold {
		return "", 0, false
	}
	top := TopK(stats, 1)
	if len(top) == 0 {
		return "", 0, false
	}
	return top[0].Key, ComputeConfidence(top[0].Count, total), true
}

// BuildSnapshot renders the profile, recent stats, and optional
// current-moment signals into the compact context block embedded in the
// generation prompt.
//
// Output is byte-identical for identical inputs; nothing here reads the
// clock or any other ambient state.
func BuildSnapshot(profile *models.UserInsightProfile, stats models.RecentStats, moment *models.CurrentMoment) string {
	var parts []string

	parts = append(parts, "IMPORTANT CONTEXT:")

	if profile.GoalMode != "" {
		parts = append(parts, fmt.Sprintf("• Goal mode: %s", profile.GoalMode))
	}
	if profile.TonePreference != "" {
		parts = append(parts, fmt.Sprintf("• Tone: %s", profile.TonePreference))
	}
	parts = append(parts, fmt.Sprintf("• Distress mode: %t", profile.DistressFlag))

	primaryTrigger, triggerConf, hasTrigger := derivedPattern(
		profile.PatternConfidence.PrimaryTrigger,
		profile.PatternConfidence.TriggerConfidence,
		profile.TriggerStats,
	)
	if hasTrigger {
		parts = append(parts, fmt.Sprintf("• Primary trigger: %s (confidence %.2f)", primaryTrigger, triggerConf))
	}

	peakTime, timeConf, hasPeak := derivedPattern(
		profile.PatternConfidence.PeakTime,
		profile.PatternConfidence.TimeConfidence,
		profile.TimeBucketStats,
	)
	if hasPeak {
		parts = append(parts, fmt.Sprintf("• Peak time: %s (confidence %.2f)", peakTime, timeConf))
	}

	parts = append(parts, "", "Additional context:")

	if prefs := keysOf(TopK(profile.SweetPreferenceStats, 2)); len(prefs) > 0 {
		parts = append(parts, fmt.Sprintf("• Sweet prefs: %s", strings.Join(prefs, ", ")))
	}
	parts = append(parts, fmt.Sprintf("• Last 7d: cravings=%d, delay completion=%d%%, avg intensity drop=%.1f",
		stats.CravingsCount7d, stats.DelayCompletionRate7d, stats.AvgIntensityDropAfterDelay))

	if moment != nil {
		parts = append(parts, "", "Current moment:")
		if moment.TimeBucket != "" {
			line := fmt.Sprintf("• Time bucket: %s", moment.TimeBucket)
			if hasPeak && string(moment.TimeBucket) == peakTime {
				line += " (this is the user's peak craving time)"
			}
			parts = append(parts, line)
		}
		if moment.Emotion != "" {
			line := fmt.Sprintf("• Emotion: %s", moment.Emotion)
			if hasTrigger && moment.Emotion == primaryTrigger {
				line += " (matches the user's primary trigger)"
			}
			parts = append(parts, line)
		}
		if moment.Intensity != nil {
			line := fmt.Sprintf("• Intensity: %d", *moment.Intensity)
			if stats.AvgIntensity7d > 0 {
				delta := float64(*moment.Intensity) - stats.AvgIntensity7d
				if math.Abs(delta) >= 1 {
					if delta > 0 {
						line += fmt.Sprintf(" (%.1f above the user's recent average)", delta)
					} else {
						line += fmt.Sprintf(" (%.1f below the user's recent average)", -delta)
					}
				}
			}
			parts = append(parts, line)
		}
	}

	return strings.Join(parts, "\n")
}
