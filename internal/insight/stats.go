package insight

import (
	"math"
	"time"

	"github.com/craveless/lesscoach/internal/models"
)

// BuildRecentStats derives the 7-day behavioral summary from the craving
// log. It is computed fresh on every call and never persisted.
//
// TopTriggers and TopEmotions are both built from the emotion field; the
// craving log records a single emotion per event and the two views are
// kept for the snapshot's benefit.
func BuildRecentStats(cravings []models.Craving, now time.Time) models.RecentStats {
	cutoff := now.Add(-7 * 24 * time.Hour)

	timeMap := map[string]int{}
	emotionMap := map[string]int{}
	triggerMap := map[string]int{}

	count := 0
	delayStarted := 0
	delayCompleted := 0
	totalIntensityDrop := 0
	intensityDropCount := 0
	totalIntensity := 0
	intensityCount := 0

	for _, c := range cravings {
		if c.Timestamp.Before(cutoff) {
			continue
		}
		count++

		bucket := string(models.BucketForHour(c.Timestamp.Hour()))
		timeMap[bucket]++

		if c.Emotion != "" {
			emotionMap[string(c.Emotion)]++
			triggerMap[string(c.Emotion)]++
		}

		if c.DelayUsed {
			delayStarted++
			if c.DelayCompletedAt != nil {
				delayCompleted++
			}
		}

		if c.Intensity > 0 {
			totalIntensity += c.Intensity
			intensityCount++
		}

		if c.PostDelayIntensity != nil && c.Intensity > 0 {
			drop := c.Intensity - *c.PostDelayIntensity
			if drop > 0 {
				totalIntensityDrop += drop
				intensityDropCount++
			}
		}
	}

	stats := models.RecentStats{
		CravingsCount7d: count,
		PeakTimeBuckets: keysOf(TopK(timeMap, 2)),
		TopEmotions:     keysOf(TopK(emotionMap, 2)),
		TopTriggers:     keysOf(TopK(triggerMap, 2)),
	}

	if delayStarted > 0 {
		stats.DelayCompletionRate7d = int(math.Round(float64(delayCompleted) / float64(delayStarted) * 100))
	}
	if intensityDropCount > 0 {
		stats.AvgIntensityDropAfterDelay = math.Round(float64(totalIntensityDrop)/float64(intensityDropCount)*10) / 10
	}
	if intensityCount > 0 {
		stats.AvgIntensity7d = math.Round(float64(totalIntensity)/float64(intensityCount)*10) / 10
	}

	return stats
}

// keysOf extracts the keys from TopK output, preserving order.
func keysOf(entries []StatEntry) []string {
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	return keys
}
