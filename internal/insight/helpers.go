// Package insight maintains the per-user pattern model: stat-map helpers,
// signal inference from free text, 7-day stats derivation, the context
// snapshot fed to generation, and the memory-update merge.
package insight

import (
	"math"
	"sort"

	"github.com/craveless/lesscoach/internal/models"
)

// StatEntry is one (key, count) pair returned by TopK.
type StatEntry struct {
	Key   string
	Count int
}

// IncrementStat returns a copy of the map with key's count incremented by
// amount, creating the key at amount if absent. The input map is never
// mutated.
func IncrementStat(stats map[string]int, key string, amount int) map[string]int {
	out := make(map[string]int, len(stats)+1)
	for k, v := range stats {
		out[k] = v
	}
	out[key] += amount
	return out
}

// TopK returns the k highest-count entries, sorted descending by count.
// Ties are broken by ascending key so output is deterministic.
func TopK(stats map[string]int, k int) []StatEntry {
	entries := make([]StatEntry, 0, len(stats))
	for key, count := range stats {
		entries = append(entries, StatEntry{Key: key, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	if k < len(entries) {
		entries = entries[:k]
	}
	return entries
}

// ComputeConfidence returns primaryCount/total rounded to two decimals,
// or 0 when total is zero.
func ComputeConfidence(primaryCount, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(primaryCount)/float64(total)*100) / 100
}

// PruneStats keeps only the top maxKeys entries by count.
func PruneStats(stats map[string]int, maxKeys int) map[string]int {
	top := TopK(stats, maxKeys)
	out := make(map[string]int, len(top))
	for _, e := range top {
		out[e.Key] = e.Count
	}
	return out
}

// statTotal sums all counts in a stat map.
func statTotal(stats map[string]int) int {
	total := 0
	for _, v := range stats {
		total += v
	}
	return total
}

// patternConfidenceThreshold is the minimum stat-map total before the
// coach treats the top entry as a known pattern.
const patternConfidenceThreshold = 3

// RefreshPatternConfidence recomputes the cached pattern-confidence fields
// from the trigger and time-bucket stat maps. A pattern is only derived
// once its map's total reaches the threshold; below that the field is
// cleared.
func RefreshPatternConfidence(profile *models.UserInsightProfile) {
	profile.PatternConfidence = models.PatternConfidence{}

	if total := statTotal(profile.TriggerStats); total >= patternConfidenceThreshold {
		if top := TopK(profile.TriggerStats, 1); len(top) > 0 {
			profile.PatternConfidence.PrimaryTrigger = top[0].Key
			profile.PatternConfidence.TriggerConfidence = ComputeConfidence(top[0].Count, total)
		}
	}
	if total := statTotal(profile.TimeBucketStats); total >= patternConfidenceThreshold {
		if top := TopK(profile.TimeBucketStats, 1); len(top) > 0 {
			profile.PatternConfidence.PeakTime = top[0].Key
			profile.PatternConfidence.TimeConfidence = ComputeConfidence(top[0].Count, total)
		}
	}
}
