package insight

import (
	"strings"
	"time"

	"github.com/craveless/lesscoach/internal/models"
)

// InferredSignals holds the signals derived from one user message.
//
// Triggers and Emotions are populated identically from the same keyword
// scan; they are kept as two separate views of the detection event because
// the memory-update merge treats them as independently meaningful.
type InferredSignals struct {
	TimeBucket models.TimeBucket
	Triggers   []string
	Emotions   []string
	SweetPrefs []string
}

// Keyword families for emotion/trigger inference. Matching here is plain
// substring containment, looser than the classifier's boundary matching.
var emotionFamilies = []struct {
	name     string
	keywords []string
}{
	{"stressed", []string{"stress", "overwhelm", "pressure", "deadline"}},
	{"bored", []string{"bored", "boring", "nothing to do"}},
	{"tired", []string{"tired", "exhausted", "fatigue", "no energy"}},
	{"anxious", []string{"anxious", "anxiety", "nervous", "worried"}},
	{"sad", []string{"sad", "down", "lonely", "upset"}},
	{"celebratory", []string{"celebrat", "reward myself", "treat myself", "party"}},
}

// Keyword families for sweet-preference inference.
var sweetFamilies = []struct {
	name     string
	keywords []string
}{
	{"chocolate", []string{"chocolate", "choc"}},
	{"candy", []string{"candy", "gummy", "sweets"}},
	{"soda", []string{"soda", "coke", "soft drink", "fizzy"}},
	{"ice-cream", []string{"ice cream", "icecream", "gelato"}},
	{"other", []string{"dessert", "sweet", "sugar"}},
	{"cookies", []string{"cookie", "biscuit"}},
	{"cake", []string{"cake", "cupcake", "brownie"}},
	{"pastry", []string{"pastry", "donut", "doughnut", "croissant"}},
}

// containsAny reports whether text contains any of the keywords.
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// inferTimeBucket derives a time bucket from explicit time words in the
// text, falling back to the wall-clock hour when none are present.
// Explicit mentions always win over the clock.
func inferTimeBucket(lower string, now time.Time) models.TimeBucket {
	switch {
	case containsAny(lower, []string{"night", "late", "midnight", "before bed"}):
		return models.BucketLateNight
	case containsAny(lower, []string{"morning", "breakfast"}):
		return models.BucketMorning
	case containsAny(lower, []string{"afternoon", "after lunch"}):
		return models.BucketAfternoon
	case containsAny(lower, []string{"evening", "dinner"}):
		return models.BucketEvening
	}
	return models.BucketForHour(now.Hour())
}

// InferSignals scans free-form user text for time, emotion/trigger, and
// sweet-preference signals.
func InferSignals(text string, now time.Time) InferredSignals {
	lower := strings.ToLower(text)

	signals := InferredSignals{
		TimeBucket: inferTimeBucket(lower, now),
	}

	for _, family := range emotionFamilies {
		if containsAny(lower, family.keywords) {
			signals.Triggers = append(signals.Triggers, family.name)
			signals.Emotions = append(signals.Emotions, family.name)
		}
	}

	for _, family := range sweetFamilies {
		if containsAny(lower, family.keywords) {
			signals.SweetPrefs = append(signals.SweetPrefs, family.name)
		}
	}

	return signals
}
