// Package models defines the core data structures for lesscoach.
//
// It includes craving events, the user insight profile, conversation turns,
// and the coach result types, which are shared across modules.
package models

import (
	"errors"
	"strings"
	"time"
)

// GoalMode describes what the user is trying to achieve with sugar.
type GoalMode string

const (
	GoalModeReduce GoalMode = "reduce"
	GoalModeQuit   GoalMode = "quit"
	GoalModeWeight GoalMode = "weight"
	GoalModeHealth GoalMode = "health"
	GoalModeHabit  GoalMode = "habit"
)

// TonePreference describes how the coach should speak to the user.
type TonePreference string

const (
	ToneProfessionalCalm TonePreference = "professional-calm"
	ToneGentle           TonePreference = "gentle"
	ToneDirect           TonePreference = "direct"
)

// Emotion values recorded on craving events.
type Emotion string

const (
	EmotionStressed    Emotion = "stressed"
	EmotionBored       Emotion = "bored"
	EmotionSad         Emotion = "sad"
	EmotionHappy       Emotion = "happy"
	EmotionAnxious     Emotion = "anxious"
	EmotionTired       Emotion = "tired"
	EmotionCelebratory Emotion = "celebratory"
	EmotionOther       Emotion = "other"
)

// SweetType categorizes what the user was craving.
type SweetType string

const (
	SweetChocolate SweetType = "chocolate"
	SweetCandy     SweetType = "candy"
	SweetIceCream  SweetType = "ice-cream"
	SweetCookies   SweetType = "cookies"
	SweetCake      SweetType = "cake"
	SweetPastry    SweetType = "pastry"
	SweetSoda      SweetType = "soda"
	SweetOther     SweetType = "other"
)

// CravingOutcome records how a craving episode ended.
type CravingOutcome string

const (
	OutcomeResisted     CravingOutcome = "resisted"
	OutcomeSmallPortion CravingOutcome = "small-portion"
	OutcomeGaveIn       CravingOutcome = "gave-in"
)

// TimeBucket partitions the day for pattern tracking.
type TimeBucket string

const (
	BucketMorning   TimeBucket = "morning"
	BucketAfternoon TimeBucket = "afternoon"
	BucketEvening   TimeBucket = "evening"
	BucketLateNight TimeBucket = "late-night"
)

// Validation constants for input validation
const (
	// MaxMessageLength defines the maximum allowed length for a coach message
	MaxMessageLength = 4096
	// MaxIntensity is the upper bound of the craving intensity scale
	MaxIntensity = 10
	// MinIntensity is the lower bound of the craving intensity scale
	MinIntensity = 1
	// MaxStatEntries caps each profile stat map; least-frequent entries are pruned
	MaxStatEntries = 20
	// MaxTurns caps the rolling conversation window
	MaxTurns = 10
)

// Error variables for better error handling and testability
var (
	ErrEmptyUserID        = errors.New("user id cannot be empty")
	ErrEmptyMessage       = errors.New("message cannot be empty")
	ErrMessageTooLong     = errors.New("message exceeds maximum length")
	ErrEmptyTurnContent   = errors.New("turn content cannot be empty")
	ErrInvalidTurnRole    = errors.New("turn role must be user or assistant")
	ErrInvalidGoalMode    = errors.New("invalid goal mode")
	ErrInvalidTone        = errors.New("invalid tone preference")
	ErrInvalidEmotion     = errors.New("invalid emotion")
	ErrInvalidSweetType   = errors.New("invalid sweet type")
	ErrInvalidOutcome     = errors.New("invalid craving outcome")
	ErrInvalidIntensity   = errors.New("intensity out of range")
	ErrInvalidTimeBucket  = errors.New("invalid time bucket")
)

// IsValidGoalMode checks if the given goal mode is supported.
func IsValidGoalMode(g GoalMode) bool {
	switch g {
	case GoalModeReduce, GoalModeQuit, GoalModeWeight, GoalModeHealth, GoalModeHabit:
		return true
	default:
		return false
	}
}

// IsValidTonePreference checks if the given tone preference is supported.
func IsValidTonePreference(t TonePreference) bool {
	switch t {
	case ToneProfessionalCalm, ToneGentle, ToneDirect:
		return true
	default:
		return false
	}
}

// IsValidEmotion checks if the given emotion is supported.
func IsValidEmotion(e Emotion) bool {
	switch e {
	case EmotionStressed, EmotionBored, EmotionSad, EmotionHappy,
		EmotionAnxious, EmotionTired, EmotionCelebratory, EmotionOther:
		return true
	default:
		return false
	}
}

// IsValidSweetType checks if the given sweet type is supported.
func IsValidSweetType(s SweetType) bool {
	switch s {
	case SweetChocolate, SweetCandy, SweetIceCream, SweetCookies,
		SweetCake, SweetPastry, SweetSoda, SweetOther:
		return true
	default:
		return false
	}
}

// IsValidOutcome checks if the given craving outcome is supported.
func IsValidOutcome(o CravingOutcome) bool {
	switch o {
	case OutcomeResisted, OutcomeSmallPortion, OutcomeGaveIn:
		return true
	default:
		return false
	}
}

// IsValidTimeBucket checks if the given time bucket is supported.
func IsValidTimeBucket(b TimeBucket) bool {
	switch b {
	case BucketMorning, BucketAfternoon, BucketEvening, BucketLateNight:
		return true
	default:
		return false
	}
}

// BucketForHour maps a wall-clock hour (0-23) to its time bucket.
func BucketForHour(hour int) TimeBucket {
	switch {
	case hour >= 5 && hour < 12:
		return BucketMorning
	case hour >= 12 && hour < 17:
		return BucketAfternoon
	case hour >= 17 && hour < 22:
		return BucketEvening
	default:
		return BucketLateNight
	}
}

// Craving represents one logged craving event.
type Craving struct {
	ID                 string         `json:"id"`
	UserID             string         `json:"user_id"`
	Timestamp          time.Time      `json:"timestamp"`
	SweetType          SweetType      `json:"sweet_type"`
	Intensity          int            `json:"intensity"`
	Emotion            Emotion        `json:"emotion"`
	Outcome            CravingOutcome `json:"outcome,omitempty"`
	DelayUsed          bool           `json:"delay_used"`
	DelayCompletedAt   *time.Time     `json:"delay_completed_at,omitempty"`
	PostDelayIntensity *int           `json:"post_delay_intensity,omitempty"`
	Notes              string         `json:"notes,omitempty"`
}

// Validate performs validation on a Craving record.
func (c *Craving) Validate() error {
	if c.UserID == "" {
		return ErrEmptyUserID
	}
	if !IsValidSweetType(c.SweetType) {
		return ErrInvalidSweetType
	}
	if !IsValidEmotion(c.Emotion) {
		return ErrInvalidEmotion
	}
	if c.Intensity < MinIntensity || c.Intensity > MaxIntensity {
		return ErrInvalidIntensity
	}
	if c.Outcome != "" && !IsValidOutcome(c.Outcome) {
		return ErrInvalidOutcome
	}
	if c.PostDelayIntensity != nil && (*c.PostDelayIntensity < 0 || *c.PostDelayIntensity > MaxIntensity) {
		return ErrInvalidIntensity
	}
	return nil
}

// AiTurn is one message in the rolling conversation window.
type AiTurn struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
}

// ValidateTurn checks role and content before a turn is appended.
func ValidateTurn(role, content string) error {
	if role != "user" && role != "assistant" {
		return ErrInvalidTurnRole
	}
	if strings.TrimSpace(content) == "" {
		return ErrEmptyTurnContent
	}
	return nil
}

// PatternConfidence holds the derived top-pattern fields cached on the profile.
type PatternConfidence struct {
	PrimaryTrigger    string  `json:"primary_trigger,omitempty"`
	TriggerConfidence float64 `json:"trigger_confidence,omitempty"`
	PeakTime          string  `json:"peak_time,omitempty"`
	TimeConfidence    float64 `json:"time_confidence,omitempty"`
}

// UserInsightProfile is the long-lived, per-user pattern model.
//
// Stat maps count occurrences per category name; insertion order is
// irrelevant and each map is pruned to MaxStatEntries. PatternConfidence
// is a cache derived from the stat maps once a map's total reaches 3.
type UserInsightProfile struct {
	UserID               string            `json:"user_id"`
	GoalMode             GoalMode          `json:"goal_mode,omitempty"`
	TonePreference       TonePreference    `json:"tone_preference,omitempty"`
	DistressFlag         bool              `json:"distress_flag"`
	TriggerStats         map[string]int    `json:"trigger_stats,omitempty"`
	EmotionStats         map[string]int    `json:"emotion_stats,omitempty"`
	SweetPreferenceStats map[string]int    `json:"sweet_preference_stats,omitempty"`
	TimeBucketStats      map[string]int    `json:"time_bucket_stats,omitempty"`
	PatternConfidence    PatternConfidence `json:"pattern_confidence"`
	LastUpdated          time.Time         `json:"last_updated,omitempty"`
}

// NewUserInsightProfile creates an empty profile with the gentle default tone.
func NewUserInsightProfile(userID string) *UserInsightProfile {
	return &UserInsightProfile{
		UserID:               userID,
		TonePreference:       ToneGentle,
		TriggerStats:         map[string]int{},
		EmotionStats:         map[string]int{},
		SweetPreferenceStats: map[string]int{},
		TimeBucketStats:      map[string]int{},
	}
}

// RecentStats is derived fresh from the last 7 days of craving entries.
type RecentStats struct {
	CravingsCount7d            int      `json:"cravings_count_7d"`
	PeakTimeBuckets            []string `json:"peak_time_buckets"`
	TopEmotions                []string `json:"top_emotions"`
	TopTriggers                []string `json:"top_triggers"`
	DelayCompletionRate7d      int      `json:"delay_completion_rate_7d"`
	AvgIntensityDropAfterDelay float64  `json:"avg_intensity_drop_after_delay_7d"`
	AvgIntensity7d             float64  `json:"avg_intensity_7d"`
}

// CurrentMoment carries the caller-supplied signals about the moment the
// user is messaging from; all fields are optional.
type CurrentMoment struct {
	TimeBucket TimeBucket `json:"time_bucket,omitempty"`
	Intensity  *int       `json:"intensity,omitempty"`
	Emotion    string     `json:"emotion,omitempty"`
}
