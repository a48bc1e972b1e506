package models

// Classification is the 7-value enum the generation model must return.
type Classification string

const (
	ClassNormal           Classification = "normal"
	ClassSlip             Classification = "slip"
	ClassHealthCondition  Classification = "health_condition"
	ClassDisorderedEating Classification = "disordered_eating"
	ClassMentalDistress   Classification = "mental_distress"
	ClassCrisis           Classification = "crisis"
	ClassMedicalRequest   Classification = "medical_request"
)

// IsValidClassification checks membership in the fixed 7-value enum.
func IsValidClassification(c Classification) bool {
	switch c {
	case ClassNormal, ClassSlip, ClassHealthCondition, ClassDisorderedEating,
		ClassMentalDistress, ClassCrisis, ClassMedicalRequest:
		return true
	default:
		return false
	}
}

// Quick action identifiers the coach may suggest alongside a reply.
const (
	ActionStartPause       = "start_pause"
	ActionLogEmotion       = "log_emotion"
	ActionLogIntensity     = "log_intensity"
	ActionChooseOutcome    = "choose_outcome"
	ActionReplacementIdeas = "replacement_ideas"
	ActionWeeklyReflection = "weekly_reflection"
)

// MemoryUpdates carries the profile deltas the model proposes after a turn.
// Nil pointer fields mean "no change".
type MemoryUpdates struct {
	GoalMode            *GoalMode       `json:"goalMode"`
	AddTriggers         []string        `json:"addTriggers"`
	AddSweetPreferences []string        `json:"addSweetPreferences"`
	AddPeakTimes        []string        `json:"addPeakTimes"`
	TonePreference      *TonePreference `json:"tonePreference"`
	DistressFlag        bool            `json:"distressFlag"`
}

// CoachResult is the orchestrator's final output for one user message.
type CoachResult struct {
	AssistantMessage string         `json:"assistantMessage"`
	Classification   Classification `json:"classification"`
	QuickActions     []string       `json:"quickActions"`
	MemoryUpdates    MemoryUpdates  `json:"memoryUpdates"`
}
