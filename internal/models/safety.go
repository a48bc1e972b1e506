package models

// MessageCategory is the classifier's 8-way safety category.
type MessageCategory string

const (
	CategoryNormalCraving    MessageCategory = "normal-craving"
	CategorySlipOvereating   MessageCategory = "slip-overeating"
	CategoryHealthCondition  MessageCategory = "health-condition"
	CategoryDisorderedEating MessageCategory = "disordered-eating"
	CategoryMentalDistress   MessageCategory = "mental-distress"
	CategoryCrisis           MessageCategory = "crisis"
	CategoryMedicalAdvice    MessageCategory = "medical-advice-request"
	CategoryGeneralSupport   MessageCategory = "general-support"
)

// RiskLevel grades how sensitive a message is.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
	RiskCrisis RiskLevel = "crisis"
)

// SafetyAnalysis is the classifier output for one user message.
//
// FallbackResponse is set only when ShouldUseFallback is true; the caller
// returns it verbatim instead of invoking generation. The distress-mode and
// streak-pause flags are signals to the caller, not side effects performed
// by the classifier itself.
type SafetyAnalysis struct {
	Category                   MessageCategory `json:"category"`
	RiskLevel                  RiskLevel       `json:"risk_level"`
	TriggeredKeywords          []string        `json:"triggered_keywords"`
	ShouldUseFallback          bool            `json:"should_use_fallback"`
	FallbackResponse           string          `json:"fallback_response,omitempty"`
	SafetyInstructions         string          `json:"safety_instructions"`
	ShouldActivateDistressMode bool            `json:"should_activate_distress_mode"`
	ShouldPauseStreaks         bool            `json:"should_pause_streaks"`
}
