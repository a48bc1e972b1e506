package safety

import (
	"log/slog"
	"strings"

	"github.com/craveless/lesscoach/internal/models"
)

// matchTriggers returns the phrases from the set that match the message,
// appending each match to the shared triggeredKeywords accumulator in
// list order.
func matchTriggers(message string, matchers []compiledTrigger, triggered *[]string) []string {
	var hits []string
	for _, m := range matchers {
		if m.re.MatchString(message) {
			*triggered = append(*triggered, m.phrase)
			hits = append(hits, m.phrase)
		}
	}
	return hits
}

// Classify scans a user message against the ordered trigger sets and
// returns exactly one safety category.
//
// Evaluation is strict priority, not most-matches-wins: crisis first,
// then disordered eating, medical advice, mental distress, the medium-risk
// set (split into health-condition vs slip), then generic craving
// vocabulary, and finally general support.
func Classify(message string) models.SafetyAnalysis {
	lower := strings.ToLower(message)
	triggered := []string{}

	if hits := matchTriggers(lower, crisisMatchers, &triggered); len(hits) > 0 {
		slog.Warn("safety.Classify: crisis triggers matched", "keywords", hits)
		return models.SafetyAnalysis{
			Category:                   models.CategoryCrisis,
			RiskLevel:                  models.RiskCrisis,
			TriggeredKeywords:          triggered,
			ShouldUseFallback:          true,
			FallbackResponse:           CrisisFallback,
			SafetyInstructions:         InstructionsFor(models.CategoryCrisis),
			ShouldActivateDistressMode: true,
			ShouldPauseStreaks:         true,
		}
	}

	if hits := matchTriggers(lower, disorderedEatingMatchers, &triggered); len(hits) > 0 {
		slog.Warn("safety.Classify: disordered eating triggers matched", "keywords", hits)
		return models.SafetyAnalysis{
			Category:                   models.CategoryDisorderedEating,
			RiskLevel:                  models.RiskHigh,
			TriggeredKeywords:          triggered,
			ShouldUseFallback:          true,
			FallbackResponse:           disorderedEatingFallback,
			SafetyInstructions:         InstructionsFor(models.CategoryDisorderedEating),
			ShouldActivateDistressMode: true,
			ShouldPauseStreaks:         true,
		}
	}

	if hits := matchTriggers(lower, medicalMatchers, &triggered); len(hits) > 0 {
		slog.Debug("safety.Classify: medical advice triggers matched", "keywords", hits)
		return models.SafetyAnalysis{
			Category:           models.CategoryMedicalAdvice,
			RiskLevel:          models.RiskHigh,
			TriggeredKeywords:  triggered,
			ShouldUseFallback:  true,
			FallbackResponse:   medicalAdviceFallback,
			SafetyInstructions: InstructionsFor(models.CategoryMedicalAdvice),
		}
	}

	if hits := matchTriggers(lower, mentalDistressMatchers, &triggered); len(hits) > 0 {
		slog.Warn("safety.Classify: mental distress triggers matched", "keywords", hits)
		return models.SafetyAnalysis{
			Category:                   models.CategoryMentalDistress,
			RiskLevel:                  models.RiskHigh,
			TriggeredKeywords:          triggered,
			SafetyInstructions:         InstructionsFor(models.CategoryMentalDistress),
			ShouldActivateDistressMode: true,
			ShouldPauseStreaks:         true,
		}
	}

	if hits := matchTriggers(lower, mediumRiskMatchers, &triggered); len(hits) > 0 {
		for _, h := range hits {
			if healthConditionPhrases[h] {
				return models.SafetyAnalysis{
					Category:           models.CategoryHealthCondition,
					RiskLevel:          models.RiskMedium,
					TriggeredKeywords:  triggered,
					SafetyInstructions: InstructionsFor(models.CategoryHealthCondition),
				}
			}
		}
		for _, h := range hits {
			if slipPhrases[h] {
				return models.SafetyAnalysis{
					Category:           models.CategorySlipOvereating,
					RiskLevel:          models.RiskMedium,
					TriggeredKeywords:  triggered,
					SafetyInstructions: InstructionsFor(models.CategorySlipOvereating),
					ShouldPauseStreaks: true,
				}
			}
		}
	}

	if strings.Contains(lower, "craving") || strings.Contains(lower, "want") || strings.Contains(lower, "need") {
		return models.SafetyAnalysis{
			Category:           models.CategoryNormalCraving,
			RiskLevel:          models.RiskLow,
			TriggeredKeywords:  triggered,
			SafetyInstructions: InstructionsFor(models.CategoryNormalCraving),
		}
	}

	return models.SafetyAnalysis{
		Category:           models.CategoryGeneralSupport,
		RiskLevel:          models.RiskLow,
		TriggeredKeywords:  triggered,
		SafetyInstructions: InstructionsFor(models.CategoryGeneralSupport),
	}
}
