package safety

import (
	"strings"
	"testing"

	"github.com/craveless/lesscoach/internal/models"
)

func TestBuildSafePrompt_FirstMessage(t *testing.T) {
	analysis := Classify("craving chocolate")
	prompt := BuildSafePrompt("craving chocolate", analysis, "", true, UserContext{
		GoalMode:         models.GoalModeReduce,
		CravingsLogged:   12,
		CravingsResisted: 8,
		Hour:             15,
	})

	if !strings.Contains(prompt, "You are Less") {
		t.Error("expected identity block")
	}
	if !strings.Contains(prompt, "Cravings logged: 12") {
		t.Error("expected cravings-logged count")
	}
	if !strings.Contains(prompt, "GOAL MODE: Reduce Gradually") {
		t.Error("expected reduce goal-mode guidance")
	}
	if !strings.Contains(prompt, "TIME: Afternoon (15:00)") {
		t.Error("expected afternoon time guidance for hour 15")
	}
	if !strings.Contains(prompt, "FIRST message") {
		t.Error("expected first-message instruction")
	}
	if !strings.Contains(prompt, "USER MESSAGE: craving chocolate") {
		t.Error("expected literal user message")
	}
	if !strings.Contains(prompt, analysis.SafetyInstructions) {
		t.Error("expected category safety instructions spliced verbatim")
	}
}

func TestBuildSafePrompt_Continuation(t *testing.T) {
	history := "User: I'm craving\n\nLess: Let's pause and take a breath together."
	analysis := Classify("still craving")
	prompt := BuildSafePrompt("still craving", analysis, history, false, UserContext{Hour: 22})

	if strings.Contains(prompt, "FIRST message") {
		t.Error("continuation must not carry the first-message instruction")
	}
	if !strings.Contains(prompt, "CONVERSATION HISTORY:") {
		t.Error("expected conversation history section")
	}
	if !strings.Contains(prompt, "DO NOT introduce yourself again") {
		t.Error("expected no-reintroduction instruction")
	}
	if !strings.Contains(prompt, "TIME: Late Night (22:00)") {
		t.Error("expected late-night guidance for hour 22")
	}
}

func TestBuildSafePrompt_VariationGuidance(t *testing.T) {
	history := "Less: Try to take a breath and drink water before deciding."
	prompt := BuildSafePrompt("hi", Classify("hi"), history, false, UserContext{Hour: 9})

	if !strings.Contains(prompt, "AVOID REPETITION") {
		t.Error("expected variation guidance once techniques were used")
	}
	if !strings.Contains(prompt, "breathing") || !strings.Contains(prompt, "hydration") {
		t.Errorf("expected used techniques listed, got prompt without them")
	}
}

func TestBuildSafePrompt_NoHistoryVariation(t *testing.T) {
	prompt := BuildSafePrompt("hi", Classify("hi"), "", true, UserContext{Hour: 9})
	if !strings.Contains(prompt, "VARIATION: First interaction") {
		t.Error("expected first-interaction variation line with empty history")
	}
}

func TestBuildSafePrompt_TriggeredKeywordsLine(t *testing.T) {
	analysis := Classify("I feel guilty about yesterday")
	prompt := BuildSafePrompt("I feel guilty about yesterday", analysis, "", true, UserContext{Hour: 9})

	if !strings.Contains(prompt, "Triggered Keywords: guilty") {
		t.Error("expected triggered keywords line in safety section")
	}
}

func TestInstructionsFor_AllCategoriesCovered(t *testing.T) {
	categories := []models.MessageCategory{
		models.CategoryCrisis,
		models.CategoryDisorderedEating,
		models.CategoryMedicalAdvice,
		models.CategoryMentalDistress,
		models.CategoryHealthCondition,
		models.CategorySlipOvereating,
		models.CategoryNormalCraving,
		models.CategoryGeneralSupport,
	}
	for _, cat := range categories {
		if InstructionsFor(cat) == "" {
			t.Errorf("category %s has no safety instructions", cat)
		}
	}
}
