// Package coach implements the orchestrator around the text-generation
// service: prompt assembly, strict-JSON parsing with a bounded retry,
// the deterministic safety override, and the safe fallback path.
//
// No generation or parsing failure escapes this package; every path
// resolves to either a validated result, a safety-overridden result, or
// the canned fallback.
package coach

import (
	"context"
	"log/slog"
	"strings"

	"github.com/craveless/lesscoach/internal/genai"
	"github.com/craveless/lesscoach/internal/models"
	"github.com/craveless/lesscoach/internal/safety"
)

// Crisis keyword re-check applied to the raw user message regardless of
// the model's classification. Deliberately a small, broad set.
var overrideCrisisKeywords = []string{"kill", "suicide", "die", "self harm", "hurt myself", "end it"}

// Disordered-eating keyword re-check; corrects classification only.
var overrideDisorderedKeywords = []string{"binge", "purge", "vomit", "laxative", "starve", "punish myself"}

const fallbackMessage = "I'm here to help. Could you tell me more about what you're experiencing?"

// ReplyRequest carries everything GetReply needs for one turn.
type ReplyRequest struct {
	UserMessage  string
	Profile      *models.UserInsightProfile
	RecentTurns  []models.AiTurn
	Stats        models.RecentStats
	Moment       *models.CurrentMoment
	DistressMode bool
}

// Service is the coach orchestrator.
type Service struct {
	genaiClient genai.ClientInterface
}

// NewService creates a coach service with the given generation client.
func NewService(genaiClient genai.ClientInterface) *Service {
	return &Service{genaiClient: genaiClient}
}

// safeFallback is the hardcoded result returned when generation or
// parsing fails beyond recovery.
func safeFallback() *models.CoachResult {
	return &models.CoachResult{
		AssistantMessage: fallbackMessage,
		Classification:   models.ClassNormal,
		QuickActions:     []string{models.ActionStartPause},
		MemoryUpdates: models.MemoryUpdates{
			AddTriggers:         []string{},
			AddSweetPreferences: []string{},
			AddPeakTimes:        []string{},
		},
	}
}

// GetReply runs one full coach turn: build prompt, call generation,
// extract and validate JSON, retry once if no JSON object was found,
// then apply the safety override. It never returns an error for
// generation or parsing failures.
//
// The generation service is called at most twice per invocation.
func (s *Service) GetReply(ctx context.Context, req ReplyRequest) *models.CoachResult {
	slog.Debug("CoachService.GetReply: starting request", "messageLength", len(req.UserMessage), "turns", len(req.RecentTurns))

	prompt := buildPrompt(req)

	response, err := s.genaiClient.GeneratePrompt(ctx, prompt)
	if err != nil {
		slog.Error("CoachService.GetReply: generation failed, using fallback", "error", err)
		return s.applyOverrides(req.UserMessage, safeFallback())
	}

	jsonStr := extractJSON(response)
	if jsonStr == "" {
		slog.Warn("CoachService.GetReply: no JSON object in response, retrying once")
		result := s.retry(ctx, prompt)
		return s.applyOverrides(req.UserMessage, result)
	}

	result, err := parseResult(jsonStr)
	if err != nil {
		// Schema failures on an extracted object go straight to fallback;
		// the retry is reserved for responses with no JSON at all.
		slog.Warn("CoachService.GetReply: response failed validation, using fallback", "error", err)
		return s.applyOverrides(req.UserMessage, safeFallback())
	}

	slog.Debug("CoachService.GetReply: valid response received", "classification", result.Classification)
	return s.applyOverrides(req.UserMessage, result)
}

// retry repeats the generation once with an explicit invalid-JSON notice
// appended to the same prompt. Any failure resolves to the fallback.
func (s *Service) retry(ctx context.Context, prompt string) *models.CoachResult {
	retryPrompt := prompt + "\n\n" + retryDirective

	response, err := s.genaiClient.GeneratePrompt(ctx, retryPrompt)
	if err != nil {
		slog.Error("CoachService.retry: generation failed, using fallback", "error", err)
		return safeFallback()
	}

	jsonStr := extractJSON(response)
	if jsonStr == "" {
		slog.Warn("CoachService.retry: still no JSON object, using fallback")
		return safeFallback()
	}

	result, err := parseResult(jsonStr)
	if err != nil {
		slog.Warn("CoachService.retry: retry response failed validation, using fallback", "error", err)
		return safeFallback()
	}

	slog.Debug("CoachService.retry: retry produced valid response", "classification", result.Classification)
	return result
}

// applyOverrides re-checks the raw user message against the crisis and
// disordered-eating keyword sets and corrects the result when the model
// under-classified. Runs unconditionally on every result, fallback
// included, and takes precedence over whatever the model produced.
func (s *Service) applyOverrides(userMessage string, result *models.CoachResult) *models.CoachResult {
	lower := strings.ToLower(userMessage)

	if containsAny(lower, overrideCrisisKeywords) && result.Classification != models.ClassCrisis {
		slog.Warn("CoachService.applyOverrides: crisis keywords detected, overriding result")
		overridden := *result
		overridden.AssistantMessage = safety.CrisisFallback
		overridden.Classification = models.ClassCrisis
		overridden.QuickActions = []string{}
		overridden.MemoryUpdates.DistressFlag = true
		return &overridden
	}

	if containsAny(lower, overrideDisorderedKeywords) && result.Classification == models.ClassNormal {
		slog.Warn("CoachService.applyOverrides: disordered-eating keywords detected, correcting classification")
		overridden := *result
		overridden.Classification = models.ClassDisorderedEating
		overridden.MemoryUpdates.DistressFlag = true
		return &overridden
	}

	return result
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
