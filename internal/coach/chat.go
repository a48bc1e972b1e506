package coach

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/craveless/lesscoach/internal/models"
	"github.com/craveless/lesscoach/internal/safety"
)

// reaskDirective is appended when the user reported the previous reply
// was not helpful and wants a different approach.
const reaskDirective = `[USER FEEDBACK: Need more help - try different approach]`

// ChatRequest carries one turn of the free-text chat flow.
type ChatRequest struct {
	UserMessage      string
	Analysis         models.SafetyAnalysis
	RecentTurns      []models.AiTurn
	GoalMode         models.GoalMode
	CravingsLogged   int
	CravingsResisted int
	Hour             int
	Reask            bool
}

// GetChatReply runs one turn of the free-text chat flow: it splices the
// classifier's safety analysis, the conversation so far, and the user's
// craving context into a single prompt and returns the raw reply text.
//
// Unlike GetReply there is no JSON contract: the caller is expected to
// have short-circuited high-risk categories to the classifier's canned
// fallback before calling this, so the response is used verbatim. A
// generation failure resolves to the generic fallback message.
func (s *Service) GetChatReply(ctx context.Context, req ChatRequest) string {
	slog.Debug("CoachService.GetChatReply: starting request", "messageLength", len(req.UserMessage), "turns", len(req.RecentTurns), "reask", req.Reask)

	prompt := safety.BuildSafePrompt(req.UserMessage, req.Analysis, formatChatHistory(req.RecentTurns), len(req.RecentTurns) == 0, safety.UserContext{
		GoalMode:         req.GoalMode,
		CravingsLogged:   req.CravingsLogged,
		CravingsResisted: req.CravingsResisted,
		Hour:             req.Hour,
	})
	if req.Reask {
		prompt += "\n\n" + reaskDirective
	}

	response, err := s.genaiClient.GeneratePrompt(ctx, prompt)
	if err != nil {
		slog.Error("CoachService.GetChatReply: generation failed, using fallback", "error", err)
		return fallbackMessage
	}

	reply := strings.TrimSpace(response)
	if reply == "" {
		slog.Warn("CoachService.GetChatReply: empty response, using fallback")
		return fallbackMessage
	}
	return reply
}

// formatChatHistory renders turns as "User:"/"Coach:" lines separated by
// blank lines.
func formatChatHistory(turns []models.AiTurn) string {
	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		speaker := "Coach"
		if turn.Role == "user" {
			speaker = "User"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, turn.Content))
	}
	return strings.Join(lines, "\n\n")
}
