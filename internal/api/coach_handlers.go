package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/craveless/lesscoach/internal/coach"
	"github.com/craveless/lesscoach/internal/insight"
	"github.com/craveless/lesscoach/internal/models"
	"github.com/craveless/lesscoach/internal/safety"
)

// coachMessageRequest is the request body for POST /coach/message.
type coachMessageRequest struct {
	UserID  string                `json:"user_id"`
	Message string                `json:"message"`
	Moment  *models.CurrentMoment `json:"current_moment,omitempty"`
}

// coachMessageResponse bundles the coach result with the safety signals
// the client uses to mutate app state (distress mode, streak pause).
type coachMessageResponse struct {
	Result             *models.CoachResult    `json:"result"`
	Category           models.MessageCategory `json:"category"`
	RiskLevel          models.RiskLevel       `json:"risk_level"`
	DistressMode       bool                   `json:"distress_mode"`
	ShouldPauseStreaks bool                   `json:"should_pause_streaks"`
}

// fallbackClassification maps high-risk classifier categories to the
// result classification used when generation is bypassed entirely.
func fallbackClassification(category models.MessageCategory) models.Classification {
	switch category {
	case models.CategoryCrisis:
		return models.ClassCrisis
	case models.CategoryDisorderedEating:
		return models.ClassDisorderedEating
	case models.CategoryMedicalAdvice:
		return models.ClassMedicalRequest
	default:
		return models.ClassNormal
	}
}

// coachMessageHandler runs one coach turn: classify, short-circuit to the
// canned fallback for high-risk categories, otherwise orchestrate a
// generation call, then persist memory updates and turn history.
//
// The assistant turn is appended only after the final (possibly
// safety-overridden) result exists, so history never contains a reply
// that was later overridden.
func (s *Server) coachMessageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req coachMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("invalid JSON body"))
		return
	}
	if req.UserID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrEmptyUserID.Error()))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrEmptyMessage.Error()))
		return
	}
	if len(req.Message) > models.MaxMessageLength {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrMessageTooLong.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), DefaultRequestTimeout)
	defer cancel()

	profile := s.loadOrCreateProfile(req.UserID)
	analysis := safety.Classify(req.Message)

	// History is loaded before the user turn is appended so the prompt
	// does not contain the current message twice.
	recentTurns, err := s.st.RecentTurns(req.UserID, models.MaxTurns)
	if err != nil {
		slog.Error("Server.coachMessageHandler: failed to load turns, proceeding with empty history", "error", err, "userID", req.UserID)
		recentTurns = nil
	}
	if _, err := s.st.AppendTurn(req.UserID, "user", req.Message); err != nil {
		slog.Error("Server.coachMessageHandler: failed to append user turn", "error", err, "userID", req.UserID)
	}

	now := s.now()

	var result *models.CoachResult
	if analysis.ShouldUseFallback {
		// High-risk categories bypass generation entirely.
		slog.Info("Server.coachMessageHandler: classifier fallback path", "userID", req.UserID, "category", analysis.Category)
		result = &models.CoachResult{
			AssistantMessage: analysis.FallbackResponse,
			Classification:   fallbackClassification(analysis.Category),
			QuickActions:     []string{},
			MemoryUpdates:    models.MemoryUpdates{DistressFlag: analysis.ShouldActivateDistressMode},
		}
	} else {
		cravings, err := s.st.ListCravings(req.UserID)
		if err != nil {
			slog.Error("Server.coachMessageHandler: failed to load cravings, proceeding with empty stats", "error", err, "userID", req.UserID)
		}
		stats := insight.BuildRecentStats(cravings, now)

		result = s.coachSvc.GetReply(ctx, coach.ReplyRequest{
			UserMessage:  req.Message,
			Profile:      profile,
			RecentTurns:  recentTurns,
			Stats:        stats,
			Moment:       req.Moment,
			DistressMode: profile.DistressFlag || analysis.ShouldActivateDistressMode,
		})
	}

	// Fold text-inferred signals and the model's proposed deltas into the
	// profile, in that order.
	signals := insight.InferSignals(req.Message, now)
	profile = insight.ApplyMemoryUpdates(profile, models.MemoryUpdates{
		AddTriggers:         signals.Triggers,
		AddSweetPreferences: signals.SweetPrefs,
		AddPeakTimes:        []string{string(signals.TimeBucket)},
	}, now)
	profile = insight.ApplyMemoryUpdates(profile, result.MemoryUpdates, now)
	if analysis.ShouldActivateDistressMode {
		profile.DistressFlag = true
	}

	if err := s.st.SaveProfile(profile); err != nil {
		slog.Error("Server.coachMessageHandler: failed to save profile", "error", err, "userID", req.UserID)
	}

	// Assistant turn is written last, after overrides have settled.
	if _, err := s.st.AppendTurn(req.UserID, "assistant", result.AssistantMessage); err != nil {
		slog.Error("Server.coachMessageHandler: failed to append assistant turn", "error", err, "userID", req.UserID)
	}

	writeJSONResponse(w, http.StatusOK, models.Success(coachMessageResponse{
		Result:             result,
		Category:           analysis.Category,
		RiskLevel:          analysis.RiskLevel,
		DistressMode:       profile.DistressFlag,
		ShouldPauseStreaks: analysis.ShouldPauseStreaks,
	}))
}

// coachChatRequest is the request body for POST /coach/chat. With Reask
// set, Message may be empty: the most recent user turn is re-answered
// with an explicit different-approach directive.
type coachChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message,omitempty"`
	Reask   bool   `json:"reask,omitempty"`
}

// coachChatResponse is the plain-text counterpart of coachMessageResponse.
type coachChatResponse struct {
	Reply              string                 `json:"reply"`
	Category           models.MessageCategory `json:"category"`
	RiskLevel          models.RiskLevel       `json:"risk_level"`
	DistressMode       bool                   `json:"distress_mode"`
	ShouldPauseStreaks bool                   `json:"should_pause_streaks"`
}

// coachChatHandler runs one turn of the free-text chat flow: classify,
// short-circuit high-risk categories to the canned fallback, otherwise
// send the safety-templated prompt to generation and return the reply
// verbatim. No insight-profile deltas are derived on this path; only the
// distress flag is latched.
func (s *Server) coachChatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req coachChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("invalid JSON body"))
		return
	}
	if req.UserID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrEmptyUserID.Error()))
		return
	}
	if len(req.Message) > models.MaxMessageLength {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrMessageTooLong.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), DefaultRequestTimeout)
	defer cancel()

	profile := s.loadOrCreateProfile(req.UserID)

	recentTurns, err := s.st.RecentTurns(req.UserID, models.MaxTurns)
	if err != nil {
		slog.Error("Server.coachChatHandler: failed to load turns, proceeding with empty history", "error", err, "userID", req.UserID)
		recentTurns = nil
	}

	message := strings.TrimSpace(req.Message)
	if req.Reask {
		// Re-answer the most recent user turn; the unhelpful assistant
		// reply stays in the history the prompt replays.
		message = lastUserContent(recentTurns)
	}
	if message == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrEmptyMessage.Error()))
		return
	}

	analysis := safety.Classify(message)

	if !req.Reask {
		if _, err := s.st.AppendTurn(req.UserID, "user", message); err != nil {
			slog.Error("Server.coachChatHandler: failed to append user turn", "error", err, "userID", req.UserID)
		}
	}

	var reply string
	if analysis.ShouldUseFallback {
		slog.Info("Server.coachChatHandler: classifier fallback path", "userID", req.UserID, "category", analysis.Category)
		reply = analysis.FallbackResponse
	} else {
		cravings, err := s.st.ListCravings(req.UserID)
		if err != nil {
			slog.Error("Server.coachChatHandler: failed to load cravings, proceeding with zero counts", "error", err, "userID", req.UserID)
		}
		resisted := 0
		for _, c := range cravings {
			if c.Outcome == models.OutcomeResisted {
				resisted++
			}
		}

		reply = s.coachSvc.GetChatReply(ctx, coach.ChatRequest{
			UserMessage:      message,
			Analysis:         analysis,
			RecentTurns:      recentTurns,
			GoalMode:         profile.GoalMode,
			CravingsLogged:   len(cravings),
			CravingsResisted: resisted,
			Hour:             s.now().Hour(),
			Reask:            req.Reask,
		})
	}

	if analysis.ShouldActivateDistressMode && !profile.DistressFlag {
		profile.DistressFlag = true
		if err := s.st.SaveProfile(profile); err != nil {
			slog.Error("Server.coachChatHandler: failed to save profile", "error", err, "userID", req.UserID)
		}
	}

	if _, err := s.st.AppendTurn(req.UserID, "assistant", reply); err != nil {
		slog.Error("Server.coachChatHandler: failed to append assistant turn", "error", err, "userID", req.UserID)
	}

	writeJSONResponse(w, http.StatusOK, models.Success(coachChatResponse{
		Reply:              reply,
		Category:           analysis.Category,
		RiskLevel:          analysis.RiskLevel,
		DistressMode:       profile.DistressFlag,
		ShouldPauseStreaks: analysis.ShouldPauseStreaks,
	}))
}

// lastUserContent returns the content of the most recent user turn, or
// empty when the history has none.
func lastUserContent(turns []models.AiTurn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == "user" {
			return turns[i].Content
		}
	}
	return ""
}

// coachHistoryHandler serves GET (recent turns) and DELETE (clear) for
// the conversation window.
func (s *Server) coachHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrEmptyUserID.Error()))
		return
	}

	switch r.Method {
	case http.MethodGet:
		turns, err := s.st.RecentTurns(userID, models.MaxTurns)
		if err != nil {
			slog.Error("Server.coachHistoryHandler: failed to load turns", "error", err, "userID", userID)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to load history"))
			return
		}
		if turns == nil {
			turns = []models.AiTurn{}
		}
		writeJSONResponse(w, http.StatusOK, models.Success(turns))
	case http.MethodDelete:
		if err := s.st.ClearTurns(userID); err != nil {
			slog.Error("Server.coachHistoryHandler: failed to clear turns", "error", err, "userID", userID)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to clear history"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("history cleared", nil))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// loadOrCreateProfile returns the stored profile or a fresh default when
// none exists or the store read fails; classification and prompt building
// proceed with the default in the failure case.
func (s *Server) loadOrCreateProfile(userID string) *models.UserInsightProfile {
	profile, err := s.st.GetProfile(userID)
	if err != nil {
		slog.Error("Server.loadOrCreateProfile: store read failed, using empty profile", "error", err, "userID", userID)
		return models.NewUserInsightProfile(userID)
	}
	if profile == nil {
		return models.NewUserInsightProfile(userID)
	}
	return profile
}
