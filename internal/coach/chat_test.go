package coach

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/craveless/lesscoach/internal/models"
	"github.com/craveless/lesscoach/internal/safety"
)

// capturingClient records the last prompt it was sent.
type capturingClient struct {
	response   string
	err        error
	lastPrompt string
	calls      int
}

func (c *capturingClient) GeneratePrompt(_ context.Context, prompt string) (string, error) {
	c.calls++
	c.lastPrompt = prompt
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func TestGetChatReply_PromptAssembly(t *testing.T) {
	client := &capturingClient{response: "Yeah, that makes sense. Let's take a breath together."}
	svc := NewService(client)

	message := "I'm having a strong craving right now"
	reply := svc.GetChatReply(context.Background(), ChatRequest{
		UserMessage:      message,
		Analysis:         safety.Classify(message),
		GoalMode:         models.GoalModeQuit,
		CravingsLogged:   12,
		CravingsResisted: 7,
		Hour:             21,
	})

	if reply != client.response {
		t.Errorf("expected raw reply passed through, got %q", reply)
	}
	if !strings.Contains(client.lastPrompt, "GOAL MODE: Quit Sugar") {
		t.Error("expected goal-mode guidance in prompt")
	}
	if !strings.Contains(client.lastPrompt, "Cravings logged: 12") || !strings.Contains(client.lastPrompt, "Resisted: 7") {
		t.Error("expected craving counts in prompt")
	}
	if !strings.Contains(client.lastPrompt, "NORMAL CRAVING SUPPORT") {
		t.Error("expected classifier safety instructions in prompt")
	}
	if !strings.Contains(client.lastPrompt, "FIRST message in a NEW conversation") {
		t.Error("expected first-message introduction with empty history")
	}
	if strings.Contains(client.lastPrompt, reaskDirective) {
		t.Error("reask directive must not appear on a normal turn")
	}
}

func TestGetChatReply_ContinuationUsesHistory(t *testing.T) {
	client := &capturingClient{response: "Want to try something different this time?"}
	svc := NewService(client)

	message := "the craving is still there"
	svc.GetChatReply(context.Background(), ChatRequest{
		UserMessage: message,
		Analysis:    safety.Classify(message),
		RecentTurns: []models.AiTurn{
			{Role: "user", Content: "I want chocolate"},
			{Role: "assistant", Content: "Let's pause for two minutes first."},
		},
		Hour: 14,
	})

	if !strings.Contains(client.lastPrompt, "User: I want chocolate") {
		t.Error("expected user turn in history")
	}
	if !strings.Contains(client.lastPrompt, "Coach: Let's pause for two minutes first.") {
		t.Error("expected assistant turn rendered as Coach line")
	}
	if !strings.Contains(client.lastPrompt, "ONGOING conversation") {
		t.Error("expected continuation framing with history present")
	}
	if strings.Contains(client.lastPrompt, "FIRST message in a NEW conversation") {
		t.Error("first-message introduction must not appear on a continuation")
	}
}

func TestGetChatReply_ReaskAppendsDirective(t *testing.T) {
	client := &capturingClient{response: "Okay, let's try urge surfing instead."}
	svc := NewService(client)

	message := "I'm craving something sweet"
	svc.GetChatReply(context.Background(), ChatRequest{
		UserMessage: message,
		Analysis:    safety.Classify(message),
		RecentTurns: []models.AiTurn{
			{Role: "user", Content: message},
			{Role: "assistant", Content: "Try taking a breath."},
		},
		Hour:  9,
		Reask: true,
	})

	if !strings.HasSuffix(client.lastPrompt, reaskDirective) {
		t.Errorf("expected reask directive at end of prompt, got tail %q", client.lastPrompt[len(client.lastPrompt)-80:])
	}
}

func TestGetChatReply_GenerationErrorFallsBack(t *testing.T) {
	client := &capturingClient{err: errors.New("unavailable")}
	svc := NewService(client)

	message := "hi"
	reply := svc.GetChatReply(context.Background(), ChatRequest{
		UserMessage: message,
		Analysis:    safety.Classify(message),
	})

	if client.calls != 1 {
		t.Fatalf("expected no retry on this path, got %d calls", client.calls)
	}
	if reply != fallbackMessage {
		t.Errorf("expected fallback message, got %q", reply)
	}
}

func TestGetChatReply_BlankResponseFallsBack(t *testing.T) {
	client := &capturingClient{response: "   \n  "}
	svc := NewService(client)

	message := "hi"
	reply := svc.GetChatReply(context.Background(), ChatRequest{
		UserMessage: message,
		Analysis:    safety.Classify(message),
	})

	if reply != fallbackMessage {
		t.Errorf("expected fallback message for blank response, got %q", reply)
	}
}

func TestGetChatReply_TrimsReply(t *testing.T) {
	client := &capturingClient{response: "\n  That sounds hard. I'm here.  \n"}
	svc := NewService(client)

	message := "rough day"
	reply := svc.GetChatReply(context.Background(), ChatRequest{
		UserMessage: message,
		Analysis:    safety.Classify(message),
	})

	if reply != "That sounds hard. I'm here." {
		t.Errorf("expected trimmed reply, got %q", reply)
	}
}
