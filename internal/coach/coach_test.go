package coach

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/craveless/lesscoach/internal/models"
	"github.com/craveless/lesscoach/internal/safety"
)

// scriptedClient returns its canned responses in order and counts calls.
type scriptedClient struct {
	responses []string
	err       error
	calls     int
}

func (c *scriptedClient) GeneratePrompt(_ context.Context, _ string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	i := c.calls - 1
	if i >= len(c.responses) {
		i = len(c.responses) - 1
	}
	return c.responses[i], nil
}

const validResponse = `{
	"assistantMessage": "That sounds tough. Want to try a two-minute pause?",
	"classification": "normal",
	"quickActions": ["start_pause"],
	"memoryUpdates": {"addTriggers": ["stressed"]}
}`

func testRequest(message string) ReplyRequest {
	return ReplyRequest{
		UserMessage: message,
		Profile:     models.NewUserInsightProfile("u1"),
	}
}

func TestGetReply_ValidResponse(t *testing.T) {
	client := &scriptedClient{responses: []string{validResponse}}
	svc := NewService(client)

	result := svc.GetReply(context.Background(), testRequest("craving chocolate after work"))

	if client.calls != 1 {
		t.Fatalf("expected 1 generation call, got %d", client.calls)
	}
	if result.Classification != models.ClassNormal {
		t.Errorf("expected normal classification, got %q", result.Classification)
	}
	if !strings.Contains(result.AssistantMessage, "two-minute pause") {
		t.Errorf("unexpected message: %q", result.AssistantMessage)
	}
	if len(result.MemoryUpdates.AddTriggers) != 1 || result.MemoryUpdates.AddTriggers[0] != "stressed" {
		t.Errorf("unexpected memory updates: %+v", result.MemoryUpdates)
	}
}

func TestGetReply_GenerationErrorFallsBack(t *testing.T) {
	client := &scriptedClient{err: errors.New("rate limited")}
	svc := NewService(client)

	result := svc.GetReply(context.Background(), testRequest("hi"))

	if client.calls != 1 {
		t.Fatalf("expected no retry on generation error, got %d calls", client.calls)
	}
	if result.AssistantMessage != fallbackMessage {
		t.Errorf("expected fallback message, got %q", result.AssistantMessage)
	}
	if result.Classification != models.ClassNormal {
		t.Errorf("expected normal classification, got %q", result.Classification)
	}
	if len(result.QuickActions) != 1 || result.QuickActions[0] != models.ActionStartPause {
		t.Errorf("expected start_pause quick action, got %v", result.QuickActions)
	}
}

func TestGetReply_NoJSONRetriesOnce(t *testing.T) {
	client := &scriptedClient{responses: []string{"Sure, I can help with that!", validResponse}}
	svc := NewService(client)

	result := svc.GetReply(context.Background(), testRequest("hi"))

	if client.calls != 2 {
		t.Fatalf("expected exactly 2 generation calls, got %d", client.calls)
	}
	if result.Classification != models.ClassNormal {
		t.Errorf("expected normal classification from retry, got %q", result.Classification)
	}
}

func TestGetReply_NoJSONTwiceFallsBack(t *testing.T) {
	client := &scriptedClient{responses: []string{"no json here", "still no json"}}
	svc := NewService(client)

	result := svc.GetReply(context.Background(), testRequest("hi"))

	if client.calls != 2 {
		t.Fatalf("expected retry bound of 2 calls, got %d", client.calls)
	}
	if result.AssistantMessage != fallbackMessage {
		t.Errorf("expected fallback message, got %q", result.AssistantMessage)
	}
}

func TestGetReply_InvalidSchemaFallsBackWithoutRetry(t *testing.T) {
	// A balanced JSON object that fails schema validation must not consume
	// the retry.
	client := &scriptedClient{responses: []string{`{"assistantMessage": "", "classification": "normal"}`}}
	svc := NewService(client)

	result := svc.GetReply(context.Background(), testRequest("hi"))

	if client.calls != 1 {
		t.Fatalf("expected 1 generation call, got %d", client.calls)
	}
	if result.AssistantMessage != fallbackMessage {
		t.Errorf("expected fallback message, got %q", result.AssistantMessage)
	}
}

func TestGetReply_UnknownClassificationFallsBack(t *testing.T) {
	client := &scriptedClient{responses: []string{`{
		"assistantMessage": "ok",
		"classification": "panic",
		"quickActions": [],
		"memoryUpdates": {}
	}`}}
	svc := NewService(client)

	result := svc.GetReply(context.Background(), testRequest("hi"))

	if result.AssistantMessage != fallbackMessage {
		t.Errorf("expected fallback for out-of-enum classification, got %q", result.AssistantMessage)
	}
}

func TestGetReply_CrisisOverrideReplacesResult(t *testing.T) {
	// Model under-classifies a crisis message as normal; the keyword
	// re-check must replace the whole reply.
	client := &scriptedClient{responses: []string{validResponse}}
	svc := NewService(client)

	result := svc.GetReply(context.Background(), testRequest("I want to kill myself"))

	if result.Classification != models.ClassCrisis {
		t.Fatalf("expected crisis classification, got %q", result.Classification)
	}
	if result.AssistantMessage != safety.CrisisFallback {
		t.Errorf("expected crisis fallback message, got %q", result.AssistantMessage)
	}
	if len(result.QuickActions) != 0 {
		t.Errorf("expected no quick actions on crisis, got %v", result.QuickActions)
	}
	if !result.MemoryUpdates.DistressFlag {
		t.Error("expected distress flag set")
	}
}

func TestGetReply_CrisisOverrideAppliesToFallback(t *testing.T) {
	client := &scriptedClient{err: errors.New("unavailable")}
	svc := NewService(client)

	result := svc.GetReply(context.Background(), testRequest("thinking about suicide"))

	if result.Classification != models.ClassCrisis {
		t.Errorf("expected crisis classification even on fallback, got %q", result.Classification)
	}
	if result.AssistantMessage != safety.CrisisFallback {
		t.Errorf("expected crisis fallback message, got %q", result.AssistantMessage)
	}
}

func TestGetReply_DisorderedOverrideKeepsMessage(t *testing.T) {
	client := &scriptedClient{responses: []string{validResponse}}
	svc := NewService(client)

	result := svc.GetReply(context.Background(), testRequest("I binge every night"))

	if result.Classification != models.ClassDisorderedEating {
		t.Fatalf("expected disordered_eating classification, got %q", result.Classification)
	}
	// Unlike the crisis path the assistant message is preserved.
	if !strings.Contains(result.AssistantMessage, "two-minute pause") {
		t.Errorf("expected original message kept, got %q", result.AssistantMessage)
	}
	if !result.MemoryUpdates.DistressFlag {
		t.Error("expected distress flag set")
	}
}

func TestGetReply_DisorderedOverrideSkippedWhenAlreadyClassified(t *testing.T) {
	classified := `{
		"assistantMessage": "I hear you, that sounds really hard.",
		"classification": "disordered_eating",
		"quickActions": [],
		"memoryUpdates": {}
	}`
	client := &scriptedClient{responses: []string{classified}}
	svc := NewService(client)

	result := svc.GetReply(context.Background(), testRequest("I binge every night"))

	if result.Classification != models.ClassDisorderedEating {
		t.Fatalf("expected disordered_eating, got %q", result.Classification)
	}
	if result.MemoryUpdates.DistressFlag {
		t.Error("override must not fire when the model already classified correctly")
	}
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"surrounding prose", `Here you go: {"a": 1} hope that helps`, `{"a": 1}`},
		{"markdown fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"nested objects", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`},
		{"brace inside string", `{"a": "}"}`, `{"a": "}"}`},
		{"escaped quote in string", `{"a": "say \"}\" now"}`, `{"a": "say \"}\" now"}`},
		{"no object", "just text", ""},
		{"unbalanced", `{"a": 1`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractJSON(tc.raw); got != tc.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestBuildPrompt_IncludesHistoryAndDistressDirective(t *testing.T) {
	req := ReplyRequest{
		UserMessage: "still craving",
		Profile:     models.NewUserInsightProfile("u1"),
		RecentTurns: []models.AiTurn{
			{Role: "user", Content: "I want candy"},
			{Role: "assistant", Content: "What's going on right now?"},
		},
		DistressMode: true,
	}

	prompt := buildPrompt(req)

	if !strings.Contains(prompt, "User: I want candy") {
		t.Error("expected user turn in prompt")
	}
	if !strings.Contains(prompt, "Less: What's going on right now?") {
		t.Error("expected assistant turn in prompt")
	}
	if !strings.Contains(prompt, "still craving") {
		t.Error("expected current message in prompt")
	}
	if !strings.Contains(prompt, distressDirective) {
		t.Error("expected distress directive appended")
	}
}

func TestBuildPrompt_LimitsHistoryWindow(t *testing.T) {
	turns := make([]models.AiTurn, 0, 10)
	for i := 0; i < 10; i++ {
		turns = append(turns, models.AiTurn{Role: "user", Content: "turn-" + string(rune('a'+i))})
	}
	req := ReplyRequest{
		UserMessage: "hi",
		Profile:     models.NewUserInsightProfile("u1"),
		RecentTurns: turns,
	}

	prompt := buildPrompt(req)

	if strings.Contains(prompt, "turn-a") {
		t.Error("expected oldest turns dropped from prompt")
	}
	if !strings.Contains(prompt, "turn-j") {
		t.Error("expected newest turn present in prompt")
	}
}
