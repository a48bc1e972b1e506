package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/craveless/lesscoach/internal/models"
)

func TestInMemoryStore_ProfileRoundTrip(t *testing.T) {
	st := NewInMemoryStore()

	got, err := st.GetProfile("u1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for absent profile, got %+v", got)
	}

	profile := models.NewUserInsightProfile("u1")
	profile.GoalMode = models.GoalModeQuit
	profile.TriggerStats["stressed"] = 2
	if err := st.SaveProfile(profile); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}

	got, err = st.GetProfile("u1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if got == nil || got.GoalMode != models.GoalModeQuit || got.TriggerStats["stressed"] != 2 {
		t.Errorf("unexpected profile: %+v", got)
	}

	if err := st.DeleteProfile("u1"); err != nil {
		t.Fatalf("DeleteProfile failed: %v", err)
	}
	got, _ = st.GetProfile("u1")
	if got != nil {
		t.Error("expected profile deleted")
	}
}

func TestInMemoryStore_SaveProfileRequiresUserID(t *testing.T) {
	st := NewInMemoryStore()
	err := st.SaveProfile(&models.UserInsightProfile{})
	if !errors.Is(err, models.ErrEmptyUserID) {
		t.Errorf("expected ErrEmptyUserID, got %v", err)
	}
}

func TestInMemoryStore_AppendTurnEvictsOldest(t *testing.T) {
	st := NewInMemoryStore()

	for i := 0; i < models.MaxTurns+3; i++ {
		if _, err := st.AppendTurn("u1", "user", fmt.Sprintf("message %d", i)); err != nil {
			t.Fatalf("AppendTurn failed: %v", err)
		}
	}

	turns, err := st.RecentTurns("u1", 0)
	if err != nil {
		t.Fatalf("RecentTurns failed: %v", err)
	}
	if len(turns) != models.MaxTurns {
		t.Fatalf("expected %d turns after eviction, got %d", models.MaxTurns, len(turns))
	}
	if turns[0].Content != "message 3" {
		t.Errorf("expected oldest surviving turn to be message 3, got %q", turns[0].Content)
	}
	if turns[len(turns)-1].Content != fmt.Sprintf("message %d", models.MaxTurns+2) {
		t.Errorf("expected newest turn last, got %q", turns[len(turns)-1].Content)
	}
}

func TestInMemoryStore_RecentTurnsLimit(t *testing.T) {
	st := NewInMemoryStore()
	for i := 0; i < 5; i++ {
		st.AppendTurn("u1", "user", fmt.Sprintf("m%d", i))
	}

	turns, err := st.RecentTurns("u1", 2)
	if err != nil {
		t.Fatalf("RecentTurns failed: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Content != "m3" || turns[1].Content != "m4" {
		t.Errorf("expected the two newest turns oldest-first, got %q, %q", turns[0].Content, turns[1].Content)
	}
}

func TestInMemoryStore_AppendTurnValidation(t *testing.T) {
	st := NewInMemoryStore()

	if _, err := st.AppendTurn("u1", "system", "hi"); !errors.Is(err, models.ErrInvalidTurnRole) {
		t.Errorf("expected ErrInvalidTurnRole, got %v", err)
	}
	if _, err := st.AppendTurn("u1", "user", "   "); !errors.Is(err, models.ErrEmptyTurnContent) {
		t.Errorf("expected ErrEmptyTurnContent, got %v", err)
	}

	turn, err := st.AppendTurn("u1", "user", "  hello  ")
	if err != nil {
		t.Fatalf("AppendTurn failed: %v", err)
	}
	if turn.Content != "hello" {
		t.Errorf("expected trimmed content, got %q", turn.Content)
	}
	if turn.ID == "" {
		t.Error("expected generated turn ID")
	}
}

func TestInMemoryStore_ClearTurns(t *testing.T) {
	st := NewInMemoryStore()
	st.AppendTurn("u1", "user", "hi")
	st.AppendTurn("u2", "user", "other user")

	if err := st.ClearTurns("u1"); err != nil {
		t.Fatalf("ClearTurns failed: %v", err)
	}
	turns, _ := st.RecentTurns("u1", 0)
	if len(turns) != 0 {
		t.Errorf("expected no turns after clear, got %d", len(turns))
	}
	turns, _ = st.RecentTurns("u2", 0)
	if len(turns) != 1 {
		t.Errorf("clear must not touch other users, got %d turns", len(turns))
	}
}

func TestInMemoryStore_AddCravingValidates(t *testing.T) {
	st := NewInMemoryStore()

	bad := models.Craving{
		UserID:    "u1",
		Timestamp: time.Now(),
		SweetType: models.SweetChocolate,
		Emotion:   models.EmotionStressed,
		Intensity: 11,
	}
	if err := st.AddCraving(bad); !errors.Is(err, models.ErrInvalidIntensity) {
		t.Errorf("expected ErrInvalidIntensity, got %v", err)
	}

	bad.Intensity = 7
	bad.SweetType = "donut"
	if err := st.AddCraving(bad); !errors.Is(err, models.ErrInvalidSweetType) {
		t.Errorf("expected ErrInvalidSweetType, got %v", err)
	}
}

func TestInMemoryStore_ListCravingsNewestFirst(t *testing.T) {
	st := NewInMemoryStore()
	base := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		c := models.Craving{
			UserID:    "u1",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			SweetType: models.SweetCandy,
			Emotion:   models.EmotionBored,
			Intensity: 5,
		}
		if err := st.AddCraving(c); err != nil {
			t.Fatalf("AddCraving failed: %v", err)
		}
	}

	cravings, err := st.ListCravings("u1")
	if err != nil {
		t.Fatalf("ListCravings failed: %v", err)
	}
	if len(cravings) != 3 {
		t.Fatalf("expected 3 cravings, got %d", len(cravings))
	}
	if !cravings[0].Timestamp.After(cravings[1].Timestamp) {
		t.Error("expected newest craving first")
	}
	if cravings[0].ID == "" {
		t.Error("expected generated craving ID")
	}
}
