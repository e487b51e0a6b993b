package service

import (
	"errors"
	"testing"
	"time"

	"github.com/nutrifit/internal/assistant"
	"github.com/nutrifit/internal/models"
)

func newTestAssistantService() *AssistantService {
	diets := []models.DietPlan{{Name: "Balanced", DailyCalories: 2000, Meals: []models.DietMeal{{Name: "Lunch", Foods: []string{"Rice", "Dal"}}}}}
	return NewAssistantService(diets, []string{"Got it!"}, 7)
}

func TestAssistantVoiceSessionFlow(t *testing.T) {
	svc := newTestAssistantService()
	state := svc.StartSession("user-1", assistant.ModeVoice)
	if !state.Connecting || state.ID == "" {
		t.Fatalf("voice session should start connecting: %+v", state)
	}

	steps := []assistant.RawMessage{
		{Type: "call-start"},
		{Type: "speech-start"},
		{Type: "message", TranscriptType: "partial", Transcript: "I want", Role: "user"},
		{Type: "message", TranscriptType: "final", Transcript: "I want to lose weight", Role: "user"},
		{Type: "speech-end"},
	}
	for _, raw := range steps {
		var err error
		state, err = svc.HandleEvent(state.ID, raw)
		if err != nil {
			t.Fatalf("event %s failed: %v", raw.Type, err)
		}
	}
	if !state.Active || state.Speaking {
		t.Fatalf("unexpected call flags: %+v", state)
	}
	if len(state.Messages) != 1 || state.Messages[0].Content != "I want to lose weight" {
		t.Fatalf("only final transcripts should be kept: %+v", state.Messages)
	}

	state, err := svc.HandleEvent(state.ID, assistant.RawMessage{Type: "call-end"})
	if err != nil {
		t.Fatalf("call-end failed: %v", err)
	}
	if !state.Ended || state.DietPlan == nil || state.DietPlan.Name != "Balanced" {
		t.Fatalf("ended session should carry diet plan: %+v", state)
	}
}

func TestAssistantMicrophoneDenied(t *testing.T) {
	svc := newTestAssistantService()
	state := svc.StartSession("", assistant.ModeVoice)
	raw := assistant.RawMessage{Type: "error", Error: &assistant.RawError{Name: assistant.ErrorNameNotAllowed}}
	got, err := svc.HandleEvent(state.ID, raw)
	if !errors.Is(err, ErrMicrophoneDenied) || !errors.Is(err, ErrPermission) {
		t.Fatalf("want ErrMicrophoneDenied got %v", err)
	}
	if got.Error != assistant.MessageMicrophoneDenied {
		t.Fatalf("want microphone message got %q", got.Error)
	}
}

func TestAssistantUnknownEventRejected(t *testing.T) {
	svc := newTestAssistantService()
	state := svc.StartSession("", assistant.ModeVoice)
	if _, err := svc.HandleEvent(state.ID, assistant.RawMessage{Type: "volume-level"}); !errors.Is(err, ErrAssistantEventBad) {
		t.Fatalf("want ErrAssistantEventBad got %v", err)
	}
}

func TestAssistantTextSessionEndsAfterLimit(t *testing.T) {
	svc := newTestAssistantService()
	state := svc.StartSession("user-1", assistant.ModeText)
	var err error
	for i := 0; i < 3; i++ {
		state, err = svc.SendText(state.ID, "hello")
		if err != nil {
			t.Fatalf("send %d failed: %v", i, err)
		}
	}
	if !state.Ended || len(state.Messages) != assistant.TextModeMessageLimit {
		t.Fatalf("want ended after %d messages got ended=%v len=%d", assistant.TextModeMessageLimit, state.Ended, len(state.Messages))
	}
	if state.Messages[1].Role != assistant.RoleAssistant || state.Messages[1].Content != "Got it!" {
		t.Fatalf("unexpected reply: %+v", state.Messages[1])
	}
	if state.DietPlan == nil {
		t.Fatalf("ended text session should carry a diet plan")
	}
	if _, err := svc.SendText(state.ID, "again"); !errors.Is(err, ErrAssistantEnded) {
		t.Fatalf("want ErrAssistantEnded got %v", err)
	}
}

func TestAssistantModeMismatchAndValidation(t *testing.T) {
	svc := newTestAssistantService()
	voice := svc.StartSession("", assistant.ModeVoice)
	if _, err := svc.SendText(voice.ID, "hi"); !errors.Is(err, ErrAssistantModeInvalid) {
		t.Fatalf("want ErrAssistantModeInvalid got %v", err)
	}
	text := svc.StartSession("", assistant.ModeText)
	if _, err := svc.HandleEvent(text.ID, assistant.RawMessage{Type: "call-start"}); !errors.Is(err, ErrAssistantModeInvalid) {
		t.Fatalf("want ErrAssistantModeInvalid got %v", err)
	}
	if _, err := svc.SendText(text.ID, "   "); !errors.Is(err, ErrMessageEmpty) {
		t.Fatalf("want ErrMessageEmpty got %v", err)
	}
	if _, err := svc.Session("missing"); !errors.Is(err, ErrAssistantSessionGone) {
		t.Fatalf("want ErrAssistantSessionGone got %v", err)
	}
}

func TestAssistantSweep(t *testing.T) {
	svc := newTestAssistantService()
	state := svc.StartSession("", assistant.ModeText)
	if removed := svc.Sweep(time.Now(), time.Hour); removed != 0 {
		t.Fatalf("fresh session should survive, removed=%d", removed)
	}
	if removed := svc.Sweep(time.Now().Add(2*time.Hour), time.Hour); removed != 1 {
		t.Fatalf("want 1 removed got %d", removed)
	}
	if _, err := svc.Session(state.ID); !errors.Is(err, ErrAssistantSessionGone) {
		t.Fatalf("swept session should be gone, got %v", err)
	}
}
