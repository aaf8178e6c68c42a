package study

import (
	"context"
	"testing"
	"time"
)

func TestParseFlashcard(t *testing.T) {
	tests := []struct {
		card string
		want Flashcard
	}{
		{"What is ATP? - Energy currency", Flashcard{"What is ATP?", "Energy currency"}},
		{"Newton - first law - inertia", Flashcard{"Newton", "first law - inertia"}},
		{"Lonely card", Flashcard{"Lonely card", "No answer provided"}},
	}

	for _, tt := range tests {
		if got := ParseFlashcard(tt.card); got != tt.want {
			t.Errorf("ParseFlashcard(%q): expected %+v, got %+v", tt.card, tt.want, got)
		}
	}
}

func TestTipsPrompt(t *testing.T) {
	got := TipsPrompt(ModeSolve, "x = 2")
	want := "Given this solution: x = 2, provide 3-5 key points to remember for an exam."
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	if got := TipsPrompt(ModeExplain, "n"); got != "Given this explanation: n, provide 3-5 key points to remember for an exam." {
		t.Errorf("Unexpected explain prompt: %q", got)
	}
}

func TestStaticTips(t *testing.T) {
	s := &StaticTips{Delay: 5 * time.Millisecond}
	got, err := s.Tips(context.Background(), "u", "p", 100)
	if err != nil || got != SampleTips {
		t.Errorf("Expected sample tips, got %q (%v)", got, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := &StaticTips{Delay: time.Minute}
	if _, err := slow.Tips(ctx, "u", "p", 100); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestIsQuotaMessage(t *testing.T) {
	if !IsQuotaMessage(QuotaMessage) {
		t.Error("Expected exact quota message to match")
	}
	if !IsQuotaMessage("Free LIMIT REACHED for today") {
		t.Error("Expected case-insensitive match")
	}
	if IsQuotaMessage("Invalid topic") {
		t.Error("Expected unrelated error not to match")
	}
}
